package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"xcri-rankings/internal/models"
	"xcri-rankings/internal/ranking"
	"xcri-rankings/pkg/database"
	"xcri-rankings/pkg/logging"
	"xcri-rankings/pkg/metrics"
)

// MetadataRepository provides read access to calculation run records
type MetadataRepository interface {
	List(ctx context.Context, c ranking.Context, page ranking.Page) ([]models.CalculationMetadata, int, error)
	Latest(ctx context.Context) ([]models.CalculationMetadata, error)
	Get(ctx context.Context, metadataID int64) (*models.CalculationMetadata, error)
	Summary(ctx context.Context) (*models.ProcessingSummary, error)
}

var (
	metadataFrom   = " FROM " + TableMetadata + " m"
	metadataSelect = "SELECT " + qualify("m", metadataColumns...) + metadataFrom
)

// livePredicate matches the live light runs at division scope
func livePredicate() *ranking.Predicate {
	return ranking.NewPredicate().
		And("m.checkpoint_date IS NULL").
		And("m.algorithm_type = ?", ranking.AlgorithmLight).
		And("m.scoring_group = ?", ranking.DivisionScope.ScoringGroup())
}

type metadataRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewMetadataRepository creates a new metadata repository
func NewMetadataRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) MetadataRepository {
	return &metadataRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// List returns calculation runs for a context, newest first
func (r *metadataRepository) List(ctx context.Context, c ranking.Context, page ranking.Page) ([]models.CalculationMetadata, int, error) {
	pred := ranking.Select(c, ranking.Filter{}, ranking.Columns{Alias: "m"})

	var total int
	countQuery := r.db.Rebind("SELECT COUNT(*)" + metadataFrom + pred.Where())
	if err := r.db.GetContext(ctx, "count_metadata", &total, countQuery, pred.Args()...); err != nil {
		return nil, 0, fmt.Errorf("failed to count metadata: %w", err)
	}

	suffix, args := pred.Paged(page)
	query := r.db.Rebind(metadataSelect + pred.Where() + " ORDER BY m.calculated_at DESC" + suffix)

	runs := []models.CalculationMetadata{}
	if err := r.db.SelectContext(ctx, "list_metadata", &runs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list metadata: %w", err)
	}

	return runs, total, nil
}

// Latest returns the newest live run for each division and gender
func (r *metadataRepository) Latest(ctx context.Context) ([]models.CalculationMetadata, error) {
	pred := livePredicate()
	query := r.db.Rebind("SELECT DISTINCT ON (m.division_code, m.gender_code) " + qualify("m", metadataColumns...) +
		metadataFrom + pred.Where() +
		" ORDER BY m.division_code, m.gender_code, m.calculated_at DESC")

	runs := []models.CalculationMetadata{}
	if err := r.db.SelectContext(ctx, "latest_metadata", &runs, query, pred.Args()...); err != nil {
		return nil, fmt.Errorf("failed to get latest metadata: %w", err)
	}

	return runs, nil
}

// Get returns one run by id, or nil
func (r *metadataRepository) Get(ctx context.Context, metadataID int64) (*models.CalculationMetadata, error) {
	query := r.db.Rebind(metadataSelect + " WHERE m.metadata_id = ?")

	var run models.CalculationMetadata
	err := r.db.GetContext(ctx, "get_metadata", &run, query, metadataID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata %d: %w", metadataID, err)
	}

	return &run, nil
}

// Summary aggregates every live run. An empty table yields zero counts.
func (r *metadataRepository) Summary(ctx context.Context) (*models.ProcessingSummary, error) {
	pred := livePredicate()
	query := r.db.Rebind(`SELECT
			COUNT(*) AS total_calculations,
			COUNT(*) FILTER (WHERE m.calculation_status = 'success') AS successful_runs,
			COUNT(*) FILTER (WHERE m.calculation_status = 'failed') AS failed_runs,
			AVG(m.processing_time_seconds) AS avg_processing_seconds,
			MAX(m.processing_time_seconds) AS max_processing_seconds,
			SUM(m.total_athletes) AS total_athletes_ranked,
			SUM(m.total_teams) AS total_teams_ranked,
			AVG(m.cache_hit_rate) AS avg_cache_hit_rate,
			MAX(m.calculated_at) AS last_calculation_at` +
		metadataFrom + pred.Where())

	var summary models.ProcessingSummary
	if err := r.db.GetContext(ctx, "metadata_summary", &summary, query, pred.Args()...); err != nil {
		return nil, fmt.Errorf("failed to summarise metadata: %w", err)
	}

	return &summary, nil
}
