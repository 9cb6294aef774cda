package repository

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"xcri-rankings/internal/models"
	"xcri-rankings/internal/ranking"
	"xcri-rankings/pkg/database"
	"xcri-rankings/pkg/logging"
	"xcri-rankings/pkg/metrics"
)

// SnapshotRepository lists the dated checkpoints present in athlete rankings
type SnapshotRepository interface {
	List(ctx context.Context, season *int, page ranking.Page) ([]models.Snapshot, int, error)
	Combinations(ctx context.Context, checkpoint models.Date) ([]models.SnapshotCombination, error)
}

type snapshotRow struct {
	CheckpointDate models.Date    `db:"checkpoint_date"`
	SeasonYear     int            `db:"season_year"`
	Divisions      pq.Int64Array  `db:"divisions"`
	Genders        pq.StringArray `db:"genders"`
	AthleteCount   int            `db:"athlete_count"`
}

type snapshotRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) SnapshotRepository {
	return &snapshotRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// List returns checkpoint dates newest first with the divisions they cover
func (r *snapshotRepository) List(ctx context.Context, season *int, page ranking.Page) ([]models.Snapshot, int, error) {
	pred := ranking.NewPredicate().
		And("a.checkpoint_date IS NOT NULL").
		And("a.algorithm_type = ?", ranking.AlgorithmLight).
		And("a.scoring_group = ?", ranking.DivisionScope.ScoringGroup())
	if season != nil {
		pred.And("a.season_year = ?", *season)
	}

	grouped := " FROM " + TableAthleteRankings + " a" + pred.Where() + " GROUP BY a.checkpoint_date, a.season_year"

	var total int
	countQuery := r.db.Rebind("SELECT COUNT(*) FROM (SELECT 1" + grouped + ") AS count_query")
	if err := r.db.GetContext(ctx, "count_snapshots", &total, countQuery, pred.Args()...); err != nil {
		return nil, 0, fmt.Errorf("failed to count snapshots: %w", err)
	}

	suffix, args := pred.Paged(page)
	query := r.db.Rebind(`SELECT a.checkpoint_date, a.season_year,
		array_agg(DISTINCT a.division_code ORDER BY a.division_code) AS divisions,
		array_agg(DISTINCT a.gender_code ORDER BY a.gender_code) AS genders,
		COUNT(*) AS athlete_count` + grouped + " ORDER BY a.checkpoint_date DESC" + suffix)

	var rows []snapshotRow
	if err := r.db.SelectContext(ctx, "list_snapshots", &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list snapshots: %w", err)
	}

	snapshots := make([]models.Snapshot, 0, len(rows))
	for _, row := range rows {
		divisions := make([]int, len(row.Divisions))
		for i, d := range row.Divisions {
			divisions[i] = int(d)
		}
		snapshots = append(snapshots, models.Snapshot{
			CheckpointDate: row.CheckpointDate,
			SeasonYear:     row.SeasonYear,
			DisplayName:    models.SnapshotDisplayName(row.CheckpointDate),
			Divisions:      divisions,
			Genders:        []string(row.Genders),
			AthleteCount:   row.AthleteCount,
		})
	}

	return snapshots, total, nil
}

// Combinations returns the division/gender pairs ranked at a checkpoint
func (r *snapshotRepository) Combinations(ctx context.Context, checkpoint models.Date) ([]models.SnapshotCombination, error) {
	query := r.db.Rebind(`SELECT division_code, gender_code, COUNT(*) AS athlete_count
		FROM ` + TableAthleteRankings + `
		WHERE checkpoint_date = ? AND algorithm_type = ? AND scoring_group = ?
		GROUP BY division_code, gender_code
		ORDER BY division_code, gender_code`)

	combos := []models.SnapshotCombination{}
	err := r.db.SelectContext(ctx, "snapshot_combinations", &combos, query,
		checkpoint.String(), ranking.AlgorithmLight, ranking.DivisionScope.ScoringGroup())
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot %s combinations: %w", checkpoint, err)
	}

	return combos, nil
}
