package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"xcri-rankings/internal/models"
	"xcri-rankings/internal/ranking"
	"xcri-rankings/pkg/database"
	"xcri-rankings/pkg/logging"
	"xcri-rankings/pkg/metrics"
)

// ComponentRepository provides read access to composite score breakdowns
type ComponentRepository interface {
	Get(ctx context.Context, athleteID int64, c ranking.Context) (*models.ComponentBreakdown, error)
	ForAthletes(ctx context.Context, athleteIDs []int64, c ranking.Context) ([]models.ComponentBreakdown, error)
	Leaderboard(ctx context.Context, component string, c ranking.Context, f ranking.Filter, page ranking.Page) ([]models.LeaderboardEntry, int, error)
	Totals(ctx context.Context, c ranking.Context) (*ComponentTotals, error)
	Distribution(ctx context.Context, component string, c ranking.Context) (*models.ComponentDistribution, error)
}

// ComponentColumns is the refinement allow-list for component queries
var ComponentColumns = ranking.Columns{
	Alias:  "c",
	Search: []string{"c.athlete_name_first", "c.athlete_name_last", "c.team_name"},
	Races:  "c.races_used",
}

var (
	componentFrom   = " FROM " + TableComponents + " c"
	componentSelect = "SELECT " + qualify("c", componentColumns...) + componentFrom
)

type componentRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewComponentRepository creates a new component repository
func NewComponentRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) ComponentRepository {
	return &componentRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

func componentPredicate(c ranking.Context, f ranking.Filter) *ranking.Predicate {
	return ranking.Select(c, f, ComponentColumns, ranking.WithoutAlgorithm())
}

// componentColumn maps a component name to its column pair. Unknown names
// are rejected so that only fixed identifiers reach the SQL text.
func componentColumn(component string) (score, rank string, err error) {
	if !models.IsComponent(component) {
		return "", "", models.NewValidationError("component", component, "must be one of saga, sewr, osma, xcri")
	}
	return "c." + component + "_score", "c." + component + "_rank", nil
}

// Get returns the newest breakdown for an athlete, or nil
func (r *componentRepository) Get(ctx context.Context, athleteID int64, c ranking.Context) (*models.ComponentBreakdown, error) {
	pred := componentPredicate(c, ranking.Filter{}).And("c.anet_athlete_hnd = ?", athleteID)
	query := r.db.Rebind(componentSelect + pred.Where() + " ORDER BY c.created_at DESC LIMIT 1")

	var breakdown models.ComponentBreakdown
	err := r.db.GetContext(ctx, "get_components", &breakdown, query, pred.Args()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get components for athlete %d: %w", athleteID, err)
	}

	return &breakdown, nil
}

// ForAthletes fetches breakdowns for several athletes in one round trip
func (r *componentRepository) ForAthletes(ctx context.Context, athleteIDs []int64, c ranking.Context) ([]models.ComponentBreakdown, error) {
	breakdowns := []models.ComponentBreakdown{}
	if len(athleteIDs) == 0 {
		return breakdowns, nil
	}

	pred := componentPredicate(c, ranking.Filter{}).And("c.anet_athlete_hnd IN (?)", athleteIDs)
	query, args, err := sqlx.In(componentSelect+pred.Where()+" ORDER BY c.anet_athlete_hnd", pred.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to expand athlete ids: %w", err)
	}

	if err := r.db.SelectContext(ctx, "batch_components", &breakdowns, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get components for %d athletes: %w", len(athleteIDs), err)
	}

	r.metrics.RecordRows("components", len(breakdowns))
	return breakdowns, nil
}

// Leaderboard lists athletes with a score for component, best rank first
func (r *componentRepository) Leaderboard(ctx context.Context, component string, c ranking.Context, f ranking.Filter, page ranking.Page) ([]models.LeaderboardEntry, int, error) {
	scoreCol, rankCol, err := componentColumn(component)
	if err != nil {
		return nil, 0, err
	}

	pred := componentPredicate(c, f).And(scoreCol + " IS NOT NULL")

	var total int
	countQuery := r.db.Rebind("SELECT COUNT(*)" + componentFrom + pred.Where())
	if err := r.db.GetContext(ctx, "count_leaderboard", &total, countQuery, pred.Args()...); err != nil {
		return nil, 0, fmt.Errorf("failed to count %s leaderboard: %w", component, err)
	}

	suffix, args := pred.Paged(page)
	query := r.db.Rebind(`SELECT c.component_id, c.ranking_id, c.season_year, c.division_code, c.gender_code,
		c.anet_athlete_hnd, c.athlete_name_first, c.athlete_name_last, c.team_name,
		` + scoreCol + ` AS score, ` + rankCol + ` AS rank,
		c.saga_score, c.saga_rank, c.sewr_score, c.sewr_rank,
		c.osma_score, c.osma_rank, c.xcri_score, c.xcri_rank, c.races_used` +
		componentFrom + pred.Where() + " ORDER BY " + rankCol + " ASC" + suffix)

	entries := []models.LeaderboardEntry{}
	if err := r.db.SelectContext(ctx, "list_leaderboard", &entries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list %s leaderboard: %w", component, err)
	}

	r.metrics.RecordRows("leaderboard", len(entries))
	return entries, total, nil
}

// ComponentTotals is the field size behind each component's ranks
type ComponentTotals struct {
	Athletes int `db:"athletes"`
	SAGA     int `db:"saga"`
	SEWR     int `db:"sewr"`
	OSMA     int `db:"osma"`
	XCRI     int `db:"xcri"`
}

// For returns the number of athletes scored on component
func (t ComponentTotals) For(component string) int {
	switch component {
	case models.ComponentSAGA:
		return t.SAGA
	case models.ComponentSEWR:
		return t.SEWR
	case models.ComponentOSMA:
		return t.OSMA
	case models.ComponentXCRI:
		return t.XCRI
	}
	return 0
}

// Totals counts athletes, and scored athletes per component, in the context
func (r *componentRepository) Totals(ctx context.Context, c ranking.Context) (*ComponentTotals, error) {
	pred := componentPredicate(c, ranking.Filter{})
	query := r.db.Rebind(`SELECT COUNT(*) AS athletes,
		COUNT(c.saga_score) AS saga, COUNT(c.sewr_score) AS sewr,
		COUNT(c.osma_score) AS osma, COUNT(c.xcri_score) AS xcri` + componentFrom + pred.Where())

	var totals ComponentTotals
	if err := r.db.GetContext(ctx, "component_totals", &totals, query, pred.Args()...); err != nil {
		return nil, fmt.Errorf("failed to count component field sizes: %w", err)
	}

	return &totals, nil
}

// Distribution summarises the spread of one component's scores
func (r *componentRepository) Distribution(ctx context.Context, component string, c ranking.Context) (*models.ComponentDistribution, error) {
	scoreCol, _, err := componentColumn(component)
	if err != nil {
		return nil, err
	}

	pred := componentPredicate(c, ranking.Filter{}).And(scoreCol + " IS NOT NULL")
	query := r.db.Rebind(`SELECT COUNT(*) AS count,
		MIN(` + scoreCol + `) AS min,
		MAX(` + scoreCol + `) AS max,
		AVG(` + scoreCol + `) AS mean,
		STDDEV_SAMP(` + scoreCol + `) AS std_dev,
		percentile_disc(0.25) WITHIN GROUP (ORDER BY ` + scoreCol + `) AS p25,
		percentile_disc(0.50) WITHIN GROUP (ORDER BY ` + scoreCol + `) AS p50,
		percentile_disc(0.75) WITHIN GROUP (ORDER BY ` + scoreCol + `) AS p75` +
		componentFrom + pred.Where())

	var dist models.ComponentDistribution
	if err := r.db.GetContext(ctx, "component_distribution", &dist, query, pred.Args()...); err != nil {
		return nil, fmt.Errorf("failed to get %s distribution: %w", component, err)
	}

	dist.Component = component
	dist.SeasonYear = c.SeasonYear
	dist.DivisionCode = c.Division
	dist.GenderCode = c.Gender
	return &dist, nil
}
