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

// AthleteRepository provides read access to athlete rankings
type AthleteRepository interface {
	List(ctx context.Context, c ranking.Context, f ranking.Filter, page ranking.Page) ([]models.AthleteRanking, int, error)
	Get(ctx context.Context, athleteID int64, c ranking.Context) (*models.AthleteRanking, error)
	Roster(ctx context.Context, teamID int64, c ranking.Context, page ranking.Page) ([]models.AthleteRanking, int, error)
}

// AthleteColumns is the refinement allow-list for athlete queries
var AthleteColumns = ranking.Columns{
	Alias:      "a",
	Search:     []string{"a.athlete_name_first", "a.athlete_name_last", "a.team_name"},
	Region:     "t.regl_group_name",
	Conference: "t.conf_group_name",
	Races:      "a.races_count",
}

// The team join matches the full generation key so a missing team row never
// drops the athlete.
var athleteFrom = `
		FROM ` + TableAthleteRankings + ` a
		LEFT JOIN ` + TableTeamRankings + ` t
			ON t.anet_team_hnd = a.anet_team_hnd
			AND t.season_year = a.season_year
			AND t.division_code = a.division_code
			AND t.gender_code = a.gender_code
			AND t.scoring_group = a.scoring_group
			AND t.algorithm_type = a.algorithm_type
			AND t.checkpoint_date IS NOT DISTINCT FROM a.checkpoint_date`

var athleteSelect = "SELECT " + qualify("a", athleteColumns...) + ", t.regl_group_name, t.conf_group_name" + athleteFrom

type athleteRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewAthleteRepository creates a new athlete repository
func NewAthleteRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) AthleteRepository {
	return &athleteRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// List returns one page of an athlete ranking plus the total for the same filter
func (r *athleteRepository) List(ctx context.Context, c ranking.Context, f ranking.Filter, page ranking.Page) ([]models.AthleteRanking, int, error) {
	pred := ranking.Select(c, f, AthleteColumns)
	return r.page(ctx, "athletes", pred, " ORDER BY a.athlete_rank ASC", page)
}

// Get returns the newest row for an athlete in the context, or nil
func (r *athleteRepository) Get(ctx context.Context, athleteID int64, c ranking.Context) (*models.AthleteRanking, error) {
	pred := ranking.Select(c, ranking.Filter{}, AthleteColumns).And("a.anet_athlete_hnd = ?", athleteID)
	query := r.db.Rebind(athleteSelect + pred.Where() + " ORDER BY a.calculated_at DESC LIMIT 1")

	var athlete models.AthleteRanking
	err := r.db.GetContext(ctx, "get_athlete", &athlete, query, pred.Args()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get athlete %d: %w", athleteID, err)
	}

	return &athlete, nil
}

// Roster returns a team's athletes ordered by rank
func (r *athleteRepository) Roster(ctx context.Context, teamID int64, c ranking.Context, page ranking.Page) ([]models.AthleteRanking, int, error) {
	pred := ranking.Select(c, ranking.Filter{}, AthleteColumns).And("a.anet_team_hnd = ?", teamID)
	return r.page(ctx, "roster", pred, " ORDER BY a.athlete_rank ASC", page)
}

func (r *athleteRepository) page(ctx context.Context, name string, pred *ranking.Predicate, orderBy string, page ranking.Page) ([]models.AthleteRanking, int, error) {
	var total int
	countQuery := r.db.Rebind("SELECT COUNT(*)" + athleteFrom + pred.Where())
	if err := r.db.GetContext(ctx, "count_"+name, &total, countQuery, pred.Args()...); err != nil {
		return nil, 0, fmt.Errorf("failed to count %s: %w", name, err)
	}

	suffix, args := pred.Paged(page)
	query := r.db.Rebind(athleteSelect + pred.Where() + orderBy + suffix)

	athletes := []models.AthleteRanking{}
	if err := r.db.SelectContext(ctx, "list_"+name, &athletes, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list %s: %w", name, err)
	}

	r.metrics.RecordRows(name, len(athletes))
	r.logger.Debug(ctx, "[REPO_ATHLETES] Query completed", logging.Fields{
		"query":    name,
		"total":    total,
		"returned": len(athletes),
	})

	return athletes, total, nil
}
