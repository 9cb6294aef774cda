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

// TeamRepository provides read access to team rankings and season resumes
type TeamRepository interface {
	List(ctx context.Context, c ranking.Context, f ranking.Filter, page ranking.Page) ([]models.TeamRanking, int, error)
	Get(ctx context.Context, teamID int64, c ranking.Context) (*models.TeamRanking, error)
	Resume(ctx context.Context, q ResumeQuery) (*models.SeasonResume, error)
}

// ResumeQuery selects a team's season resume
type ResumeQuery struct {
	TeamID     int64
	SeasonYear int
	Division   *int
	Gender     *string
}

// TeamColumns is the refinement allow-list for team queries
var TeamColumns = ranking.Columns{
	Alias:      "t",
	Search:     []string{"t.team_name"},
	Region:     "t.regl_group_name",
	Conference: "t.conf_group_name",
}

var (
	teamFrom   = " FROM " + TableTeamRankings + " t"
	teamSelect = "SELECT " + qualify("t", teamColumns...) + teamFrom
)

type teamRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) TeamRepository {
	return &teamRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// List returns one page of a team ranking plus the total for the same filter
func (r *teamRepository) List(ctx context.Context, c ranking.Context, f ranking.Filter, page ranking.Page) ([]models.TeamRanking, int, error) {
	pred := ranking.Select(c, f, TeamColumns)

	var total int
	countQuery := r.db.Rebind("SELECT COUNT(*)" + teamFrom + pred.Where())
	if err := r.db.GetContext(ctx, "count_teams", &total, countQuery, pred.Args()...); err != nil {
		return nil, 0, fmt.Errorf("failed to count teams: %w", err)
	}

	suffix, args := pred.Paged(page)
	query := r.db.Rebind(teamSelect + pred.Where() + " ORDER BY t.team_rank ASC" + suffix)

	teams := []models.TeamRanking{}
	if err := r.db.SelectContext(ctx, "list_teams", &teams, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list teams: %w", err)
	}

	r.metrics.RecordRows("teams", len(teams))
	return teams, total, nil
}

// Get returns the newest row for a team in the context, or nil
func (r *teamRepository) Get(ctx context.Context, teamID int64, c ranking.Context) (*models.TeamRanking, error) {
	pred := ranking.Select(c, ranking.Filter{}, TeamColumns).And("t.anet_team_hnd = ?", teamID)
	query := r.db.Rebind(teamSelect + pred.Where() + " ORDER BY t.calculated_at DESC LIMIT 1")

	var team models.TeamRanking
	err := r.db.GetContext(ctx, "get_team", &team, query, pred.Args()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team %d: %w", teamID, err)
	}

	return &team, nil
}

// Resume returns the most recently updated resume matching q, or nil
func (r *teamRepository) Resume(ctx context.Context, q ResumeQuery) (*models.SeasonResume, error) {
	pred := ranking.NewPredicate().
		And("anet_group_hnd = ?", q.TeamID).
		And("season_year = ?", q.SeasonYear)
	if q.Division != nil {
		pred.And("division_code = ?", *q.Division)
	}
	if q.Gender != nil {
		pred.And("gender_code = ?", *q.Gender)
	}

	query := r.db.Rebind(`
		SELECT group_resume_id, season_year, anet_group_hnd, division_code, gender_code,
		       resume_html, created_at, updated_at
		FROM ` + TableSeasonResumes + pred.Where() + `
		ORDER BY updated_at DESC NULLS LAST
		LIMIT 1`)

	var resume models.SeasonResume
	err := r.db.GetContext(ctx, "get_resume", &resume, query, pred.Args()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resume for team %d: %w", q.TeamID, err)
	}

	return &resume, nil
}
