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

// KnockoutRepository provides read access to knockout rankings and matchups
type KnockoutRepository interface {
	List(ctx context.Context, g ranking.GroupContext, search string, page ranking.Page) ([]models.TeamKnockoutRanking, int, error)
	Get(ctx context.Context, teamID int64, g ranking.GroupContext) (*models.TeamKnockoutRanking, error)
	TeamMatchups(ctx context.Context, teamID int64, g ranking.GroupContext, page ranking.Page) ([]models.TeamKnockoutMatchup, models.MatchupStats, error)
	Between(ctx context.Context, teamA, teamB int64, g ranking.GroupContext) ([]models.TeamKnockoutMatchup, error)
	Involving(ctx context.Context, teamA, teamB int64, g ranking.GroupContext) ([]models.TeamKnockoutMatchup, error)
	Meet(ctx context.Context, raceHnd int64, season int, checkpoint *models.Date) ([]models.TeamKnockoutMatchup, error)
}

// Region and conference names come from the newest Team Five row of the
// same team and generation.
var knockoutFrom = `
		FROM ` + TableKnockout + ` ko
		LEFT JOIN LATERAL (
			SELECT tf.regl_group_name, tf.conf_group_name, tf.most_recent_race_date
			FROM ` + TableTeamFive + ` tf
			WHERE tf.anet_team_hnd = ko.team_id
				AND tf.season_year = ko.season_year
				AND tf.gender_code = ko.gender_code
				AND tf.checkpoint_date IS NOT DISTINCT FROM ko.checkpoint_date
			ORDER BY tf.calculated_at DESC
			LIMIT 1
		) tf ON TRUE`

var knockoutSelect = "SELECT " + qualify("ko", knockoutColumns...) +
	", tf.regl_group_name, tf.conf_group_name, tf.most_recent_race_date" + knockoutFrom

func teamNameJoin(alias, column string) string {
	return `
		LEFT JOIN ` + TableKnockout + ` ` + alias + `
			ON ` + alias + `.team_id = m.` + column + `
			AND ` + alias + `.season_year = m.season_year
			AND ` + alias + `.rank_group_type = m.rank_group_type
			AND ` + alias + `.rank_group_fk = m.rank_group_fk
			AND ` + alias + `.gender_code = m.gender_code
			AND ` + alias + `.checkpoint_date IS NOT DISTINCT FROM m.checkpoint_date`
}

var (
	matchupFrom   = " FROM " + TableMatchups + " m"
	matchupSelect = "SELECT " + qualify("m", matchupColumns...) +
		", ta.team_name AS team_a_name, tb.team_name AS team_b_name, tw.team_name AS winner_team_name" +
		matchupFrom +
		teamNameJoin("ta", "team_a_id") +
		teamNameJoin("tb", "team_b_id") +
		teamNameJoin("tw", "winner_team_id")
)

type knockoutRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewKnockoutRepository creates a new knockout repository
func NewKnockoutRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) KnockoutRepository {
	return &knockoutRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// List returns one page of a knockout ranking ordered by knockout rank
func (r *knockoutRepository) List(ctx context.Context, g ranking.GroupContext, search string, page ranking.Page) ([]models.TeamKnockoutRanking, int, error) {
	pred := ranking.SelectGroup(g, "ko", search)

	var total int
	countQuery := r.db.Rebind("SELECT COUNT(*) FROM " + TableKnockout + " ko" + pred.Where())
	if err := r.db.GetContext(ctx, "count_knockout", &total, countQuery, pred.Args()...); err != nil {
		return nil, 0, fmt.Errorf("failed to count knockout rankings: %w", err)
	}

	suffix, args := pred.Paged(page)
	query := r.db.Rebind(knockoutSelect + pred.Where() + " ORDER BY ko.knockout_rank ASC" + suffix)

	teams := []models.TeamKnockoutRanking{}
	if err := r.db.SelectContext(ctx, "list_knockout", &teams, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list knockout rankings: %w", err)
	}

	r.metrics.RecordRows("knockout", len(teams))
	return teams, total, nil
}

// Get returns the newest knockout row for a team, or nil
func (r *knockoutRepository) Get(ctx context.Context, teamID int64, g ranking.GroupContext) (*models.TeamKnockoutRanking, error) {
	pred := ranking.SelectGroup(g, "ko", "").And("ko.team_id = ?", teamID)
	query := r.db.Rebind(knockoutSelect + pred.Where() + " ORDER BY ko.calculation_date DESC LIMIT 1")

	var team models.TeamKnockoutRanking
	err := r.db.GetContext(ctx, "get_knockout", &team, query, pred.Args()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get knockout ranking for team %d: %w", teamID, err)
	}

	return &team, nil
}

// TeamMatchups returns one page of a team's matchups, newest first, plus a
// win/loss summary over every matchup matching the same predicate
func (r *knockoutRepository) TeamMatchups(ctx context.Context, teamID int64, g ranking.GroupContext, page ranking.Page) ([]models.TeamKnockoutMatchup, models.MatchupStats, error) {
	pred := ranking.NewPredicate().
		And("(m.team_a_id = ? OR m.team_b_id = ?)", teamID, teamID).
		Merge(ranking.SelectGroup(g, "m", ""))

	var stats models.MatchupStats
	statsQuery := r.db.Rebind(`SELECT
			COUNT(*) AS total_matchups,
			COUNT(*) FILTER (WHERE m.winner_team_id = ?) AS wins,
			COUNT(*) FILTER (WHERE m.winner_team_id <> ?) AS losses` +
		matchupFrom + pred.Where())
	statsArgs := append([]interface{}{teamID, teamID}, pred.Args()...)
	if err := r.db.GetContext(ctx, "matchup_stats", &stats, statsQuery, statsArgs...); err != nil {
		return nil, stats, fmt.Errorf("failed to summarise matchups for team %d: %w", teamID, err)
	}

	suffix, args := pred.Paged(page)
	query := r.db.Rebind(matchupSelect + pred.Where() + " ORDER BY m.race_date DESC, m.matchup_id DESC" + suffix)

	matchups := []models.TeamKnockoutMatchup{}
	if err := r.db.SelectContext(ctx, "list_team_matchups", &matchups, query, args...); err != nil {
		return nil, stats, fmt.Errorf("failed to list matchups for team %d: %w", teamID, err)
	}

	r.metrics.RecordRows("matchups", len(matchups))
	return matchups, stats, nil
}

// Between returns every matchup between two teams
func (r *knockoutRepository) Between(ctx context.Context, teamA, teamB int64, g ranking.GroupContext) ([]models.TeamKnockoutMatchup, error) {
	pred := ranking.NewPredicate().
		And("((m.team_a_id = ? AND m.team_b_id = ?) OR (m.team_a_id = ? AND m.team_b_id = ?))", teamA, teamB, teamB, teamA).
		Merge(ranking.SelectGroup(g, "m", ""))

	query := r.db.Rebind(matchupSelect + pred.Where() + " ORDER BY m.race_date DESC, m.matchup_id DESC")

	matchups := []models.TeamKnockoutMatchup{}
	if err := r.db.SelectContext(ctx, "head_to_head", &matchups, query, pred.Args()...); err != nil {
		return nil, fmt.Errorf("failed to get head-to-head for %d and %d: %w", teamA, teamB, err)
	}

	return matchups, nil
}

// Involving returns every matchup in which either team raced
func (r *knockoutRepository) Involving(ctx context.Context, teamA, teamB int64, g ranking.GroupContext) ([]models.TeamKnockoutMatchup, error) {
	pred := ranking.NewPredicate().
		And("(m.team_a_id IN (?, ?) OR m.team_b_id IN (?, ?))", teamA, teamB, teamA, teamB).
		Merge(ranking.SelectGroup(g, "m", ""))

	query := r.db.Rebind(matchupSelect + pred.Where() + " ORDER BY m.race_date DESC, m.matchup_id DESC")

	matchups := []models.TeamKnockoutMatchup{}
	if err := r.db.SelectContext(ctx, "common_opponents", &matchups, query, pred.Args()...); err != nil {
		return nil, fmt.Errorf("failed to get matchups involving %d or %d: %w", teamA, teamB, err)
	}

	return matchups, nil
}

// Meet returns every matchup recorded at one race
func (r *knockoutRepository) Meet(ctx context.Context, raceHnd int64, season int, checkpoint *models.Date) ([]models.TeamKnockoutMatchup, error) {
	pred := ranking.NewPredicate().
		And("m.race_hnd = ?", raceHnd).
		And("m.season_year = ?", season)
	if checkpoint == nil {
		pred.And("m.checkpoint_date IS NULL")
	} else {
		pred.And("m.checkpoint_date = ?", checkpoint.String())
	}

	query := r.db.Rebind(matchupSelect + pred.Where() + " ORDER BY m.team_a_rank ASC, m.team_b_rank ASC")

	matchups := []models.TeamKnockoutMatchup{}
	if err := r.db.SelectContext(ctx, "meet_matchups", &matchups, query, pred.Args()...); err != nil {
		return nil, fmt.Errorf("failed to get matchups for race %d: %w", raceHnd, err)
	}

	return matchups, nil
}
