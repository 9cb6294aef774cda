package services

import (
	"context"
	"strconv"

	"xcri-rankings/internal/knockout"
	"xcri-rankings/internal/models"
	"xcri-rankings/internal/ranking"
	"xcri-rankings/internal/repository"
	"xcri-rankings/pkg/logging"
	"xcri-rankings/pkg/metrics"
)

// KnockoutService handles knockout rankings and pairwise matchup analysis
type KnockoutService struct {
	repo    repository.KnockoutRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewKnockoutService creates a new knockout service
func NewKnockoutService(repo repository.KnockoutRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *KnockoutService {
	return &KnockoutService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// ListRankings retrieves one page of a knockout ranking
func (s *KnockoutService) ListRankings(ctx context.Context, g ranking.GroupContext, search string, page ranking.Page) ([]models.TeamKnockoutRanking, int, error) {
	return s.repo.List(ctx, g, search, page)
}

// GetTeam retrieves a team's knockout row; nil means absent
func (s *KnockoutService) GetTeam(ctx context.Context, teamID int64, g ranking.GroupContext) (*models.TeamKnockoutRanking, error) {
	return s.repo.Get(ctx, teamID, g)
}

// TeamMatchups retrieves a team's matchups newest first with its record over
// the whole filtered set
func (s *KnockoutService) TeamMatchups(ctx context.Context, teamID int64, g ranking.GroupContext, page ranking.Page) ([]models.TeamKnockoutMatchup, models.MatchupStats, error) {
	matchups, stats, err := s.repo.TeamMatchups(ctx, teamID, g, page)
	if err != nil {
		return nil, stats, err
	}
	stats.WinPct = knockout.WinPct(stats.Wins, stats.TotalMatchups)
	return matchups, stats, nil
}

// HeadToHead retrieves the record between two teams. A nil result means
// they never met in the group.
func (s *KnockoutService) HeadToHead(ctx context.Context, teamA, teamB int64, g ranking.GroupContext) (*models.HeadToHead, error) {
	if err := distinctTeams(teamA, teamB); err != nil {
		return nil, err
	}

	rows, err := s.repo.Between(ctx, teamA, teamB, g)
	if err != nil {
		return nil, err
	}

	timer := s.metrics.NewTimer(s.metrics.KnockoutAggregation.WithLabelValues("head_to_head"))
	h2h, found := knockout.HeadToHead(teamA, teamB, rows)
	timer.ObserveDuration()

	if !found {
		return nil, nil
	}
	return &h2h, nil
}

// CommonOpponents compares two teams through the opponents both have met.
// A nil result means there are none.
func (s *KnockoutService) CommonOpponents(ctx context.Context, teamA, teamB int64, g ranking.GroupContext) (*models.CommonOpponentsAnalysis, error) {
	if err := distinctTeams(teamA, teamB); err != nil {
		return nil, err
	}

	rows, err := s.repo.Involving(ctx, teamA, teamB, g)
	if err != nil {
		return nil, err
	}

	timer := s.metrics.NewTimer(s.metrics.KnockoutAggregation.WithLabelValues("common_opponents"))
	analysis, found := knockout.CommonOpponents(teamA, teamB, rows)
	elapsed := timer.ObserveDuration()

	s.logger.Debug(ctx, "[KNOCKOUT] Common opponents aggregated", logging.Fields{
		"team_a_id":   teamA,
		"team_b_id":   teamB,
		"rows":        len(rows),
		"opponents":   analysis.TotalCommonOpponents,
		"duration_ms": elapsed.Milliseconds(),
	})

	if !found {
		return nil, nil
	}
	return &analysis, nil
}

// MeetMatchups retrieves every matchup at one race. A nil result means the
// race has no matchups in the season and checkpoint.
func (s *KnockoutService) MeetMatchups(ctx context.Context, raceHnd int64, season int, checkpoint *models.Date) (*models.MeetMatchups, error) {
	rows, err := s.repo.Meet(ctx, raceHnd, season, checkpoint)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	meet := knockout.Meet(raceHnd, rows)
	return &meet, nil
}

func distinctTeams(teamA, teamB int64) error {
	if teamA == teamB {
		return models.NewValidationError("team_b_id", strconv.FormatInt(teamB, 10), "team_a_id and team_b_id must be different")
	}
	return nil
}
