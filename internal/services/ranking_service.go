package services

import (
	"context"

	"xcri-rankings/internal/models"
	"xcri-rankings/internal/ranking"
	"xcri-rankings/internal/repository"
	"xcri-rankings/pkg/logging"
	"xcri-rankings/pkg/metrics"
)

// AthleteService handles athlete ranking reads
type AthleteService struct {
	repo    repository.AthleteRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewAthleteService creates a new athlete service
func NewAthleteService(repo repository.AthleteRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *AthleteService {
	return &AthleteService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// ListAthletes retrieves one page of athlete rankings with the filtered total
func (s *AthleteService) ListAthletes(ctx context.Context, c ranking.Context, f ranking.Filter, page ranking.Page) ([]models.AthleteRanking, int, error) {
	return s.repo.List(ctx, c, f, page)
}

// GetAthlete retrieves one athlete; nil means not ranked in the context
func (s *AthleteService) GetAthlete(ctx context.Context, athleteID int64, c ranking.Context) (*models.AthleteRanking, error) {
	return s.repo.Get(ctx, athleteID, c)
}

// GetTeamRoster retrieves a team's ranked athletes
func (s *AthleteService) GetTeamRoster(ctx context.Context, teamID int64, c ranking.Context, page ranking.Page) ([]models.AthleteRanking, int, error) {
	return s.repo.Roster(ctx, teamID, c, page)
}

// TeamService handles team ranking and resume reads
type TeamService struct {
	repo    repository.TeamRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewTeamService creates a new team service
func NewTeamService(repo repository.TeamRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *TeamService {
	return &TeamService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// ListTeams retrieves one page of team rankings with the filtered total.
// Minimum races does not apply to teams and is ignored.
func (s *TeamService) ListTeams(ctx context.Context, c ranking.Context, f ranking.Filter, page ranking.Page) ([]models.TeamRanking, int, error) {
	f.MinRaces = nil
	return s.repo.List(ctx, c, f, page)
}

// GetTeam retrieves one team; nil means not ranked in the context
func (s *TeamService) GetTeam(ctx context.Context, teamID int64, c ranking.Context) (*models.TeamRanking, error) {
	return s.repo.Get(ctx, teamID, c)
}

// GetTeamResume retrieves the most recently updated season resume
func (s *TeamService) GetTeamResume(ctx context.Context, q repository.ResumeQuery) (*models.SeasonResume, error) {
	return s.repo.Resume(ctx, q)
}
