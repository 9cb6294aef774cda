package services

import (
	"context"
	"fmt"
	"slices"

	"xcri-rankings/internal/models"
	"xcri-rankings/internal/ranking"
	"xcri-rankings/internal/repository"
	"xcri-rankings/pkg/logging"
	"xcri-rankings/pkg/metrics"
)

// SnapshotService serves rankings frozen at dated checkpoints. Snapshot
// reads always use the light algorithm at division scope.
type SnapshotService struct {
	snapshots repository.SnapshotRepository
	athletes  repository.AthleteRepository
	teams     repository.TeamRepository
	logger    *logging.StructuredLogger
	metrics   *metrics.Collector
}

// NewSnapshotService creates a new snapshot service
func NewSnapshotService(
	snapshots repository.SnapshotRepository,
	athletes repository.AthleteRepository,
	teams repository.TeamRepository,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *SnapshotService {
	return &SnapshotService{
		snapshots: snapshots,
		athletes:  athletes,
		teams:     teams,
		logger:    logger,
		metrics:   metricsCollector,
	}
}

// SnapshotContext is the ranking context for a checkpoint. The season is
// left open: a checkpoint is matched by date alone.
func SnapshotContext(date models.Date, division *int, gender *string) ranking.Context {
	c := ranking.AtCheckpoint(date)
	c.SeasonYear = 0
	c.Division = division
	c.Gender = gender
	return c
}

// ListSnapshots lists checkpoints newest first, optionally for one season
func (s *SnapshotService) ListSnapshots(ctx context.Context, season *int, page ranking.Page) ([]models.Snapshot, int, error) {
	return s.snapshots.List(ctx, season, page)
}

// SnapshotAthletes lists athlete rankings as they stood at date
func (s *SnapshotService) SnapshotAthletes(ctx context.Context, date models.Date, division *int, gender *string, f ranking.Filter, page ranking.Page) ([]models.AthleteRanking, int, error) {
	return s.athletes.List(ctx, SnapshotContext(date, division, gender), f, page)
}

// SnapshotTeams lists team rankings as they stood at date
func (s *SnapshotService) SnapshotTeams(ctx context.Context, date models.Date, division *int, gender *string, f ranking.Filter, page ranking.Page) ([]models.TeamRanking, int, error) {
	f.MinRaces = nil
	return s.teams.List(ctx, SnapshotContext(date, division, gender), f, page)
}

// SnapshotMetadata reports which divisions were ranked at date. A date with
// no rows is not_found; store failures are returned as errors.
func (s *SnapshotService) SnapshotMetadata(ctx context.Context, date models.Date) (*models.SnapshotMetadata, error) {
	combos, err := s.snapshots.Combinations(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %s: %w", date, err)
	}

	meta := &models.SnapshotMetadata{
		CheckpointDate:     date,
		SeasonYear:         date.Year(),
		DisplayName:        models.SnapshotDisplayName(date),
		Status:             models.SnapshotNotFound,
		DivisionsAvailable: []int{},
		Combinations:       combos,
	}
	if len(combos) == 0 {
		return meta, nil
	}

	meta.Status = models.SnapshotAvailable
	seen := make(map[int]bool, len(combos))
	for _, combo := range combos {
		meta.AthleteCount += combo.AthleteCount
		if !seen[combo.DivisionCode] {
			seen[combo.DivisionCode] = true
			meta.DivisionsAvailable = append(meta.DivisionsAvailable, combo.DivisionCode)
		}
	}
	slices.Sort(meta.DivisionsAvailable)

	return meta, nil
}
