package services

import (
	"context"
	"math"
	"slices"
	"strconv"
	"strings"

	"xcri-rankings/internal/models"
	"xcri-rankings/internal/ranking"
	"xcri-rankings/internal/repository"
	"xcri-rankings/pkg/logging"
	"xcri-rankings/pkg/metrics"
)

// MaxBatchAthletes caps one batch component lookup
const MaxBatchAthletes = 100

// ComponentService handles composite score component reads
type ComponentService struct {
	repo    repository.ComponentRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewComponentService creates a new component service
func NewComponentService(repo repository.ComponentRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *ComponentService {
	return &ComponentService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// NormalizeComponent lowercases and validates a component name
func NormalizeComponent(component string) (string, error) {
	c := strings.ToLower(strings.TrimSpace(component))
	if !models.IsComponent(c) {
		return "", models.NewValidationError("component", component, "must be one of saga, sewr, osma, xcri")
	}
	return c, nil
}

// GetAthleteComponents retrieves an athlete's breakdown; nil means absent
func (s *ComponentService) GetAthleteComponents(ctx context.Context, athleteID int64, c ranking.Context) (*models.ComponentBreakdown, error) {
	return s.repo.Get(ctx, athleteID, c)
}

// GetAthletesComponents retrieves breakdowns for several athletes at once.
// Duplicate ids are collapsed; athletes without a breakdown are omitted.
func (s *ComponentService) GetAthletesComponents(ctx context.Context, athleteIDs []int64, c ranking.Context) ([]models.ComponentBreakdown, error) {
	ids := slices.Clone(athleteIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	if len(ids) == 0 {
		return nil, models.NewValidationError("ids", "", "at least one athlete id is required")
	}
	if len(ids) > MaxBatchAthletes {
		return nil, models.NewValidationError("ids", strconv.Itoa(len(ids)), "at most "+strconv.Itoa(MaxBatchAthletes)+" athlete ids per request")
	}

	return s.repo.ForAthletes(ctx, ids, c)
}

// GetLeaderboard lists the athletes scored on one component, best rank first
func (s *ComponentService) GetLeaderboard(ctx context.Context, component string, c ranking.Context, f ranking.Filter, page ranking.Page) ([]models.LeaderboardEntry, int, error) {
	name, err := NormalizeComponent(component)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.Leaderboard(ctx, name, c, f, page)
}

// CompareAthlete places an athlete within the field for every component.
// A nil result means the athlete has no breakdown in the context.
func (s *ComponentService) CompareAthlete(ctx context.Context, athleteID int64, c ranking.Context) (*models.ComponentComparison, error) {
	breakdown, err := s.repo.Get(ctx, athleteID, c)
	if err != nil || breakdown == nil {
		return nil, err
	}

	totals, err := s.repo.Totals(ctx, c)
	if err != nil {
		return nil, err
	}

	comparison := &models.ComponentComparison{
		AnetAthleteHnd: breakdown.AnetAthleteHnd,
		AthleteName:    fullName(breakdown.AthleteNameFirst, breakdown.AthleteNameLast),
		TeamName:       breakdown.TeamName,
		SeasonYear:     breakdown.SeasonYear,
		DivisionCode:   breakdown.DivisionCode,
		GenderCode:     breakdown.GenderCode,
		TotalAthletes:  totals.Athletes,
		RacesUsed:      breakdown.RacesUsed,
		TotalOpponents: breakdown.TotalOpponents,
		Components:     make([]models.ComponentStanding, 0, len(models.Components)),
	}

	for _, name := range models.Components {
		score, rank := breakdown.ScoreAndRank(name)
		total := totals.For(name)
		comparison.Components = append(comparison.Components, models.ComponentStanding{
			Component:   name,
			Description: models.ComponentDescriptions[name],
			Score:       score,
			Rank:        rank,
			Total:       total,
			Percentile:  Percentile(rank, total),
		})
	}

	return comparison, nil
}

// GetDistribution summarises the spread of one component's scores
func (s *ComponentService) GetDistribution(ctx context.Context, component string, c ranking.Context) (*models.ComponentDistribution, error) {
	name, err := NormalizeComponent(component)
	if err != nil {
		return nil, err
	}
	return s.repo.Distribution(ctx, name, c)
}

// GetDiscrepancy compares an athlete's ranking and component ranks
func (s *ComponentService) GetDiscrepancy(context.Context, int64, ranking.Context) (interface{}, error) {
	return nil, models.ErrNotImplemented
}

// BiggestDiscrepancies lists the athletes whose ranks disagree the most
func (s *ComponentService) BiggestDiscrepancies(context.Context, ranking.Context, ranking.Page) (interface{}, error) {
	return nil, models.ErrNotImplemented
}

// Percentile is the share of the field ranked below rank, rounded to one
// decimal place. Rank 1 of 1 is 0.
func Percentile(rank *int, total int) *float64 {
	if rank == nil || total <= 0 {
		return nil
	}
	p := math.Round((1-float64(*rank)/float64(total))*1000) / 10
	return &p
}

func fullName(first, last *string) string {
	var parts []string
	for _, p := range []*string{first, last} {
		if p != nil && strings.TrimSpace(*p) != "" {
			parts = append(parts, strings.TrimSpace(*p))
		}
	}
	return strings.Join(parts, " ")
}
