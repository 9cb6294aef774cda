package services

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"xcri-rankings/internal/models"
	"xcri-rankings/internal/repository"
	"xcri-rankings/pkg/logging"
	"xcri-rankings/pkg/metrics"
)

// maxConcurrentCounts bounds the table counts run at once
const maxConcurrentCounts = 3

// HealthService reports store reachability and table sizes
type HealthService struct {
	repo    repository.HealthRepository
	version string
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
	now     func() time.Time
}

// NewHealthService creates a new health service
func NewHealthService(repo repository.HealthRepository, version string, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *HealthService {
	return &HealthService{
		repo:    repo,
		version: version,
		logger:  logger,
		metrics: metricsCollector,
		now:     time.Now,
	}
}

// Check pings the store and counts every ranking table. A failed ping is
// unhealthy; a failed count is degraded and omits that table.
func (s *HealthService) Check(ctx context.Context) models.HealthStatus {
	status := models.HealthStatus{
		Status:         models.HealthHealthy,
		APIVersion:     s.version,
		DatabaseTables: map[string]int64{},
		Timestamp:      s.now().UTC(),
	}

	if err := s.repo.Ping(ctx); err != nil {
		s.logger.Error(ctx, "[HEALTH] Database unreachable", nil, err)
		status.Status = models.HealthUnhealthy
		return status
	}
	status.DatabaseConnected = true

	var (
		mu     sync.Mutex
		failed int
		g      errgroup.Group
	)
	g.SetLimit(maxConcurrentCounts)

	for _, table := range repository.HealthTables {
		g.Go(func() error {
			n, err := s.repo.CountRows(ctx, table)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				s.logger.Warn(ctx, "[HEALTH] Table count failed", logging.Fields{
					"table": table,
					"error": err.Error(),
				})
				return nil
			}
			status.DatabaseTables[table] = n
			return nil
		})
	}
	_ = g.Wait()

	if failed > 0 {
		status.Status = models.HealthDegraded
	}
	return status
}
