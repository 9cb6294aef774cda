package repository

import (
	"context"
	"fmt"
	"slices"

	"xcri-rankings/pkg/database"
	"xcri-rankings/pkg/logging"
	"xcri-rankings/pkg/metrics"
)

// HealthRepository reports store reachability and table sizes
type HealthRepository interface {
	Ping(ctx context.Context) error
	CountRows(ctx context.Context, table string) (int64, error)
}

type healthRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewHealthRepository creates a new health repository
func NewHealthRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) HealthRepository {
	return &healthRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Ping checks the connection
func (r *healthRepository) Ping(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// CountRows counts one of the HealthTables
func (r *healthRepository) CountRows(ctx context.Context, table string) (int64, error) {
	if !slices.Contains(HealthTables, table) {
		return 0, fmt.Errorf("table %q is not countable", table)
	}

	var n int64
	if err := r.db.GetContext(ctx, "count_"+table, &n, "SELECT COUNT(*) FROM "+table); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}
