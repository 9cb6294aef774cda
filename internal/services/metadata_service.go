package services

import (
	"context"

	"xcri-rankings/internal/models"
	"xcri-rankings/internal/ranking"
	"xcri-rankings/internal/repository"
	"xcri-rankings/pkg/logging"
	"xcri-rankings/pkg/metrics"
)

// MetadataService handles calculation run reads
type MetadataService struct {
	repo    repository.MetadataRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewMetadataService creates a new metadata service
func NewMetadataService(repo repository.MetadataRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *MetadataService {
	return &MetadataService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// ListMetadata retrieves calculation runs newest first
func (s *MetadataService) ListMetadata(ctx context.Context, c ranking.Context, page ranking.Page) ([]models.CalculationMetadata, int, error) {
	return s.repo.List(ctx, c, page)
}

// LatestMetadata retrieves the newest live run per division and gender
func (s *MetadataService) LatestMetadata(ctx context.Context) ([]models.CalculationMetadata, error) {
	return s.repo.Latest(ctx)
}

// GetMetadata retrieves one run; nil means absent
func (s *MetadataService) GetMetadata(ctx context.Context, metadataID int64) (*models.CalculationMetadata, error) {
	return s.repo.Get(ctx, metadataID)
}

// ProcessingSummary aggregates every live run
func (s *MetadataService) ProcessingSummary(ctx context.Context) (*models.ProcessingSummary, error) {
	return s.repo.Summary(ctx)
}
