// Package service runs generation jobs end to end: allocate the batch
// identity and output folder, drive the pipeline, and record the outcome
// for operational lookup. The pipeline itself stays stateless.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/garyjia/invoice-variants/internal/models"
	"github.com/garyjia/invoice-variants/internal/pipeline"
	"github.com/garyjia/invoice-variants/internal/repository"
	"github.com/garyjia/invoice-variants/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BatchService coordinates batch generation jobs.
type BatchService struct {
	pipeline *pipeline.Pipeline
	repo     *repository.BatchRepository
	folders  *storage.FolderManager
	logger   *zap.Logger
}

// NewBatchService creates a batch service.
func NewBatchService(
	p *pipeline.Pipeline,
	repo *repository.BatchRepository,
	folders *storage.FolderManager,
	logger *zap.Logger,
) *BatchService {
	return &BatchService{
		pipeline: p,
		repo:     repo,
		folders:  folders,
		logger:   logger,
	}
}

// Generate runs one batch job. The batch record outlives the job either
// way: a failed batch is recorded as failed, not erased.
func (s *BatchService) Generate(ctx context.Context, payload *models.GenerateVariantsPayload) (*models.BatchResult, error) {
	batchID := uuid.NewString()

	outputDir, err := s.folders.CreateBatchFolder(batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare batch folder: %w", err)
	}

	record := &models.BatchRecord{
		ID:               batchID,
		State:            pipeline.StateValidating.String(),
		NumberOfVariants: payload.NumberOfVariants,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.repo.Create(record); err != nil {
		return nil, err
	}

	result, err := s.pipeline.Generate(ctx, payload, pipeline.Options{
		BatchID:   batchID,
		OutputDir: outputDir,
	})

	completedAt := time.Now().UTC()
	if err != nil {
		succeeded, failed := 0, payload.NumberOfVariants
		var seed int64
		if result != nil {
			succeeded = len(result.Invoices)
			failed = len(result.Failures)
			seed = result.Seed
		}
		if updateErr := s.repo.UpdateOutcome(
			batchID, pipeline.StateFailed.String(), succeeded, failed, seed, "", completedAt,
		); updateErr != nil {
			s.logger.Error("Failed to record batch failure",
				zap.String("batch_id", batchID), zap.Error(updateErr))
		}
		return result, err
	}

	if updateErr := s.repo.UpdateOutcome(
		batchID, result.State, len(result.Invoices), len(result.Failures),
		result.Seed, result.MergedDocumentPath, completedAt,
	); updateErr != nil {
		s.logger.Error("Failed to record batch outcome",
			zap.String("batch_id", batchID), zap.Error(updateErr))
	}

	return result, nil
}

// GetBatch returns the recorded outcome of a batch, or nil when unknown.
func (s *BatchService) GetBatch(ctx context.Context, id string) (*models.BatchRecord, error) {
	return s.repo.GetByID(id)
}

// ListBatches returns the most recent batch records.
func (s *BatchService) ListBatches(ctx context.Context, limit int) ([]*models.BatchRecord, error) {
	return s.repo.ListRecent(limit)
}
