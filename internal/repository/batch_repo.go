// Package repository persists the operational record of generation jobs.
package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/garyjia/invoice-variants/internal/models"
	"go.uber.org/zap"
)

// BatchRepository handles batch record database operations
type BatchRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewBatchRepository creates a new batch repository
func NewBatchRepository(db *sql.DB, logger *zap.Logger) *BatchRepository {
	return &BatchRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new batch record
func (r *BatchRepository) Create(record *models.BatchRecord) error {
	query := `
		INSERT INTO batches (
			id, state, number_of_variants, succeeded, failed, seed,
			merged_document_path, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		record.ID,
		record.State,
		record.NumberOfVariants,
		record.Succeeded,
		record.Failed,
		record.Seed,
		record.MergedDocumentPath,
		record.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create batch record", zap.String("batch_id", record.ID), zap.Error(err))
		return fmt.Errorf("failed to create batch record: %w", err)
	}

	return nil
}

// UpdateOutcome records a batch's terminal state and counters
func (r *BatchRepository) UpdateOutcome(id, state string, succeeded, failed int, seed int64, mergedPath string, completedAt time.Time) error {
	query := `
		UPDATE batches
		SET state = ?, succeeded = ?, failed = ?, seed = ?, merged_document_path = ?, completed_at = ?
		WHERE id = ?
	`

	_, err := r.db.Exec(query, state, succeeded, failed, seed, mergedPath, completedAt, id)
	if err != nil {
		r.logger.Error("Failed to update batch outcome", zap.String("batch_id", id), zap.Error(err))
		return fmt.Errorf("failed to update batch outcome: %w", err)
	}

	return nil
}

// GetByID retrieves a batch record, or nil when it does not exist
func (r *BatchRepository) GetByID(id string) (*models.BatchRecord, error) {
	query := `
		SELECT id, state, number_of_variants, succeeded, failed, seed,
			merged_document_path, created_at, completed_at
		FROM batches
		WHERE id = ?
	`

	var record models.BatchRecord
	var mergedPath sql.NullString
	var completedAt sql.NullTime

	err := r.db.QueryRow(query, id).Scan(
		&record.ID,
		&record.State,
		&record.NumberOfVariants,
		&record.Succeeded,
		&record.Failed,
		&record.Seed,
		&mergedPath,
		&record.CreatedAt,
		&completedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get batch record", zap.String("batch_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get batch record: %w", err)
	}

	if mergedPath.Valid {
		record.MergedDocumentPath = mergedPath.String
	}
	if completedAt.Valid {
		record.CompletedAt = &completedAt.Time
	}

	return &record, nil
}

// ListRecent returns the most recently created batch records
func (r *BatchRepository) ListRecent(limit int) ([]*models.BatchRecord, error) {
	query := `
		SELECT id, state, number_of_variants, succeeded, failed, seed,
			merged_document_path, created_at, completed_at
		FROM batches
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list batch records: %w", err)
	}
	defer rows.Close()

	var records []*models.BatchRecord
	for rows.Next() {
		var record models.BatchRecord
		var mergedPath sql.NullString
		var completedAt sql.NullTime

		if err := rows.Scan(
			&record.ID,
			&record.State,
			&record.NumberOfVariants,
			&record.Succeeded,
			&record.Failed,
			&record.Seed,
			&mergedPath,
			&record.CreatedAt,
			&completedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan batch record: %w", err)
		}

		if mergedPath.Valid {
			record.MergedDocumentPath = mergedPath.String
		}
		if completedAt.Valid {
			record.CompletedAt = &completedAt.Time
		}
		records = append(records, &record)
	}

	return records, rows.Err()
}
