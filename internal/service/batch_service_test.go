package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/invoice-variants/internal/models"
	"github.com/garyjia/invoice-variants/internal/money"
	"github.com/garyjia/invoice-variants/internal/pipeline"
	"github.com/garyjia/invoice-variants/internal/render"
	"github.com/garyjia/invoice-variants/internal/repository"
	"github.com/garyjia/invoice-variants/internal/storage"
	"github.com/garyjia/invoice-variants/pkg/database"
)

func setupService(t *testing.T) *BatchService {
	t.Helper()

	logger := zap.NewNop()
	tempDir := t.TempDir()

	db, err := database.New(database.Config{
		Path:            filepath.Join(tempDir, "test.db"),
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.NewMigrator(db, logger).Run())

	engine := pipeline.New(pipeline.Config{
		MaxVariants:    50,
		MaxFluctuation: 50,
		Workers:        2,
	}, render.NewExcelRenderer(logger), render.NewExcelMerger(logger), logger)

	return NewBatchService(
		engine,
		repository.NewBatchRepository(db.DB, logger),
		storage.NewFolderManager(filepath.Join(tempDir, "batches"), logger),
		logger,
	)
}

func servicePayload() *models.GenerateVariantsPayload {
	seed := int64(7)
	return &models.GenerateVariantsPayload{
		NumberOfVariants: 2,
		MarginType:       models.MarginPercentage,
		MarginValue:      decimal.RequireFromString("10"),
		RoundingRule:     money.RoundNearest,
		Seed:             &seed,
		InvoiceMeta: models.InvoiceMeta{
			Currency:      "USD",
			InvoiceNumber: "INV-SVC",
		},
		BaseInvoice: models.NormalizedInvoice{
			Items: []models.BaseInvoiceItem{
				{Description: "Widget", Quantity: 2, UnitPrice: decimal.RequireFromString("5.00")},
			},
		},
	}
}

func TestBatchService_Generate_RecordsOutcome(t *testing.T) {
	svc := setupService(t)

	result, err := svc.Generate(context.Background(), servicePayload())
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, pipeline.StateCompleted.String(), result.State)
	assert.FileExists(t, result.MergedDocumentPath)

	record, err := svc.GetBatch(context.Background(), result.BatchID)
	require.NoError(t, err)
	require.NotNil(t, record)

	assert.Equal(t, pipeline.StateCompleted.String(), record.State)
	assert.Equal(t, 2, record.Succeeded)
	assert.Equal(t, 0, record.Failed)
	assert.Equal(t, int64(7), record.Seed)
	assert.Equal(t, result.MergedDocumentPath, record.MergedDocumentPath)
	require.NotNil(t, record.CompletedAt)
}

func TestBatchService_Generate_RecordsFailure(t *testing.T) {
	svc := setupService(t)

	payload := servicePayload()
	payload.MarginType = "BOGUS"

	result, err := svc.Generate(context.Background(), payload)
	require.Error(t, err)
	assert.Nil(t, result)

	records, listErr := svc.ListBatches(context.Background(), 10)
	require.NoError(t, listErr)
	require.Len(t, records, 1)
	assert.Equal(t, pipeline.StateFailed.String(), records[0].State)
	require.NotNil(t, records[0].CompletedAt)
}

func TestBatchService_GetBatch_Unknown(t *testing.T) {
	svc := setupService(t)

	record, err := svc.GetBatch(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, record)
}
