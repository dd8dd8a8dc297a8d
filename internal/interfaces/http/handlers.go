package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/garyjia/invoice-variants/internal/models"
	"github.com/garyjia/invoice-variants/internal/pipeline"
	"github.com/garyjia/invoice-variants/internal/service"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	batchService *service.BatchService
	logger       *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(batchService *service.BatchService, logger *zap.Logger) *Handlers {
	return &Handlers{
		batchService: batchService,
		logger:       logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ListBatchesRequest represents query parameters for listing batches
type ListBatchesRequest struct {
	Limit int `form:"limit"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// GenerateBatch handles POST /api/batches
func (h *Handlers) GenerateBatch(c *gin.Context) {
	var payload models.GenerateVariantsPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Error("Invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	result, err := h.batchService.Generate(c.Request.Context(), &payload)
	if err != nil {
		h.writeGenerateError(c, result, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    result,
	})
}

// writeGenerateError maps engine errors onto HTTP status codes
func (h *Handlers) writeGenerateError(c *gin.Context, result *models.BatchResult, err error) {
	var validationErr *pipeline.ValidationError
	var computationErr *pipeline.ComputationError
	var renderErr *pipeline.RenderError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
	case errors.As(err, &computationErr):
		c.JSON(http.StatusUnprocessableEntity, Response{Success: false, Error: err.Error()})
	case errors.As(err, &renderErr):
		// The batch failed under its failure policy; the partial result
		// still tells the caller which variants broke.
		c.JSON(http.StatusUnprocessableEntity, Response{
			Success: false,
			Data:    result,
			Error:   err.Error(),
		})
	default:
		h.logger.Error("Batch generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "batch generation failed"})
	}
}

// GetBatch handles GET /api/batches/:id
func (h *Handlers) GetBatch(c *gin.Context) {
	id := c.Param("id")

	record, err := h.batchService.GetBatch(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get batch", zap.String("batch_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to retrieve batch",
		})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, Response{
			Success: false,
			Error:   "batch not found",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    record,
	})
}

// ListBatches handles GET /api/batches
func (h *Handlers) ListBatches(c *gin.Context) {
	var req ListBatchesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid query parameters",
		})
		return
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}

	records, err := h.batchService.ListBatches(c.Request.Context(), req.Limit)
	if err != nil {
		h.logger.Error("Failed to list batches", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to retrieve batches",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    records,
	})
}
