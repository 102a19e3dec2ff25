package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/aquafarm/internal/domain/models"
	"github.com/mamadbah2/aquafarm/internal/service/insights"
)

// InsightsService is the subset of the insights service exposed over HTTP.
type InsightsService interface {
	Generate(ctx context.Context, batchID string) ([]models.DailyKPIRow, error)
	Stored(ctx context.Context, batchID string) ([]models.DailyKPIRow, error)
	Export(ctx context.Context, batchID string) (int, error)
}

// InsightsHandler serves batch performance insights.
type InsightsHandler struct {
	svc    InsightsService
	logger *zap.Logger
}

// NewInsightsHandler constructs the HTTP handler adapter.
func NewInsightsHandler(svc InsightsService, logger *zap.Logger) *InsightsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InsightsHandler{svc: svc, logger: logger}
}

// PerformanceInsights computes, stores and returns the daily KPI series of a batch.
func (h *InsightsHandler) PerformanceInsights(c *gin.Context) {
	batchID := c.Param("batchId")

	rows, err := h.svc.Generate(c.Request.Context(), batchID)
	if err != nil {
		h.fail(c, batchID, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}

// Stored returns the last persisted series without recomputing it.
func (h *InsightsHandler) Stored(c *gin.Context) {
	batchID := c.Param("batchId")

	rows, err := h.svc.Stored(c.Request.Context(), batchID)
	if err != nil {
		h.fail(c, batchID, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}

// Export pushes the series to the spreadsheet.
func (h *InsightsHandler) Export(c *gin.Context) {
	batchID := c.Param("batchId")

	n, err := h.svc.Export(c.Request.Context(), batchID)
	if err != nil {
		h.fail(c, batchID, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"batch_id": batchID, "rows": n})
}

func (h *InsightsHandler) fail(c *gin.Context, batchID string, err error) {
	switch {
	case errors.Is(err, insights.ErrBatchNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
	case errors.Is(err, insights.ErrExportDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "spreadsheet export is not configured"})
	default:
		h.logger.Error("insights request failed", zap.String("batch_id", batchID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute insights"})
	}
}
