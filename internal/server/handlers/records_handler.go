package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/aquafarm/internal/domain/models"
	"github.com/mamadbah2/aquafarm/internal/service/records"
)

// RecordsService is the ingestion API used by the records handler.
type RecordsService interface {
	SyncBatch(ctx context.Context, req models.BatchSyncRequest) (models.Batch, error)
	AddDailyLog(ctx context.Context, batchID string, in models.DailyLogInput) (models.DailyLogEntry, error)
	AddWeightSample(ctx context.Context, batchID string, in models.WeightSampleInput) (models.WeightSample, error)
	AddHarvest(ctx context.Context, batchID string, in models.HarvestInput) (models.HarvestEvent, error)
}

// RecordsHandler accepts batch and event submissions.
type RecordsHandler struct {
	svc    RecordsService
	logger *zap.Logger
}

// NewRecordsHandler constructs the HTTP handler adapter.
func NewRecordsHandler(svc RecordsService, logger *zap.Logger) *RecordsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordsHandler{svc: svc, logger: logger}
}

// SyncBatch stores a batch together with its nested records.
func (h *RecordsHandler) SyncBatch(c *gin.Context) {
	var req models.BatchSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid batch payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	batch, err := h.svc.SyncBatch(c.Request.Context(), req)
	if err != nil {
		h.fail(c, req.BatchID, err)
		return
	}

	c.JSON(http.StatusCreated, batch)
}

// AddDailyLog records a daily feeding and mortality entry.
func (h *RecordsHandler) AddDailyLog(c *gin.Context) {
	var in models.DailyLogInput
	if !h.bind(c, &in) {
		return
	}
	h.create(c, func(ctx context.Context, batchID string) (any, error) {
		return h.svc.AddDailyLog(ctx, batchID, in)
	})
}

// AddWeightSample records a weight sampling.
func (h *RecordsHandler) AddWeightSample(c *gin.Context) {
	var in models.WeightSampleInput
	if !h.bind(c, &in) {
		return
	}
	h.create(c, func(ctx context.Context, batchID string) (any, error) {
		return h.svc.AddWeightSample(ctx, batchID, in)
	})
}

// AddHarvest records a harvest.
func (h *RecordsHandler) AddHarvest(c *gin.Context) {
	var in models.HarvestInput
	if !h.bind(c, &in) {
		return
	}
	h.create(c, func(ctx context.Context, batchID string) (any, error) {
		return h.svc.AddHarvest(ctx, batchID, in)
	})
}

func (h *RecordsHandler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.logger.Warn("invalid record payload", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}

func (h *RecordsHandler) create(c *gin.Context, save func(ctx context.Context, batchID string) (any, error)) {
	batchID := c.Param("batchId")

	record, err := save(c.Request.Context(), batchID)
	if err != nil {
		h.fail(c, batchID, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

func (h *RecordsHandler) fail(c *gin.Context, batchID string, err error) {
	switch {
	case errors.Is(err, records.ErrInvalidRecord):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
	default:
		h.logger.Error("failed to store records", zap.String("batch_id", batchID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store records"})
	}
}
