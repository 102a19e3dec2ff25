package insights

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/aquafarm/internal/domain/models"
	"github.com/mamadbah2/aquafarm/internal/metrics"
)

var (
	// ErrBatchNotFound indicates the batch key does not resolve to a batch.
	ErrBatchNotFound = errors.New("batch not found")

	// ErrExportDisabled indicates no spreadsheet exporter is configured.
	ErrExportDisabled = errors.New("spreadsheet export disabled")
)

// Store is the record store and KPI sink the service works against.
type Store interface {
	EventSource
	FindBatch(ctx context.Context, batchID string) (models.Batch, error)
	ListActiveBatches(ctx context.Context) ([]models.Batch, error)
	UpsertInsights(ctx context.Context, batchID string, rows []models.DailyKPIRow) error
	ListInsights(ctx context.Context, batchID string) ([]models.DailyKPIRow, error)
}

// Exporter publishes a batch's KPI rows outside the database.
type Exporter interface {
	Export(ctx context.Context, batchID string, rows []models.DailyKPIRow) error
}

// Recorder receives run measurements.
type Recorder interface {
	ObserveRun(outcome string, elapsed time.Duration, rows int)
}

// Service computes, stores and publishes batch performance insights.
type Service struct {
	store    Store
	exporter Exporter
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a new insights service. exporter and recorder may be nil.
func NewService(store Store, exporter Exporter, recorder Recorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		exporter: exporter,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// Compute builds the daily KPI series of a batch without persisting it.
func (s *Service) Compute(ctx context.Context, batchID string) ([]models.DailyKPIRow, error) {
	start := s.now()

	batch, err := s.store.FindBatch(ctx, batchID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.observe(metrics.OutcomeNotFound, start, 0)
			return nil, fmt.Errorf("%w: %s", ErrBatchNotFound, batchID)
		}
		s.observe(metrics.OutcomeError, start, 0)
		return nil, fmt.Errorf("find batch %s: %w", batchID, err)
	}

	events, err := LoadEvents(ctx, s.store, batch.BatchID)
	if err != nil {
		s.observe(metrics.OutcomeError, start, 0)
		return nil, fmt.Errorf("load events for batch %s: %w", batchID, err)
	}

	rows := Walk(SeedFromBatch(batch), BuildIndex(events))
	s.observe(metrics.OutcomeOK, start, len(rows))

	fields := []zap.Field{
		zap.String("batch_id", batchID),
		zap.Int("rows", len(rows)),
		zap.Duration("duration", s.now().Sub(start)),
	}
	if len(rows) > 0 {
		fields = append(fields, zap.String("from", rows[0].Date), zap.String("to", rows[len(rows)-1].Date))
	}
	s.logger.Debug("insights computed", fields...)

	return rows, nil
}

// Generate computes the series and upserts it into the store.
func (s *Service) Generate(ctx context.Context, batchID string) ([]models.DailyKPIRow, error) {
	rows, err := s.Compute(ctx, batchID)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpsertInsights(ctx, batchID, rows); err != nil {
		return nil, fmt.Errorf("store insights for batch %s: %w", batchID, err)
	}

	s.logger.Info("insights generated", zap.String("batch_id", batchID), zap.Int("rows", len(rows)))
	return rows, nil
}

// Stored returns the rows persisted by the last Generate call.
func (s *Service) Stored(ctx context.Context, batchID string) ([]models.DailyKPIRow, error) {
	if _, err := s.store.FindBatch(ctx, batchID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBatchNotFound, batchID)
		}
		return nil, fmt.Errorf("find batch %s: %w", batchID, err)
	}

	rows, err := s.store.ListInsights(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("list insights for batch %s: %w", batchID, err)
	}
	return rows, nil
}

// Export regenerates the series and pushes it to the spreadsheet exporter.
func (s *Service) Export(ctx context.Context, batchID string) (int, error) {
	if s.exporter == nil {
		return 0, ErrExportDisabled
	}

	rows, err := s.Generate(ctx, batchID)
	if err != nil {
		return 0, err
	}

	if err := s.exporter.Export(ctx, batchID, rows); err != nil {
		return 0, fmt.Errorf("export insights for batch %s: %w", batchID, err)
	}
	return len(rows), nil
}

// RefreshSummary reports the outcome of RefreshActive.
type RefreshSummary struct {
	Refreshed int
	Latest    []models.DailyKPIRow
	Failures  map[string]error
}

// RefreshActive regenerates every batch that is not completed. A failing batch does
// not stop the others; its error is kept in the summary.
func (s *Service) RefreshActive(ctx context.Context) (RefreshSummary, error) {
	batches, err := s.store.ListActiveBatches(ctx)
	if err != nil {
		return RefreshSummary{}, fmt.Errorf("list active batches: %w", err)
	}

	summary := RefreshSummary{Failures: make(map[string]error)}
	for _, batch := range batches {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		rows, err := s.Generate(ctx, batch.BatchID)
		if err != nil {
			s.logger.Warn("batch refresh failed", zap.String("batch_id", batch.BatchID), zap.Error(err))
			summary.Failures[batch.BatchID] = err
			continue
		}

		summary.Refreshed++
		if len(rows) > 0 {
			summary.Latest = append(summary.Latest, rows[len(rows)-1])
		}
	}

	return summary, nil
}

func (s *Service) observe(outcome string, start time.Time, rows int) {
	if s.recorder == nil {
		return
	}
	s.recorder.ObserveRun(outcome, s.now().Sub(start), rows)
}
