package insights

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/aquafarm/internal/domain/models"
	"github.com/mamadbah2/aquafarm/internal/metrics"
)

type fakeStore struct {
	fakeSource
	batches   map[string]models.Batch
	upserted  map[string][]models.DailyKPIRow
	upsertErr error
	listErr   error
}

func newFakeStore(batches ...models.Batch) *fakeStore {
	s := &fakeStore{batches: make(map[string]models.Batch), upserted: make(map[string][]models.DailyKPIRow)}
	for _, b := range batches {
		s.batches[b.BatchID] = b
	}
	return s
}

func (s *fakeStore) FindBatch(_ context.Context, batchID string) (models.Batch, error) {
	b, ok := s.batches[batchID]
	if !ok {
		return models.Batch{}, fmt.Errorf("batch %s: %w", batchID, models.ErrNotFound)
	}
	return b, nil
}

func (s *fakeStore) ListActiveBatches(context.Context) ([]models.Batch, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.Batch
	for _, id := range []string{"b1", "b2", "b3"} {
		if b, ok := s.batches[id]; ok && !b.IsCompleted {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeStore) UpsertInsights(_ context.Context, batchID string, rows []models.DailyKPIRow) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserted[batchID] = rows
	return nil
}

func (s *fakeStore) ListInsights(_ context.Context, batchID string) ([]models.DailyKPIRow, error) {
	return s.upserted[batchID], nil
}

type fakeExporter struct {
	batchID string
	rows    []models.DailyKPIRow
}

func (e *fakeExporter) Export(_ context.Context, batchID string, rows []models.DailyKPIRow) error {
	e.batchID = batchID
	e.rows = rows
	return nil
}

type fakeRecorder struct {
	outcomes []string
	rows     int
}

func (r *fakeRecorder) ObserveRun(outcome string, _ time.Duration, rows int) {
	r.outcomes = append(r.outcomes, outcome)
	r.rows += rows
}

func seededStore() *fakeStore {
	store := newFakeStore(models.Batch{BatchID: "b1", NumberOfFishes: 1000, AverageBodyWeight: 50})
	store.logs = []models.DailyLogEntry{
		{ID: "l1", BatchID: "b1", Date: day(1), FeedKg: 5},
		{ID: "l2", BatchID: "b1", Date: day(3), FeedKg: 6, Mortality: 10},
	}
	store.samples = []models.WeightSample{{ID: "s1", BatchID: "b1", Date: day(1), FishWeighed: 100, TotalWeightKg: 6}}
	return store
}

func TestServiceGenerate(t *testing.T) {
	store := seededStore()
	recorder := &fakeRecorder{}
	svc := NewService(store, nil, recorder, nil)

	rows, err := svc.Generate(context.Background(), "b1")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, rows, store.upserted["b1"])
	assert.Equal(t, []string{metrics.OutcomeOK}, recorder.outcomes)
	assert.Equal(t, 3, recorder.rows)

	stored, err := svc.Stored(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, rows, stored)
}

func TestServiceUnknownBatch(t *testing.T) {
	store := newFakeStore()
	recorder := &fakeRecorder{}
	svc := NewService(store, nil, recorder, nil)

	_, err := svc.Generate(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrBatchNotFound)
	assert.Empty(t, store.upserted)
	assert.Equal(t, []string{metrics.OutcomeNotFound}, recorder.outcomes)

	_, err = svc.Stored(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrBatchNotFound)
}

func TestServiceBatchWithoutEvents(t *testing.T) {
	store := newFakeStore(models.Batch{BatchID: "b1", NumberOfFishes: 10})
	svc := NewService(store, nil, nil, nil)

	rows, err := svc.Generate(context.Background(), "b1")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestServiceComputeDoesNotPersist(t *testing.T) {
	store := seededStore()
	svc := NewService(store, nil, nil, nil)

	rows, err := svc.Compute(context.Background(), "b1")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Empty(t, store.upserted)
}

func TestServiceGenerateStoreFailure(t *testing.T) {
	store := seededStore()
	store.upsertErr = errors.New("write conflict")
	svc := NewService(store, nil, nil, nil)

	_, err := svc.Generate(context.Background(), "b1")
	assert.ErrorIs(t, err, store.upsertErr)
}

func TestServiceExport(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		svc := NewService(seededStore(), nil, nil, nil)
		_, err := svc.Export(context.Background(), "b1")
		assert.ErrorIs(t, err, ErrExportDisabled)
	})

	t.Run("exports generated rows", func(t *testing.T) {
		exporter := &fakeExporter{}
		svc := NewService(seededStore(), exporter, nil, nil)

		n, err := svc.Export(context.Background(), "b1")
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Equal(t, "b1", exporter.batchID)
		assert.Len(t, exporter.rows, 3)
	})
}

func TestServiceRefreshActive(t *testing.T) {
	store := seededStore()
	store.batches["b2"] = models.Batch{BatchID: "b2", IsCompleted: true}
	store.batches["b3"] = models.Batch{BatchID: "b3", NumberOfFishes: 20}
	svc := NewService(store, nil, nil, nil)

	summary, err := svc.RefreshActive(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Refreshed)
	assert.Empty(t, summary.Failures)
	require.Len(t, summary.Latest, 1, "b3 has no events so it yields no latest row")
	assert.Equal(t, "2025-03-03", summary.Latest[0].Date)
	assert.Contains(t, store.upserted, "b3")
	assert.NotContains(t, store.upserted, "b2")
}

func TestServiceRefreshActiveKeepsGoing(t *testing.T) {
	store := seededStore()
	store.batches["b3"] = models.Batch{BatchID: "b3"}
	store.upsertErr = errors.New("disk full")
	svc := NewService(store, nil, nil, nil)

	summary, err := svc.RefreshActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Refreshed)
	assert.Len(t, summary.Failures, 2)
	assert.ErrorContains(t, summary.Failures["b3"], "disk full")
}

func TestServiceRefreshActiveRunErrors(t *testing.T) {
	store := seededStore()
	store.listErr = errors.New("no primary")

	_, err := NewService(store, nil, nil, nil).RefreshActive(context.Background())
	assert.ErrorContains(t, err, "list active batches")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary, err := NewService(seededStore(), nil, nil, nil).RefreshActive(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, summary.Refreshed)
}
