package insights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/aquafarm/internal/domain/models"
)

type fakeSource struct {
	logs     []models.DailyLogEntry
	samples  []models.WeightSample
	harvests []models.HarvestEvent
	err      error
}

func (f *fakeSource) ListDailyLogs(context.Context, string) ([]models.DailyLogEntry, error) {
	return f.logs, f.err
}

func (f *fakeSource) ListWeightSamples(context.Context, string) ([]models.WeightSample, error) {
	return f.samples, nil
}

func (f *fakeSource) ListHarvests(context.Context, string) ([]models.HarvestEvent, error) {
	return f.harvests, nil
}

func TestLoadEventsOrdersAndScopes(t *testing.T) {
	src := &fakeSource{
		logs: []models.DailyLogEntry{
			{ID: "l3", BatchID: "b1", Date: day(3)},
			{ID: "l1", BatchID: "b1", Date: day(1)},
			{ID: "other", BatchID: "b2", Date: day(1)},
		},
		samples: []models.WeightSample{
			{ID: "s-late", BatchID: "b1", Date: day(2), FishWeighed: 10, TotalWeightKg: 2},
			{ID: "s-first", BatchID: "b1", Date: day(1), FishWeighed: 10, TotalWeightKg: 1},
			{ID: "s-late-2", BatchID: "b1", Date: day(2).Add(time.Hour), FishWeighed: 10, TotalWeightKg: 3},
		},
	}

	events, err := LoadEvents(context.Background(), src, "b1")
	require.NoError(t, err)

	require.Len(t, events.DailyLogs, 2)
	assert.Equal(t, "l1", events.DailyLogs[0].ID)
	assert.Equal(t, "l3", events.DailyLogs[1].ID)

	require.Len(t, events.Samples, 3)
	assert.Equal(t, []string{"s-first", "s-late", "s-late-2"},
		[]string{events.Samples[0].ID, events.Samples[1].ID, events.Samples[2].ID})

	assert.NotNil(t, events.Harvests)
	assert.Empty(t, events.Harvests)
	assert.False(t, events.Empty())
}

func TestLoadEventsEmpty(t *testing.T) {
	events, err := LoadEvents(context.Background(), &fakeSource{}, "b1")
	require.NoError(t, err)
	assert.True(t, events.Empty())
}

func TestLoadEventsRejectsMissingDate(t *testing.T) {
	src := &fakeSource{harvests: []models.HarvestEvent{{ID: "h1", BatchID: "b1", Quantity: 5}}}

	_, err := LoadEvents(context.Background(), src, "b1")
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestLoadEventsPropagatesSourceError(t *testing.T) {
	boom := errors.New("connection reset")

	_, err := LoadEvents(context.Background(), &fakeSource{err: boom}, "b1")
	assert.ErrorIs(t, err, boom)
}
