package insights

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/mamadbah2/aquafarm/internal/domain/models"
)

// ErrMalformedRecord indicates a stored event whose date cannot be placed on the calendar.
var ErrMalformedRecord = errors.New("malformed record")

// EventSource lists the recorded events of a batch ordered by date.
type EventSource interface {
	ListDailyLogs(ctx context.Context, batchID string) ([]models.DailyLogEntry, error)
	ListWeightSamples(ctx context.Context, batchID string) ([]models.WeightSample, error)
	ListHarvests(ctx context.Context, batchID string) ([]models.HarvestEvent, error)
}

// Events holds the three input streams of a single batch.
type Events struct {
	DailyLogs []models.DailyLogEntry
	Samples   []models.WeightSample
	Harvests  []models.HarvestEvent
}

// Empty reports whether no stream holds a record.
func (e Events) Empty() bool {
	return len(e.DailyLogs) == 0 && len(e.Samples) == 0 && len(e.Harvests) == 0
}

// LoadEvents fetches every stream for batchID. Records belonging to another batch are
// dropped and each stream is stably sorted by date, so records sharing a date keep
// the order the source returned them in.
func LoadEvents(ctx context.Context, src EventSource, batchID string) (Events, error) {
	logs, err := src.ListDailyLogs(ctx, batchID)
	if err != nil {
		return Events{}, fmt.Errorf("load daily logs: %w", err)
	}
	samples, err := src.ListWeightSamples(ctx, batchID)
	if err != nil {
		return Events{}, fmt.Errorf("load weight samples: %w", err)
	}
	harvests, err := src.ListHarvests(ctx, batchID)
	if err != nil {
		return Events{}, fmt.Errorf("load harvests: %w", err)
	}

	var events Events
	if events.DailyLogs, err = scoped(logs, batchID, "daily log", func(r models.DailyLogEntry) (string, string, time.Time) {
		return r.ID, r.BatchID, r.Date
	}); err != nil {
		return Events{}, err
	}
	if events.Samples, err = scoped(samples, batchID, "weight sample", func(r models.WeightSample) (string, string, time.Time) {
		return r.ID, r.BatchID, r.Date
	}); err != nil {
		return Events{}, err
	}
	if events.Harvests, err = scoped(harvests, batchID, "harvest", func(r models.HarvestEvent) (string, string, time.Time) {
		return r.ID, r.BatchID, r.Date
	}); err != nil {
		return Events{}, err
	}

	return events, nil
}

func scoped[T any](records []T, batchID, kind string, fields func(T) (id, batch string, date time.Time)) ([]T, error) {
	out := make([]T, 0, len(records))
	for _, rec := range records {
		id, batch, date := fields(rec)
		if batch != batchID {
			continue
		}
		if date.IsZero() {
			return nil, fmt.Errorf("%s %q has no date: %w", kind, id, ErrMalformedRecord)
		}
		out = append(out, rec)
	}

	slices.SortStableFunc(out, func(a, b T) int {
		_, _, da := fields(a)
		_, _, db := fields(b)
		return DayOf(da).Compare(DayOf(db))
	})
	return out, nil
}
