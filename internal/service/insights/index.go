package insights

import (
	"time"

	"github.com/mamadbah2/aquafarm/internal/domain/models"
)

// DailyTotals is the summed feeding and mortality of one calendar day.
type DailyTotals struct {
	FeedKg    float64
	Mortality int
}

// Index is the per-day view of a batch's events. Keys are calendar days as returned
// by DayOf. Absent days read as zero.
type Index struct {
	Daily    map[time.Time]DailyTotals
	Samples  map[time.Time]float64
	Harvests map[time.Time]int
}

// DayOf reduces t to its calendar day, expressed as midnight UTC.
func DayOf(t time.Time) time.Time {
	return models.CalendarDay(t)
}

// BuildIndex collapses the event streams into per-day aggregates. Feed, mortality and
// harvested counts are summed per day. For weight samples the last sample of a day in
// input order wins; samples that cannot yield a weight are skipped.
func BuildIndex(events Events) Index {
	ix := Index{
		Daily:    make(map[time.Time]DailyTotals),
		Samples:  make(map[time.Time]float64),
		Harvests: make(map[time.Time]int),
	}

	for _, entry := range events.DailyLogs {
		day := DayOf(entry.Date)
		totals := ix.Daily[day]
		totals.FeedKg += entry.FeedKg
		totals.Mortality += entry.Mortality
		ix.Daily[day] = totals
	}

	for _, sample := range events.Samples {
		if abw, ok := sample.ABW(); ok {
			ix.Samples[DayOf(sample.Date)] = abw
		}
	}

	for _, harvest := range events.Harvests {
		ix.Harvests[DayOf(harvest.Date)] += harvest.Quantity
	}

	return ix
}

// Span returns the first and last day present in any of the maps. ok is false when
// the index is empty.
func (ix Index) Span() (first, last time.Time, ok bool) {
	visit := func(day time.Time) {
		if !ok || day.Before(first) {
			first = day
		}
		if !ok || day.After(last) {
			last = day
		}
		ok = true
	}

	for day := range ix.Daily {
		visit(day)
	}
	for day := range ix.Samples {
		visit(day)
	}
	for day := range ix.Harvests {
		visit(day)
	}
	return first, last, ok
}
