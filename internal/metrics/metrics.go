package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcomes reported for an insights run.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Insights tracks KPI engine runs.
type Insights struct {
	runs     *prometheus.CounterVec
	duration prometheus.Histogram
	rows     prometheus.Counter
}

// NewInsights creates the collectors and registers them on reg.
func NewInsights(reg prometheus.Registerer) (*Insights, error) {
	m := &Insights{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aquafarm",
			Subsystem: "insights",
			Name:      "runs_total",
			Help:      "KPI engine runs by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "aquafarm",
			Subsystem: "insights",
			Name:      "run_duration_seconds",
			Help:      "Time spent loading, indexing and walking one batch.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}),
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aquafarm",
			Subsystem: "insights",
			Name:      "rows_emitted_total",
			Help:      "Daily KPI rows produced.",
		}),
	}

	for _, c := range []prometheus.Collector{m.runs, m.duration, m.rows} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveRun records a finished run.
func (m *Insights) ObserveRun(outcome string, elapsed time.Duration, rows int) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
	m.rows.Add(float64(rows))
}
