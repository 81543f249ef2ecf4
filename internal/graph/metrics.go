package graph

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records query outcomes. A nil *Metrics records nothing.
type Metrics struct {
	queries  *prometheus.CounterVec
	duration prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "books_query_total",
			Help: "Book queries executed, by result envelope kind.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "books_query_duration_seconds",
			Help:    "Book query execution latency in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12), // 0.1ms to ~400ms
		}),
	}
	if reg != nil {
		reg.MustRegister(m.queries, m.duration)
	}
	return m
}

func (m *Metrics) observe(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
}
