package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the country refresh pipeline.
type Metrics struct {
	// External fetch latencies by source
	FetchLatency *prometheus.HistogramVec

	// Refresh outcomes: success, upstream_unavailable, storage_error
	RefreshOutcome *prometheus.CounterVec

	// Records skipped by validation during refreshes
	RecordsSkipped prometheus.Counter

	// Upserted records by kind: inserted, updated
	Upserts *prometheus.CounterVec
}

// New creates a new Metrics instance with all refresh pipeline metrics registered.
func New() *Metrics {
	return &Metrics{
		FetchLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "atlas_fetch_duration_seconds",
			Help:    "Duration of external dataset fetches by source",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"source"}), // source: "countries", "rates"

		RefreshOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "atlas_refresh_outcomes_total",
			Help: "Total refresh attempts by outcome",
		}, []string{"outcome"}),

		RecordsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "atlas_refresh_records_skipped_total",
			Help: "Records dropped by validation during refreshes",
		}),

		Upserts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "atlas_refresh_upserts_total",
			Help: "Upserted country records by kind",
		}, []string{"kind"}), // kind: "inserted", "updated"
	}
}

// ObserveFetchLatency records the duration of one external fetch.
func (m *Metrics) ObserveFetchLatency(source string, d time.Duration) {
	if m != nil {
		m.FetchLatency.WithLabelValues(source).Observe(d.Seconds())
	}
}

// IncrementOutcome records a refresh outcome.
func (m *Metrics) IncrementOutcome(outcome string) {
	if m != nil {
		m.RefreshOutcome.WithLabelValues(outcome).Inc()
	}
}

// AddSkipped records validation-skipped records.
func (m *Metrics) AddSkipped(n int) {
	if m != nil && n > 0 {
		m.RecordsSkipped.Add(float64(n))
	}
}

// AddUpserts records batch upsert counts.
func (m *Metrics) AddUpserts(inserted, updated int) {
	if m == nil {
		return
	}
	m.Upserts.WithLabelValues("inserted").Add(float64(inserted))
	m.Upserts.WithLabelValues("updated").Add(float64(updated))
}
