package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the journal service.
type Metrics struct {
	// Boundary cache metrics.
	BoundaryLookups       *prometheus.CounterVec // labels: result={hit,miss,coalesced}
	BoundaryFetches       *prometheus.CounterVec // labels: outcome={found,not_found,error}
	BoundaryFetchDuration prometheus.Histogram
	BoundaryCacheEntries  prometheus.Gauge
	// BoundaryLookupsPending counts callers waiting on an in-flight fetch.
	BoundaryLookupsPending prometheus.Gauge

	// Content and media metrics.
	ImageOps     *prometheus.CounterVec // labels: op={upload,list,delete}, outcome={success,error}
	HTTPRequests *prometheus.CounterVec // labels: route, code
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.BoundaryLookups,
		m.BoundaryFetches,
		m.BoundaryFetchDuration,
		m.BoundaryCacheEntries,
		m.BoundaryLookupsPending,
		m.ImageOps,
		m.HTTPRequests,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		BoundaryLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "journal",
			Name:      "boundary_lookups_total",
			Help:      "Boundary cache lookups by result.",
		}, []string{"result"}),
		BoundaryFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "journal",
			Name:      "boundary_fetches_total",
			Help:      "Geocoding requests for city boundaries by outcome.",
		}, []string{"outcome"}),
		BoundaryFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "journal",
			Name:      "boundary_fetch_duration_seconds",
			Help:      "Geocoding request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		BoundaryCacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "journal",
			Name:      "boundary_cache_entries",
			Help:      "Number of resolved boundaries held in memory.",
		}),
		BoundaryLookupsPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "journal",
			Name:      "boundary_lookups_pending",
			Help:      "Boundary lookups waiting on a geocoding request.",
		}),
		ImageOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "journal",
			Name:      "images_total",
			Help:      "Object store operations by type and outcome.",
		}, []string{"op", "outcome"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "journal",
			Name:      "http_requests_total",
			Help:      "API requests by route pattern and status code.",
		}, []string{"route", "code"}),
	}
}
