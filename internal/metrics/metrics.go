// Package metrics defines the Prometheus collectors collex exposes on
// /metrics, grounded on the same registration pattern the platform's
// metrics package uses.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every Prometheus collector collex registers.
type Metrics struct {
	DocumentsIndexedTotal *prometheus.CounterVec
	DocumentsRemovedTotal *prometheus.CounterVec
	SearchQueriesTotal    *prometheus.CounterVec
	SearchLatency         *prometheus.HistogramVec
	SearchHitsCount       *prometheus.HistogramVec
	CollectionsActive     prometheus.Gauge
}

// New creates and registers collex's collectors.
func New() *Metrics {
	m := &Metrics{
		DocumentsIndexedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "collex_documents_indexed_total",
				Help: "Total documents successfully added, by collection.",
			},
			[]string{"collection"},
		),
		DocumentsRemovedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "collex_documents_removed_total",
				Help: "Total documents removed, by collection.",
			},
			[]string{"collection"},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "collex_search_queries_total",
				Help: "Total search queries by collection and outcome (ok, error).",
			},
			[]string{"collection", "outcome"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "collex_search_latency_seconds",
				Help:    "Search query latency in seconds, by collection.",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"collection"},
		),
		SearchHitsCount: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "collex_search_hits_count",
				Help:    "Number of hits returned per search query, by collection.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 500},
			},
			[]string{"collection"},
		),
		CollectionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "collex_collections_active",
				Help: "Number of collections currently registered with the engine.",
			},
		),
	}

	prometheus.MustRegister(
		m.DocumentsIndexedTotal,
		m.DocumentsRemovedTotal,
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchHitsCount,
		m.CollectionsActive,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
