// Package metrics registers the Prometheus collectors used by the catalog
// engine, the asset fetcher and the state manager.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Engine Metrics
	EnrichDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "skyplan_enrich_duration_seconds",
			Help:    "Duration of a full catalog enrichment pass in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	EntriesByStatus = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skyplan_entries_total",
			Help: "Total number of enriched catalog entries by visibility status",
		},
		[]string{"status"}, // "visible", "masked", "partially-visible", "non-visible", "skipped"
	)

	SkippedSamples = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skyplan_track_samples_skipped_total",
			Help: "Total number of altitude track samples dropped after a failed transform",
		},
	)

	UnknownBodies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skyplan_unknown_bodies_total",
			Help: "Total number of dynamic catalog entries naming an unknown body",
		},
		[]string{"name"},
	)

	// Asset Fetch Metrics
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skyplan_fetch_duration_seconds",
			Help:    "Duration of catalog and description fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"asset"}, // "catalog", "descriptions"
	)

	FetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skyplan_fetch_errors_total",
			Help: "Total number of failed catalog and description fetches",
		},
		[]string{"asset", "reason"}, // reason: "transport", "status", "breaker_open", "read"
	)

	CatalogParseIssues = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skyplan_catalog_parse_issues_total",
			Help: "Total number of catalog cells that fell back to a zero value",
		},
		[]string{"column"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "skyplan_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// State Metrics
	StaleCommits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skyplan_stale_commits_total",
			Help: "Total number of computation results discarded because a newer one was started",
		},
	)

	Generation = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "skyplan_generation",
			Help: "Latest computation generation handed out",
		},
	)
)

// RecordEnrichment records one engine pass.
func RecordEnrichment(duration time.Duration, statuses map[string]int) {
	EnrichDuration.Observe(duration.Seconds())
	for status, n := range statuses {
		EntriesByStatus.WithLabelValues(status).Add(float64(n))
	}
}

// RecordFetch records an asset fetch. reason is ignored when err is nil.
func RecordFetch(asset string, duration time.Duration, err error, reason string) {
	FetchDuration.WithLabelValues(asset).Observe(duration.Seconds())
	if err != nil {
		FetchErrors.WithLabelValues(asset, reason).Inc()
	}
}

// RecordBreakerState records a circuit breaker transition. state follows
// gobreaker's ordering: 0 closed, 1 half-open, 2 open.
func RecordBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}
