// Reelquest - Natural-Language Media Discovery Engine
// Copyright 2026 Reelquest Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package metrics provides Prometheus instrumentation for the discovery
// pipeline and the HTTP surface.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CatalogCalls counts catalog API calls by operation and outcome.
	CatalogCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelquest_catalog_calls_total",
			Help: "Total catalog API calls by operation and outcome",
		},
		[]string{"operation", "outcome"}, // outcome: ok, error, breaker_open
	)

	// CatalogCallDuration observes catalog API call latency.
	CatalogCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelquest_catalog_call_duration_seconds",
			Help:    "Duration of catalog API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// DiscoverySourceCandidates counts candidates produced per discovery source.
	DiscoverySourceCandidates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelquest_discovery_candidates_total",
			Help: "Candidates produced by each discovery source",
		},
		[]string{"source"},
	)

	// DiscoverySourceFailures counts isolated discovery-source failures.
	DiscoverySourceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelquest_discovery_source_failures_total",
			Help: "Discovery source failures (isolated, non-fatal)",
		},
		[]string{"source"},
	)

	// SearchDuration observes end-to-end search pipeline latency by terminal
	// state.
	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelquest_search_duration_seconds",
			Help:    "End-to-end search pipeline duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"state"},
	)

	// SearchOutcomes counts pipeline terminations by state.
	SearchOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelquest_search_outcomes_total",
			Help: "Pipeline terminations by state (exact_lookup, assembled, cancelled, rejected)",
		},
		[]string{"state"},
	)

	// IntentExtractionFailures counts extractor failures recovered via the
	// default intent.
	IntentExtractionFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelquest_intent_extraction_failures_total",
			Help: "Intent extraction failures degraded to the default intent",
		},
	)

	// CircuitBreakerState tracks breaker state (0=closed, 1=half-open, 2=open).
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reelquest_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"breaker"},
	)

	// HTTPRequestDuration observes HTTP handler latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelquest_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// ObserveHTTPRequest records a completed HTTP request.
func ObserveHTTPRequest(method, path string, status int, elapsed time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, strconv.Itoa(status)).
		Observe(elapsed.Seconds())
}
