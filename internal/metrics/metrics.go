// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Lookup outcomes.
const (
	OutcomeHit      = "hit"
	OutcomeMiss     = "miss"
	OutcomeError    = "error"
	OutcomeFallback = "fallback"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookshelf_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookshelf_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	MetadataLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookshelf_metadata_lookups_total",
			Help: "Metadata lookups by provider and outcome (hit, miss, error, fallback)",
		},
		[]string{"provider", "outcome"},
	)

	MetadataLookupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookshelf_metadata_lookup_duration_seconds",
			Help:    "Upstream metadata lookup latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	CollectionMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookshelf_collection_mutations_total",
			Help: "Collection create/update/delete operations by result",
		},
		[]string{"operation", "result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bookshelf_upstream_circuit_state",
			Help: "Upstream circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookshelf_upstream_circuit_requests_total",
			Help: "Upstream requests through a circuit breaker by result (success, failure, rejected)",
		},
		[]string{"name", "result"},
	)
)

// RecordAPIRequest records one served HTTP request.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordMetadataLookup records one adapter call.
func RecordMetadataLookup(provider, outcome string, duration time.Duration) {
	MetadataLookupsTotal.WithLabelValues(provider, outcome).Inc()
	if duration > 0 {
		MetadataLookupDuration.WithLabelValues(provider).Observe(duration.Seconds())
	}
}

// RecordCollectionMutation counts a collection write; err decides the result label.
func RecordCollectionMutation(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	CollectionMutationsTotal.WithLabelValues(operation, result).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
