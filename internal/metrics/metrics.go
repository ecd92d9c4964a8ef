// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts handled requests by route template, method and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodgram_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// RecipeWritesTotal counts recipe create/update/delete outcomes.
	RecipeWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_recipe_writes_total",
			Help: "Recipe write operations by kind and outcome",
		},
		[]string{"op", "outcome"},
	)

	// RelationTogglesTotal counts favorite/shopping_cart/follow add and remove outcomes.
	RelationTogglesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_relation_toggles_total",
			Help: "Relation toggle operations by relation, action and outcome",
		},
		[]string{"relation", "action", "outcome"},
	)

	ShortLinkCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_short_link_cache_total",
			Help: "Short-link cache lookups by result",
		},
		[]string{"result"},
	)

	// ImageStoreCircuitState is 0 closed, 1 half-open, 2 open.
	ImageStoreCircuitState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "foodgram_image_store_circuit_state",
			Help: "Circuit breaker state of the object store",
		},
	)
)

// Outcome maps an error to the outcome label value.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
