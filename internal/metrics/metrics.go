package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Hero cache
	HeroCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hero_cache_lookups_total",
			Help: "Hero lookups by result: hit, miss, stale_refresh, stale_served",
		},
		[]string{"result"},
	)

	HeroSearches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hero_searches_total",
			Help: "Hero searches by the step that produced the result",
		},
		[]string{"step"}, // "all", "text", "substring", "remote", "empty"
	)

	HeroCacheWarmed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hero_cache_warmed_total",
			Help: "Hero records stored as a side effect of a remote search",
		},
	)

	// Store
	StoreDegradedReads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hero_store_degraded_reads_total",
			Help: "Store reads that failed or timed out and returned an empty result",
		},
		[]string{"operation"},
	)

	// Upstream catalog
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_upstream_requests_total",
			Help: "Requests to the remote hero catalog by operation and outcome",
		},
		[]string{"operation", "outcome"}, // outcome: success, not_found, transport_error, rejected
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_upstream_request_duration_seconds",
			Help:    "Remote hero catalog request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Favorites ledger
	FavoriteMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "favorite_mutations_total",
			Help: "Favorites ledger operations by outcome",
		},
		[]string{"outcome"},
	)

	FeedConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "favorites_feed_connections",
			Help: "Open favorites feed websocket connections",
		},
	)

	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"limiter"},
	)
)
