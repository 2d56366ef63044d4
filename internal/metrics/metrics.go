package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestSize     *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Cache metrics
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitExceededTotal *prometheus.CounterVec

	// Feed and search metrics
	FeedGenerationTime *prometheus.HistogramVec
	SearchQueriesTotal *prometheus.CounterVec

	// Realtime metrics
	RealtimeConnections   prometheus.Gauge
	RealtimeMessagesTotal *prometheus.CounterVec

	// Domain events
	NotificationsCreatedTotal *prometheus.CounterVec
	HireTransitionsTotal      *prometheus.CounterVec

	// Background tasks by outcome
	BackgroundTasksTotal *prometheus.CounterVec

	// Best-effort side effects that failed
	ErrorsTotal *prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestSize: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_size_bytes",
					Help:    "HTTP request body size in bytes",
					Buckets: prometheus.ExponentialBuckets(100, 10, 7),
				},
				[]string{"method", "path"},
			),
			HTTPResponseSize: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_response_size_bytes",
					Help:    "HTTP response size in bytes",
					Buckets: prometheus.ExponentialBuckets(100, 10, 7),
				},
				[]string{"method", "path", "status"},
			),

			CacheHits: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_hits_total",
					Help: "Total number of cache hits",
				},
				[]string{"cache_name"},
			),
			CacheMisses: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_misses_total",
					Help: "Total number of cache misses",
				},
				[]string{"cache_name"},
			),

			RateLimitExceededTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "rate_limit_exceeded_total",
					Help: "Total number of rate limit violations",
				},
				[]string{"endpoint", "method"},
			),

			FeedGenerationTime: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "feed_generation_seconds",
					Help:    "Time spent building a feed page",
					Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
				},
				[]string{"sort", "cached"},
			),
			SearchQueriesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "search_queries_total",
					Help: "Search queries by backend and outcome",
				},
				[]string{"kind", "backend", "outcome"},
			),

			RealtimeConnections: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "realtime_connections",
					Help: "Number of open realtime websocket connections",
				},
			),
			RealtimeMessagesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "realtime_messages_total",
					Help: "Realtime messages delivered by type",
				},
				[]string{"type"},
			),

			NotificationsCreatedTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "notifications_created_total",
					Help: "Notifications created by type",
				},
				[]string{"type"},
			),
			HireTransitionsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "hire_request_transitions_total",
					Help: "Hire request status transitions",
				},
				[]string{"to"},
			),
			BackgroundTasksTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "background_tasks_total",
					Help: "Background tasks by name and outcome",
				},
				[]string{"task", "outcome"},
			),

			ErrorsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "side_effect_errors_total",
					Help: "Failed best-effort side effects by component",
				},
				[]string{"component"},
			),
		}
	})
	return instance
}

// Get returns the metrics instance, initializing it on first use
func Get() *Metrics {
	return Initialize()
}
