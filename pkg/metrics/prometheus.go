// Package metrics provides Prometheus metrics for the LeetScope service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the LeetScope service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Upstream Metrics - LeetCode GraphQL endpoint
	upstreamRequests        *prometheus.CounterVec
	upstreamRequestDuration prometheus.Histogram
	upstreamRateLimited     prometheus.Counter
	upstreamCircuitState    prometheus.Gauge

	// Sync Metrics - Contest history synchronization
	syncsPerformed  prometheus.Counter
	syncsSkipped    prometheus.Counter
	syncsFailed     prometheus.Counter
	recordsReplaced prometheus.Histogram
	evictions       prometheus.Counter

	// Cache Metrics
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec

	// Database Metrics
	dbQueryDuration *prometheus.HistogramVec
	dbErrors        prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry()

// Initialize global metrics.
func init() {
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "leetscope",
		subsystem:        "api",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	// HTTP Performance Metrics
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	// Upstream Metrics
	m.upstreamRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "upstream_requests_total",
			Help:      "Total number of requests to the LeetCode GraphQL endpoint by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	m.upstreamRequestDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of LeetCode GraphQL requests in seconds",
		Buckets:   m.histogramBuckets,
	})

	m.upstreamRateLimited = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "upstream_rate_limited_total",
		Help:      "Total number of requests delayed or rejected by the local rate limiter",
	})

	m.upstreamCircuitState = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "upstream_circuit_state",
		Help:      "Circuit breaker state for the upstream endpoint (0=closed, 1=open, 2=half-open)",
	})

	// Sync Metrics
	m.syncsPerformed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "syncs_performed_total",
		Help:      "Total number of contest history synchronizations that hit the upstream",
	})

	m.syncsSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "syncs_skipped_total",
		Help:      "Total number of synchronizations skipped because local data already existed",
	})

	m.syncsFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "syncs_failed_total",
		Help:      "Total number of synchronizations that failed",
	})

	m.recordsReplaced = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sync_records_replaced",
		Help:      "Distribution of contest record counts written per synchronization",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
	})

	m.evictions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "evictions_total",
		Help:      "Total number of per-user contest history evictions",
	})

	// Cache Metrics
	m.cacheHits = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "cache_hits_total",
			Help:      "Total number of cache hits by cache name",
		},
		[]string{"cache"},
	)

	m.cacheMisses = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "cache_misses_total",
			Help:      "Total number of cache misses by cache name",
		},
		[]string{"cache"},
	)

	// Database Metrics
	m.dbQueryDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "db_query_duration_seconds",
			Help:      "Database query duration in seconds by operation",
			Buckets:   m.histogramBuckets,
		},
		[]string{"operation"},
	)

	m.dbErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "db_errors_total",
		Help:      "Total number of database errors",
	})
}

// Package-level recording functions operating on the global manager.

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in seconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, seconds float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(seconds)
}

// RecordUpstreamRequest increments the upstream request counter.
// Outcome is one of "success", "error", "rate_limited".
func RecordUpstreamRequest(operation, outcome string) {
	globalManager.upstreamRequests.WithLabelValues(operation, outcome).Inc()
}

// RecordUpstreamRequestDuration records upstream request duration in seconds.
func RecordUpstreamRequestDuration(seconds float64) {
	globalManager.upstreamRequestDuration.Observe(seconds)
}

// RecordUpstreamRateLimited increments the local rate limiter counter.
func RecordUpstreamRateLimited() {
	globalManager.upstreamRateLimited.Inc()
}

// UpdateUpstreamCircuitState sets the circuit breaker state gauge.
func UpdateUpstreamCircuitState(state int) {
	globalManager.upstreamCircuitState.Set(float64(state))
}

// RecordSyncPerformed increments the sync counter.
func RecordSyncPerformed() {
	globalManager.syncsPerformed.Inc()
}

// RecordSyncSkipped increments the skipped-sync counter.
func RecordSyncSkipped() {
	globalManager.syncsSkipped.Inc()
}

// RecordSyncFailed increments the failed-sync counter.
func RecordSyncFailed() {
	globalManager.syncsFailed.Inc()
}

// RecordRecordsReplaced records how many contest records a sync wrote.
func RecordRecordsReplaced(count int) {
	globalManager.recordsReplaced.Observe(float64(count))
}

// RecordEviction increments the eviction counter.
func RecordEviction() {
	globalManager.evictions.Inc()
}

// RecordCacheHit increments the cache hit counter for the named cache.
func RecordCacheHit(cache string) {
	globalManager.cacheHits.WithLabelValues(cache).Inc()
}

// RecordCacheMiss increments the cache miss counter for the named cache.
func RecordCacheMiss(cache string) {
	globalManager.cacheMisses.WithLabelValues(cache).Inc()
}

// RecordDBQueryDuration records database query duration in seconds.
func RecordDBQueryDuration(operation string, seconds float64) {
	globalManager.dbQueryDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordDBError increments the database error counter.
func RecordDBError() {
	globalManager.dbErrors.Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
