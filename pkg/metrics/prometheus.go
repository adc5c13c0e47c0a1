// Package metrics provides Prometheus metrics for the racerdash dashboard service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace              = "racerdash"
	subsystem              = "dashboard"
	defaultRefreshInterval = 10 * time.Second
)

// latencyBuckets are in milliseconds, 1ms to about 8s.
var latencyBuckets = prometheus.ExponentialBuckets(1, 2, 14) //nolint:gochecknoglobals // read-only

// Manager owns every collector racerdash exports.
type Manager struct {
	refreshInterval time.Duration
	registry        prometheus.Registerer

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Upstream leaderboard API
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	proxyErrors      prometheus.Counter

	// Views
	tableFilteredRows *prometheus.GaugeVec
	exports           *prometheus.CounterVec
	mutations         *prometheus.CounterVec
	fanoutFailures    prometheus.Counter
	fanoutLatency     prometheus.Histogram

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Init replaces the global collectors with a fresh set on a new registry.
// Call it once at startup, before anything records or serves /metrics.
func Init(opts ...Option) {
	reg := prometheus.NewRegistry()
	globalManager = NewManager(append(opts, WithPrometheusRegistry(reg))...)
	customRegistry = reg
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		refreshInterval: defaultRefreshInterval,
		registry:        prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// RefreshInterval reports how often the process gauges should be sampled.
func RefreshInterval() time.Duration { return globalManager.refreshInterval }

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for all collectors
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   latencyBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.upstreamRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "upstream_requests_total",
		Help:      "Calls made to the upstream leaderboard API by operation and outcome",
	}, []string{"operation", "outcome"})

	m.upstreamLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "upstream_latency_milliseconds",
		Help:      "Latency of upstream leaderboard API calls in milliseconds",
		Buckets:   latencyBuckets,
	}, []string{"operation"})

	m.proxyErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "proxy_errors_total",
		Help:      "Proxied /api requests that failed before reaching upstream",
	})

	m.tableFilteredRows = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "table_filtered_rows",
		Help:      "Rows left after the global filter on the last rendered view",
	}, []string{"table"})

	m.exports = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "exports_total",
		Help:      "Spreadsheet exports by table and outcome",
	}, []string{"table", "outcome"})

	m.mutations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "mutations_total",
		Help:      "Create, points, accolade and delete submissions by outcome",
	}, []string{"kind", "outcome"})

	m.fanoutFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "detail_fanout_failures_total",
		Help:      "Contestant detail fetches that failed during a results fan-out",
	})

	m.fanoutLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "detail_fanout_latency_milliseconds",
		Help:      "Wall time until every detail fetch of a fan-out settled",
		Buckets:   latencyBuckets,
	})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "errors_by_component_total",
		Help:      "Total number of errors by component",
	}, []string{"component", "error_type"})

	m.errorsByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "errors_by_endpoint_total",
		Help:      "Total number of errors by endpoint",
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "Heap bytes allocated",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordUpstreamRequest records one upstream call; outcome is "ok" or an error class.
func RecordUpstreamRequest(operation, outcome string, latencyMs float64) {
	globalManager.upstreamRequests.WithLabelValues(operation, outcome).Inc()
	globalManager.upstreamLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordProxyError increments the proxy failure counter.
func RecordProxyError() {
	globalManager.proxyErrors.Inc()
}

// UpdateTableFilteredRows sets the filtered row count for a table.
func UpdateTableFilteredRows(table string, rows int) {
	globalManager.tableFilteredRows.WithLabelValues(table).Set(float64(rows))
}

// RecordExport records a spreadsheet export attempt.
func RecordExport(table, outcome string) {
	globalManager.exports.WithLabelValues(table, outcome).Inc()
}

// RecordMutation records a mutation submission.
func RecordMutation(kind, outcome string) {
	globalManager.mutations.WithLabelValues(kind, outcome).Inc()
}

// RecordFanout records a settled results fan-out.
func RecordFanout(failures int, latencyMs float64) {
	globalManager.fanoutFailures.Add(float64(failures))
	globalManager.fanoutLatency.Observe(latencyMs)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
