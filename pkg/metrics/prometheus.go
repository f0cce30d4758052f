// Package metrics provides Prometheus metrics for the studio site backend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Tier outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Pipeline label values.
const (
	PipelineUniverse = "universe"
	PipelineStats    = "stats"
	PipelineDelivery = "delivery"
)

// Manager owns every collector the service exposes.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Tier chains
	tierAttempts *prometheus.CounterVec
	tierLatency  *prometheus.HistogramVec

	// Game data resolution
	resolveLatency prometheus.Histogram
	gamesResolved  *prometheus.CounterVec
	gamesDropped   prometheus.Counter
	lastGameCount  prometheus.Gauge

	// Contact form
	contactSubmissions prometheus.Counter
	deliveries         *prometheus.CounterVec
	persistErrors      prometheus.Counter

	// Admin store
	adminMutations *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec
	errorRateByType     *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide registry served on /metrics

var globalManager *Manager //nolint:gochecknoglobals // singleton behind the package-level helpers

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "studio",
		subsystem:        "site",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		Buckets: m.histogramBuckets, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		Buckets: m.histogramBuckets, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.tierAttempts = m.counterVec("tier_attempts_total",
		"Attempts against fallback tiers by pipeline, tier and outcome", "pipeline", "tier", "outcome")
	m.tierLatency = m.histogramVec("tier_latency_milliseconds",
		"Latency of single tier attempts in milliseconds", "pipeline", "tier")

	m.resolveLatency = m.histogram("resolve_latency_milliseconds",
		"Wall time of a full game list resolution in milliseconds")
	m.gamesResolved = m.counterVec("games_resolved_total",
		"Game records produced, by source tag", "source")
	m.gamesDropped = m.counter("games_dropped_total",
		"Game references no tier could resolve")
	m.lastGameCount = m.gauge("games_last_count",
		"Number of games in the most recent resolution")

	m.contactSubmissions = m.counter("contact_submissions_total",
		"Contact form submissions accepted")
	m.deliveries = m.counterVec("contact_deliveries_total",
		"Contact deliveries by method and result", "method", "result")
	m.persistErrors = m.counter("contact_persist_errors_total",
		"Contact submissions that could not be written to the local log")

	m.adminMutations = m.counterVec("admin_mutations_total",
		"Admin game list mutations by operation", "operation")

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", "endpoint", "method", "status_code")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Errors by endpoint", "endpoint", "method", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total",
		"Errors by type and severity", "error_type", "severity")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Current goroutine count")
	m.systemGCPauseTime = m.histogram("system_gc_pause_milliseconds", "Average GC pause in milliseconds")
}

// RecordTierAttempt counts one attempt against a tier and its latency.
func RecordTierAttempt(pipeline, tier string, ok bool, latencyMs float64) {
	outcome := OutcomeFailure
	if ok {
		outcome = OutcomeSuccess
	}
	globalManager.tierAttempts.WithLabelValues(pipeline, tier, outcome).Inc()
	globalManager.tierLatency.WithLabelValues(pipeline, tier).Observe(latencyMs)
}

// RecordResolve records a completed resolution of the game list.
func RecordResolve(latencyMs float64, count, dropped int) {
	globalManager.resolveLatency.Observe(latencyMs)
	globalManager.lastGameCount.Set(float64(count))
	globalManager.gamesDropped.Add(float64(dropped))
}

// RecordGameSource counts a produced record by its source tag.
func RecordGameSource(source string) {
	globalManager.gamesResolved.WithLabelValues(source).Inc()
}

// RecordContactSubmission counts an accepted contact submission.
func RecordContactSubmission() {
	globalManager.contactSubmissions.Inc()
}

// RecordDelivery counts the final delivery outcome of a submission.
func RecordDelivery(method string, success bool) {
	result := OutcomeFailure
	if success {
		result = OutcomeSuccess
	}
	globalManager.deliveries.WithLabelValues(method, result).Inc()
}

// RecordPersistError counts a failed append to the contact log.
func RecordPersistError() {
	globalManager.persistErrors.Inc()
}

// RecordAdminMutation counts a create/update/delete on the admin game list.
func RecordAdminMutation(operation string) {
	globalManager.adminMutations.WithLabelValues(operation).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error for an endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByType records an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// UpdateSystemMemoryUsage sets the allocated heap gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime observes the average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
