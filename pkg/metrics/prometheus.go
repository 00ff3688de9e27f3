// Package metrics provides Prometheus metrics for the hookah mix service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// strengthBuckets cover the 1..10 mix strength scale.
var strengthBuckets = []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10} //nolint:gochecknoglobals // fixed bucket layout

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Mix metrics
	mixesCreated  prometheus.Counter
	mixesRejected *prometheus.CounterVec
	mixesDeleted  prometheus.Counter
	mixesTotal    prometheus.Gauge
	likes         *prometheus.CounterVec
	mixStrength   prometheus.Histogram
	mixTaste      *prometheus.CounterVec

	// Catalog metrics
	flavorsTotal   prometheus.Gauge
	catalogReloads *prometheus.CounterVec
	flavorWrites   *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
	errorsByType        *prometheus.CounterVec

	// Store metrics
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "hookah",
		subsystem:        "mixes",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)

	m.mixesCreated = auto.NewCounter(m.counterOpts("created_total", "Total number of mixes saved"))
	m.mixesRejected = auto.NewCounterVec(m.counterOpts("rejected_total", "Total number of mix submissions rejected, by reason"), []string{"reason"})
	m.mixesDeleted = auto.NewCounter(m.counterOpts("deleted_total", "Total number of mixes deleted by moderators"))
	m.mixesTotal = auto.NewGauge(m.gaugeOpts("stored", "Number of mixes currently stored"))
	m.likes = auto.NewCounterVec(m.counterOpts("likes_total", "Total number of like and unlike actions"), []string{"action"})
	m.mixStrength = auto.NewHistogram(m.histogramOpts("strength", "Derived strength of saved mixes", strengthBuckets))
	m.mixTaste = auto.NewCounterVec(m.counterOpts("taste_total", "Saved mixes by derived taste label"), []string{"taste"})

	m.flavorsTotal = auto.NewGauge(m.gaugeOpts("catalog_flavors", "Number of flavors in the loaded catalog"))
	m.catalogReloads = auto.NewCounterVec(m.counterOpts("catalog_reloads_total", "Catalog reload attempts by result"), []string{"result"})
	m.flavorWrites = auto.NewCounterVec(m.counterOpts("catalog_writes_total", "Flavor catalog writes by operation"), []string{"op"})

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorsByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Errors by HTTP endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorsByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Errors by type and severity"),
		[]string{"error_type", "severity"},
	)

	m.storeLatency = auto.NewHistogramVec(
		m.histogramOpts("store_latency_milliseconds", "JSON store operation latency in milliseconds", m.histogramBuckets),
		[]string{"store", "op"},
	)
	m.storeErrors = auto.NewCounterVec(m.counterOpts("store_errors_total", "JSON store failures"), []string{"store", "op"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Current heap allocation in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Current number of goroutines"))
}

// Mix metrics.

// RecordMixCreated counts a saved mix and its derived attributes.
func RecordMixCreated(strength *float64, taste *string) {
	globalManager.mixesCreated.Inc()
	if strength != nil {
		globalManager.mixStrength.Observe(*strength)
	}
	label := "none"
	if taste != nil {
		label = *taste
	}
	globalManager.mixTaste.WithLabelValues(label).Inc()
}

// RecordMixRejected counts a refused submission.
func RecordMixRejected(reason string) {
	globalManager.mixesRejected.WithLabelValues(reason).Inc()
}

// RecordMixDeleted counts a moderator deletion.
func RecordMixDeleted() {
	globalManager.mixesDeleted.Inc()
}

// UpdateMixesTotal sets the stored mixes gauge.
func UpdateMixesTotal(count int) {
	globalManager.mixesTotal.Set(float64(count))
}

// RecordLike counts a like ("like") or unlike ("unlike") action.
func RecordLike(action string) {
	globalManager.likes.WithLabelValues(action).Inc()
}

// Catalog metrics.

// UpdateFlavorsTotal sets the catalog size gauge.
func UpdateFlavorsTotal(count int) {
	globalManager.flavorsTotal.Set(float64(count))
}

// RecordCatalogReload counts a reload attempt: "changed", "unchanged" or "error".
func RecordCatalogReload(result string) {
	globalManager.catalogReloads.WithLabelValues(result).Inc()
}

// RecordFlavorWrite counts a flavor create, update or delete.
func RecordFlavorWrite(op string) {
	globalManager.flavorWrites.WithLabelValues(op).Inc()
}

// HTTP metrics.

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
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByType records an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
}

// Store metrics.

// RecordStoreLatency records a store operation latency in milliseconds.
func RecordStoreLatency(store, op string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(store, op).Observe(latencyMs)
}

// RecordStoreError counts a failed store operation.
func RecordStoreError(store, op string) {
	globalManager.storeErrors.WithLabelValues(store, op).Inc()
}

// System metrics.

// UpdateSystemMemoryUsage sets the memory usage gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
