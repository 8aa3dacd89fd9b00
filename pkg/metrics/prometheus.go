// Package metrics provides Prometheus metrics for the forest service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Ingest
	entriesIngested  prometheus.Counter
	entriesDuplicate prometheus.Counter
	entriesStored    prometheus.Gauge

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerErrors            prometheus.Counter
	workerProcessingLatency prometheus.Histogram

	// Store
	storeLatency *prometheus.HistogramVec

	// Layout and animation
	layoutDuration   prometheus.Histogram
	layoutPlacements *prometheus.CounterVec
	lightsMounted    prometheus.Gauge
	flickerTicks     prometheus.Counter
	flickerStalls    prometheus.Counter
	sceneComposed    *prometheus.CounterVec
	pulses           prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "forest",
		subsystem:        "scene",
		histogramBuckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
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
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: m.histogramBuckets,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.entriesIngested = m.counter("entries_ingested_total", "Entry references accepted into the store")
	m.entriesDuplicate = m.counter("entries_duplicate_total", "Entry references rejected as duplicates")
	m.entriesStored = m.gauge("entries_stored", "Entry references currently held by the store")

	m.queueSize = m.gauge("queue_size", "Current ingest queue depth")
	m.queueCapacity = m.gauge("queue_capacity", "Ingest queue capacity")
	m.queueEnqueued = m.counter("queue_enqueue_total", "Entries enqueued for ingest")
	m.queueDequeued = m.counter("queue_dequeue_total", "Entries dequeued by workers")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Enqueue attempts refused by backpressure")

	m.workerCount = m.gauge("worker_count", "Running ingest workers")
	m.workerErrors = m.counter("worker_errors_total", "Ingest failures inside workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Time to store one entry")

	m.storeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "store_operation_latency_milliseconds",
		Help:    "Store operation latency by operation",
		Buckets: m.histogramBuckets,
	}, []string{"op"})

	m.layoutDuration = m.histogram("layout_duration_milliseconds", "Time to place every light of an entry set")
	m.layoutPlacements = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "layout_placements_total",
		Help: "Placed lights by outcome (accepted, best_effort, centered)",
	}, []string{"outcome"})
	m.lightsMounted = m.gauge("lights_mounted", "Lights with a running flicker task")
	m.flickerTicks = m.counter("flicker_ticks_total", "Flicker ticks across every light")
	m.flickerStalls = m.counter("flicker_stalls_total", "Flicker stalls started")
	m.sceneComposed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "scene_compositions_total",
		Help: "Composed scenes by output format",
	}, []string{"format"})
	m.pulses = m.counter("pulses_total", "Highlight pulses attached to a scene")

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total",
		Help: "HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration by endpoint, method and status",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "errors_total",
		Help: "Errors by component and type",
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes in use")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordEntryIngested increments the ingested entries counter.
func RecordEntryIngested() {
	globalManager.entriesIngested.Inc()
}

// RecordEntryDuplicate increments the duplicate entries counter.
func RecordEntryDuplicate() {
	globalManager.entriesDuplicate.Inc()
}

// UpdateEntriesStored sets the stored entries gauge.
func UpdateEntriesStored(count int) {
	globalManager.entriesStored.Set(float64(count))
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// Worker Metrics Functions.

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordStoreLatency records the latency of a store operation.
func RecordStoreLatency(op string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(op).Observe(latencyMs)
}

// Layout and animation.

// RecordLayoutDuration records the time taken by one layout pass.
func RecordLayoutDuration(latencyMs float64) {
	globalManager.layoutDuration.Observe(latencyMs)
}

// RecordLayoutPlacements adds n placements with the given outcome.
func RecordLayoutPlacements(outcome string, n int) {
	if n > 0 {
		globalManager.layoutPlacements.WithLabelValues(outcome).Add(float64(n))
	}
}

// UpdateLightsMounted sets the mounted lights gauge.
func UpdateLightsMounted(count int) {
	globalManager.lightsMounted.Set(float64(count))
}

// RecordFlickerTick increments the flicker tick counter.
func RecordFlickerTick() {
	globalManager.flickerTicks.Inc()
}

// RecordFlickerStall increments the flicker stall counter.
func RecordFlickerStall() {
	globalManager.flickerStalls.Inc()
}

// RecordSceneComposed increments the composed scenes counter for format.
func RecordSceneComposed(format string) {
	globalManager.sceneComposed.WithLabelValues(format).Inc()
}

// RecordPulse increments the pulse counter.
func RecordPulse() {
	globalManager.pulses.Inc()
}

// HTTP.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
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
