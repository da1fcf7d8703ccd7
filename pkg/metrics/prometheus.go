// Package metrics provides Prometheus metrics for the briefmatch engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Run metrics
	runsStarted  prometheus.Counter
	runsFailed   *prometheus.CounterVec
	runsCanceled prometheus.Counter
	phaseEmitted *prometheus.CounterVec
	phaseSkipped *prometheus.CounterVec
	phaseLatency *prometheus.HistogramVec
	poolSize     prometheus.Histogram

	// Scoring metrics
	scoringLatency prometheus.Histogram
	scoringErrors  prometheus.Counter

	// Cache metrics
	cacheHits      *prometheus.CounterVec
	cacheMisses    prometheus.Counter
	cacheEvictions prometheus.Counter
	cacheErrors    *prometheus.CounterVec
	cacheEntries   prometheus.Gauge
	cachePurged    prometheus.Counter

	// Remote and embedding metrics
	remoteCalls          *prometheus.CounterVec
	remoteLatency        *prometheus.HistogramVec
	embeddingRegenerated prometheus.Counter
	embeddingFallbacks   prometheus.Counter
	embeddingStoreErrors prometheus.Counter

	// Background scheduling
	queueSize         prometheus.Gauge
	queueCapacity     prometheus.Gauge
	queueRejected     prometheus.Counter
	workerActiveCount prometheus.Gauge
	workerJobLatency  prometheus.Histogram
	workerJobPanics   prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:        "briefmatch",
		subsystem:        "engine",
		histogramBuckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
		Buckets: m.histogramBuckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
		Buckets: m.histogramBuckets,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	m.runsStarted = m.counter("runs_started_total", "Total number of matching runs started")
	m.runsFailed = m.counterVec("runs_failed_total", "Matching runs that failed hard, by reason", "reason")
	m.runsCanceled = m.counter("runs_canceled_total", "Matching runs canceled before completion")
	m.phaseEmitted = m.counterVec("phase_emitted_total", "Match events emitted, by phase", "phase")
	m.phaseSkipped = m.counterVec("phase_skipped_total", "Phases skipped, by phase and reason", "phase", "reason")
	m.phaseLatency = m.histogramVec("phase_latency_milliseconds", "Time from run start to phase emission", "phase")
	m.poolSize = m.histogram("candidate_pool_size", "Number of eligible candidates fetched per run")

	m.scoringLatency = m.histogram("scoring_latency_milliseconds", "Per-candidate instant scoring latency")
	m.scoringErrors = m.counter("scoring_errors_total", "Per-candidate scoring failures")

	m.cacheHits = m.counterVec("cache_hits_total", "Result cache hits, by tier", "tier")
	m.cacheMisses = m.counter("cache_misses_total", "Result cache misses across both tiers")
	m.cacheEvictions = m.counter("cache_evictions_total", "Entries evicted from the in-process tier")
	m.cacheErrors = m.counterVec("cache_errors_total", "Durable tier errors, by operation", "op")
	m.cacheEntries = m.gauge("cache_entries", "Entries currently held in the in-process tier")
	m.cachePurged = m.counter("cache_purged_total", "Expired entries removed by the janitor")

	m.remoteCalls = m.counterVec("remote_calls_total", "Remote scorer calls, by provider, operation and status", "provider", "op", "status")
	m.remoteLatency = m.histogramVec("remote_latency_milliseconds", "Remote scorer call latency", "provider", "op")
	m.embeddingRegenerated = m.counter("embedding_regenerated_total", "Candidate embeddings regenerated after a hash mismatch or miss")
	m.embeddingFallbacks = m.counter("embedding_fallbacks_total", "Similarity scores that fell back to the neutral value")
	m.embeddingStoreErrors = m.counter("embedding_store_errors_total", "Embedding persistence failures")

	m.queueSize = m.gauge("background_queue_size", "Background phase jobs waiting")
	m.queueCapacity = m.gauge("background_queue_capacity", "Background phase queue capacity")
	m.queueRejected = m.counter("background_queue_rejected_total", "Background jobs rejected on a full queue")
	m.workerActiveCount = m.gauge("worker_active_count", "Background workers running")
	m.workerJobLatency = m.histogram("worker_job_latency_milliseconds", "Background job execution time")
	m.workerJobPanics = m.counter("worker_job_panics_total", "Background jobs that panicked")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Current memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Current number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "Average GC pause time in milliseconds")
}

// Run metrics.

// RecordRunStarted increments the runs started counter.
func RecordRunStarted() { globalManager.runsStarted.Inc() }

// RecordRunFailed counts a hard run failure.
func RecordRunFailed(reason string) { globalManager.runsFailed.WithLabelValues(reason).Inc() }

// RecordRunCanceled counts a canceled run.
func RecordRunCanceled() { globalManager.runsCanceled.Inc() }

// RecordPhaseEmitted counts an emitted event and its latency since run start.
func RecordPhaseEmitted(phase string, sinceStartMs float64) {
	globalManager.phaseEmitted.WithLabelValues(phase).Inc()
	globalManager.phaseLatency.WithLabelValues(phase).Observe(sinceStartMs)
}

// RecordPhaseSkipped counts a skipped phase.
func RecordPhaseSkipped(phase, reason string) {
	globalManager.phaseSkipped.WithLabelValues(phase, reason).Inc()
}

// RecordPoolSize observes the number of candidates fetched for a run.
func RecordPoolSize(n int) { globalManager.poolSize.Observe(float64(n)) }

// RecordScoringLatency records scoring latency in milliseconds.
func RecordScoringLatency(latencyMs float64) { globalManager.scoringLatency.Observe(latencyMs) }

// RecordScoringError increments the scoring errors counter.
func RecordScoringError() { globalManager.scoringErrors.Inc() }

// Cache metrics.

// RecordCacheHit counts a hit on the given tier ("memory" or "durable").
func RecordCacheHit(tier string) { globalManager.cacheHits.WithLabelValues(tier).Inc() }

// RecordCacheMiss counts a miss on both tiers.
func RecordCacheMiss() { globalManager.cacheMisses.Inc() }

// RecordCacheEviction counts an in-process eviction.
func RecordCacheEviction() { globalManager.cacheEvictions.Inc() }

// RecordCacheError counts a durable tier error for op ("get", "set", "purge").
func RecordCacheError(op string) { globalManager.cacheErrors.WithLabelValues(op).Inc() }

// UpdateCacheEntries sets the in-process tier size.
func UpdateCacheEntries(n int) { globalManager.cacheEntries.Set(float64(n)) }

// RecordCachePurged adds n purged entries.
func RecordCachePurged(n int) { globalManager.cachePurged.Add(float64(n)) }

// Remote and embedding metrics.

// RecordRemoteCall counts a remote call and observes its latency.
func RecordRemoteCall(provider, op, status string, latencyMs float64) {
	globalManager.remoteCalls.WithLabelValues(provider, op, status).Inc()
	globalManager.remoteLatency.WithLabelValues(provider, op).Observe(latencyMs)
}

// RecordEmbeddingRegenerated counts an embedding regeneration.
func RecordEmbeddingRegenerated() { globalManager.embeddingRegenerated.Inc() }

// RecordEmbeddingFallback counts a neutral similarity fallback.
func RecordEmbeddingFallback() { globalManager.embeddingFallbacks.Inc() }

// RecordEmbeddingStoreError counts an embedding persistence failure.
func RecordEmbeddingStoreError() { globalManager.embeddingStoreErrors.Inc() }

// Background scheduling metrics.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// RecordQueueRejected counts a job rejected by a full queue.
func RecordQueueRejected() { globalManager.queueRejected.Inc() }

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) { globalManager.workerActiveCount.Set(float64(count)) }

// RecordWorkerJobLatency records background job execution time.
func RecordWorkerJobLatency(latencyMs float64) { globalManager.workerJobLatency.Observe(latencyMs) }

// RecordWorkerJobPanic counts a recovered job panic.
func RecordWorkerJobPanic() { globalManager.workerJobPanics.Inc() }

// HTTP metrics.

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
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseTime.Observe(pauseMs) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
