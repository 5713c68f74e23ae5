// Package metrics provides Prometheus metrics for the feelings board service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the feelings board service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Upload validation metrics
	uploadsAccepted    prometheus.Counter
	uploadsRejected    *prometheus.CounterVec
	validateLatency    prometheus.Histogram
	classifierFailOpen prometheus.Counter

	// Session gate metrics
	sessionsStarted    prometheus.Counter
	cooldownRejections prometheus.Counter
	avatarsCreated     prometheus.Counter

	// Personalization pipeline metrics
	composeSuccess        prometheus.Counter
	composeFailures       prometheus.Counter
	composeLatency        prometheus.Histogram
	generationsStarted    prometheus.Counter
	generationsSuperseded prometheus.Counter
	tilesPersonalized     prometheus.Gauge

	// Queue metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueues      prometheus.Counter
	queueDequeues      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker metrics
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Speech metrics
	utterancesSpoken  prometheus.Counter
	utteranceFailures prometheus.Counter
	voiceGateWait     prometheus.Histogram
	tileTaps          *prometheus.CounterVec

	// Collage metrics
	collagesRendered prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "metalk",
		subsystem:        "feelings",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.uploadsAccepted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "uploads_accepted_total",
		Help:      "Total number of uploads that passed validation",
	})

	m.uploadsRejected = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "uploads_rejected_total",
			Help:      "Total number of uploads rejected by validation, labeled by stage",
		},
		[]string{"stage"},
	)

	m.validateLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "validate_latency_milliseconds",
		Help:      "Histogram of upload validation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.classifierFailOpen = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "classifier_fail_open_total",
		Help:      "Total number of safety checks that passed because the classifier was unavailable",
	})

	m.sessionsStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_started_total",
		Help:      "Total number of sessions initialized",
	})

	m.cooldownRejections = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cooldown_rejections_total",
		Help:      "Total number of generation requests rejected by the cooldown gate",
	})

	m.avatarsCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "avatars_created_total",
		Help:      "Total number of accepted generations across all sessions",
	})

	m.composeSuccess = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "compose_success_total",
		Help:      "Total number of tiles personalized successfully",
	})

	m.composeFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "compose_failures_total",
		Help:      "Total number of per-tile compose failures (tile falls back to reference image)",
	})

	m.composeLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "compose_latency_milliseconds",
		Help:      "Histogram of per-tile compose call latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.generationsStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "generations_started_total",
		Help:      "Total number of personalization pipeline runs started",
	})

	m.generationsSuperseded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "generations_superseded_total",
		Help:      "Total number of pipeline runs superseded by a newer upload",
	})

	m.tilesPersonalized = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tiles_personalized",
		Help:      "Number of tiles with a personalized image in the active generation",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current size of the compose job queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Maximum compose job queue capacity",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization_ratio",
		Help:      "Queue utilization ratio (current size / capacity)",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_total",
		Help:      "Total number of compose jobs enqueued",
	})

	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeue_total",
		Help:      "Total number of compose jobs dequeued",
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Total number of enqueue errors",
	})

	m.workerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_active_count",
		Help:      "Number of active compose workers",
	})

	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_processing_latency_milliseconds",
		Help:      "Worker job processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Total number of worker errors",
	})

	m.utterancesSpoken = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "utterances_spoken_total",
		Help:      "Total number of utterances spoken successfully",
	})

	m.utteranceFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "utterance_failures_total",
		Help:      "Total number of utterances that failed (caller degrades to visual-only)",
	})

	m.voiceGateWait = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "voice_gate_wait_milliseconds",
		Help:      "Histogram of time spent waiting for the voice list to become ready",
		Buckets:   m.histogramBuckets,
	})

	m.tileTaps = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "tile_taps_total",
			Help:      "Total number of tile taps by language",
		},
		[]string{"lang"},
	)

	m.collagesRendered = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "collages_rendered_total",
		Help:      "Total number of collage exports rendered",
	})

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
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current heap memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})
}

// Upload validation metrics functions.

// RecordUploadAccepted increments the accepted uploads counter.
func RecordUploadAccepted() {
	globalManager.uploadsAccepted.Inc()
}

// RecordUploadRejected increments the rejected uploads counter for a stage.
func RecordUploadRejected(stage string) {
	globalManager.uploadsRejected.WithLabelValues(stage).Inc()
}

// RecordValidateLatency records upload validation latency.
func RecordValidateLatency(latencyMs float64) {
	globalManager.validateLatency.Observe(latencyMs)
}

// RecordClassifierFailOpen increments the fail-open counter.
func RecordClassifierFailOpen() {
	globalManager.classifierFailOpen.Inc()
}

// Session gate metrics functions.

// RecordSessionStarted increments the sessions started counter.
func RecordSessionStarted() {
	globalManager.sessionsStarted.Inc()
}

// RecordCooldownRejection increments the cooldown rejection counter.
func RecordCooldownRejection() {
	globalManager.cooldownRejections.Inc()
}

// RecordAvatarCreated increments the accepted generation counter.
func RecordAvatarCreated() {
	globalManager.avatarsCreated.Inc()
}

// Pipeline metrics functions.

// RecordComposeSuccess increments the compose success counter.
func RecordComposeSuccess() {
	globalManager.composeSuccess.Inc()
}

// RecordComposeFailure increments the compose failure counter.
func RecordComposeFailure() {
	globalManager.composeFailures.Inc()
}

// RecordComposeLatency records per-tile compose latency.
func RecordComposeLatency(latencyMs float64) {
	globalManager.composeLatency.Observe(latencyMs)
}

// RecordGenerationStarted increments the pipeline run counter.
func RecordGenerationStarted() {
	globalManager.generationsStarted.Inc()
}

// RecordGenerationSuperseded increments the superseded pipeline counter.
func RecordGenerationSuperseded() {
	globalManager.generationsSuperseded.Inc()
}

// UpdateTilesPersonalized sets the personalized tile count for the active generation.
func UpdateTilesPersonalized(count int) {
	globalManager.tilesPersonalized.Set(float64(count))
}

// Queue metrics functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueues.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeues.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// Worker metrics functions.

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// Speech metrics functions.

// RecordUtteranceSpoken increments the spoken utterance counter.
func RecordUtteranceSpoken() {
	globalManager.utterancesSpoken.Inc()
}

// RecordUtteranceFailure increments the failed utterance counter.
func RecordUtteranceFailure() {
	globalManager.utteranceFailures.Inc()
}

// RecordVoiceGateWait records time spent waiting for voice readiness.
func RecordVoiceGateWait(waitMs float64) {
	globalManager.voiceGateWait.Observe(waitMs)
}

// RecordTileTap increments the tile tap counter for a language.
func RecordTileTap(lang string) {
	globalManager.tileTaps.WithLabelValues(lang).Inc()
}

// Collage metrics functions.

// RecordCollageRendered increments the collage export counter.
func RecordCollageRendered() {
	globalManager.collagesRendered.Inc()
}

// HTTP metrics functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// System metrics functions.

// UpdateSystemMemoryUsage sets the heap memory usage in bytes.
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
