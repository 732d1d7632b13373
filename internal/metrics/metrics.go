package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ingestion pipeline metrics
var (
	IngestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doceater_ingest_total",
			Help: "Total ingestion attempts by outcome",
		},
		[]string{"outcome"},
	)

	IngestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "doceater_ingest_duration_seconds",
			Help:    "Duration of complete ingestion attempts in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	IngestInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "doceater_ingest_in_flight",
			Help: "Number of ingestion attempts currently running",
		},
	)

	ConversionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "doceater_conversion_duration_seconds",
			Help:    "Duration of external converter invocations in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)
)

// Watcher and worker pool metrics
var (
	WatcherEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doceater_watcher_events_total",
			Help: "Raw filesystem events received, by operation",
		},
		[]string{"op"},
	)

	DebounceTriggersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "doceater_debounce_triggers_total",
			Help: "Debounced triggers handed to the worker pool",
		},
	)

	PoolQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "doceater_pool_queue_depth",
			Help: "Triggers waiting for a free worker",
		},
	)

	PoolActiveWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "doceater_pool_active_workers",
			Help: "Workers currently running an ingestion",
		},
	)
)

// Image storage metrics
var (
	ImagesStoredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "doceater_images_stored_total",
			Help: "Extracted images durably stored",
		},
	)

	ImagesSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doceater_images_skipped_total",
			Help: "Extracted images skipped during storage, by reason",
		},
		[]string{"reason"},
	)

	ImageCleanupFilesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "doceater_image_cleanup_files_total",
			Help: "Image files removed by failure cleanup",
		},
	)

	StorageFiles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "doceater_storage_files",
			Help: "Files under the image storage root at last scan",
		},
	)

	StorageBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "doceater_storage_bytes",
			Help: "Bytes under the image storage root at last scan",
		},
	)
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doceater_http_requests_total",
			Help: "Total HTTP requests by method, path and status",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "doceater_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "doceater_http_requests_in_flight",
			Help: "HTTP requests currently being served",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doceater_db_queries_total",
			Help: "Total database operations",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "doceater_db_query_duration_seconds",
			Help:    "Database operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "doceater_db_connections_open",
			Help: "Open database connections",
		},
	)
)
