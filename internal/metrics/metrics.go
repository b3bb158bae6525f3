package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unplayer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "unplayer_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "unplayer_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unplayer_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "unplayer_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)
)

// Scan metrics
var (
	ScanRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "unplayer_scan_runs_total",
			Help: "Total number of library scans",
		},
	)

	ScanErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "unplayer_scan_errors_total",
			Help: "Total number of errors encountered during scans",
		},
	)

	ScanIsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "unplayer_scan_running",
			Help: "Whether a library scan is currently in progress",
		},
	)

	ScanLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "unplayer_scan_last_run_timestamp",
			Help: "Timestamp of the last completed scan",
		},
	)

	ScanLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "unplayer_scan_last_run_duration_seconds",
			Help: "Duration of the last completed scan in seconds",
		},
	)

	TracksInserted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "unplayer_tracks_inserted_total",
			Help: "Total number of tracks inserted into the index",
		},
	)

	TracksUpdated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "unplayer_tracks_updated_total",
			Help: "Total number of tracks updated in the index",
		},
	)

	TracksRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "unplayer_tracks_removed_total",
			Help: "Total number of tracks removed from the index",
		},
	)
)

// Artwork cache metrics
var (
	ArtFilesWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "unplayer_art_files_written_total",
			Help: "Total number of artwork files written to the cache",
		},
	)

	ArtFilesRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "unplayer_art_files_removed_total",
			Help: "Total number of orphaned artwork files removed from the cache",
		},
	)
)
