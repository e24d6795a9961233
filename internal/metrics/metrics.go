package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtube_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidtube_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vidtube_rate_limited_total",
			Help: "Requests rejected by the per-client rate limiter",
		},
	)

	// Auth Metrics
	AuthEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtube_auth_events_total",
			Help: "Authentication events by type and outcome",
		},
		[]string{"event", "result"},
	)

	// Media Metrics
	MediaUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtube_media_uploads_total",
			Help: "Uploads to the media host by kind and outcome",
		},
		[]string{"kind", "result"},
	)

	MediaUploadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidtube_media_upload_duration_seconds",
			Help:    "Time spent pushing one file to the media host",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~100s
		},
		[]string{"kind"},
	)

	MediaUploadSizeBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidtube_media_upload_size_bytes",
			Help:    "Size of uploaded files in bytes",
			Buckets: prometheus.ExponentialBuckets(64*1024, 4, 10), // 64KB to ~16GB
		},
		[]string{"kind"},
	)

	MediaDeletesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtube_media_deletes_total",
			Help: "Deletes sent to the media host by outcome",
		},
		[]string{"result"},
	)

	MediaBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vidtube_media_breaker_state",
			Help: "Media host circuit state (0 closed, 1 open, 2 half-open)",
		},
		[]string{"name"},
	)

	// Cache Metrics
	VideoCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidtube_video_cache_requests_total",
			Help: "Video cache lookups by result",
		},
		[]string{"result"},
	)
)

// Outcome maps an error to the result label used across counters.
func Outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
