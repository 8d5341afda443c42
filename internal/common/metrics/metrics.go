// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StageRunsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stage_runs_completed_total",
			Help: "Total number of flow stage runs completed",
		},
		[]string{"task_type"},
	)

	StageRunsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stage_runs_failed_total",
			Help: "Total number of flow stage runs failed",
		},
		[]string{"task_type", "error_code"},
	)

	StageRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stage_run_duration_seconds",
			Help:    "Duration of stage processing in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		},
		[]string{"task_type"},
	)

	ValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "validation_failures_total",
			Help: "Total number of rejected form fields",
		},
		[]string{"field"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"route", "method", "status"},
	)
)
