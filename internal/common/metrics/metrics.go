// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	ScoresComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoring_scores_computed_total",
			Help: "Total fit scores computed, labeled by must-cap outcome",
		},
		[]string{"capped"},
	)

	ScoreDistribution = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scoring_total_fit",
			Help:    "Distribution of computed total fit scores (0-100)",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	ConfigPublishes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scoring_config_publishes_total",
			Help: "Total scoring config versions published",
		},
	)

	ActiveConfigVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scoring_config_active_version",
			Help: "Version number of the active scoring config",
		},
	)
)
