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

	// NotificationsTotal counts delivery outcomes: sent, failed or skipped.
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Notifications processed by channel and outcome",
		},
		[]string{"channel", "status"},
	)

	AutomationRulesMatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "automation_rules_matched_total",
			Help: "Automation rules that matched a trigger event",
		},
		[]string{"trigger"},
	)

	TemplateCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_template_cache_lookups_total",
			Help: "Site template cache lookups by result",
		},
		[]string{"result"},
	)

	TemplateRenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "template_render_duration_seconds",
			Help:    "Time spent rendering a template preview",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
		[]string{"template_type"},
	)
)
