// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_turns_total",
			Help: "Total number of chat turns by route taken",
		},
		[]string{"route"},
	)

	AutomationDispatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "automation_dispatch_total",
			Help: "Total number of direct automation dispatches",
		},
		[]string{"intent", "status"},
	)

	AutomationDispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "automation_dispatch_duration_seconds",
			Help:    "Duration of direct automation dispatches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"intent"},
	)

	ApprovalsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "approvals_resolved_total",
			Help: "Total number of resolved approval requests",
		},
		[]string{"decision"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)

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

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

// Route labels for ChatTurns.
const (
	RouteDirect   = "direct"
	RouteEager    = "eager"
	RouteApproval = "approval"
	RouteChat     = "general_chat"
)
