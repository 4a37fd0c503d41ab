// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "support_submissions_received_total",
			Help: "Total number of support form submissions received",
		},
	)

	SubmissionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "support_submissions_rejected_total",
			Help: "Total number of submissions rejected by validation",
		},
		[]string{"field"},
	)

	SubmissionsPersisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "support_submissions_persisted_total",
			Help: "Total number of submissions written to the store",
		},
	)

	ForwardAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "support_forward_attempts_total",
			Help: "Outcomes of Help Scout conversation deliveries",
		},
		[]string{"outcome"},
	)

	FallbackAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "support_fallback_attempts_total",
			Help: "Outcomes of internal alert conversation deliveries",
		},
		[]string{"outcome"},
	)

	ForwardDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "support_forward_duration_seconds",
			Help: "Duration of the forwarding step in seconds",
		},
	)
)
