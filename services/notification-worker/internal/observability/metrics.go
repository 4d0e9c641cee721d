package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NotificationsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payportal",
			Subsystem: "notification_worker",
			Name:      "jobs_total",
			Help:      "Notification jobs by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	NotificationRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "payportal",
			Subsystem: "notification_worker",
			Name:      "retries_total",
			Help:      "Notification delivery retries",
		},
	)

	NotificationsDeadLettered = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "payportal",
			Subsystem: "notification_worker",
			Name:      "dead_lettered_total",
			Help:      "Notification jobs sent to the DLQ",
		},
	)
)
