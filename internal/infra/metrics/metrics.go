package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resultado de notificação usado como label.
const (
	NotificationSuccess   = "success"
	NotificationFailure   = "failure"
	NotificationNoWebhook = "no_webhook"
	NotificationSkipped   = "skipped"
	NotificationQueued    = "queued"
)

var (
	leadsDistributed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_distributed_total",
			Help: "Total number of leads assigned to a participant",
		},
		[]string{"status"},
	)

	distributionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "distribution_errors_total",
			Help: "Total number of rejected or failed distributions",
		},
		[]string{"code"},
	)

	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Total number of chat notifications by outcome",
		},
		[]string{"outcome"},
	)

	notificationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "notification_duration_seconds",
			Help:    "Duration of chat webhook calls in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	pointerResets = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rotation_pointer_resets_total",
			Help: "Total number of out-of-range rotation pointers reset by the reconciler",
		},
	)
)

func RecordLeadDistributed(status string) {
	leadsDistributed.WithLabelValues(status).Inc()
}

func RecordDistributionError(code string) {
	distributionErrors.WithLabelValues(code).Inc()
}

// RecordNotification conta o resultado; elapsed só é observado em chamadas
// reais ao webhook.
func RecordNotification(outcome string, elapsed time.Duration) {
	notificationsTotal.WithLabelValues(outcome).Inc()
	if outcome == NotificationSuccess || outcome == NotificationFailure {
		notificationDuration.Observe(elapsed.Seconds())
	}
}

func RecordPointerResets(n int) {
	pointerResets.Add(float64(n))
}
