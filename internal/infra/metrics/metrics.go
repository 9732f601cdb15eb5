package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Notification delivery attempts by type and outcome",
		},
		[]string{"type", "status"},
	)

	loginFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "login_failures_total",
			Help: "Total number of failed login attempts",
		},
	)

	loginBlocked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "login_blocked_total",
			Help: "Login attempts rejected because the account is locked",
		},
	)

	identityExtractions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "identity_extractions_total",
			Help: "Identity document extractions by document and result",
		},
		[]string{"document", "status"},
	)

	batchPayments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "expense_payments_total",
			Help: "Expense payments processed by outcome",
		},
		[]string{"status"},
	)
)

func RecordNotification(typ, status string) {
	notificationsTotal.WithLabelValues(typ, status).Inc()
}

func RecordLoginFailure() {
	loginFailures.Inc()
}

func RecordLoginBlocked() {
	loginBlocked.Inc()
}

func RecordIdentityExtraction(document, status string) {
	identityExtractions.WithLabelValues(document, status).Inc()
}

func RecordExpensePayment(status string) {
	batchPayments.WithLabelValues(status).Inc()
}
