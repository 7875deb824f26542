package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		lifecycleEventsTotal,
		notificationsTotal,
		ledgerCallFailuresTotal,
	)
}

var (
	lifecycleEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifecycle_events_total",
			Help: "Derived lifecycle events by type.",
		},
		[]string{"type"}, // 'activated', 'expired', 'new_purchase'
	)

	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Provider change notifications by kind and outcome.",
		},
		[]string{"kind", "outcome"}, // outcome: 'accepted', 'rejected', 'dropped'
	)

	ledgerCallFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_call_failures_total",
			Help: "Ledger operations that failed while applying a lifecycle update.",
		},
		[]string{"op"},
	)
)

func IncLifecycleEvent(kind string, n int) {
	lifecycleEventsTotal.WithLabelValues(norm(kind)).Add(float64(n))
}

func IncNotification(kind, outcome string) {
	notificationsTotal.WithLabelValues(norm(kind), norm(outcome)).Inc()
}

func IncLedgerCallFailure(op string) {
	ledgerCallFailuresTotal.WithLabelValues(norm(op)).Inc()
}
