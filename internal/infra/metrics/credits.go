package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		creditsConsumedTotal,
		creditsGrantedTotal,
		creditsRefundedTotal,
		giftResetsTotal,
		giftClearsTotal,
		insufficientCreditTotal,
		creditsOutstanding,
		balancesTotal,
	)
}

var (
	creditsConsumedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credits_consumed_total",
			Help: "Credits debited from user balances, split by bucket.",
		},
		[]string{"bucket"}, // 'gift', 'paid'
	)

	creditsGrantedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "credits_granted_total",
			Help: "Paid credits granted from purchase events.",
		},
	)

	creditsRefundedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "credits_refunded_total",
			Help: "Paid credits subtracted by refunds (after clamping).",
		},
	)

	giftResetsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gift_resets_total",
			Help: "Gift bucket resets triggered by entitlement activations.",
		},
	)

	giftClearsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gift_clears_total",
			Help: "Gift bucket clears triggered by entitlement expiries.",
		},
	)

	insufficientCreditTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "insufficient_credit_total",
			Help: "Consume calls rejected because the balance could not cover them.",
		},
	)

	creditsOutstanding = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "credits_outstanding",
			Help: "Current credit held across all balances, split by bucket.",
		},
		[]string{"bucket"},
	)

	balancesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "balances_total",
			Help: "Number of credit balance records.",
		},
	)
)

func IncConsumed(usedGift, usedPaid int) {
	if usedGift > 0 {
		creditsConsumedTotal.WithLabelValues("gift").Add(float64(usedGift))
	}
	if usedPaid > 0 {
		creditsConsumedTotal.WithLabelValues("paid").Add(float64(usedPaid))
	}
}

func IncGranted(amount int)  { creditsGrantedTotal.Add(float64(amount)) }
func IncRefunded(amount int) { creditsRefundedTotal.Add(float64(amount)) }
func IncGiftReset()          { giftResetsTotal.Inc() }
func IncGiftClear()          { giftClearsTotal.Inc() }
func IncInsufficientCredit() { insufficientCreditTotal.Inc() }

func SetOutstanding(gift, paid int64) {
	creditsOutstanding.WithLabelValues("gift").Set(float64(gift))
	creditsOutstanding.WithLabelValues("paid").Set(float64(paid))
}

func SetBalancesTotal(n int) { balancesTotal.Set(float64(n)) }
