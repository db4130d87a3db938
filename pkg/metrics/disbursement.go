package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DisbursementMetrics records outcomes of the distribution pipeline.
type DisbursementMetrics struct {
	duration     *prometheus.HistogramVec
	transactions *prometheus.CounterVec
	payouts      *prometheus.CounterVec
	rejected     prometheus.Counter
}

// NewDisbursementMetrics registers the disbursement metrics on the provided registerer.
func NewDisbursementMetrics(reg prometheus.Registerer) *DisbursementMetrics {
	if reg == nil {
		return &DisbursementMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "disbursement_duration_seconds",
		Help:    "Duration of end-to-end disbursements in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})
	transactions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "disbursement_transactions_total",
		Help: "Disbursed transactions by terminal status.",
	}, []string{"status"})
	payouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "disbursement_payouts_total",
		Help: "Individual payout attempts by rail and outcome.",
	}, []string{"rail", "outcome"})
	rejected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "disbursement_rejected_total",
		Help: "Purchase submissions rejected before execution.",
	})
	reg.MustRegister(duration, transactions, payouts, rejected)
	return &DisbursementMetrics{
		duration:     duration,
		transactions: transactions,
		payouts:      payouts,
		rejected:     rejected,
	}
}

// ObserveDuration records how long a disbursement took for the given terminal status.
func (m *DisbursementMetrics) ObserveDuration(status string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(status)).Observe(duration.Seconds())
}

// IncTransaction counts a transaction reaching a terminal status.
func (m *DisbursementMetrics) IncTransaction(status string) {
	if m == nil || m.transactions == nil {
		return
	}
	m.transactions.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncPayout counts one payout attempt by rail and outcome.
func (m *DisbursementMetrics) IncPayout(rail, outcome string) {
	if m == nil || m.payouts == nil {
		return
	}
	m.payouts.WithLabelValues(normalizeLabel(rail), normalizeLabel(outcome)).Inc()
}

// IncRejected counts a purchase rejected at validation time.
func (m *DisbursementMetrics) IncRejected() {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
