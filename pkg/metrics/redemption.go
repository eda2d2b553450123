package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RedemptionMetrics records outcomes of payment code verification and settlement.
type RedemptionMetrics struct {
	verifications *prometheus.CounterVec
	settlements   *prometheus.CounterVec
	duration      *prometheus.HistogramVec
}

// NewRedemptionMetrics registers the redemption metrics on the provided registerer.
func NewRedemptionMetrics(reg prometheus.Registerer) *RedemptionMetrics {
	if reg == nil {
		return &RedemptionMetrics{}
	}
	verifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_code_verifications_total",
		Help: "Payment code verification attempts by namespace and outcome.",
	}, []string{"namespace", "outcome"})
	settlements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_settlements_total",
		Help: "Settlement attempts by namespace and outcome.",
	}, []string{"namespace", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_settlement_duration_seconds",
		Help:    "Duration of settlement transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"namespace"})
	reg.MustRegister(verifications, settlements, duration)
	return &RedemptionMetrics{
		verifications: verifications,
		settlements:   settlements,
		duration:      duration,
	}
}

// IncVerification increments the verification counter for the namespace and outcome.
func (r *RedemptionMetrics) IncVerification(namespace, outcome string) {
	if r == nil || r.verifications == nil {
		return
	}
	r.verifications.WithLabelValues(normalizeLabel(namespace), normalizeLabel(outcome)).Inc()
}

// IncSettlement increments the settlement counter for the namespace and outcome.
func (r *RedemptionMetrics) IncSettlement(namespace, outcome string) {
	if r == nil || r.settlements == nil {
		return
	}
	r.settlements.WithLabelValues(normalizeLabel(namespace), normalizeLabel(outcome)).Inc()
}

// ObserveSettlementDuration records how long a settlement transaction took.
func (r *RedemptionMetrics) ObserveSettlementDuration(namespace string, duration time.Duration) {
	if r == nil || r.duration == nil {
		return
	}
	r.duration.WithLabelValues(normalizeLabel(namespace)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
