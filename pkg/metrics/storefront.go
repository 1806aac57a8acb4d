package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics records checkout and coupon flow outcomes.
type StorefrontMetrics struct {
	checkoutDuration *prometheus.HistogramVec
	checkoutOutcome  *prometheus.CounterVec
	couponOutcome    *prometheus.CounterVec
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	checkoutDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout submissions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	checkoutOutcome := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_submissions_total",
		Help: "Checkout submissions by outcome.",
	}, []string{"outcome"})
	couponOutcome := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coupon_validations_total",
		Help: "Coupon validation attempts by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(checkoutDuration, checkoutOutcome, couponOutcome)
	return &StorefrontMetrics{
		checkoutDuration: checkoutDuration,
		checkoutOutcome:  checkoutOutcome,
		couponOutcome:    couponOutcome,
	}
}

// ObserveCheckout records a checkout submission and its duration.
func (m *StorefrontMetrics) ObserveCheckout(outcome string, duration time.Duration) {
	if m == nil || m.checkoutOutcome == nil {
		return
	}
	label := normalizeLabel(outcome)
	m.checkoutOutcome.WithLabelValues(label).Inc()
	m.checkoutDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// IncCoupon counts a coupon validation attempt.
func (m *StorefrontMetrics) IncCoupon(outcome string) {
	if m == nil || m.couponOutcome == nil {
		return
	}
	m.couponOutcome.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(outcome string) string {
	if outcome == "" {
		return "unknown"
	}
	return outcome
}
