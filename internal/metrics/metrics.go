package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Coupon outcome labels.
const (
	CouponApplied  = "applied"
	CouponRejected = "rejected"
	CouponFailed   = "failed"
	CouponStale    = "stale"
)

// Metrics holds the quote engine's prometheus collectors.
type Metrics struct {
	QuotesTotal        *prometheus.CounterVec
	QuoteDuration      prometheus.Histogram
	QuoteErrors        *prometheus.CounterVec
	PeriodFallbacks    prometheus.Counter
	CouponOutcomes     *prometheus.CounterVec
	CouponCallDuration prometheus.Histogram
}

// NewMetrics registers collectors on reg. A nil reg uses the default registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		QuotesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_total",
			Help:      "The total number of computed trip quotes",
		}, []string{"legs", "bookable"}),
		QuoteDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_duration_seconds",
			Help:      "Time taken to load the catalog and price a trip",
			Buckets:   prometheus.DefBuckets,
		}),
		QuoteErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_errors_total",
			Help:      "The total number of quote requests that failed",
		}, []string{"kind"}),
		PeriodFallbacks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "period_fallbacks_total",
			Help:      "Legs priced at the day rate because a time could not be parsed",
		}),
		CouponOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coupon_outcomes_total",
			Help:      "Coupon validation outcomes",
		}, []string{"outcome"}),
		CouponCallDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "coupon_call_duration_seconds",
			Help:      "Latency of coupon validation including cache lookups",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
