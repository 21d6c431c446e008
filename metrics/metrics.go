package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestCounter counts HTTP requests by status code, method, and path
	RequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coupon_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"status", "method", "path"},
	)

	// RequestDuration measures HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coupon_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status", "method", "path"},
	)

	// RateLimiterRejections counts requests rejected by the rate limiter
	RateLimiterRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coupon_rate_limiter_rejections_total",
			Help: "Total number of requests rejected by rate limiter",
		},
	)

	// Registrations counts registration submissions by outcome
	Registrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coupon_registrations_total",
			Help: "Registration submissions by outcome",
		},
		[]string{"outcome"},
	)

	// Redemptions counts redemption attempts by outcome
	Redemptions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coupon_redemptions_total",
			Help: "Redemption attempts by outcome",
		},
		[]string{"outcome"},
	)

	// Notifications counts coupon email dispatches by outcome
	Notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coupon_notifications_total",
			Help: "Coupon notifications by outcome",
		},
		[]string{"outcome"},
	)

	// StoreOperationDuration measures registration store operations
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coupon_store_operation_duration_seconds",
			Help:    "Registration store operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "store"},
	)
)

// RecordStoreOperation records the duration of a store operation
func RecordStoreOperation(operation, store string, startTime time.Time) {
	StoreOperationDuration.WithLabelValues(operation, store).Observe(time.Since(startTime).Seconds())
}
