package lib

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	BookingsCreated   *prometheus.CounterVec
	PaymentsVerified  *prometheus.CounterVec
	Notifications     *prometheus.CounterVec
	AggregateFailures prometheus.Counter
	RequestDuration   *prometheus.HistogramVec
}

var (
	metrics     *Metrics
	metricsOnce sync.Once
)

// GetMetrics registers the collectors on first use.
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = newMetrics("ddtours")
	})
	return metrics
}

func newMetrics(namespace string) *Metrics {
	return &Metrics{
		BookingsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "The total number of bookings created",
		}, []string{"payment_method"}),
		PaymentsVerified: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_verified_total",
			Help:      "Payment verification attempts by outcome",
		}, []string{"gateway", "outcome"}),
		Notifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification deliveries by outcome",
		}, []string{"outcome"}),
		AggregateFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "review_aggregate_failures_total",
			Help:      "Review aggregate writes that failed after the review was saved",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Time taken to serve API requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}
