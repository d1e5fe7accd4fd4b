package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	SearchesTotal   prometheus.Counter
	CacheHitsTotal  prometheus.Counter
	BookingsTotal   prometheus.Counter
	BookingFailures prometheus.Counter
	ProviderErrors  *prometheus.CounterVec
	ProviderLatency *prometheus.HistogramVec
	SearchDuration  prometheus.Histogram
}

// NewMetrics creates new prometheus metrics registered against reg
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SearchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "The total number of orchestrated searches",
		}),
		CacheHitsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "The total number of fresh result cache hits",
		}),
		BookingsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_total",
			Help:      "The total number of dispatched bookings",
		}),
		BookingFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_failures_total",
			Help:      "The total number of failed booking dispatches",
		}),
		ProviderErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "The total number of provider search failures",
		}, []string{"provider"}),
		ProviderLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_latency_seconds",
			Help:      "Latency of individual provider searches",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
		SearchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Time taken to complete an orchestrated search",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
