package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	APILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "insiderpulse",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency of analytics endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	APIErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "insiderpulse",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Errors by analytics endpoint and status",
		},
		[]string{"endpoint", "status"},
	)

	CacheResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "insiderpulse",
			Subsystem: "api",
			Name:      "cache_total",
			Help:      "Response cache lookups by result",
		},
		[]string{"endpoint", "result"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(APILatency, APIErrors, CacheResults)
	})
}

// ObserveSince records the latency of one endpoint call.
func ObserveSince(endpoint string, start time.Time) {
	APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

func CacheHit(endpoint string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheResults.WithLabelValues(endpoint, result).Inc()
}
