package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	ingested  *prometheus.CounterVec
	excluded  *prometheus.CounterVec
	errors    *prometheus.CounterVec
	sentiment *prometheus.GaugeVec
	latency   *prometheus.HistogramVec
}

// New registers the recorder on the default registry.
func New() *Recorder {
	return NewWith(prometheus.DefaultRegisterer)
}

func NewWith(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		ingested: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insiderpulse_transactions_ingested_total",
				Help: "Transactions persisted by source",
			},
			[]string{"source"},
		),
		excluded: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insiderpulse_transactions_excluded_total",
				Help: "Transactions dropped before analysis by reason",
			},
			[]string{"reason"},
		),
		errors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insiderpulse_errors_total",
				Help: "Errors by kind",
			},
			[]string{"type"},
		),
		sentiment: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "insiderpulse_sentiment_value",
				Help: "Last computed market-wide indicator values",
			},
			[]string{"indicator"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "insiderpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordIngested(source string, n int) {
	r.ingested.WithLabelValues(source).Add(float64(n))
}

func (r *Recorder) RecordExcluded(reason string, n int) {
	if n > 0 {
		r.excluded.WithLabelValues(reason).Add(float64(n))
	}
}

func (r *Recorder) RecordError(kind string) {
	r.errors.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordSentiment(indicator string, value float64) {
	r.sentiment.WithLabelValues(indicator).Set(value)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) RecordIngested(string, int) {}
func (Nop) RecordExcluded(string, int) {}
func (Nop) RecordError(string) {}
func (Nop) RecordSentiment(string, float64) {}
func (Nop) RecordLatency(string, float64) {}
