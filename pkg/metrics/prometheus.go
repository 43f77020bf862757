package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	domrepo "FundLens/internal/domain/repository"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetches           *prometheus.CounterVec
	cacheLookups      *prometheus.CounterVec
	indicatorFailures *prometheus.CounterVec
	errorsTotal       *prometheus.CounterVec
	latency           *prometheus.HistogramVec
}

// New creates a recorder whose collectors are registered with reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		fetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundlens_vendor_requests_total",
				Help: "Vendor API calls by api name and outcome",
			},
			[]string{"api", "outcome"},
		),
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundlens_cache_lookups_total",
				Help: "Cache lookups by entry kind and result",
			},
			[]string{"kind", "result"},
		),
		indicatorFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundlens_indicator_failures_total",
				Help: "Indicators dropped from a table because their computation failed",
			},
			[]string{"indicator"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundlens_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fundlens_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordFetch records one vendor API call.
func (r *Recorder) RecordFetch(api, outcome string) {
	r.fetches.WithLabelValues(api, outcome).Inc()
}

// RecordCache records a cache hit or miss.
func (r *Recorder) RecordCache(kind, result string) {
	r.cacheLookups.WithLabelValues(kind, result).Inc()
}

// RecordIndicatorFailure records an isolated indicator failure.
func (r *Recorder) RecordIndicatorFailure(indicator string) {
	r.indicatorFailures.WithLabelValues(indicator).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

var _ domrepo.Metrics = (*Recorder)(nil)
