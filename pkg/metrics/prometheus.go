package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	predictions     *prometheus.CounterVec
	predictLatency  *prometheus.HistogramVec
	flowSubmissions *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
}

var (
	once     sync.Once
	recorder *Recorder
)

// New returns the process-wide Prometheus recorder, registering collectors on first use.
func New() *Recorder {
	once.Do(func() {
		recorder = &Recorder{
			predictions: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "trendlens_predictions_total",
					Help: "Predictions served by the prediction API",
				},
				[]string{"result"},
			),
			predictLatency: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "trendlens_prediction_duration_seconds",
					Help:    "Time spent producing a prediction",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"result"},
			),
			flowSubmissions: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "trendlens_flow_submissions_total",
					Help: "Dashboard submissions by outcome",
				},
				[]string{"outcome"},
			),
			cacheLookups: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "trendlens_price_cache_lookups_total",
					Help: "Price history cache lookups",
				},
				[]string{"result"},
			),
			errorsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "trendlens_errors_total",
					Help: "Total number of errors encountered",
				},
				[]string{"type"},
			),
		}
	})
	return recorder
}

// RecordPrediction records one prediction attempt and its latency.
func (r *Recorder) RecordPrediction(result string, seconds float64) {
	r.predictions.WithLabelValues(result).Inc()
	r.predictLatency.WithLabelValues(result).Observe(seconds)
}

// RecordFlowSubmission records how a dashboard submission ended.
func (r *Recorder) RecordFlowSubmission(outcome string) {
	r.flowSubmissions.WithLabelValues(outcome).Inc()
}

// RecordCacheLookup records a price cache hit or miss.
func (r *Recorder) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
