package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	predictions *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	cache       *prometheus.CounterVec
	history     *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// New registers the recorder's collectors with reg. A nil reg uses the
// default registry.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		predictions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ukpredict_predictions_total",
				Help: "Predictions served, by service and result",
			},
			[]string{"service", "result"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ukpredict_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		cache: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ukpredict_prediction_cache_total",
				Help: "Prediction cache lookups, by service and outcome",
			},
			[]string{"service", "outcome"},
		),
		history: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ukpredict_lookback_mode_total",
				Help: "Electricity encodings by lookback mode (history or profile)",
			},
			[]string{"service", "mode"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ukpredict_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 10},
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordPrediction(service, result string) {
	r.predictions.WithLabelValues(service, result).Inc()
}

func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordCache(service string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	r.cache.WithLabelValues(service, outcome).Inc()
}

func (r *Recorder) RecordHistoryMode(service string, history bool) {
	mode := "profile"
	if history {
		mode = "history"
	}
	r.history.WithLabelValues(service, mode).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordPrediction(string, string) {}
func (Nop) RecordError(string)              {}
func (Nop) RecordCache(string, bool)        {}
func (Nop) RecordHistoryMode(string, bool)  {}
func (Nop) RecordLatency(string, float64)   {}
