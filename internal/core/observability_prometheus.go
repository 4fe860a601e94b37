package core

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetricsRecorder exports operation latency as a histogram and
// outcomes as a counter, both labelled by operation.
type PrometheusMetricsRecorder struct {
	latency *prometheus.HistogramVec
	results *prometheus.CounterVec
}

// NewPrometheusMetricsRecorder registers the collectors on reg. A nil reg
// uses prometheus.DefaultRegisterer.
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) (*PrometheusMetricsRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	rec := &PrometheusMetricsRecorder{
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "slimelab",
			Subsystem: "service",
			Name:      "operation_duration_seconds",
			Help:      "Latency of laboratory service operations.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"operation"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slimelab",
			Subsystem: "service",
			Name:      "operations_total",
			Help:      "Laboratory service operations by outcome.",
		}, []string{"operation", "status"}),
	}
	for _, c := range []prometheus.Collector{rec.latency, rec.results} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// Observe implements MetricsRecorder.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := statusError
	if success {
		status = statusSuccess
	}
	r.latency.WithLabelValues(operation).Observe(duration.Seconds())
	r.results.WithLabelValues(operation, status).Inc()
}
