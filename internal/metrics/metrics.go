// Package metrics defines Prometheus metrics for the tailor worker.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds all registered Prometheus collectors.
type Metrics struct {
	JobsProcessed      *prometheus.CounterVec
	StatusesPosted     *prometheus.CounterVec
	QueueDepth         prometheus.Gauge
	ValidationDuration prometheus.Histogram
}

// New creates uninitialised metric instances.
func New() *Metrics {
	return &Metrics{
		JobsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tailor_jobs_processed_total",
				Help: "Jobs drained from the worker queue, by kind and result.",
			},
			[]string{"kind", "result"},
		),
		StatusesPosted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tailor_statuses_posted_total",
				Help: "Commit statuses posted to the provider, by state.",
			},
			[]string{"state"},
		),
		QueueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tailor_queue_depth",
				Help: "Jobs currently waiting in the worker queue.",
			},
		),
		ValidationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tailor_validation_duration_seconds",
				Help:    "Duration of each pull request validation in seconds.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
		),
	}
}

// RegisterWith registers a pre-built Metrics instance with the given registry.
func RegisterWith(reg prometheus.Registerer, m *Metrics) error {
	collectors := []prometheus.Collector{
		m.JobsProcessed,
		m.StatusesPosted,
		m.QueueDepth,
		m.ValidationDuration,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Register registers fresh metrics with the given registry and returns them.
func Register(reg prometheus.Registerer) (*Metrics, error) {
	m := New()
	if err := RegisterWith(reg, m); err != nil {
		return nil, err
	}
	return m, nil
}
