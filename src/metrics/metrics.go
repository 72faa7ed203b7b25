package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "docstore_admin"

// Operation outcome labels.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Recorder collects per-operation metrics of one admin run.
type Recorder struct {
	Registry *prometheus.Registry

	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewRecorder returns a recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		Registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Administrative operations run, by outcome.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Wall time of administrative operations.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
		}, []string{"operation"}),
	}
	r.Registry.MustRegister(r.operations, r.duration)
	return r
}

// Observe records one finished operation.
func (r *Recorder) Observe(operation string, elapsed time.Duration, err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	r.operations.WithLabelValues(operation, status).Inc()
	r.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// Count returns how many times operation finished with status.
func (r *Recorder) Count(operation, status string) prometheus.Counter {
	return r.operations.WithLabelValues(operation, status)
}

// WriteTextfile writes the registry in the text exposition format, for the
// node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.Registry)
}
