// Package metrics exposes Prometheus collectors for the texture job
// pipeline. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "pagetex"

	jobsSubmitted   = "jobs_submitted_total"
	jobsCompleted   = "jobs_completed_total"
	jobDuration     = "job_duration_seconds"
	jobsInFlight    = "jobs_in_flight"
	slotWritesTotal = "slot_writes_total"

	// Labels
	resultLabel = "result"
	kindLabel   = "kind"
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics groups the pipeline collectors.
type Metrics struct {
	submitted prometheus.Counter
	completed *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	inFlight  prometheus.Gauge
	writes    prometheus.Counter
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      jobsSubmitted,
			Help:      "number of accepted texture jobs",
		}),
		completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      jobsCompleted,
			Help:      "number of applied texture jobs by result and failure kind",
		}, []string{resultLabel, kindLabel}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      jobDuration,
			Help:      "time from submission to application of a texture job",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{resultLabel}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      jobsInFlight,
			Help:      "texture jobs submitted but not yet applied",
		}),
		writes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      slotWritesTotal,
			Help:      "number of result slot content replacements",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.submitted, m.completed, m.duration, m.inFlight, m.writes)
	}
	return m
}

// JobSubmitted records an accepted job.
func (m *Metrics) JobSubmitted() {
	if m == nil {
		return
	}
	m.submitted.Inc()
	m.inFlight.Inc()
}

// JobCompleted records an applied job. kind is empty on success.
func (m *Metrics) JobCompleted(kind string, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if kind != "" {
		result = ResultFailure
	}
	m.completed.With(prometheus.Labels{resultLabel: result, kindLabel: kind}).Inc()
	m.duration.With(prometheus.Labels{resultLabel: result}).Observe(elapsed.Seconds())
	m.inFlight.Dec()
}

// SlotWritten records a slot content replacement.
func (m *Metrics) SlotWritten() {
	if m == nil {
		return
	}
	m.writes.Inc()
}
