// Package observability exposes Prometheus collectors for agent task
// execution. Metrics implements task.Metrics so the engine can report into it
// without knowing about Prometheus.
package observability

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mrz1836/astromedia/internal/constants"
	"github.com/mrz1836/astromedia/internal/task"
)

const (
	namespace = "astromedia"
	subsystem = "agent"
)

// Metrics reports ACM loop activity to Prometheus.
type Metrics struct {
	tasksStarted       *prometheus.CounterVec
	tasksFinished      *prometheus.CounterVec
	taskDuration       *prometheus.HistogramVec
	taskAttempts       prometheus.Histogram
	validations        *prometheus.CounterVec
	validationDuration *prometheus.HistogramVec
	retries            *prometheus.CounterVec
	tasksActive        prometheus.Gauge
}

var _ task.Metrics = (*Metrics)(nil)

// MustNewMetrics creates the collectors and registers them with reg, or with
// the default registerer when reg is nil. Collectors that are already
// registered are reused, so calling it twice with the same registry is safe.
// Any other registration error panics.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		tasksStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tasks_started_total",
			Help:      "Number of agent tasks started.",
		}, []string{"agent"}),
		tasksFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tasks_finished_total",
			Help:      "Number of agent tasks that reached a terminal status.",
		}, []string{"agent", "status"}),
		taskDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "task_duration_seconds",
			Help:      "Wall time from task start to terminal status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		taskAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "task_attempts",
			Help:      "Attempts used by finished tasks.",
			Buckets:   prometheus.LinearBuckets(1, 1, constants.MaxAttemptsLimit),
		}),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "validations_total",
			Help:      "Validation oracle calls by outcome.",
		}, []string{"outcome"}),
		validationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "validation_duration_seconds",
			Help:      "Latency of validation oracle calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "retries_total",
			Help:      "Retries scheduled after a compliance rejection.",
		}, []string{"agent"}),
		tasksActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tasks_active",
			Help:      "Agent tasks currently running.",
		}),
	}

	m.tasksStarted = register(reg, m.tasksStarted)
	m.tasksFinished = register(reg, m.tasksFinished)
	m.taskDuration = register(reg, m.taskDuration)
	m.taskAttempts = register(reg, m.taskAttempts)
	m.validations = register(reg, m.validations)
	m.validationDuration = register(reg, m.validationDuration)
	m.retries = register(reg, m.retries)
	m.tasksActive = register(reg, m.tasksActive)

	return m
}

// register registers c, returning the existing collector when an identical
// one is already registered.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	err := reg.Register(c)
	if err == nil {
		return c
	}

	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		if existing, ok := already.ExistingCollector.(C); ok {
			return existing
		}
	}
	panic(err)
}

// TaskStarted implements task.Metrics.
func (m *Metrics) TaskStarted(agentID string) {
	if m == nil {
		return
	}
	m.tasksStarted.WithLabelValues(agentID).Inc()
	m.tasksActive.Inc()
}

// TaskFinished implements task.Metrics.
func (m *Metrics) TaskFinished(agentID string, status constants.TaskStatus, attempts int, duration time.Duration) {
	if m == nil {
		return
	}
	m.tasksFinished.WithLabelValues(agentID, status.String()).Inc()
	m.taskDuration.WithLabelValues(status.String()).Observe(duration.Seconds())
	m.taskAttempts.Observe(float64(attempts))
	m.tasksActive.Dec()
}

// ValidationCompleted implements task.Metrics.
func (m *Metrics) ValidationCompleted(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.validations.WithLabelValues(outcome).Inc()
	m.validationDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RetryScheduled implements task.Metrics.
func (m *Metrics) RetryScheduled(agentID string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(agentID).Inc()
}
