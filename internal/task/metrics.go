package task

import (
	"time"

	"github.com/mrz1836/astromedia/internal/constants"
)

// Validation outcomes reported to Metrics.
const (
	OutcomeCompliant = "compliant"
	OutcomeRejected  = "rejected"
	OutcomeError     = "error"
)

// Metrics collects metrics about task execution.
// Implementations can send these to monitoring systems like Prometheus.
type Metrics interface {
	// TaskStarted is called when a new task is created.
	TaskStarted(agentID string)

	// TaskFinished is called once when a task reaches a terminal status.
	TaskFinished(agentID string, status constants.TaskStatus, attempts int, duration time.Duration)

	// ValidationCompleted is called after every oracle call.
	ValidationCompleted(outcome string, duration time.Duration)

	// RetryScheduled is called when a rejection leads to another attempt.
	RetryScheduled(agentID string)
}

// NoopMetrics is a no-op implementation of Metrics for default behavior.
type NoopMetrics struct{}

// Ensure NoopMetrics implements Metrics interface.
var _ Metrics = (*NoopMetrics)(nil)

// TaskStarted implements Metrics.
func (NoopMetrics) TaskStarted(string) {}

// TaskFinished implements Metrics.
func (NoopMetrics) TaskFinished(string, constants.TaskStatus, int, time.Duration) {}

// ValidationCompleted implements Metrics.
func (NoopMetrics) ValidationCompleted(string, time.Duration) {}

// RetryScheduled implements Metrics.
func (NoopMetrics) RetryScheduled(string) {}
