package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/astromedia/internal/constants"
	"github.com/mrz1836/astromedia/internal/task"
)

func family(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("metric family %s not gathered", name)
	return nil
}

func TestMetrics_TaskLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := MustNewMetrics(reg)

	m.TaskStarted("echo-acm")
	m.TaskStarted("nova")
	assert.InDelta(t, 2, testutil.ToFloat64(m.tasksActive), 0)

	m.ValidationCompleted(task.OutcomeRejected, 120*time.Millisecond)
	m.RetryScheduled("echo-acm")
	m.ValidationCompleted(task.OutcomeCompliant, 80*time.Millisecond)
	m.TaskFinished("echo-acm", constants.TaskStatusCompleted, 2, 2*time.Second)

	assert.InDelta(t, 1, testutil.ToFloat64(m.tasksActive), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.tasksStarted.WithLabelValues("nova")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.tasksFinished.WithLabelValues("echo-acm", "completed")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.validations.WithLabelValues(task.OutcomeRejected)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.retries.WithLabelValues("echo-acm")), 0)

	attempts := family(t, reg, "astromedia_agent_task_attempts")
	require.Len(t, attempts.GetMetric(), 1)
	assert.Equal(t, uint64(1), attempts.GetMetric()[0].GetHistogram().GetSampleCount())
	assert.InDelta(t, 2, attempts.GetMetric()[0].GetHistogram().GetSampleSum(), 0)

	durations := family(t, reg, "astromedia_agent_validation_duration_seconds")
	assert.Len(t, durations.GetMetric(), 2)
}

func TestMustNewMetrics_Reregistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := MustNewMetrics(reg)
	second := MustNewMetrics(reg)

	first.RetryScheduled("oracle-01")
	second.RetryScheduled("oracle-01")

	assert.InDelta(t, 2, testutil.ToFloat64(first.retries.WithLabelValues("oracle-01")), 0)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.TaskStarted("a")
		m.TaskFinished("a", constants.TaskStatusFailed, 1, time.Second)
		m.ValidationCompleted(task.OutcomeError, time.Second)
		m.RetryScheduled("a")
	})
}

func TestMetrics_Names(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := MustNewMetrics(reg)
	m.TaskStarted("x")
	m.TaskFinished("x", constants.TaskStatusCompleted, 1, time.Millisecond)
	m.ValidationCompleted(task.OutcomeCompliant, time.Millisecond)
	m.RetryScheduled("x")

	for _, name := range []string{
		"astromedia_agent_tasks_started_total",
		"astromedia_agent_tasks_finished_total",
		"astromedia_agent_task_duration_seconds",
		"astromedia_agent_task_attempts",
		"astromedia_agent_validations_total",
		"astromedia_agent_validation_duration_seconds",
		"astromedia_agent_retries_total",
		"astromedia_agent_tasks_active",
	} {
		assert.NotNil(t, family(t, reg, name), name)
	}
}
