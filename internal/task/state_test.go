package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/astromedia/internal/constants"
	"github.com/mrz1836/astromedia/internal/domain"
	astroerrors "github.com/mrz1836/astromedia/internal/errors"
)

func TestIsValidStep(t *testing.T) {
	tests := []struct {
		from, to constants.TaskStep
		want     bool
	}{
		{constants.TaskStepExecute, constants.TaskStepObserve, true},
		{constants.TaskStepObserve, constants.TaskStepValidate, true},
		{constants.TaskStepValidate, constants.TaskStepConform, true},
		{constants.TaskStepValidate, constants.TaskStepRetry, true},
		{constants.TaskStepRetry, constants.TaskStepObserve, true},
		{constants.TaskStepRetry, constants.TaskStepExecute, false},
		{constants.TaskStepExecute, constants.TaskStepValidate, false},
		{constants.TaskStepConform, constants.TaskStepObserve, false},
		{constants.TaskStepObserve, constants.TaskStepObserve, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidStep(tt.from, tt.to))
		})
	}
}

func newRunningTask() *domain.AgentTask {
	return &domain.AgentTask{
		ID:          "t1",
		CurrentStep: constants.TaskStepExecute,
		Attempts:    1,
		MaxAttempts: 3,
		Status:      constants.TaskStatusRunning,
	}
}

func TestAdvance(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	task := newRunningTask()

	require.NoError(t, Advance(task, constants.TaskStepObserve, now, "found things"))
	assert.Equal(t, constants.TaskStepObserve, task.CurrentStep)
	assert.Equal(t, []string{"[OBSERVE] found things"}, task.Logs)
	assert.Equal(t, now, task.UpdatedAt)

	err := Advance(task, constants.TaskStepConform, now, "skip")
	require.ErrorIs(t, err, astroerrors.ErrInvalidTransition)
	assert.Len(t, task.Logs, 1, "rejected transition must not log")

	require.ErrorIs(t, Advance(nil, constants.TaskStepObserve, now, ""), astroerrors.ErrInvalidTransition)
}

func TestFinish(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("sets terminal status once", func(t *testing.T) {
		task := newRunningTask()
		require.NoError(t, Finish(task, constants.TaskStatusFailed, now, "gave up"))
		assert.Equal(t, constants.TaskStatusFailed, task.Status)
		require.NotNil(t, task.CompletedAt)
		assert.Equal(t, "[EXECUTE] gave up", task.LastLog())

		err := Finish(task, constants.TaskStatusCompleted, now, "again")
		require.ErrorIs(t, err, astroerrors.ErrTaskTerminal)
		assert.Equal(t, constants.TaskStatusFailed, task.Status)
		assert.Len(t, task.Logs, 1)
	})

	t.Run("rejects non-terminal target", func(t *testing.T) {
		task := newRunningTask()
		err := Finish(task, constants.TaskStatusRunning, now, "noop")
		require.ErrorIs(t, err, astroerrors.ErrInvalidTransition)
		assert.Empty(t, task.Logs)
	})

	t.Run("terminal task cannot advance or log", func(t *testing.T) {
		task := newRunningTask()
		require.NoError(t, Finish(task, constants.TaskStatusCompleted, now, "done"))
		require.ErrorIs(t, Advance(task, constants.TaskStepObserve, now, "x"), astroerrors.ErrTaskTerminal)
		require.ErrorIs(t, Log(task, now, "x"), astroerrors.ErrTaskTerminal)
	})
}
