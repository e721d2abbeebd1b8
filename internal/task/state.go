// Package task provides the agent task engine for astromedia.
//
// This file implements the step state machine. A task moves through
//
//	Execute → Observe → Validate → Conform | Retry
//	Retry → Observe
//
// and its status moves only from Running to Completed or Failed.
//
// Import rules:
//   - CAN import: internal/constants, internal/domain, internal/errors, internal/clock, internal/ctxutil, std lib
//   - MUST NOT import: internal/store, internal/oracle, internal/api, internal/cli
package task

import (
	"fmt"
	"slices"
	"time"

	"github.com/mrz1836/astromedia/internal/constants"
	"github.com/mrz1836/astromedia/internal/domain"
	astroerrors "github.com/mrz1836/astromedia/internal/errors"
)

// ValidSteps defines every allowed step change.
// Format: from_step -> []to_steps
//
// Conform is terminal. Retry only ever leads back to Observe so that a
// rejected action is reassessed rather than resent unchanged.
//
//nolint:gochecknoglobals // Exported for testing and read-only lookup table
var ValidSteps = map[constants.TaskStep][]constants.TaskStep{
	constants.TaskStepExecute:  {constants.TaskStepObserve},
	constants.TaskStepObserve:  {constants.TaskStepValidate},
	constants.TaskStepValidate: {constants.TaskStepConform, constants.TaskStepRetry},
	constants.TaskStepRetry:    {constants.TaskStepObserve},
}

// IsValidStep reports whether a task may move from one step to another.
func IsValidStep(from, to constants.TaskStep) bool {
	return slices.Contains(ValidSteps[from], to)
}

// Advance moves a running task to the next step and appends a tagged log line.
//
// Returns an error if:
//   - task is nil
//   - task is already terminal (wrapped ErrTaskTerminal)
//   - the step change is not in ValidSteps (wrapped ErrInvalidTransition)
func Advance(task *domain.AgentTask, to constants.TaskStep, now time.Time, msg string) error {
	if task == nil {
		return fmt.Errorf("%w: task is nil", astroerrors.ErrInvalidTransition)
	}
	if task.IsTerminal() {
		return fmt.Errorf("%w: cannot move task %s to %s", astroerrors.ErrTaskTerminal, task.ID, to)
	}
	if !IsValidStep(task.CurrentStep, to) {
		return fmt.Errorf("%w: cannot move from %s to %s",
			astroerrors.ErrInvalidTransition, task.CurrentStep, to)
	}

	task.CurrentStep = to
	appendLog(task, to, now, msg)
	return nil
}

// Finish sets a terminal status on a running task and appends the final log
// line under the task's current step.
//
// Returns an error if:
//   - task is nil or already terminal
//   - status is not terminal
func Finish(task *domain.AgentTask, status constants.TaskStatus, now time.Time, msg string) error {
	if task == nil {
		return fmt.Errorf("%w: task is nil", astroerrors.ErrInvalidTransition)
	}
	if task.IsTerminal() {
		return fmt.Errorf("%w: task %s is already %s", astroerrors.ErrTaskTerminal, task.ID, task.Status)
	}
	if !status.IsTerminal() {
		return fmt.Errorf("%w: cannot move from %s to %s",
			astroerrors.ErrInvalidTransition, task.Status, status)
	}

	appendLog(task, task.CurrentStep, now, msg)
	task.Status = status
	task.CompletedAt = &now
	return nil
}

// Log appends a tagged line under the current step without changing state.
func Log(task *domain.AgentTask, now time.Time, msg string) error {
	if task == nil {
		return fmt.Errorf("%w: task is nil", astroerrors.ErrInvalidTransition)
	}
	if task.IsTerminal() {
		return fmt.Errorf("%w: task %s is already %s", astroerrors.ErrTaskTerminal, task.ID, task.Status)
	}
	appendLog(task, task.CurrentStep, now, msg)
	return nil
}

func appendLog(task *domain.AgentTask, step constants.TaskStep, now time.Time, msg string) {
	task.Logs = append(task.Logs, step.Tag()+" "+msg)
	task.UpdatedAt = now
}
