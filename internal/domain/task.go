// Package domain provides shared domain types for the astromedia agent console.
// These types are used across all internal packages to ensure consistent data structures.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, internal/errors, standard library
//   - MUST NOT import: any other internal packages
//
// All JSON field names use snake_case.
package domain

import (
	"time"

	"github.com/mrz1836/astromedia/internal/constants"
)

// AgentTask is one run of the act-check-monitor loop for a single agent.
// The engine owns the live value; everything outside the engine only ever
// sees copies produced by Clone.
//
// Example JSON representation:
//
//	{
//	    "id": "5b0c7a3e-4a5f-4f7e-9b2e-0c9f1c1f2d11",
//	    "agent_id": "echo-acm",
//	    "title": "Reply to overnight mentions",
//	    "scenario": "community_manager",
//	    "current_step": "retry",
//	    "attempts": 1,
//	    "max_attempts": 3,
//	    "logs": ["[EXECUTE] ...", "[OBSERVE] ..."],
//	    "status": "running",
//	    "created_at": "2026-01-02T10:00:00Z",
//	    "updated_at": "2026-01-02T10:00:04Z"
//	}
type AgentTask struct {
	// ID is the unique identifier for the task.
	ID string `json:"id"`

	// AgentID is the roster id of the agent performing the task.
	AgentID string `json:"agent_id"`

	// Title is a human-readable summary of the work.
	Title string `json:"title"`

	// Scenario names the behavior that produces findings and proposed actions.
	Scenario string `json:"scenario,omitempty"`

	// CurrentStep is the loop phase the task is in.
	CurrentStep constants.TaskStep `json:"current_step"`

	// Attempts is the current validation attempt. It starts at 1, grows by one
	// per retry, and never exceeds MaxAttempts.
	Attempts int `json:"attempts"`

	// MaxAttempts is the retry budget fixed at creation.
	MaxAttempts int `json:"max_attempts"`

	// Logs is the append-only history, one "[STEP] message" entry per line.
	Logs []string `json:"logs"`

	// Status is running until the task reaches completed or failed.
	Status constants.TaskStatus `json:"status"`

	// CreatedAt is when the task was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the task was last modified.
	UpdatedAt time.Time `json:"updated_at"`

	// CompletedAt is when the task reached a terminal status (nil while running).
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Clone returns a deep copy that shares no mutable state with t.
// Snapshots handed to observers are always clones.
func (t *AgentTask) Clone() *AgentTask {
	if t == nil {
		return nil
	}
	c := *t
	if t.Logs != nil {
		c.Logs = make([]string, len(t.Logs))
		copy(c.Logs, t.Logs)
	}
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		c.CompletedAt = &at
	}
	return &c
}

// IsTerminal reports whether the task has completed or failed.
func (t *AgentTask) IsTerminal() bool {
	return t != nil && t.Status.IsTerminal()
}

// LastLog returns the most recent log entry, or "" when there is none.
func (t *AgentTask) LastLog() string {
	if t == nil || len(t.Logs) == 0 {
		return ""
	}
	return t.Logs[len(t.Logs)-1]
}

// Verdict is the validation oracle's judgement on a proposed action.
type Verdict struct {
	Compliant           bool   `json:"compliant"`
	Reason              string `json:"reason"`
	SuggestedCorrection string `json:"suggested_correction,omitempty"`
}
