package task

import (
	"context"

	"github.com/google/uuid"

	"github.com/mrz1836/astromedia/internal/constants"
	"github.com/mrz1836/astromedia/internal/domain"
)

// UpdateFunc receives a full snapshot after every task mutation.
// Snapshots are owned by the receiver.
type UpdateFunc func(snapshot *domain.AgentTask)

// ValidationOracle judges whether a proposed action complies with policy.
// brief carries the policy and task background the action is judged against.
// Any returned error is treated as a transport failure and is never retried.
type ValidationOracle interface {
	Validate(ctx context.Context, role, action, brief string) (domain.Verdict, error)
}

// ValidationOracleFunc adapts a function to ValidationOracle.
type ValidationOracleFunc func(ctx context.Context, role, action, brief string) (domain.Verdict, error)

// Validate implements ValidationOracle.
func (f ValidationOracleFunc) Validate(ctx context.Context, role, action, brief string) (domain.Verdict, error) {
	return f(ctx, role, action, brief)
}

// AgentTracker lets the engine look up agent roles and report activity.
// agent.Registry implements it.
type AgentTracker interface {
	Role(agentID string) (string, bool)
	TaskStarted(agentID, title string)
	TaskFinished(agentID string, status constants.TaskStatus, lastLog string)
}

// GenerateTaskID returns a new collision-resistant task identifier.
func GenerateTaskID() string {
	return uuid.NewString()
}
