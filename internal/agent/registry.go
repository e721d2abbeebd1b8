// Package agent holds the roster of autonomous agents shown on the console
// and their cosmetic telemetry.
package agent

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/astromedia/internal/constants"
	"github.com/mrz1836/astromedia/internal/domain"
	astroerrors "github.com/mrz1836/astromedia/internal/errors"
)

// DefaultRoster returns the built-in agents.
func DefaultRoster() []domain.Agent {
	return []domain.Agent{
		{
			ID:         constants.DefaultAgentID,
			Name:       "Echo-ACM",
			Role:       "Community Manager",
			Avatar:     "🛰️",
			Efficiency: 94.2,
			Status:     constants.AgentStatusIdle,
			LastAction: "Monitoring brand mentions",
		},
		{
			ID:         "oracle-01",
			Name:       "Oracle-01",
			Role:       "Budget Strategist",
			Avatar:     "🔮",
			Efficiency: 97.8,
			Status:     constants.AgentStatusIdle,
			LastAction: "Rebalancing ad spend",
		},
		{
			ID:         "datapulse",
			Name:       "DataPulse",
			Role:       "Performance Analyst",
			Avatar:     "📈",
			Efficiency: 91.5,
			Status:     constants.AgentStatusLearning,
			LastAction: "Training on Q4 engagement data",
		},
		{
			ID:         "nova",
			Name:       "Nova",
			Role:       "Creative Director",
			Avatar:     "✨",
			Efficiency: 88.9,
			Status:     constants.AgentStatusIdle,
			LastAction: "Reviewing asset library",
		},
	}
}

// Registry is the live roster. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	agents []domain.Agent
	rng    *rand.Rand
	tick   time.Duration
	logger zerolog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithRand sets the random source used by Drift.
func WithRand(rng *rand.Rand) Option {
	return func(r *Registry) {
		r.rng = rng
	}
}

// WithTick sets how often Run calls Drift.
func WithTick(d time.Duration) Option {
	return func(r *Registry) {
		r.tick = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger.With().Str("component", "agent_registry").Logger()
	}
}

// NewRegistry creates a registry for roster. Efficiencies are clamped on entry.
func NewRegistry(roster []domain.Agent, opts ...Option) *Registry {
	agents := make([]domain.Agent, len(roster))
	copy(agents, roster)
	for i := range agents {
		agents[i].Efficiency = clamp(agents[i].Efficiency)
	}

	r := &Registry{
		agents: agents,
		rng:    rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x61737472)), //nolint:gosec // cosmetic telemetry
		tick:   constants.DefaultEfficiencyTick,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// List returns a copy of the roster in its fixed order.
func (r *Registry) List() []domain.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Agent, len(r.agents))
	copy(out, r.agents)
	return out
}

// Get returns the agent with the given id.
func (r *Registry) Get(id string) (domain.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexOf(id); i >= 0 {
		return r.agents[i], nil
	}
	return domain.Agent{}, fmt.Errorf("agent %q: %w", id, astroerrors.ErrAgentNotFound)
}

// Role returns the role of the agent, used as the actor when validating.
func (r *Registry) Role(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexOf(id); i >= 0 {
		return r.agents[i].Role, true
	}
	return "", false
}

// TaskStarted marks the agent as processing. Unknown ids are ignored.
func (r *Registry) TaskStarted(id, title string) {
	r.update(id, constants.AgentStatusProcessing, "Working on: "+title)
}

// TaskFinished returns the agent to idle after a completed task, or to
// learning after a failed one, and records the task's last log line.
func (r *Registry) TaskFinished(id string, status constants.TaskStatus, lastLog string) {
	next := constants.AgentStatusIdle
	if status == constants.TaskStatusFailed {
		next = constants.AgentStatusLearning
	}
	r.update(id, next, lastLog)
}

func (r *Registry) update(id string, status constants.AgentStatus, action string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return
	}
	r.agents[i].Status = status
	if action != "" {
		r.agents[i].LastAction = action
	}
}

// Drift applies one random-walk step of at most EfficiencyStep to every
// agent, clamped to [EfficiencyMin, EfficiencyMax].
func (r *Registry) Drift() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.agents {
		delta := (r.rng.Float64()*2 - 1) * constants.EfficiencyStep
		r.agents[i].Efficiency = clamp(r.agents[i].Efficiency + delta)
	}
}

// Run calls Drift on every tick until ctx is done.
func (r *Registry) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	r.logger.Debug().Dur("tick", r.tick).Msg("efficiency drift started")
	for {
		select {
		case <-ctx.Done():
			r.logger.Debug().Msg("efficiency drift stopped")
			return nil
		case <-ticker.C:
			r.Drift()
		}
	}
}

func (r *Registry) indexOf(id string) int {
	for i := range r.agents {
		if r.agents[i].ID == id {
			return i
		}
	}
	return -1
}

func clamp(v float64) float64 {
	return min(constants.EfficiencyMax, max(constants.EfficiencyMin, v))
}
