// Package task provides the agent task engine for astromedia.
//
// This file implements the Engine, which drives a single agent task through
// the execute/observe/validate/conform cycle, calling the validation oracle
// and emitting a full snapshot after every transition.
package task

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/astromedia/internal/clock"
	"github.com/mrz1836/astromedia/internal/constants"
	"github.com/mrz1836/astromedia/internal/ctxutil"
	"github.com/mrz1836/astromedia/internal/domain"
)

// EngineConfig holds configuration for the Engine.
type EngineConfig struct {
	// MaxAttempts is used when a request does not set its own ceiling.
	MaxAttempts int

	// RetryBackoff is the pause between a rejection and the re-observation.
	RetryBackoff time.Duration

	// ValidationTimeout bounds one oracle call. Zero disables the bound.
	ValidationTimeout time.Duration

	// DefaultAgentID owns tasks requested without an agent.
	DefaultAgentID string

	// DefaultScenario is used for requests that do not name one.
	DefaultScenario string
}

// DefaultEngineConfig returns sensible defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MaxAttempts:       constants.DefaultMaxAttempts,
		RetryBackoff:      constants.DefaultRetryBackoff,
		ValidationTimeout: constants.DefaultValidationTimeout,
		DefaultAgentID:    constants.DefaultAgentID,
		DefaultScenario:   ScenarioCommunityManager,
	}
}

// Request describes a task to trigger.
type Request struct {
	AgentID     string `json:"agent_id"`
	Title       string `json:"title"`
	MaxAttempts int    `json:"max_attempts,omitempty"`
	Scenario    string `json:"scenario,omitempty"`
}

// Engine runs agent tasks. It holds no persistent state; every outcome is
// reported through the UpdateFunc passed to Run or Execute.
type Engine struct {
	oracle    ValidationOracle
	scenarios map[string]Scenario
	tracker   AgentTracker
	metrics   Metrics
	clock     clock.Clock
	config    EngineConfig
	logger    zerolog.Logger
	wg        sync.WaitGroup
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithScenario registers a scenario, replacing any with the same name.
func WithScenario(s Scenario) EngineOption {
	return func(e *Engine) {
		e.scenarios[s.Name()] = s
	}
}

// WithTracker sets the agent tracker used for role lookup and activity reporting.
func WithTracker(t AgentTracker) EngineOption {
	return func(e *Engine) {
		e.tracker = t
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithClock sets the clock used for timestamps and backoff waits.
func WithClock(c clock.Clock) EngineOption {
	return func(e *Engine) {
		e.clock = c
	}
}

// NewEngine creates a new task engine. The community manager scenario is
// always registered; other scenarios are added with WithScenario.
func NewEngine(oracle ValidationOracle, cfg EngineConfig, logger zerolog.Logger, opts ...EngineOption) *Engine {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = constants.DefaultMaxAttempts
	}
	if cfg.DefaultAgentID == "" {
		cfg.DefaultAgentID = constants.DefaultAgentID
	}
	if cfg.DefaultScenario == "" {
		cfg.DefaultScenario = ScenarioCommunityManager
	}

	e := &Engine{
		oracle:    oracle,
		scenarios: map[string]Scenario{ScenarioCommunityManager: NewCommunityManagerScenario()},
		metrics:   NoopMetrics{},
		clock:     clock.RealClock{},
		config:    cfg,
		logger:    logger.With().Str("component", "task_engine").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Scenarios returns the registered scenario names.
func (e *Engine) Scenarios() []string {
	names := make([]string, 0, len(e.scenarios))
	for name := range e.scenarios {
		names = append(names, name)
	}
	return names
}

// Run triggers a task and returns its ID without waiting for it.
//
// The initial snapshot is delivered to onUpdate before Run returns. The rest
// of the task runs on its own goroutine, bounded by ctx, and every later
// snapshot is delivered from that goroutine in transition order. No error is
// ever returned: failures end the task with status failed.
func (e *Engine) Run(ctx context.Context, req Request, onUpdate UpdateFunc) string {
	r := e.newRun(req, onUpdate)
	r.emit()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		r.drive(ctx)
	}()
	return r.task.ID
}

// Execute runs a task to its terminal state on the calling goroutine and
// returns the final snapshot. onUpdate may be nil.
func (e *Engine) Execute(ctx context.Context, req Request, onUpdate UpdateFunc) *domain.AgentTask {
	r := e.newRun(req, onUpdate)
	r.emit()
	r.drive(ctx)
	return r.task.Clone()
}

// Wait blocks until every task started with Run has finished.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// run is the state of one task. It is owned by a single goroutine.
type run struct {
	e        *Engine
	task     *domain.AgentTask
	scenario Scenario
	role     string
	onUpdate UpdateFunc
	logger   zerolog.Logger
	sealed   bool
}

func (e *Engine) newRun(req Request, onUpdate UpdateFunc) *run {
	agentID := strings.TrimSpace(req.AgentID)
	if agentID == "" {
		agentID = e.config.DefaultAgentID
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Untitled task"
	}
	maxAttempts := req.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = e.config.MaxAttempts
	}
	maxAttempts = min(maxAttempts, constants.MaxAttemptsLimit)
	scenarioName := req.Scenario
	if scenarioName == "" {
		scenarioName = e.config.DefaultScenario
	}

	now := e.clock.Now().UTC()
	task := &domain.AgentTask{
		ID:          GenerateTaskID(),
		AgentID:     agentID,
		Title:       title,
		Scenario:    scenarioName,
		CurrentStep: constants.TaskStepExecute,
		Attempts:    1,
		MaxAttempts: maxAttempts,
		Status:      constants.TaskStatusRunning,
		CreatedAt:   now,
	}
	appendLog(task, constants.TaskStepExecute, now,
		fmt.Sprintf("Started %q for agent %s (max %d attempts)", title, agentID, maxAttempts))

	role := "Autonomous Agent"
	if e.tracker != nil {
		if r, ok := e.tracker.Role(agentID); ok {
			role = r
		}
		e.tracker.TaskStarted(agentID, title)
	}
	e.metrics.TaskStarted(agentID)

	logger := e.logger.With().
		Str("task_id", task.ID).
		Str("agent_id", agentID).
		Str("scenario", scenarioName).
		Logger()
	logger.Info().Str("title", title).Int("max_attempts", maxAttempts).Msg("agent task started")

	return &run{
		e:        e,
		task:     task,
		scenario: e.scenarios[scenarioName],
		role:     role,
		onUpdate: onUpdate,
		logger:   logger,
	}
}

// drive advances the task until it is terminal. Panics from scenarios or the
// oracle end the task as failed.
func (r *run) drive(ctx context.Context) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error().Interface("panic", p).Msg("agent task panicked")
			r.finish(constants.TaskStatusFailed, fmt.Sprintf("Internal error: %v", p))
		}
	}()

	if r.scenario == nil {
		r.finish(constants.TaskStatusFailed, fmt.Sprintf("Unknown scenario %q", r.task.Scenario))
		return
	}

	findings, ok := r.observe(ctx, "")
	if !ok {
		return
	}
	if !r.step(constants.TaskStepObserve, findings) {
		return
	}

	var correction string
	for {
		action := r.scenario.Action(r.task, correction)
		if !r.step(constants.TaskStepValidate, fmt.Sprintf(
			"Sending proposed action to validation oracle as %s (attempt %d/%d)",
			r.role, r.task.Attempts, r.task.MaxAttempts)) {
			return
		}
		if ctxutil.Canceled(ctx) != nil {
			r.cancel()
			return
		}

		verdict, err := r.validate(ctx, action)
		if err != nil {
			if ctxutil.Canceled(ctx) != nil {
				r.cancel()
				return
			}
			r.finish(constants.TaskStatusFailed, "Lost connection to validation node: "+err.Error())
			return
		}

		if verdict.Compliant {
			r.conform(verdict)
			return
		}

		correction = verdict.SuggestedCorrection
		if correction == "" {
			correction = verdict.Reason
		}
		if !r.rejected(verdict) {
			return
		}

		if err := ctxutil.Sleep(ctx, r.e.clock, r.e.config.RetryBackoff); err != nil {
			r.cancel()
			return
		}

		findings, ok = r.observe(ctx, correction)
		if !ok {
			return
		}
		if !r.step(constants.TaskStepObserve, findings+"; applying correction: "+correction) {
			return
		}
	}
}

func (r *run) observe(ctx context.Context, correction string) (string, bool) {
	if ctxutil.Canceled(ctx) != nil {
		r.cancel()
		return "", false
	}
	findings, err := r.scenario.Findings(ctx, r.task)
	if err != nil {
		if ctxutil.Canceled(ctx) != nil {
			r.cancel()
			return "", false
		}
		r.logger.Warn().Err(err).Bool("retrying", correction != "").Msg("failed to gather findings")
		r.finish(constants.TaskStatusFailed, "Could not gather findings: "+err.Error())
		return "", false
	}
	return findings, true
}

func (r *run) validate(ctx context.Context, action string) (domain.Verdict, error) {
	vctx := ctx
	if r.e.config.ValidationTimeout > 0 {
		var cancel context.CancelFunc
		vctx, cancel = context.WithTimeout(ctx, r.e.config.ValidationTimeout)
		defer cancel()
	}

	start := time.Now()
	verdict, err := r.e.oracle.Validate(vctx, r.role, action, r.scenario.Context(r.task))
	elapsed := time.Since(start)

	outcome := OutcomeCompliant
	switch {
	case err != nil:
		outcome = OutcomeError
	case !verdict.Compliant:
		outcome = OutcomeRejected
	}
	r.e.metrics.ValidationCompleted(outcome, elapsed)

	r.logger.Debug().
		Int("attempt", r.task.Attempts).
		Str("outcome", outcome).
		Dur("duration_ms", elapsed).
		Err(err).
		Msg("validation finished")

	return verdict, err
}

func (r *run) conform(verdict domain.Verdict) {
	reason := verdict.Reason
	if reason == "" {
		reason = "action approved"
	}
	if err := Advance(r.task, constants.TaskStepConform, r.now(),
		"Validation passed: "+reason+". Action executed"); err != nil {
		r.internalError(err)
		return
	}
	r.finish(constants.TaskStatusCompleted, "Task completed")
}

// rejected records a negative verdict and either schedules a retry or ends
// the task. It reports whether the loop should continue.
func (r *run) rejected(verdict domain.Verdict) bool {
	now := r.now()
	_ = Log(r.task, now, "Rejected: "+verdict.Reason)
	suggestion := verdict.SuggestedCorrection
	if suggestion == "" {
		suggestion = "none provided"
	}
	_ = Log(r.task, now, "Suggested correction: "+suggestion)

	if r.task.Attempts >= r.task.MaxAttempts {
		r.logger.Warn().Int("attempts", r.task.Attempts).Msg("validation attempts exhausted")
		r.finish(constants.TaskStatusFailed, fmt.Sprintf(
			"Attempts exhausted (%d/%d); human supervisor alerted", r.task.Attempts, r.task.MaxAttempts))
		return false
	}

	r.task.Attempts++
	if !r.step(constants.TaskStepRetry, fmt.Sprintf("Retrying in %s (attempt %d/%d)",
		r.e.config.RetryBackoff, r.task.Attempts, r.task.MaxAttempts)) {
		return false
	}
	r.e.metrics.RetryScheduled(r.task.AgentID)
	return true
}

// step advances the task, emits the snapshot, and reports success.
func (r *run) step(to constants.TaskStep, msg string) bool {
	if err := Advance(r.task, to, r.now(), msg); err != nil {
		r.internalError(err)
		return false
	}
	r.emit()
	return true
}

func (r *run) cancel() {
	r.logger.Info().Msg("agent task canceled")
	r.finish(constants.TaskStatusFailed, "Task canceled")
}

func (r *run) internalError(err error) {
	r.logger.Error().Err(err).Msg("invalid task transition")
	r.finish(constants.TaskStatusFailed, "Internal error: "+err.Error())
}

// finish ends the task once; later calls are ignored.
func (r *run) finish(status constants.TaskStatus, msg string) {
	if r.task.IsTerminal() {
		return
	}
	if err := Finish(r.task, status, r.now(), msg); err != nil {
		r.logger.Error().Err(err).Msg("failed to finish task")
		return
	}
	r.emit()

	duration := r.task.UpdatedAt.Sub(r.task.CreatedAt)
	r.e.metrics.TaskFinished(r.task.AgentID, status, r.task.Attempts, duration)
	if r.e.tracker != nil {
		r.e.tracker.TaskFinished(r.task.AgentID, status, r.task.LastLog())
	}

	event := r.logger.Info()
	if status == constants.TaskStatusFailed {
		event = r.logger.Warn()
	}
	event.
		Str("status", status.String()).
		Int("attempts", r.task.Attempts).
		Str("last_log", r.task.LastLog()).
		Msg("agent task finished")
}

// emit delivers a snapshot. Nothing is delivered after a terminal snapshot,
// and a panicking callback cannot stop the task.
func (r *run) emit() {
	if r.sealed {
		return
	}
	if r.task.IsTerminal() {
		r.sealed = true
	}

	snapshot := r.task.Clone()
	r.logger.Debug().
		Str("step", snapshot.CurrentStep.String()).
		Str("status", snapshot.Status.String()).
		Int("attempt", snapshot.Attempts).
		Msg("task transition")

	if r.onUpdate == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error().Interface("panic", p).Msg("task update callback panicked")
		}
	}()
	r.onUpdate(snapshot)
}

func (r *run) now() time.Time {
	return r.e.clock.Now().UTC()
}
