package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/mrz1836/astromedia/internal/agent"
	"github.com/mrz1836/astromedia/internal/config"
	"github.com/mrz1836/astromedia/internal/constants"
	"github.com/mrz1836/astromedia/internal/errors"
	"github.com/mrz1836/astromedia/internal/observability"
	"github.com/mrz1836/astromedia/internal/observer"
	"github.com/mrz1836/astromedia/internal/oracle"
	"github.com/mrz1836/astromedia/internal/publish"
	"github.com/mrz1836/astromedia/internal/store"
	"github.com/mrz1836/astromedia/internal/task"
)

// loadConfig loads the layered configuration, or the file named by
// --config in place of the project config, then applies overrides.
func loadConfig(ctx context.Context, flags *GlobalFlags, overrides *config.Config) (*config.Config, error) {
	if flags == nil || flags.ConfigFile == "" {
		return config.LoadWithOverrides(ctx, overrides)
	}

	if _, err := os.Stat(flags.ConfigFile); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", flags.ConfigFile, err)
	}
	globalPath, err := config.GlobalConfigPath()
	if err != nil {
		globalPath = ""
	}
	cfg, err := config.LoadFromPaths(ctx, flags.ConfigFile, globalPath)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyOverrides(cfg, overrides); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openRepository opens the configured store and wraps it in a Repository.
// The caller must close the returned store.
func openRepository(cfg *config.Config, logger zerolog.Logger) (*store.Repository, store.Store, error) {
	path := ""
	if cfg.Storage.Driver != constants.StorageDriverMemory {
		var err error
		if path, err = cfg.Storage.DataPath(); err != nil {
			return nil, nil, err
		}
	}
	st, err := store.Open(cfg.Storage.Driver, path, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store.NewRepository(st), st, nil
}

// newPublisher creates the simulated automation backend for repo.
func newPublisher(cfg *config.Config, repo *store.Repository, logger zerolog.Logger) *publish.Publisher {
	pubCfg := publish.DefaultConfig()
	pubCfg.Delay = cfg.Publish.Delay
	pubCfg.SuccessRate = cfg.Publish.SuccessRate
	pubCfg.WebhookURL = cfg.Publish.WebhookURL
	pubCfg.Timeout = cfg.Publish.WebhookTimeout
	return publish.New(repo, pubCfg, logger)
}

// app wires every component a long-running command needs.
type app struct {
	cfg       *config.Config
	logger    zerolog.Logger
	store     store.Store
	repo      *store.Repository
	registry  *agent.Registry
	bus       *observer.Bus
	engine    *task.Engine
	publisher *publish.Publisher
	metrics   *prometheus.Registry
}

// newApp builds the component graph described by cfg.
//
// Returns an error if:
//   - the store cannot be opened
//   - the oracle cannot be created (unknown provider, missing API key)
//   - the NATS exporter cannot connect
func newApp(cfg *config.Config, logger zerolog.Logger) (*app, error) {
	repo, st, err := openRepository(cfg, logger)
	if err != nil {
		return nil, err
	}

	validator, err := oracle.New(oracle.Config{
		Provider:     cfg.Oracle.Provider,
		Model:        cfg.Oracle.Model,
		APIKeyEnvVar: cfg.Oracle.APIKeyEnvVar,
		BaseURL:      cfg.Oracle.BaseURL,
		Timeout:      cfg.Oracle.Timeout,
		CacheSize:    cfg.Oracle.CacheSize,
		CacheTTL:     cfg.Oracle.CacheTTL,
	}, logger)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to create validation oracle: %w", err)
	}

	var sinks []observer.Sink
	if cfg.Bus.NATSURL != "" {
		sink, sinkErr := observer.NewNATSSink(cfg.Bus.NATSURL, cfg.Bus.NATSSubject)
		if sinkErr != nil {
			_ = st.Close()
			return nil, sinkErr
		}
		sinks = append(sinks, sink)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	registry := agent.NewRegistry(agent.DefaultRoster(),
		agent.WithTick(cfg.Agents.EfficiencyTick),
		agent.WithLogger(logger),
	)

	engine := task.NewEngine(validator, task.EngineConfig{
		MaxAttempts:       cfg.Agents.MaxAttempts,
		RetryBackoff:      cfg.Agents.RetryBackoff,
		ValidationTimeout: cfg.Agents.ValidationTimeout,
		DefaultAgentID:    cfg.Agents.DefaultAgent,
		DefaultScenario:   cfg.Agents.DefaultScenario,
	}, logger,
		task.WithTracker(registry),
		task.WithMetrics(observability.MustNewMetrics(reg)),
		task.WithScenario(task.NewRetrospectiveScenario(repo)),
	)

	return &app{
		cfg:       cfg,
		logger:    logger,
		store:     st,
		repo:      repo,
		registry:  registry,
		bus:       observer.NewBus(cfg.Bus.SubscriberBuffer, logger, sinks...),
		engine:    engine,
		publisher: newPublisher(cfg, repo, logger),
		metrics:   reg,
	}, nil
}

// Close waits for running tasks, abandons pending publish jobs, and
// releases the bus and the store.
func (a *app) Close() error {
	a.engine.Wait()
	return stderrors.Join(
		a.publisher.Close(),
		a.bus.Close(),
		a.store.Close(),
	)
}

// checkScenario reports an unknown scenario name along with the registered ones.
func (a *app) checkScenario(name string) error {
	if name == "" {
		return nil
	}
	for _, known := range a.engine.Scenarios() {
		if known == name {
			return nil
		}
	}
	return fmt.Errorf("%w: %q (available: %v)", errors.ErrUnknownScenario, name, a.engine.Scenarios())
}
