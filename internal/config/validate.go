package config

import (
	"time"

	"github.com/mrz1836/astromedia/internal/constants"
	"github.com/mrz1836/astromedia/internal/errors"
)

const (
	maxPort             = 65535
	minSubscriberBuffer = 1
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - agents.max_attempts must be between 1 and 10
//   - agent durations must be positive (retry_backoff may be zero)
//   - oracle.provider must be known and the gemini provider needs a model and key variable
//   - storage.driver must be memory, sqlite, or file
//   - publish.success_rate must be between 0 and 1
//   - server.port must be between 1 and 65535
//   - bus.subscriber_buffer must be at least 1
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	validators := []func(*Config) error{
		validateAgentsConfig,
		validateOracleConfig,
		validateStorageConfig,
		validatePublishConfig,
		validateServerConfig,
		validateBusConfig,
	}
	for _, validate := range validators {
		if err := validate(cfg); err != nil {
			return err
		}
	}
	return nil
}

func validateAgentsConfig(cfg *Config) error {
	a := cfg.Agents
	if a.MaxAttempts < 1 || a.MaxAttempts > constants.MaxAttemptsLimit {
		return errors.Wrapf(errors.ErrConfigInvalidAgents,
			"agents.max_attempts must be between 1 and %d, got %d", constants.MaxAttemptsLimit, a.MaxAttempts)
	}
	if a.RetryBackoff < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidAgents,
			"agents.retry_backoff must not be negative, got %s", a.RetryBackoff)
	}
	if err := positive(errors.ErrConfigInvalidAgents, "agents.validation_timeout", a.ValidationTimeout); err != nil {
		return err
	}
	if err := positive(errors.ErrConfigInvalidAgents, "agents.efficiency_tick", a.EfficiencyTick); err != nil {
		return err
	}
	if a.DefaultAgent == "" {
		return errors.Wrap(errors.ErrConfigInvalidAgents, "agents.default_agent must not be empty")
	}
	return nil
}

func validateOracleConfig(cfg *Config) error {
	o := cfg.Oracle
	switch o.Provider {
	case constants.OracleProviderPolicy, constants.OracleProviderApprove, constants.OracleProviderReject:
	case constants.OracleProviderGemini:
		if o.Model == "" {
			return errors.Wrap(errors.ErrConfigInvalidOracle, "oracle.model must not be empty for gemini")
		}
		if o.APIKeyEnvVar == "" {
			return errors.Wrap(errors.ErrConfigInvalidOracle, "oracle.api_key_env_var must not be empty for gemini")
		}
		if err := positive(errors.ErrConfigInvalidOracle, "oracle.timeout", o.Timeout); err != nil {
			return err
		}
	default:
		return errors.Wrapf(errors.ErrConfigInvalidOracle, "unknown oracle.provider %q", o.Provider)
	}
	if o.CacheSize < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidOracle, "oracle.cache_size must not be negative, got %d", o.CacheSize)
	}
	if o.CacheSize > 0 {
		if err := positive(errors.ErrConfigInvalidOracle, "oracle.cache_ttl", o.CacheTTL); err != nil {
			return err
		}
	}
	return nil
}

func validateStorageConfig(cfg *Config) error {
	switch cfg.Storage.Driver {
	case constants.StorageDriverMemory, constants.StorageDriverSQLite, constants.StorageDriverFile:
		return nil
	default:
		return errors.Wrapf(errors.ErrConfigInvalidStorage, "unknown storage.driver %q", cfg.Storage.Driver)
	}
}

func validatePublishConfig(cfg *Config) error {
	p := cfg.Publish
	if p.SuccessRate < 0 || p.SuccessRate > 1 {
		return errors.Wrapf(errors.ErrConfigInvalidPublish,
			"publish.success_rate must be between 0 and 1, got %g", p.SuccessRate)
	}
	if p.Delay < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidPublish, "publish.delay must not be negative, got %s", p.Delay)
	}
	if p.WebhookTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidPublish,
			"publish.webhook_timeout must be positive, got %s", p.WebhookTimeout)
	}
	return nil
}

func validateServerConfig(cfg *Config) error {
	s := cfg.Server
	if s.Port < 1 || s.Port > maxPort {
		return errors.Wrapf(errors.ErrConfigInvalidServer, "server.port must be between 1 and %d, got %d", maxPort, s.Port)
	}
	if err := positive(errors.ErrConfigInvalidServer, "server.read_timeout", s.ReadTimeout); err != nil {
		return err
	}
	return positive(errors.ErrConfigInvalidServer, "server.write_timeout", s.WriteTimeout)
}

func validateBusConfig(cfg *Config) error {
	if cfg.Bus.SubscriberBuffer < minSubscriberBuffer {
		return errors.Wrapf(errors.ErrConfigInvalidBus,
			"bus.subscriber_buffer must be at least %d, got %d", minSubscriberBuffer, cfg.Bus.SubscriberBuffer)
	}
	if cfg.Bus.NATSURL != "" && cfg.Bus.NATSSubject == "" {
		return errors.Wrap(errors.ErrConfigInvalidBus, "bus.nats_subject must not be empty when nats_url is set")
	}
	return nil
}

func positive(sentinel error, key string, d time.Duration) error {
	if d <= 0 {
		return errors.Wrapf(sentinel, "%s must be positive, got %s", key, d)
	}
	return nil
}
