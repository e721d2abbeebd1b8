package config

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mrz1836/astromedia/internal/errors"
)

// newViperInstance creates a Viper instance with the ASTRO_ environment
// prefix, the key replacer, and defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("ASTRO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError returns true if the error is a viper config file not found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// unmarshalAndValidate unmarshals viper config into Config struct and validates it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Load reads configuration from all available sources with proper precedence.
// Configuration is loaded in the following order (highest precedence first):
//  1. Environment variables (ASTRO_* prefix)
//  2. Project config (.astromedia/config.yaml)
//  3. Global config (~/.astromedia/config.yaml)
//  4. Built-in defaults
//
// Missing config files are not an error.
func Load(ctx context.Context) (*Config, error) {
	v := newViperInstance()

	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}
	if err := loadProjectConfig(v); err != nil {
		return nil, err
	}

	cfg, err := unmarshalAndValidate(v)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Str("oracle.provider", cfg.Oracle.Provider).
		Str("storage.driver", cfg.Storage.Driver).
		Int("agents.max_attempts", cfg.Agents.MaxAttempts).
		Dur("agents.retry_backoff", cfg.Agents.RetryBackoff).
		Msg("configuration loaded")

	return cfg, nil
}

// loadGlobalConfig reads ~/.astromedia/config.yaml when it exists.
func loadGlobalConfig(v *viper.Viper) error {
	path, err := GlobalConfigPath()
	if err != nil || !fileExists(path) {
		return nil //nolint:nilerr // a missing home directory means no global config
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read global config file")
	}
	return nil
}

// loadProjectConfig merges .astromedia/config.yaml when it exists.
func loadProjectConfig(v *viper.Viper) error {
	path := ProjectConfigPath()
	if !fileExists(path) {
		return nil
	}

	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read project config file")
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadWithOverrides loads configuration and applies CLI flag overrides.
// Only non-zero values in overrides are applied.
func LoadWithOverrides(ctx context.Context, overrides *Config) (*Config, error) {
	cfg, err := Load(ctx)
	if err != nil {
		return nil, err
	}

	if err := ApplyOverrides(cfg, overrides); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides merges the non-zero values of overrides into cfg and
// validates the result. A nil overrides only re-validates cfg.
func ApplyOverrides(cfg, overrides *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}
	if overrides != nil {
		applyOverrides(cfg, overrides)
	}
	if err := Validate(cfg); err != nil {
		return errors.Wrap(err, "invalid configuration after overrides")
	}
	return nil
}

// LoadFromPaths loads configuration from specific file paths.
// projectConfigPath has higher priority than globalConfigPath; either may
// be empty to skip that level.
func LoadFromPaths(_ context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if globalConfigPath != "" {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}

	if projectConfigPath != "" {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}

	return unmarshalAndValidate(v)
}

// setDefaults configures all default values on the Viper instance.
// Keys must match the mapstructure tags exactly, and every key needs a
// default so AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("agents.max_attempts", d.Agents.MaxAttempts)
	v.SetDefault("agents.retry_backoff", d.Agents.RetryBackoff.String())
	v.SetDefault("agents.validation_timeout", d.Agents.ValidationTimeout.String())
	v.SetDefault("agents.default_agent", d.Agents.DefaultAgent)
	v.SetDefault("agents.default_scenario", d.Agents.DefaultScenario)
	v.SetDefault("agents.efficiency_tick", d.Agents.EfficiencyTick.String())

	v.SetDefault("oracle.provider", d.Oracle.Provider)
	v.SetDefault("oracle.model", d.Oracle.Model)
	v.SetDefault("oracle.api_key_env_var", d.Oracle.APIKeyEnvVar)
	v.SetDefault("oracle.base_url", d.Oracle.BaseURL)
	v.SetDefault("oracle.timeout", d.Oracle.Timeout.String())
	v.SetDefault("oracle.cache_size", d.Oracle.CacheSize)
	v.SetDefault("oracle.cache_ttl", d.Oracle.CacheTTL.String())

	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.path", d.Storage.Path)

	v.SetDefault("publish.delay", d.Publish.Delay.String())
	v.SetDefault("publish.success_rate", d.Publish.SuccessRate)
	v.SetDefault("publish.webhook_url", d.Publish.WebhookURL)
	v.SetDefault("publish.webhook_timeout", d.Publish.WebhookTimeout.String())

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.enable_cors", d.Server.EnableCORS)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout.String())
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout.String())

	v.SetDefault("bus.subscriber_buffer", d.Bus.SubscriberBuffer)
	v.SetDefault("bus.nats_url", d.Bus.NATSURL)
	v.SetDefault("bus.nats_subject", d.Bus.NATSSubject)
}

// applyOverrides merges non-zero override values into the config.
//
// Boolean fields cannot be overridden to false here because false is
// indistinguishable from unset. The CLI handles those with Flags().Changed.
func applyOverrides(cfg, overrides *Config) {
	if overrides.Agents.MaxAttempts != 0 {
		cfg.Agents.MaxAttempts = overrides.Agents.MaxAttempts
	}
	if overrides.Agents.DefaultAgent != "" {
		cfg.Agents.DefaultAgent = overrides.Agents.DefaultAgent
	}
	if overrides.Agents.DefaultScenario != "" {
		cfg.Agents.DefaultScenario = overrides.Agents.DefaultScenario
	}
	if overrides.Oracle.Provider != "" {
		cfg.Oracle.Provider = overrides.Oracle.Provider
	}
	if overrides.Oracle.Model != "" {
		cfg.Oracle.Model = overrides.Oracle.Model
	}
	if overrides.Storage.Driver != "" {
		cfg.Storage.Driver = overrides.Storage.Driver
	}
	if overrides.Storage.Path != "" {
		cfg.Storage.Path = overrides.Storage.Path
	}
	if overrides.Server.Host != "" {
		cfg.Server.Host = overrides.Server.Host
	}
	if overrides.Server.Port != 0 {
		cfg.Server.Port = overrides.Server.Port
	}
	if overrides.Server.EnableCORS {
		cfg.Server.EnableCORS = true
	}
	if overrides.Bus.NATSURL != "" {
		cfg.Bus.NATSURL = overrides.Bus.NATSURL
	}
}

// viperDecoderOption configures mapstructure to decode durations from strings.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}
