// Package config provides configuration management for astromedia with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (ASTRO_* prefix)
//  3. Project config (.astromedia/config.yaml)
//  4. Global config (~/.astromedia/config.yaml)
//  5. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages.
package config

import "time"

// Config is the root configuration structure for astromedia.
type Config struct {
	// Agents controls the ACM loop and the agent roster.
	Agents AgentsConfig `yaml:"agents" mapstructure:"agents"`

	// Oracle selects and configures the compliance validation oracle.
	Oracle OracleConfig `yaml:"oracle" mapstructure:"oracle"`

	// Storage selects the key-value store driver.
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`

	// Publish configures the simulated automation backend.
	Publish PublishConfig `yaml:"publish" mapstructure:"publish"`

	// Server configures the HTTP API.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Bus configures snapshot fan-out to subscribers and exporters.
	Bus BusConfig `yaml:"bus" mapstructure:"bus"`
}

// AgentsConfig contains settings for autonomous agent tasks.
type AgentsConfig struct {
	// MaxAttempts is the attempt ceiling for tasks that do not set their own.
	// Default: 3
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts"`

	// RetryBackoff is the pause between a rejection and the next observation.
	// Default: 1.5s
	RetryBackoff time.Duration `yaml:"retry_backoff" mapstructure:"retry_backoff"`

	// ValidationTimeout bounds one call to the validation oracle.
	// Default: 30s
	ValidationTimeout time.Duration `yaml:"validation_timeout" mapstructure:"validation_timeout"`

	// DefaultAgent owns tasks triggered without an agent id.
	// Default: "echo-acm"
	DefaultAgent string `yaml:"default_agent" mapstructure:"default_agent"`

	// DefaultScenario is the scenario used when a request names none.
	// Default: "community_manager"
	DefaultScenario string `yaml:"default_scenario" mapstructure:"default_scenario"`

	// EfficiencyTick is how often the roster efficiency telemetry drifts.
	// Default: 3s
	EfficiencyTick time.Duration `yaml:"efficiency_tick" mapstructure:"efficiency_tick"`
}

// OracleConfig contains settings for the validation oracle.
type OracleConfig struct {
	// Provider is one of "policy", "gemini", "approve", or "reject".
	// Default: "policy"
	Provider string `yaml:"provider" mapstructure:"provider"`

	// Model is the Gemini model name.
	Model string `yaml:"model" mapstructure:"model"`

	// APIKeyEnvVar names the environment variable holding the API key.
	// The key itself never lives in config files.
	APIKeyEnvVar string `yaml:"api_key_env_var" mapstructure:"api_key_env_var"`

	// BaseURL is the Generative Language API endpoint.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout bounds the HTTP round trip.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// CacheSize is the number of cached verdicts. Zero disables the cache.
	CacheSize int `yaml:"cache_size" mapstructure:"cache_size"`

	// CacheTTL is how long a cached verdict stays valid.
	CacheTTL time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// StorageConfig contains settings for the key-value store.
type StorageConfig struct {
	// Driver is one of "memory", "sqlite", or "file".
	// Default: "sqlite"
	Driver string `yaml:"driver" mapstructure:"driver"`

	// Path is the data directory, or a database file for sqlite.
	// Empty means ~/.astromedia/data.
	Path string `yaml:"path" mapstructure:"path"`
}

// PublishConfig contains settings for the simulated automation backend.
type PublishConfig struct {
	// Delay is how long a publish job runs before reporting back.
	Delay time.Duration `yaml:"delay" mapstructure:"delay"`

	// SuccessRate is the probability in [0,1] that a job is published.
	SuccessRate float64 `yaml:"success_rate" mapstructure:"success_rate"`

	// WebhookURL, when set, receives every publish request.
	WebhookURL string `yaml:"webhook_url" mapstructure:"webhook_url"`

	// WebhookTimeout bounds each webhook call.
	WebhookTimeout time.Duration `yaml:"webhook_timeout" mapstructure:"webhook_timeout"`
}

// ServerConfig contains settings for the HTTP API.
type ServerConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	EnableCORS   bool          `yaml:"enable_cors" mapstructure:"enable_cors"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
}

// BusConfig contains settings for the observer bus.
type BusConfig struct {
	// SubscriberBuffer is the channel buffer of each live subscriber.
	SubscriberBuffer int `yaml:"subscriber_buffer" mapstructure:"subscriber_buffer"`

	// NATSURL enables snapshot export to NATS when set.
	NATSURL string `yaml:"nats_url" mapstructure:"nats_url"`

	// NATSSubject is the subject prefix snapshots are published under.
	NATSSubject string `yaml:"nats_subject" mapstructure:"nats_subject"`
}
