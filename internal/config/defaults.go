package config

import (
	"github.com/mrz1836/astromedia/internal/constants"
)

// DefaultScenario is the scenario run when a task request names none.
const DefaultScenario = "community_manager"

// DefaultConfig returns a new Config with default values.
// These defaults are used as the base layer that can be overridden by
// config files, environment variables, and CLI flags.
func DefaultConfig() *Config {
	return &Config{
		Agents: AgentsConfig{
			MaxAttempts:       constants.DefaultMaxAttempts,
			RetryBackoff:      constants.DefaultRetryBackoff,
			ValidationTimeout: constants.DefaultValidationTimeout,
			DefaultAgent:      constants.DefaultAgentID,
			DefaultScenario:   DefaultScenario,
			EfficiencyTick:    constants.DefaultEfficiencyTick,
		},
		Oracle: OracleConfig{
			// the offline policy oracle works without an API key
			Provider:     constants.OracleProviderPolicy,
			Model:        constants.DefaultOracleModel,
			APIKeyEnvVar: constants.DefaultOracleAPIKeyEnvVar,
			BaseURL:      constants.DefaultOracleBaseURL,
			Timeout:      constants.DefaultOracleTimeout,
			CacheSize:    constants.DefaultOracleCacheSize,
			CacheTTL:     constants.DefaultOracleCacheTTL,
		},
		Storage: StorageConfig{
			Driver: constants.StorageDriverSQLite,
		},
		Publish: PublishConfig{
			Delay:          constants.DefaultPublishDelay,
			SuccessRate:    constants.DefaultPublishSuccessRate,
			WebhookTimeout: constants.DefaultPublishWebhookTimeout,
		},
		Server: ServerConfig{
			Host:         constants.DefaultServerHost,
			Port:         constants.DefaultServerPort,
			ReadTimeout:  constants.DefaultServerTimeout,
			WriteTimeout: constants.DefaultServerTimeout,
		},
		Bus: BusConfig{
			SubscriberBuffer: constants.DefaultSubscriberBuffer,
			NATSSubject:      constants.DefaultNATSSubject,
		},
	}
}
