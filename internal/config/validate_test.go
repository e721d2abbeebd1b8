package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/astromedia/internal/constants"
	"github.com/mrz1836/astromedia/internal/errors"
)

func TestValidate_Nil(t *testing.T) {
	require.ErrorIs(t, Validate(nil), errors.ErrConfigNil)
}

func TestValidate_Defaults(t *testing.T) {
	require.NoError(t, Validate(DefaultConfig()))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"zero max attempts", func(c *Config) { c.Agents.MaxAttempts = 0 }, errors.ErrConfigInvalidAgents},
		{"max attempts at limit", func(c *Config) { c.Agents.MaxAttempts = constants.MaxAttemptsLimit }, nil},
		{"negative backoff", func(c *Config) { c.Agents.RetryBackoff = -1 }, errors.ErrConfigInvalidAgents},
		{"zero backoff", func(c *Config) { c.Agents.RetryBackoff = 0 }, nil},
		{"zero validation timeout", func(c *Config) { c.Agents.ValidationTimeout = 0 }, errors.ErrConfigInvalidAgents},
		{"zero efficiency tick", func(c *Config) { c.Agents.EfficiencyTick = 0 }, errors.ErrConfigInvalidAgents},
		{"empty default agent", func(c *Config) { c.Agents.DefaultAgent = "" }, errors.ErrConfigInvalidAgents},
		{"gemini without model", func(c *Config) {
			c.Oracle.Provider = constants.OracleProviderGemini
			c.Oracle.Model = ""
		}, errors.ErrConfigInvalidOracle},
		{"gemini without key var", func(c *Config) {
			c.Oracle.Provider = constants.OracleProviderGemini
			c.Oracle.APIKeyEnvVar = ""
		}, errors.ErrConfigInvalidOracle},
		{"gemini valid", func(c *Config) { c.Oracle.Provider = constants.OracleProviderGemini }, nil},
		{"unknown provider", func(c *Config) { c.Oracle.Provider = "tarot" }, errors.ErrConfigInvalidOracle},
		{"negative cache size", func(c *Config) { c.Oracle.CacheSize = -1 }, errors.ErrConfigInvalidOracle},
		{"cache without ttl", func(c *Config) { c.Oracle.CacheTTL = 0 }, errors.ErrConfigInvalidOracle},
		{"cache disabled without ttl", func(c *Config) {
			c.Oracle.CacheSize = 0
			c.Oracle.CacheTTL = 0
		}, nil},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "bolt" }, errors.ErrConfigInvalidStorage},
		{"negative success rate", func(c *Config) { c.Publish.SuccessRate = -0.1 }, errors.ErrConfigInvalidPublish},
		{"negative delay", func(c *Config) { c.Publish.Delay = -1 }, errors.ErrConfigInvalidPublish},
		{"zero webhook timeout", func(c *Config) { c.Publish.WebhookTimeout = 0 }, errors.ErrConfigInvalidPublish},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, errors.ErrConfigInvalidServer},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, errors.ErrConfigInvalidServer},
		{"zero write timeout", func(c *Config) { c.Server.WriteTimeout = 0 }, errors.ErrConfigInvalidServer},
		{"zero subscriber buffer", func(c *Config) { c.Bus.SubscriberBuffer = 0 }, errors.ErrConfigInvalidBus},
		{"nats without subject", func(c *Config) {
			c.Bus.NATSURL = "nats://localhost:4222"
			c.Bus.NATSSubject = ""
		}, errors.ErrConfigInvalidBus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
