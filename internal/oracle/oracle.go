package oracle

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/astromedia/internal/constants"
	astroerrors "github.com/mrz1836/astromedia/internal/errors"
	"github.com/mrz1836/astromedia/internal/task"
)

// Config selects and configures an oracle.
type Config struct {
	Provider     string
	Model        string
	APIKeyEnvVar string
	BaseURL      string
	Timeout      time.Duration
	CacheSize    int
	CacheTTL     time.Duration
}

// New builds the oracle named by cfg.Provider. The Gemini oracle is wrapped
// in a verdict cache when cfg.CacheSize is positive.
//
// Returns an error if:
//   - the provider is unknown (ErrUnknownOracle)
//   - the gemini provider is selected and its API key variable is unset (ErrOracleMissingKey)
func New(cfg Config, logger zerolog.Logger) (task.ValidationOracle, error) {
	switch cfg.Provider {
	case "", constants.OracleProviderPolicy:
		return NewPolicy(DefaultPolicyRules()), nil
	case constants.OracleProviderApprove:
		return NewApprove(), nil
	case constants.OracleProviderReject:
		return NewReject(), nil
	case constants.OracleProviderGemini:
		envVar := cfg.APIKeyEnvVar
		if envVar == "" {
			envVar = constants.DefaultOracleAPIKeyEnvVar
		}
		g, err := NewGemini(GeminiConfig{
			Model:   cfg.Model,
			APIKey:  os.Getenv(envVar),
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("%s is not set: %w", envVar, err)
		}
		if cfg.CacheSize > 0 {
			return NewCache(g, cfg.CacheSize, cfg.CacheTTL), nil
		}
		return g, nil
	default:
		return nil, fmt.Errorf("%w: %q", astroerrors.ErrUnknownOracle, cfg.Provider)
	}
}
