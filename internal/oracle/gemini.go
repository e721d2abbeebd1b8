// Package oracle provides validation oracles that judge whether an agent's
// proposed action complies with brand and platform policy.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/astromedia/internal/constants"
	"github.com/mrz1836/astromedia/internal/domain"
	astroerrors "github.com/mrz1836/astromedia/internal/errors"
)

// maxErrorBody caps how much of a failed response body ends up in an error.
const maxErrorBody = 512

// GeminiConfig configures the Gemini client.
type GeminiConfig struct {
	Model   string
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Gemini validates actions with the Gemini generateContent REST API in JSON mode.
type Gemini struct {
	config     GeminiConfig
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewGemini creates a Gemini oracle.
//
// Returns an error if:
//   - cfg.APIKey is empty (ErrOracleMissingKey)
func NewGemini(cfg GeminiConfig, logger zerolog.Logger) (*Gemini, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, astroerrors.ErrOracleMissingKey
	}
	if cfg.Model == "" {
		cfg.Model = constants.DefaultOracleModel
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = constants.DefaultOracleBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.DefaultOracleTimeout
	}

	return &Gemini{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With().Str("component", "gemini_oracle").Logger(),
	}, nil
}

// Validate implements task.ValidationOracle.
//
// Returns an error if:
//   - ctx is canceled
//   - the request fails or the API answers non-2xx (ErrOracleUnavailable)
//   - the verdict cannot be decoded even after repair (ErrOracleResponse)
func (g *Gemini) Validate(ctx context.Context, role, action, brief string) (domain.Verdict, error) {
	select {
	case <-ctx.Done():
		return domain.Verdict{}, ctx.Err()
	default:
	}

	payload, err := json.Marshal(buildGenerateRequest(role, action, brief))
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("failed to encode gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.config.BaseURL, g.config.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("failed to build gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.config.APIKey)

	g.logger.Debug().
		Str("model", g.config.Model).
		Str("role", role).
		Int("action_length", len(action)).
		Msg("requesting compliance verdict")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return domain.Verdict{}, ctx.Err()
		}
		return domain.Verdict{}, fmt.Errorf("%w: %s", astroerrors.ErrOracleUnavailable, err.Error())
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("%w: failed to read response: %s", astroerrors.ErrOracleUnavailable, err.Error())
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.Verdict{}, fmt.Errorf("%w: status %d: %s",
			astroerrors.ErrOracleUnavailable, resp.StatusCode, truncate(strings.TrimSpace(string(body)), maxErrorBody))
	}

	text, err := parseGenerateResponse(body)
	if err != nil {
		return domain.Verdict{}, err
	}
	return parseVerdict(text)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
