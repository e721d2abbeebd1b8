package oracle

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	astroerrors "github.com/mrz1836/astromedia/internal/errors"
)

func candidateBody(text string) string {
	body, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"role": "model", "parts": []map[string]string{{"text": text}}}},
		},
	})
	return string(body)
}

func newTestGemini(t *testing.T, handler http.HandlerFunc) *Gemini {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g, err := NewGemini(GeminiConfig{APIKey: "test-key", BaseURL: srv.URL, Timeout: 2 * time.Second}, zerolog.Nop())
	require.NoError(t, err)
	return g
}

func TestNewGemini_MissingKey(t *testing.T) {
	_, err := NewGemini(GeminiConfig{APIKey: "  "}, zerolog.Nop())
	require.ErrorIs(t, err, astroerrors.ErrOracleMissingKey)
}

func TestGemini_Validate_Compliant(t *testing.T) {
	var gotPath, gotKey string
	var gotReq generateRequest
	g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotReq)
		_, _ = io.WriteString(w, candidateBody(`{"compliant": true, "reason": "friendly and factual", "suggestedCorrection": ""}`))
	})

	v, err := g.Validate(context.Background(), "Community Manager", "Reply kindly", "Policy: be nice")
	require.NoError(t, err)

	assert.True(t, v.Compliant)
	assert.Equal(t, "friendly and factual", v.Reason)
	assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "application/json", gotReq.GenerationConfig.ResponseMimeType)
	require.Len(t, gotReq.Contents, 1)
	assert.Contains(t, gotReq.Contents[0].Parts[0].Text, "Role: Community Manager")
	assert.Contains(t, gotReq.Contents[0].Parts[0].Text, "Context: Policy: be nice")
}

func TestGemini_Validate_RepairsVerdict(t *testing.T) {
	tests := []struct {
		name           string
		text           string
		wantCompliant  bool
		wantCorrection string
	}{
		{
			name:           "code fence",
			text:           "```json\n{\"compliant\": false, \"reason\": \"overclaim\", \"suggestedCorrection\": \"tone it down\"}\n```",
			wantCorrection: "tone it down",
		},
		{
			name:           "trailing comma and single quotes",
			text:           "{'compliant': false, 'reason': 'overclaim', 'suggested_correction': 'be factual',}",
			wantCorrection: "be factual",
		},
		{
			name:          "missing closing brace",
			text:          `{"compliant": true, "reason": "ok"`,
			wantCompliant: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGemini(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, candidateBody(tt.text))
			})

			v, err := g.Validate(context.Background(), "r", "a", "c")
			require.NoError(t, err)
			assert.Equal(t, tt.wantCompliant, v.Compliant)
			assert.Equal(t, tt.wantCorrection, v.SuggestedCorrection)
		})
	}
}

func TestGemini_Validate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`, astroerrors.ErrOracleUnavailable},
		{"rate limited", http.StatusTooManyRequests, `quota`, astroerrors.ErrOracleUnavailable},
		{"not json", http.StatusOK, `<html>`, astroerrors.ErrOracleResponse},
		{"no candidates", http.StatusOK, `{"candidates": []}`, astroerrors.ErrOracleResponse},
		{"blocked", http.StatusOK, `{"promptFeedback": {"blockReason": "SAFETY"}}`, astroerrors.ErrOracleResponse},
		{"empty text", http.StatusOK, candidateBody("   "), astroerrors.ErrOracleResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGemini(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := g.Validate(context.Background(), "r", "a", "c")
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGemini_Validate_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	g, err := NewGemini(GeminiConfig{APIKey: "k", BaseURL: url}, zerolog.Nop())
	require.NoError(t, err)

	_, err = g.Validate(context.Background(), "r", "a", "c")
	require.ErrorIs(t, err, astroerrors.ErrOracleUnavailable)
}

func TestGemini_Validate_Canceled(t *testing.T) {
	g := newTestGemini(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, candidateBody(`{"compliant": true}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Validate(ctx, "r", "a", "c")
	require.ErrorIs(t, err, context.Canceled)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`  {"a":1} `))
	assert.Equal(t, "abc...", truncate("abcdef", 3))
	assert.True(t, strings.HasPrefix(systemPrompt, "You are"))
}
