package oracle

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/mrz1836/astromedia/internal/domain"
	astroerrors "github.com/mrz1836/astromedia/internal/errors"
)

const systemPrompt = "You are a brand-safety compliance reviewer for a social media team. " +
	"Judge whether the proposed action complies with the policy in the context. " +
	`Answer only with JSON: {"compliant": boolean, "reason": string, "suggestedCorrection": string}. ` +
	"suggestedCorrection must be empty when compliant."

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"responseMimeType"`
	Temperature      float64 `json:"temperature"`
}

type generateRequest struct {
	SystemInstruction geminiContent    `json:"systemInstruction"`
	Contents          []geminiContent  `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// verdictPayload accepts both camelCase and snake_case correction keys.
type verdictPayload struct {
	Compliant           bool   `json:"compliant"`
	Reason              string `json:"reason"`
	SuggestedCorrection string `json:"suggestedCorrection"`
	SuggestedSnake      string `json:"suggested_correction"`
}

func buildGenerateRequest(role, action, brief string) generateRequest {
	prompt := fmt.Sprintf("Role: %s\nProposed action: %s\nContext: %s", role, action, brief)
	return generateRequest{
		SystemInstruction: geminiContent{Parts: []geminiPart{{Text: systemPrompt}}},
		Contents:          []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig:  generationConfig{ResponseMimeType: "application/json"},
	}
}

// parseGenerateResponse extracts the candidate text from a generateContent body.
func parseGenerateResponse(body []byte) (string, error) {
	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: failed to parse json response: %s", astroerrors.ErrOracleResponse, err.Error())
	}
	if resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked: %s", astroerrors.ErrOracleResponse, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", astroerrors.ErrOracleResponse)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("%w: empty candidate", astroerrors.ErrOracleResponse)
	}
	return sb.String(), nil
}

// parseVerdict decodes the model's JSON verdict, repairing it when the model
// wrapped it in a code fence or left it malformed.
func parseVerdict(text string) (domain.Verdict, error) {
	raw := stripCodeFence(text)

	var p verdictPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(raw)
		if repairErr != nil {
			return domain.Verdict{}, fmt.Errorf("%w: unreadable verdict: %s", astroerrors.ErrOracleResponse, err.Error())
		}
		if err := json.Unmarshal([]byte(repaired), &p); err != nil {
			return domain.Verdict{}, fmt.Errorf("%w: unreadable verdict: %s", astroerrors.ErrOracleResponse, err.Error())
		}
	}

	correction := p.SuggestedCorrection
	if correction == "" {
		correction = p.SuggestedSnake
	}
	return domain.Verdict{
		Compliant:           p.Compliant,
		Reason:              strings.TrimSpace(p.Reason),
		SuggestedCorrection: strings.TrimSpace(correction),
	}, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
