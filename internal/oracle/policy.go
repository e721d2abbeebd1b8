package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/mrz1836/astromedia/internal/domain"
)

// PolicyRules configures the offline Policy oracle.
type PolicyRules struct {
	// BannedPhrases are absolute claims that are never allowed.
	BannedPhrases []string

	// DisclosureTriggers mark paid promotion; when present the action must
	// also contain DisclosureTag.
	DisclosureTriggers []string
	DisclosureTag      string

	// MaxLength caps the proposed action in characters. Zero disables the check.
	MaxLength int
}

// DefaultPolicyRules returns the built-in brand rules.
func DefaultPolicyRules() PolicyRules {
	return PolicyRules{
		BannedPhrases: []string{
			"guaranteed",
			"guarantee",
			"risk-free",
			"best tool ever",
			"100% success",
			"#1",
		},
		DisclosureTriggers: []string{"sponsored", "paid partnership", "promo code", "affiliate"},
		DisclosureTag:      "#ad",
		MaxLength:          600,
	}
}

// Policy is a deterministic rule-based oracle that works without network access.
type Policy struct {
	rules PolicyRules
}

// NewPolicy creates a Policy oracle.
func NewPolicy(rules PolicyRules) *Policy {
	return &Policy{rules: rules}
}

// Validate implements task.ValidationOracle. Rules are checked in order and
// the first violation is reported.
func (p *Policy) Validate(ctx context.Context, _, action, _ string) (domain.Verdict, error) {
	select {
	case <-ctx.Done():
		return domain.Verdict{}, ctx.Err()
	default:
	}

	lower := strings.ToLower(action)

	for _, phrase := range p.rules.BannedPhrases {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			return domain.Verdict{
				Compliant:           false,
				Reason:              fmt.Sprintf("proposed action makes an absolute claim (%q)", phrase),
				SuggestedCorrection: "Remove absolute performance promises and keep the message factual.",
			}, nil
		}
	}

	if p.rules.DisclosureTag != "" && !strings.Contains(lower, strings.ToLower(p.rules.DisclosureTag)) {
		for _, trigger := range p.rules.DisclosureTriggers {
			if strings.Contains(lower, strings.ToLower(trigger)) {
				return domain.Verdict{
					Compliant:           false,
					Reason:              fmt.Sprintf("paid promotion (%q) lacks a disclosure", trigger),
					SuggestedCorrection: "Add an " + p.rules.DisclosureTag + " disclosure at the start of the message.",
				}, nil
			}
		}
	}

	if p.rules.MaxLength > 0 && len([]rune(action)) > p.rules.MaxLength {
		return domain.Verdict{
			Compliant:           false,
			Reason:              fmt.Sprintf("proposed action is %d characters long", len([]rune(action))),
			SuggestedCorrection: fmt.Sprintf("Shorten the message to under %d characters.", p.rules.MaxLength),
		}, nil
	}

	return domain.Verdict{Compliant: true, Reason: "action follows brand voice and platform policy"}, nil
}
