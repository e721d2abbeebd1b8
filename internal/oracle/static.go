package oracle

import (
	"context"

	"github.com/mrz1836/astromedia/internal/domain"
)

// Static returns the same verdict, or the same error, for every call.
type Static struct {
	Verdict domain.Verdict
	Err     error
}

// NewApprove returns an oracle that accepts everything.
func NewApprove() *Static {
	return &Static{Verdict: domain.Verdict{Compliant: true, Reason: "auto-approved"}}
}

// NewReject returns an oracle that rejects everything.
func NewReject() *Static {
	return &Static{Verdict: domain.Verdict{
		Compliant:           false,
		Reason:              "auto-rejected for supervisor review",
		SuggestedCorrection: "Hold the action until a human supervisor signs off.",
	}}
}

// Validate implements task.ValidationOracle.
func (s *Static) Validate(ctx context.Context, _, _, _ string) (domain.Verdict, error) {
	if err := ctx.Err(); err != nil {
		return domain.Verdict{}, err
	}
	if s.Err != nil {
		return domain.Verdict{}, s.Err
	}
	return s.Verdict, nil
}
