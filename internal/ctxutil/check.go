// Package ctxutil provides context utility functions.
package ctxutil

import (
	"context"
	"time"

	"github.com/mrz1836/astromedia/internal/clock"
)

// Canceled checks if the context has been canceled or exceeded its deadline.
// Returns the context error if done (Canceled or DeadlineExceeded), nil otherwise.
// Used at function entry points and before every suspension point.
func Canceled(ctx context.Context) error {
	return ctx.Err()
}

// Sleep waits for d on clk, returning early with the context error if ctx is
// done first. A non-positive d only checks for cancellation.
func Sleep(ctx context.Context, clk clock.Clock, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-clk.After(d):
		return nil
	}
}
