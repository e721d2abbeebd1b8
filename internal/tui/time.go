package tui

import (
	"fmt"
	"time"

	"github.com/mrz1836/astromedia/internal/clock"
)

// DefaultClock is the clock used by RelativeTime.
//
//nolint:gochecknoglobals // Package-level default for dependency injection
var DefaultClock clock.Clock = clock.RealClock{}

// RelativeTime formats t relative to now, e.g. "just now", "5 minutes ago",
// or "in 2 hours" for scheduled times. The zero time renders as "-".
func RelativeTime(t time.Time) string {
	return RelativeTimeWith(t, DefaultClock)
}

// RelativeTimeWith is RelativeTime against the provided clock.
func RelativeTimeWith(t time.Time, c clock.Clock) string {
	if t.IsZero() {
		return "-"
	}

	diff := c.Now().Sub(t)
	future := diff < 0
	if future {
		diff = -diff
	}
	if diff < time.Minute {
		return "just now"
	}

	var n int
	var unit string
	switch {
	case diff < time.Hour:
		n, unit = int(diff.Minutes()), "minute"
	case diff < 24*time.Hour:
		n, unit = int(diff.Hours()), "hour"
	case diff < 7*24*time.Hour:
		n, unit = int(diff.Hours()/24), "day"
	default:
		n, unit = int(diff.Hours()/24/7), "week"
	}
	if n != 1 {
		unit += "s"
	}

	if future {
		return fmt.Sprintf("in %d %s", n, unit)
	}
	return fmt.Sprintf("%d %s ago", n, unit)
}
