// Package tui provides the terminal styling shared by astro commands.
//
// All colors use AdaptiveColor for light/dark terminal support. Call
// CheckNoColor at the start of commands that print styled text so NO_COLOR
// and TERM=dumb are respected.
package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/mrz1836/astromedia/internal/constants"
)

//nolint:gochecknoglobals // Intentional package-level constants for styling API
var (
	// ColorPrimary is blue, used for running tasks and active states.
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}

	// ColorSuccess is green, used for completed tasks and published posts.
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#00FF87"}

	// ColorWarning is yellow, used for retries and scheduled items.
	ColorWarning = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}

	// ColorError is red, used for failed tasks and posts.
	ColorError = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}

	// ColorMuted is gray, used for idle agents and secondary text.
	ColorMuted = lipgloss.AdaptiveColor{Light: "#585858", Dark: "#6C6C6C"}

	// ColorAccent is violet, used for the validation step.
	ColorAccent = lipgloss.AdaptiveColor{Light: "#5F00AF", Dark: "#AF87FF"}
)

// OutputStyles holds common output styles.
type OutputStyles struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Dim     lipgloss.Style
}

// NewOutputStyles creates common output styles.
func NewOutputStyles() *OutputStyles {
	return &OutputStyles{
		Success: lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(ColorError).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(ColorWarning),
		Info:    lipgloss.NewStyle().Foreground(ColorPrimary),
		Dim:     lipgloss.NewStyle().Foreground(ColorMuted),
	}
}

// CheckNoColor switches lipgloss to plain ASCII when colors are unsupported.
func CheckNoColor() {
	if !HasColorSupport() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// HasColorSupport returns false if NO_COLOR is set (to any value, including
// empty) or TERM=dumb. See https://no-color.org/.
func HasColorSupport() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

// StepColor returns the color of a task step's log lines.
func StepColor(step constants.TaskStep) lipgloss.AdaptiveColor {
	switch step {
	case constants.TaskStepExecute, constants.TaskStepObserve:
		return ColorPrimary
	case constants.TaskStepValidate:
		return ColorAccent
	case constants.TaskStepConform:
		return ColorSuccess
	case constants.TaskStepRetry:
		return ColorWarning
	default:
		return ColorMuted
	}
}

// TaskStatusColor returns the semantic color of a task status.
func TaskStatusColor(status constants.TaskStatus) lipgloss.AdaptiveColor {
	switch status {
	case constants.TaskStatusRunning:
		return ColorPrimary
	case constants.TaskStatusCompleted:
		return ColorSuccess
	case constants.TaskStatusFailed:
		return ColorError
	default:
		return ColorMuted
	}
}

// TaskStatusIcon returns the icon shown next to a task status.
func TaskStatusIcon(status constants.TaskStatus) string {
	switch status {
	case constants.TaskStatusRunning:
		return "●"
	case constants.TaskStatusCompleted:
		return "✓"
	case constants.TaskStatusFailed:
		return "✗"
	default:
		return "?"
	}
}

// PostStatusColor returns the semantic color of a post status.
func PostStatusColor(status constants.PostStatus) lipgloss.AdaptiveColor {
	switch status {
	case constants.PostStatusPublished:
		return ColorSuccess
	case constants.PostStatusFailed:
		return ColorError
	case constants.PostStatusScheduled:
		return ColorWarning
	default:
		return ColorMuted
	}
}

// AgentStatusColor returns the color of a roster entry's activity indicator.
func AgentStatusColor(status constants.AgentStatus) lipgloss.AdaptiveColor {
	switch status {
	case constants.AgentStatusProcessing:
		return ColorPrimary
	case constants.AgentStatusLearning:
		return ColorAccent
	default:
		return ColorMuted
	}
}

// Colorize renders s in the given color.
func Colorize(s string, color lipgloss.AdaptiveColor) string {
	return lipgloss.NewStyle().Foreground(color).Render(s)
}

// StepOf extracts the step from a "[STEP] message" log line. It returns
// false when the line carries no known tag.
func StepOf(line string) (constants.TaskStep, bool) {
	if !strings.HasPrefix(line, "[") {
		return "", false
	}
	end := strings.Index(line, "]")
	if end < 0 {
		return "", false
	}
	step := constants.TaskStep(strings.ToLower(line[1:end]))
	return step, step.IsValid()
}

// LogLine colors a task log line by its step tag. Lines without a known
// tag are returned unchanged.
func LogLine(line string) string {
	step, ok := StepOf(line)
	if !ok {
		return line
	}
	tag := step.Tag()
	return lipgloss.NewStyle().Foreground(StepColor(step)).Bold(true).Render(tag) + line[len(tag):]
}
