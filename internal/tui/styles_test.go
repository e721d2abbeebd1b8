package tui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"

	"github.com/mrz1836/astromedia/internal/constants"
)

func TestHasColorSupport(t *testing.T) {
	tests := []struct {
		name    string
		noColor *string
		term    string
		want    bool
	}{
		{name: "plain terminal", term: "xterm-256color", want: true},
		{name: "dumb terminal", term: "dumb", want: false},
		{name: "NO_COLOR set", noColor: ptr("1"), term: "xterm", want: false},
		{name: "NO_COLOR empty", noColor: ptr(""), term: "xterm", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TERM", tt.term)
			if tt.noColor != nil {
				t.Setenv("NO_COLOR", *tt.noColor)
			} else {
				unsetEnv(t, "NO_COLOR")
			}
			assert.Equal(t, tt.want, HasColorSupport())
		})
	}
}

func TestStepOf(t *testing.T) {
	tests := []struct {
		line   string
		want   constants.TaskStep
		wantOK bool
	}{
		{"[EXECUTE] Starting task", constants.TaskStepExecute, true},
		{"[VALIDATE] Rejected: tone", constants.TaskStepValidate, true},
		{"[RETRY] Adjusting", constants.TaskStepRetry, true},
		{"[BOGUS] nope", constants.TaskStepExecute, false},
		{"no tag at all", "", false},
		{"[unterminated", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			step, ok := StepOf(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, step)
			}
		})
	}
}

func TestLogLine_PlainWithoutColor(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	assert.Equal(t, "[CONFORM] Action executed", LogLine("[CONFORM] Action executed"))
	assert.Equal(t, "untagged", LogLine("untagged"))
}

func TestStatusColors(t *testing.T) {
	assert.Equal(t, ColorSuccess, TaskStatusColor(constants.TaskStatusCompleted))
	assert.Equal(t, ColorError, TaskStatusColor(constants.TaskStatusFailed))
	assert.Equal(t, ColorPrimary, TaskStatusColor(constants.TaskStatusRunning))

	assert.Equal(t, ColorWarning, PostStatusColor(constants.PostStatusScheduled))
	assert.Equal(t, ColorSuccess, PostStatusColor(constants.PostStatusPublished))
	assert.Equal(t, ColorError, PostStatusColor(constants.PostStatusFailed))

	assert.Equal(t, ColorMuted, AgentStatusColor(constants.AgentStatusIdle))
	assert.Equal(t, ColorWarning, StepColor(constants.TaskStepRetry))
	assert.Equal(t, ColorAccent, StepColor(constants.TaskStepValidate))
}

func TestTaskStatusIcon(t *testing.T) {
	assert.Equal(t, "✓", TaskStatusIcon(constants.TaskStatusCompleted))
	assert.Equal(t, "✗", TaskStatusIcon(constants.TaskStatusFailed))
	assert.Equal(t, "●", TaskStatusIcon(constants.TaskStatusRunning))
	assert.Equal(t, "?", TaskStatusIcon("unknown"))
}

func ptr(s string) *string { return &s }
