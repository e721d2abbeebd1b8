package constants

import "strings"

// TaskStatus represents the lifecycle state of an autonomous agent task.
// Status values use snake_case for JSON serialization compatibility.
type TaskStatus string

// Task status constants. The only allowed transitions are
//
//	Running → Completed
//	Running → Failed
//
// Completed and Failed are terminal.
const (
	// TaskStatusRunning indicates the engine is still driving the task.
	TaskStatusRunning TaskStatus = "running"

	// TaskStatusCompleted indicates the proposed action was validated and conformed.
	TaskStatusCompleted TaskStatus = "completed"

	// TaskStatusFailed indicates attempts were exhausted, the oracle was unreachable,
	// or the task was canceled.
	TaskStatusFailed TaskStatus = "failed"
)

// String returns the string representation of the TaskStatus.
func (s TaskStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further mutation is allowed in this status.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// TaskStep is the stage a task occupies in the execute/observe/validate/conform cycle.
type TaskStep string

// Task steps. The ordered progression is
//
//	Execute → Observe → Validate → Conform | Retry
//	Retry → Observe
const (
	TaskStepExecute  TaskStep = "execute"
	TaskStepObserve  TaskStep = "observe"
	TaskStepValidate TaskStep = "validate"
	TaskStepConform  TaskStep = "conform"
	TaskStepRetry    TaskStep = "retry"
)

// String returns the string representation of the TaskStep.
func (s TaskStep) String() string {
	return string(s)
}

// Tag returns the upper-case label used to prefix task log lines, e.g. "[VALIDATE]".
func (s TaskStep) Tag() string {
	return "[" + strings.ToUpper(string(s)) + "]"
}

// IsValid reports whether s is one of the five known steps.
func (s TaskStep) IsValid() bool {
	switch s {
	case TaskStepExecute, TaskStepObserve, TaskStepValidate, TaskStepConform, TaskStepRetry:
		return true
	}
	return false
}

// AgentStatus is the cosmetic activity indicator shown for a roster entry.
type AgentStatus string

// Agent status constants.
const (
	AgentStatusIdle       AgentStatus = "idle"
	AgentStatusProcessing AgentStatus = "processing"
	AgentStatusLearning   AgentStatus = "learning"
)

// String returns the string representation of the AgentStatus.
func (s AgentStatus) String() string {
	return string(s)
}

// PostStatus is the delivery state of a social post handed to the automation backend.
type PostStatus string

// Post status constants.
const (
	PostStatusScheduled PostStatus = "scheduled"
	PostStatusPublished PostStatus = "published"
	PostStatusFailed    PostStatus = "failed"
)

// String returns the string representation of the PostStatus.
func (s PostStatus) String() string {
	return string(s)
}

// CampaignStatus is the lifecycle state of a marketing campaign.
type CampaignStatus string

// Campaign status constants.
const (
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusPaused    CampaignStatus = "paused"
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusCompleted CampaignStatus = "completed"
	CampaignStatusScheduled CampaignStatus = "scheduled"
)

// MediaType distinguishes generated images from generated videos.
type MediaType string

// Media type constants.
const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// IsValid reports whether t is image or video.
func (t MediaType) IsValid() bool {
	return t == MediaTypeImage || t == MediaTypeVideo
}

// Platform is a social network the console can publish to.
type Platform string

// Supported platforms.
const (
	PlatformTwitter   Platform = "twitter"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
)

// Platforms returns every supported platform in display order.
func Platforms() []Platform {
	return []Platform{PlatformTwitter, PlatformLinkedIn, PlatformInstagram, PlatformFacebook}
}

// IsValid reports whether p is a supported platform.
func (p Platform) IsValid() bool {
	for _, known := range Platforms() {
		if p == known {
			return true
		}
	}
	return false
}
