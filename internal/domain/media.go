package domain

import (
	"time"

	"github.com/mrz1836/astromedia/internal/constants"
)

// MediaAsset is a generated or uploaded creative stored in the asset library.
type MediaAsset struct {
	ID           string              `json:"id"`
	Type         constants.MediaType `json:"type"`
	URL          string              `json:"url"`
	ThumbnailURL string              `json:"thumbnail_url,omitempty"`
	Prompt       string              `json:"prompt"`
	CreatedAt    time.Time           `json:"created_at"`
	Metadata     map[string]any      `json:"metadata,omitempty"`
	CampaignID   string              `json:"campaign_id,omitempty"`
}

// CampaignPerformance holds the headline counters for a campaign.
type CampaignPerformance struct {
	Reach      int `json:"reach"`
	Engagement int `json:"engagement"`
	Conversion int `json:"conversion"`
}

// Campaign groups posts under a shared goal.
type Campaign struct {
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	Status      constants.CampaignStatus `json:"status"`
	Platform    string                   `json:"platform"`
	Performance CampaignPerformance      `json:"performance"`
	LastUpdated time.Time                `json:"last_updated"`
	ScheduledAt *time.Time               `json:"scheduled_at,omitempty"`
}

// SocialPost is a publish job tracked through the automation backend.
type SocialPost struct {
	ID           string               `json:"id"`
	MediaID      string               `json:"media_id,omitempty"`
	Platform     constants.Platform   `json:"platform"`
	Caption      string               `json:"caption"`
	Status       constants.PostStatus `json:"status"`
	ScheduledFor *time.Time           `json:"scheduled_for,omitempty"`
	PublishedAt  *time.Time           `json:"published_at,omitempty"`
	JobID        string               `json:"job_id"`
}

// PostRequest is the input to a publish job.
type PostRequest struct {
	MediaID      string             `json:"media_id,omitempty"`
	Platform     constants.Platform `json:"platform"`
	Caption      string             `json:"caption"`
	ScheduledFor *time.Time         `json:"scheduled_for,omitempty"`
}

// Account is a platform connection as shown to users. Token is masked.
type Account struct {
	Platform  constants.Platform `json:"platform"`
	Connected bool               `json:"connected"`
	Token     string             `json:"token,omitempty"`
}
