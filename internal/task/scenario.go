package task

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mrz1836/astromedia/internal/domain"
)

// Built-in scenario names.
const (
	ScenarioCommunityManager = "community_manager"
	ScenarioRetrospective    = "retrospective"
)

// Scenario supplies the domain content of a task: what the agent observed,
// which action it proposes, and the policy context the oracle judges it in.
type Scenario interface {
	// Name is the identifier used in requests and snapshots.
	Name() string

	// Findings describes what the agent detected during the observe step.
	Findings(ctx context.Context, task *domain.AgentTask) (string, error)

	// Action is the proposed action for the current attempt. correction is
	// empty on the first attempt and holds the oracle's suggestion afterwards.
	Action(task *domain.AgentTask, correction string) string

	// Context is the policy background sent alongside the action.
	Context(task *domain.AgentTask) string
}

// CampaignSource lists campaigns for the retrospective scenario.
// store.Repository implements it.
type CampaignSource interface {
	Campaigns(ctx context.Context) ([]domain.Campaign, error)
}

const brandPolicy = "Brand voice: friendly and factual. " +
	"Policy: no absolute performance promises or superlatives; " +
	"paid promotion must carry an #ad disclosure; replies stay under 280 characters."

// communityManager triages mentions and drafts a public reply.
type communityManager struct{}

// NewCommunityManagerScenario returns the comment and mention triage scenario.
func NewCommunityManagerScenario() Scenario {
	return communityManager{}
}

func (communityManager) Name() string { return ScenarioCommunityManager }

func (communityManager) Findings(_ context.Context, task *domain.AgentTask) (string, error) {
	if task.Attempts > 1 {
		return fmt.Sprintf("Re-reading 4 open mentions before drafting attempt %d", task.Attempts), nil
	}
	return "Detected 4 new mentions: 3 compliments and 1 pricing question requiring a response", nil
}

func (communityManager) Action(task *domain.AgentTask, correction string) string {
	if correction == "" {
		return "Reply publicly to all mentions for \"" + task.Title + "\": " +
			"\"Thanks so much! Our plan is guaranteed to double your engagement, the best tool ever made.\""
	}
	return "Reply publicly to all mentions for \"" + task.Title + "\": " +
		"\"Thanks for the kind words! Pricing is on our plans page, and our team is happy to help by DM.\" " +
		"(revised per: " + correction + ")"
}

func (communityManager) Context(task *domain.AgentTask) string {
	return brandPolicy + " Task: " + task.Title + "."
}

// retrospective summarizes campaign performance and proposes a budget shift.
type retrospective struct {
	source CampaignSource
}

// NewRetrospectiveScenario returns the campaign retrospective scenario.
// Findings are drawn from source.
func NewRetrospectiveScenario(source CampaignSource) Scenario {
	return &retrospective{source: source}
}

func (*retrospective) Name() string { return ScenarioRetrospective }

func (r *retrospective) Findings(ctx context.Context, _ *domain.AgentTask) (string, error) {
	campaigns, err := r.source.Campaigns(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list campaigns: %w", err)
	}
	if len(campaigns) == 0 {
		return "No campaigns to review", nil
	}

	sort.SliceStable(campaigns, func(i, j int) bool {
		return campaigns[i].Performance.Reach > campaigns[j].Performance.Reach
	})

	parts := make([]string, 0, len(campaigns))
	for _, c := range campaigns {
		parts = append(parts, fmt.Sprintf("%s (%s) reach %d, engagement %d, conversions %d",
			c.Name, c.Status, c.Performance.Reach, c.Performance.Engagement, c.Performance.Conversion))
	}
	return fmt.Sprintf("Reviewed %d campaigns: %s", len(campaigns), strings.Join(parts, "; ")), nil
}

func (*retrospective) Action(task *domain.AgentTask, correction string) string {
	if correction == "" {
		return "Publish retrospective for \"" + task.Title + "\": " +
			"move the entire budget to the top campaign, which is guaranteed to keep growing."
	}
	return "Publish retrospective for \"" + task.Title + "\": " +
		"shift 20% of budget toward the top campaign and re-measure in two weeks. " +
		"(revised per: " + correction + ")"
}

func (*retrospective) Context(task *domain.AgentTask) string {
	return brandPolicy + " Audience: internal marketing team. Task: " + task.Title + "."
}
