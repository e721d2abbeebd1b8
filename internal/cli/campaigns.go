package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mrz1836/astromedia/internal/domain"
	"github.com/mrz1836/astromedia/internal/errors"
	"github.com/mrz1836/astromedia/internal/store"
	"github.com/mrz1836/astromedia/internal/tui"
)

// AddCampaignsCommand adds the campaigns command to the root command.
func AddCampaignsCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "campaigns",
		Short: "List and create marketing campaigns",
		Long: `Display campaigns with reach, engagement, and conversion figures.
The default campaigns are shown until one is saved.

Examples:
  astro campaigns
  astro campaigns --output json
  astro campaigns create --name "Spring Drop"
  astro campaigns create --name "Holiday Push" --scheduled-at 2025-12-01T08:00:00Z`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRepository(cmd.Context(), flags, func(repo *store.Repository) error {
				campaigns, err := repo.Campaigns(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list campaigns: %w", err)
				}
				return outputCampaigns(cmd.OutOrStdout(), flags.Output, campaigns)
			})
		},
	}
	cmd.AddCommand(newCampaignsCreateCmd(flags))
	root.AddCommand(cmd)
}

func newCampaignsCreateCmd(flags *GlobalFlags) *cobra.Command {
	var (
		name        string
		scheduledAt string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Launch a campaign now or schedule it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var at *time.Time
			if scheduledAt != "" {
				parsed, err := time.Parse(time.RFC3339, scheduledAt)
				if err != nil {
					return fmt.Errorf("%w: --scheduled-at must be RFC 3339, got %q",
						errors.ErrInvalidArgument, scheduledAt)
				}
				at = &parsed
			}

			return withRepository(cmd.Context(), flags, func(repo *store.Repository) error {
				campaign, err := repo.CreateCampaign(cmd.Context(), name, at)
				if err != nil {
					return fmt.Errorf("failed to create campaign: %w", err)
				}
				logger := GetLogger()
				logger.Info().Str("campaign_id", campaign.ID).Str("status", string(campaign.Status)).Msg("campaign created")
				return outputCampaigns(cmd.OutOrStdout(), flags.Output, []domain.Campaign{campaign})
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "campaign name (required)")
	cmd.Flags().StringVar(&scheduledAt, "scheduled-at", "", "launch time in RFC 3339; launches now when empty")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func outputCampaigns(w io.Writer, output string, campaigns []domain.Campaign) error {
	if output == OutputJSON {
		return encodeJSON(w, campaigns)
	}

	tui.CheckNoColor()
	title := cases.Title(language.English)
	rows := make([][]string, 0, len(campaigns))
	for _, c := range campaigns {
		rows = append(rows, []string{
			c.ID,
			c.Name,
			title.String(string(c.Status)),
			c.Platform,
			strconv.Itoa(c.Performance.Reach),
			strconv.Itoa(c.Performance.Engagement),
			strconv.Itoa(c.Performance.Conversion),
			tui.RelativeTime(c.LastUpdated),
		})
	}
	_, _ = fmt.Fprintln(w, tui.RenderTable(
		[]string{"ID", "Name", "Status", "Platform", "Reach", "Engagement", "Conversion", "Updated"},
		rows,
		[]tui.Alignment{tui.AlignLeft, tui.AlignLeft, tui.AlignLeft, tui.AlignLeft, tui.AlignRight, tui.AlignRight, tui.AlignRight},
	))
	return nil
}
