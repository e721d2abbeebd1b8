package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mrz1836/astromedia/internal/agent"
	"github.com/mrz1836/astromedia/internal/domain"
	"github.com/mrz1836/astromedia/internal/tui"
)

// AddAgentsCommand adds the agents command to the root command.
func AddAgentsCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "List the agent roster",
		Long: `Display the autonomous agents available to run tasks.

Examples:
  astro agents               # Display as styled table
  astro agents --output json # Display as JSON array`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAgents(cmd.Context(), cmd, cmd.OutOrStdout())
		},
	}
	root.AddCommand(cmd)
}

func runAgents(ctx context.Context, cmd *cobra.Command, w io.Writer) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	agents := agent.NewRegistry(agent.DefaultRoster(), agent.WithLogger(GetLogger())).List()
	if cmd.Flag("output").Value.String() == OutputJSON {
		return encodeJSON(w, agents)
	}

	tui.CheckNoColor()
	_, _ = fmt.Fprintln(w, agentsTable(agents))
	return nil
}

func agentsTable(agents []domain.Agent) string {
	title := cases.Title(language.English)

	rows := make([][]string, 0, len(agents))
	for _, a := range agents {
		rows = append(rows, []string{
			a.ID,
			a.Name,
			a.Role,
			tui.Colorize(title.String(a.Status.String()), tui.AgentStatusColor(a.Status)),
			fmt.Sprintf("%.1f%%", a.Efficiency),
			a.LastAction,
		})
	}
	return tui.RenderTable(
		[]string{"ID", "Name", "Role", "Status", "Efficiency", "Last Action"},
		rows,
		[]tui.Alignment{tui.AlignLeft, tui.AlignLeft, tui.AlignLeft, tui.AlignLeft, tui.AlignRight},
	)
}
