package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mrz1836/astromedia/internal/config"
	"github.com/mrz1836/astromedia/internal/constants"
	"github.com/mrz1836/astromedia/internal/domain"
	"github.com/mrz1836/astromedia/internal/errors"
	"github.com/mrz1836/astromedia/internal/task"
	"github.com/mrz1836/astromedia/internal/tui"
)

// runOptions holds the flags of the run command.
type runOptions struct {
	agent       string
	title       string
	scenario    string
	maxAttempts int
	count       int
	oracle      string
	storage     string
}

// AddRunCommand adds the run command to the root command.
func AddRunCommand(root *cobra.Command, flags *GlobalFlags) {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run agent tasks in the foreground",
		Long: `Trigger one or more agent tasks and follow their execute / observe /
validate / conform loop until each one completes or fails.

Examples:
  astro run                                      # One community manager task
  astro run --title "Reply to mentions" -n 3     # Three concurrent tasks
  astro run --scenario retrospective             # Review campaign performance
  astro run --oracle reject --max-attempts 2     # Watch a task exhaust its retries
  astro run --output json                        # Final snapshots as JSON`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTasks(cmd.Context(), cmd.OutOrStdout(), flags, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.agent, "agent", "a", "", "agent id (default from config)")
	cmd.Flags().StringVarP(&opts.title, "title", "t", "Engage with community mentions", "task title")
	cmd.Flags().StringVarP(&opts.scenario, "scenario", "s", "", "task scenario (community_manager|retrospective)")
	cmd.Flags().IntVarP(&opts.maxAttempts, "max-attempts", "m", 0, "attempt ceiling (default from config)")
	cmd.Flags().IntVarP(&opts.count, "count", "n", 1, "number of concurrent tasks")
	cmd.Flags().StringVar(&opts.oracle, "oracle", "", "validation oracle (policy|approve|reject|gemini)")
	cmd.Flags().StringVar(&opts.storage, "storage", "", "storage driver (memory|sqlite|file)")

	root.AddCommand(cmd)
}

// runTasks executes the requested tasks concurrently, streams their log
// lines, and prints a summary.
//
// Returns an error if:
//   - the configuration or the flags are invalid
//   - any task ends failed (ErrTasksFailed)
func runTasks(ctx context.Context, w io.Writer, flags *GlobalFlags, opts *runOptions) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if opts.count < 1 {
		return fmt.Errorf("%w: --count must be at least 1", errors.ErrInvalidArgument)
	}
	if opts.maxAttempts < 0 || opts.maxAttempts > constants.MaxAttemptsLimit {
		return fmt.Errorf("%w: --max-attempts must be between 1 and %d", errors.ErrInvalidArgument, constants.MaxAttemptsLimit)
	}

	logger := GetLogger()
	tui.CheckNoColor()

	overrides := &config.Config{}
	overrides.Oracle.Provider = opts.oracle
	overrides.Storage.Driver = opts.storage
	cfg, err := loadConfig(ctx, flags, overrides)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn().Err(closeErr).Msg("failed to shut down cleanly")
		}
	}()

	if err := a.checkScenario(opts.scenario); err != nil {
		return err
	}

	jsonOutput := flags.Output == OutputJSON
	printer := newLogPrinter(w, opts.count > 1, jsonOutput)
	onUpdate := func(snapshot *domain.AgentTask) {
		a.bus.Publish(snapshot)
		printer.print(snapshot)
	}

	results := make([]*domain.AgentTask, opts.count)
	g, gctx := errgroup.WithContext(ctx)
	for i := range opts.count {
		req := task.Request{
			AgentID:     opts.agent,
			Title:       opts.title,
			MaxAttempts: opts.maxAttempts,
			Scenario:    opts.scenario,
		}
		g.Go(func() error {
			results[i] = a.engine.Execute(gctx, req, onUpdate)
			return nil
		})
	}
	_ = g.Wait()

	if jsonOutput {
		if err := encodeJSON(w, results); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, taskSummaryTable(results))
	}

	failed := 0
	for _, res := range results {
		if res.Status == constants.TaskStatusFailed {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errors.ErrTasksFailed, failed, len(results))
	}
	return nil
}

// logPrinter writes each new task log line once, in arrival order.
type logPrinter struct {
	w        io.Writer
	prefixID bool
	silent   bool

	mu   sync.Mutex
	seen map[string]int
}

func newLogPrinter(w io.Writer, prefixID, silent bool) *logPrinter {
	return &logPrinter{w: w, prefixID: prefixID, silent: silent, seen: make(map[string]int)}
}

func (p *logPrinter) print(snapshot *domain.AgentTask) {
	if p.silent {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	from := p.seen[snapshot.ID]
	for _, line := range snapshot.Logs[min(from, len(snapshot.Logs)):] {
		if p.prefixID {
			_, _ = fmt.Fprintf(p.w, "%s %s\n", tui.NewOutputStyles().Dim.Render(snapshot.ID), tui.LogLine(line))
		} else {
			_, _ = fmt.Fprintln(p.w, tui.LogLine(line))
		}
	}
	p.seen[snapshot.ID] = max(from, len(snapshot.Logs))
}

// taskSummaryTable renders one row per final task snapshot.
func taskSummaryTable(results []*domain.AgentTask) string {
	title := cases.Title(language.English)

	rows := make([][]string, 0, len(results))
	for _, res := range results {
		status := tui.TaskStatusIcon(res.Status) + " " + title.String(res.Status.String())
		rows = append(rows, []string{
			res.ID,
			res.AgentID,
			res.Title,
			tui.Colorize(status, tui.TaskStatusColor(res.Status)),
			strconv.Itoa(res.Attempts) + "/" + strconv.Itoa(res.MaxAttempts),
			res.LastLog(),
		})
	}
	return tui.RenderTable(
		[]string{"ID", "Agent", "Title", "Status", "Attempts", "Last Log"},
		rows,
		[]tui.Alignment{tui.AlignLeft, tui.AlignLeft, tui.AlignLeft, tui.AlignLeft, tui.AlignRight},
	)
}

// encodeJSON writes v as indented JSON.
func encodeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
