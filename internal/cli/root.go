// Package cli provides the command-line interface for astro.
package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrz1836/astromedia/internal/errors"
)

// BuildInfo is stamped into the binary with -ldflags.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// globalLogger is set by the root PersistentPreRunE; read it with GetLogger.
var (
	globalLogger   zerolog.Logger //nolint:gochecknoglobals // CLI logger requires global access
	globalLoggerMu sync.RWMutex   //nolint:gochecknoglobals // Protects globalLogger
)

// GetLogger returns the CLI logger. Before the root command has run it is
// the zero logger, which discards everything.
func GetLogger() zerolog.Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

// newRootCmd builds a fresh command tree so tests never share flag state.
func newRootCmd(flags *GlobalFlags, info BuildInfo) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "astro",
		Short: "AstroMedia - autonomous marketing agent console",
		Long: `astro runs the AstroMedia agent console: autonomous agents that propose
marketing actions, have them checked by a brand-compliance oracle, and retry
with corrections until the action conforms or the attempt budget runs out.

Features:
  • Execute / observe / validate / conform loop with bounded retries
  • Live task feed over HTTP and WebSocket
  • Media asset, campaign, and social post storage
  • Simulated publishing through an automation webhook`,
		Version: formatVersion(info),
		// bare "astro" still runs PersistentPreRunE, so bad globals are rejected
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := BindGlobalFlags(v, cmd); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}

			if !IsValidOutputFormat(flags.Output) {
				return fmt.Errorf("%w: %q must be one of %v", errors.ErrInvalidOutputFormat, flags.Output, ValidOutputFormats())
			}

			globalLoggerMu.Lock()
			globalLogger = InitLogger(flags.Verbose, flags.Quiet)
			logger := globalLogger
			globalLoggerMu.Unlock()

			// config.Load and friends pick the logger up from the context
			cmd.SetContext(logger.WithContext(cmd.Context()))
			return nil
		},
		// main prints errors itself
		SilenceUsage: true,
	}

	AddGlobalFlags(cmd, flags)

	AddServeCommand(cmd, flags)
	AddRunCommand(cmd, flags)
	AddAgentsCommand(cmd)
	AddAssetsCommand(cmd, flags)
	AddCampaignsCommand(cmd, flags)
	AddAccountsCommand(cmd, flags)
	AddPublishCommand(cmd, flags)
	AddConfigCommand(cmd, flags)

	return cmd
}

// formatVersion renders "version (commit: x, built: y)" with placeholders
// for anything ldflags did not set.
func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs astro under ctx, which main cancels on the first interrupt.
func Execute(ctx context.Context, info BuildInfo) error {
	defer CloseLogFile()

	flags := &GlobalFlags{}
	//nolint:contextcheck // Cobra command pattern uses cmd.Context() internally
	cmd := newRootCmd(flags, info)
	return cmd.ExecuteContext(ctx)
}
