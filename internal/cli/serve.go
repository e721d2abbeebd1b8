package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/astromedia/internal/api"
	"github.com/mrz1836/astromedia/internal/config"
)

// serveOptions holds the flag overrides of the serve command.
type serveOptions struct {
	host    string
	port    int
	cors    bool
	storage string
	dataDir string
	oracle  string
}

// AddServeCommand adds the serve command to the root command.
func AddServeCommand(root *cobra.Command, flags *GlobalFlags) {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the console API and live task feed",
		Long: `Start the HTTP API that triggers agent tasks, streams task snapshots over
WebSocket, and serves assets, campaigns, posts, and connected accounts.

Examples:
  astro serve                      # Listen on the configured address
  astro serve --port 9000 --cors   # Custom port, allow browser clients
  astro serve --storage memory     # Keep nothing between restarts`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd, flags, opts)
		},
	}

	cmd.Flags().StringVar(&opts.host, "host", "", "address to bind (default from config)")
	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "port to listen on (default from config)")
	cmd.Flags().BoolVar(&opts.cors, "cors", false, "allow cross-origin browser clients")
	cmd.Flags().StringVar(&opts.storage, "storage", "", "storage driver (memory|sqlite|file)")
	cmd.Flags().StringVar(&opts.dataDir, "data-dir", "", "storage location (default ~/.astromedia/data)")
	cmd.Flags().StringVar(&opts.oracle, "oracle", "", "validation oracle (policy|approve|reject|gemini)")

	root.AddCommand(cmd)
}

// runServe runs the API server and the agent efficiency drift until ctx is
// canceled, then drains running tasks.
func runServe(ctx context.Context, cmd *cobra.Command, flags *GlobalFlags, opts *serveOptions) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	logger := GetLogger()

	overrides := &config.Config{}
	overrides.Server.Host = opts.host
	overrides.Server.Port = opts.port
	overrides.Server.EnableCORS = opts.cors
	overrides.Storage.Driver = opts.storage
	overrides.Storage.Path = opts.dataDir
	overrides.Oracle.Provider = opts.oracle

	cfg, err := loadConfig(ctx, flags, overrides)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("cors") && !opts.cors {
		cfg.Server.EnableCORS = false
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

	srv := api.New(ctx, api.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		EnableCORS:   cfg.Server.EnableCORS,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, api.Deps{
		Tasks:     a.engine,
		Feed:      a.bus,
		Agents:    a.registry,
		Store:     a.repo,
		Publisher: a.publisher,
		Gatherer:  a.metrics,
	}, logger)

	logger.Info().
		Str("addr", srv.Addr()).
		Str("storage", cfg.Storage.Driver).
		Str("oracle", cfg.Oracle.Provider).
		Msg("astro console started")
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s (Ctrl+C to stop)\n", srv.Addr())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx)
	})
	g.Go(func() error {
		return a.registry.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	logger.Info().Msg("astro console stopped")
	return nil
}
