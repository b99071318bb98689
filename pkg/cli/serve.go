package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/getmockd/faque/pkg/config"
	"github.com/getmockd/faque/pkg/logging"
)

func newServeCmd() *cobra.Command {
	flags := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the stand-in server",
		Long: `Start the stand-in server.

Routes are managed at runtime under /$$/api/routes. Requests that do not
target /$$/ are matched against the route table and captured; captured
requests are listed under /$$/api/requests.`,
		Example: `  # Listen on :9000 and keep state in ./state
  faque serve --listen :9000 --data-dir ./state

  # Seed an empty table from route files
  faque serve --route-file 'routes/**/*.yaml'

  # In-memory only
  faque serve --data-dir ""`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg)
		},
	}
	flags.register(cmd)
	return cmd
}

// newLogger builds the process logger from cfg.
func newLogger(cfg *config.Config) *slog.Logger {
	lc := logging.DefaultConfig()
	lc.Level = logging.ParseLevel(cfg.Log.Level)
	lc.Format = logging.ParseFormat(cfg.Log.Format)
	return logging.New(lc)
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := newLogger(cfg)
	slog.SetDefault(log)

	s, err := newStack(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("startup failed: %w", err)
	}

	log.Info("faque starting",
		"version", version(),
		"listen", cfg.Listen,
		"dataDir", cfg.DataDir,
		"routes", s.table.Count(),
		"requests", s.recorder.Count(),
	)
	return s.run(ctx)
}
