package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/getmockd/faque/pkg/config"
)

const envConfigName = config.EnvConfig

// serveFlags holds flag values; only flags the user set override the config.
type serveFlags struct {
	listen            string
	dataDir           string
	maxRequestHistory int
	maxBodySize       int
	maxRequestBody    int64
	maxRoutes         int
	saveInterval      string
	cleanupInterval   string
	routeFiles        []string
	logLevel          string
	logFormat         string
}

func (f *serveFlags) register(cmd *cobra.Command) {
	defaults := config.Default()
	fs := cmd.Flags()
	fs.StringVar(&f.listen, "listen", defaults.Listen, "Address to listen on")
	fs.StringVar(&f.dataDir, "data-dir", defaults.DataDir, `Directory for saved routes and request history ("" disables persistence)`)
	fs.IntVar(&f.maxRequestHistory, "max-request-history", defaults.MaxRequestHistory, "Number of captured requests to keep")
	fs.IntVar(&f.maxBodySize, "max-body-size", defaults.MaxBodySize, "Bytes of body kept per captured request")
	fs.Int64Var(&f.maxRequestBody, "max-request-body-size", defaults.MaxRequestBodySize, "Bytes read from an incoming request body before answering 413")
	fs.IntVar(&f.maxRoutes, "max-routes", defaults.MaxRoutes, "Maximum number of routes (0 = unbounded)")
	fs.StringVar(&f.saveInterval, "save-interval", defaults.SaveInterval.String(), "How often route changes are written")
	fs.StringVar(&f.cleanupInterval, "cleanup-interval", defaults.CleanupInterval.String(), "How often stored request history is pruned")
	fs.StringSliceVar(&f.routeFiles, "route-file", nil, "Glob of YAML route files used to seed an empty table (repeatable)")
	fs.StringVar(&f.logLevel, "log-level", defaults.Log.Level, "Log level (debug, info, warn, error)")
	fs.StringVar(&f.logFormat, "log-format", defaults.Log.Format, "Log format (text, json, pretty)")
}

// loadConfig resolves configuration with precedence flags > env > file > defaults.
func loadConfig(cmd *cobra.Command, f *serveFlags) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv(envConfigName)
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	if f != nil {
		if err := f.apply(cmd, cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return cfg, nil
}

func (f *serveFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed

	if changed("listen") {
		cfg.Listen = f.listen
	}
	if changed("data-dir") {
		cfg.DataDir = f.dataDir
	}
	if changed("max-request-history") {
		cfg.MaxRequestHistory = f.maxRequestHistory
	}
	if changed("max-body-size") {
		cfg.MaxBodySize = f.maxBodySize
	}
	if changed("max-request-body-size") {
		cfg.MaxRequestBodySize = f.maxRequestBody
	}
	if changed("max-routes") {
		cfg.MaxRoutes = f.maxRoutes
	}
	if changed("save-interval") {
		d, err := config.ParseDuration(f.saveInterval)
		if err != nil {
			return fmt.Errorf("--save-interval: %w", err)
		}
		cfg.SaveInterval = d
	}
	if changed("cleanup-interval") {
		d, err := config.ParseDuration(f.cleanupInterval)
		if err != nil {
			return fmt.Errorf("--cleanup-interval: %w", err)
		}
		cfg.CleanupInterval = d
	}
	if changed("route-file") {
		cfg.RouteFiles = f.routeFiles
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if changed("log-format") {
		cfg.Log.Format = f.logFormat
	}
	return nil
}
