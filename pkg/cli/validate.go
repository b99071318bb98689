package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/faque/pkg/config"
)

func newValidateCmd() *cobra.Command {
	flags := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check configuration and route files without starting the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}

			routes, err := config.LoadRouteFiles(cfg.RouteFiles, cfg.BaseDir())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "configuration OK (listen %s, data dir %q)\n", cfg.Listen, cfg.DataDir)
			fmt.Fprintf(out, "%d route(s) in %d pattern(s)\n", len(routes), len(cfg.RouteFiles))
			for _, r := range routes {
				fmt.Fprintf(out, "  %-7s %s -> %d\n", r.Method, r.PathPattern, r.Response.StatusCode)
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
