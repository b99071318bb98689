package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "faque",
		Short: "faque is a programmable HTTP stand-in server",
		Long: `faque answers HTTP requests with canned responses that are registered at
runtime through an administrative API under /$$/api. Every other request is
captured for later inspection, and the route table survives restarts.

Configuration can be provided via flags, FAQUE_* environment variables, or a
YAML configuration file.`,
		// No Run function here means 'faque' with no args will print help text by default.
		SilenceUsage:  true,
		SilenceErrors: true, // We handle errors in Execute()
	}

	root.PersistentFlags().String("config", "", "Path to a YAML config file (env "+envConfigName+")")

	root.AddCommand(newServeCmd(), newValidateCmd(), newVersionCmd())
	return root
}

// Execute runs the command line. This is called by main.main().
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
