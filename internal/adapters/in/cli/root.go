// Package cli implements the CLI adapter for acms.
// Commands parse flags and delegate to the app layer.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/bnema/acms/pkg/version"
)

// NewRootCmd creates the root command for the acms CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "acms",
		Short: "acms - a container management API server",
		Long: `acms manages images, containers, networks, volumes and a builder
through a tool-style HTTP API and a JSON-RPC endpoint.

Most operations accept a single target, a list of targets or all:true,
and report a per-target outcome.`,
		Version:       version.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newTokenCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// newVersionCmd creates the version command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("acms %s\n", version.Version())
			cmd.Printf("Commit: %s\n", version.Commit())
			cmd.Printf("Build Date: %s\n", version.BuildDate())
		},
	}
}
