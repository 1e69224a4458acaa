package cli

import (
	"github.com/spf13/cobra"

	"github.com/bnema/acms/internal/app"
)

// newServeCmd creates the serve command.
func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the acms API server",
		Long: `Start the acms API server. It runs until interrupted with SIGINT or
SIGTERM, then drains in-flight requests and stops background work.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	return cmd
}
