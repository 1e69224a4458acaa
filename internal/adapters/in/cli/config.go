package cli

import (
	"github.com/spf13/cobra"

	"github.com/bnema/acms/internal/app"
)

// newConfigCmd creates the config command.
func newConfigCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration the server would start with, after defaults,
the config file and ACMS_* environment overrides are applied. Secrets are
redacted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := app.EffectiveConfig(configPath)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	return cmd
}
