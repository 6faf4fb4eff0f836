package cli

import (
	"github.com/spf13/cobra"
)

// NewConfigCommand creates the config command.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		Long: `Print the configuration after defaults and MODULAR_* environment
overrides are applied. The database DSN is masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer env.close()

			cfg := env.cfg.Redacted()
			if rootOpts.Format == "json" {
				return env.formatter.Success(cfg)
			}

			out, err := cfg.Format("yaml")
			if err != nil {
				return WrapExitError(ExitFailure, "failed to render configuration", err)
			}
			return env.formatter.Success(out)
		},
	})

	return cmd
}
