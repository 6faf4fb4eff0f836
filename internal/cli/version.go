package cli

import (
	"github.com/getpup/modular/pkg/version"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd, uuid.NewString())
			info := version.Get()
			if rootOpts.Format == "json" {
				return formatter.Success(info)
			}

			out, err := info.Format(version.FormatText)
			if err != nil {
				return WrapExitError(ExitFailure, "failed to render version", err)
			}
			return formatter.Success(out)
		},
	}
}
