package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// ModuleRow is one registered module.
type ModuleRow struct {
	Name       string `json:"name"`
	Active     bool   `json:"active"`
	Migrations string `json:"migrations"`
}

// ModulesReport is the result of the modules command.
type ModulesReport struct {
	Modules []ModuleRow `json:"modules"`
}

func (r ModulesReport) String() string {
	if len(r.Modules) == 0 {
		return "No modules registered.\n"
	}

	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tACTIVE\tMIGRATIONS")
	for _, m := range r.Modules {
		active := "no"
		if m.Active {
			active = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Name, active, m.Migrations)
	}
	_ = tw.Flush()
	return b.String()
}

// NewModulesCommand creates the modules command.
func NewModulesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "modules",
		Short: "List registered modules and their migration directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer env.close()

			reg, err := env.cfg.Registry()
			if err != nil {
				return env.formatter.Fail("invalid modules configuration", err)
			}

			var report ModulesReport
			for _, m := range reg.All() {
				dir, _ := reg.MigrationDirectory(m.Name)
				report.Modules = append(report.Modules, ModuleRow{
					Name:       m.Name,
					Active:     m.Active,
					Migrations: dir,
				})
			}

			return env.formatter.Success(report)
		},
	}
}
