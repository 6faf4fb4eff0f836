package cli

import (
	"fmt"
	"strings"

	"github.com/getpup/modular"
	"github.com/spf13/cobra"
)

// ModuleMigrateReport is the result of migrate module: one report per
// module, in the order the modules ran.
type ModuleMigrateReport struct {
	Modules []MigrationReport `json:"modules"`
}

func (r ModuleMigrateReport) String() string {
	var b strings.Builder
	for _, report := range r.Modules {
		b.WriteString(report.String())
	}
	return b.String()
}

func newModuleMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MigrateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "module <module> [module...]",
		Short: "Run pending migrations of selected modules",
		Long: `Run the pending migrations of each named module, one module at a time.

Every module must be registered and active; nothing runs otherwise. Repeated
names run once. Each module's directory is migrated on its own, so its
migrations get their own batch, and the first failure stops the run.

Example:
  modular migrate module Blog
  modular migrate module Blog Shop --step`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModuleMigrate(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Pretend, "pretend", false, "print the SQL that would run without executing it")
	cmd.Flags().BoolVar(&opts.Step, "step", false, "record each migration in its own batch")

	return cmd
}

func runModuleMigrate(opts *MigrateOptions, names []string, cmd *cobra.Command) error {
	env, err := newEnvironment(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer env.close()

	reg, err := env.cfg.Registry()
	if err != nil {
		return env.formatter.Fail("invalid modules configuration", err)
	}

	modules, err := reg.ResolveActive(names)
	if err != nil {
		return env.formatter.Fail("invalid modules", err)
	}

	ctx := cmd.Context()
	m, err := env.migrator(ctx)
	if err != nil {
		return err
	}

	report := ModuleMigrateReport{Modules: make([]MigrationReport, 0, len(modules))}
	for _, module := range modules {
		dir := reg.ModuleMigrationDirectory(module)
		env.formatter.VerboseLog("[Module %s] Running migrations from %s", module.Name, dir)

		result, err := m.Up(ctx, modular.UpOptions{
			Paths:   []string{dir},
			Pretend: opts.Pretend,
			Step:    opts.Step,
		})
		if err != nil {
			return env.formatter.Fail(
				fmt.Sprintf("[Module %s] failed to run migrations from %s", module.Name, dir), err)
		}

		report.Modules = append(report.Modules, MigrationReport{
			Operation:  "up",
			Module:     module.Name,
			Count:      result.AppliedCount,
			Migrations: identifiers(result.Applied),
			Batch:      result.Batch,
			Pretend:    opts.Pretend,
			Notes:      result.Notes,
		})
	}

	return env.formatter.Success(report)
}
