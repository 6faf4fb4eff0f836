package cli

import (
	"fmt"
	"strings"

	"github.com/getpup/modular"
	"github.com/spf13/cobra"
)

// MigrateOptions holds flags for the migrate command.
type MigrateOptions struct {
	*RootOptions
	Paths   []string
	Pretend bool
	Step    bool
}

// MigrationReport is the result of migrate, rollback and reset.
type MigrationReport struct {
	Operation  string   `json:"operation"`
	Module     string   `json:"module,omitempty"`
	Count      int      `json:"count"`
	Migrations []string `json:"migrations"`
	Batch      int      `json:"batch,omitempty"`
	Pretend    bool     `json:"pretend,omitempty"`
	Notes      []string `json:"notes,omitempty"`
}

func (r MigrationReport) String() string {
	verb := "Rolled back"
	if r.Operation == "up" {
		verb = "Migrated"
	}

	prefix := ""
	if r.Module != "" {
		prefix = "[Module " + r.Module + "] "
	}

	var b strings.Builder
	// Pretend runs only report the statements carried in Notes.
	if !r.Pretend {
		for _, id := range r.Migrations {
			fmt.Fprintf(&b, "%s%s: %s\n", prefix, verb, id)
		}
	}
	for _, note := range r.Notes {
		b.WriteString(prefix)
		b.WriteString(note)
		b.WriteString("\n")
	}
	return b.String()
}

// NewMigrateCommand creates the migrate command and its subcommands.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MigrateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run pending migrations",
		Long: `Run every pending migration of the application and its active modules.

Pending migrations run in identifier order regardless of the directory they
live in, and are recorded under a single new batch.

Example:
  modular migrate
  modular migrate --pretend
  modular migrate --step
  modular migrate --path database/migrations --path app/Modules/Blog/Database/Migrations
  modular migrate module Blog Shop`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(opts, cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Paths, "path", nil, "directory to scan instead of the configured ones (repeatable)")
	cmd.Flags().BoolVar(&opts.Pretend, "pretend", false, "print the SQL that would run without executing it")
	cmd.Flags().BoolVar(&opts.Step, "step", false, "record each migration in its own batch")

	cmd.AddCommand(newModuleMigrateCommand(rootOpts))
	cmd.AddCommand(newRollbackCommand(rootOpts))
	cmd.AddCommand(newResetCommand(rootOpts))
	cmd.AddCommand(newStatusCommand(rootOpts))

	return cmd
}

func runMigrate(opts *MigrateOptions, cmd *cobra.Command) error {
	env, err := newEnvironment(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer env.close()

	ctx := cmd.Context()
	m, err := env.migrator(ctx)
	if err != nil {
		return err
	}

	env.formatter.VerboseLog("Running migrations (pretend=%t, step=%t)", opts.Pretend, opts.Step)
	result, err := m.Up(ctx, modular.UpOptions{
		Paths:   opts.Paths,
		Pretend: opts.Pretend,
		Step:    opts.Step,
	})
	if err != nil {
		return env.formatter.Fail("migration failed", err)
	}

	return env.formatter.Success(MigrationReport{
		Operation:  "up",
		Count:      result.AppliedCount,
		Migrations: identifiers(result.Applied),
		Batch:      result.Batch,
		Pretend:    opts.Pretend,
		Notes:      result.Notes,
	})
}

// revertOptions holds flags shared by rollback and reset.
type revertOptions struct {
	*RootOptions
	Pretend bool
}

func newRollbackCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &revertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rollback",
		Short: "Roll back the last batch of migrations",
		Long: `Roll back every migration of the most recent batch, newest first.

Migrations of inactive modules are rolled back too.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(opts.RootOptions, cmd)
			if err != nil {
				return err
			}
			defer env.close()

			m, err := env.migrator(cmd.Context())
			if err != nil {
				return err
			}

			result, err := m.Rollback(cmd.Context(), modular.RollbackOptions{Pretend: opts.Pretend})
			if err != nil {
				return env.formatter.Fail("rollback failed", err)
			}

			return env.formatter.Success(MigrationReport{
				Operation:  "rollback",
				Count:      result.RolledBackCount,
				Migrations: identifiers(result.RolledBack),
				Pretend:    opts.Pretend,
				Notes:      result.Notes,
			})
		},
	}

	cmd.Flags().BoolVar(&opts.Pretend, "pretend", false, "print the SQL that would run without executing it")

	return cmd
}

func newResetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &revertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Roll back every applied migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(opts.RootOptions, cmd)
			if err != nil {
				return err
			}
			defer env.close()

			m, err := env.migrator(cmd.Context())
			if err != nil {
				return err
			}

			result, err := m.Reset(cmd.Context(), modular.ResetOptions{Pretend: opts.Pretend})
			if err != nil {
				return env.formatter.Fail("reset failed", err)
			}

			return env.formatter.Success(MigrationReport{
				Operation:  "reset",
				Count:      result.ResetCount,
				Migrations: identifiers(result.Reset),
				Pretend:    opts.Pretend,
				Notes:      result.Notes,
			})
		},
	}

	cmd.Flags().BoolVar(&opts.Pretend, "pretend", false, "print the SQL that would run without executing it")

	return cmd
}

func newStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the status of each migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer env.close()

			m, err := env.migrator(cmd.Context())
			if err != nil {
				return err
			}

			entries, err := m.Status(cmd.Context())
			if err != nil {
				return env.formatter.Fail("status failed", err)
			}

			return env.formatter.Success(newStatusReport(entries))
		},
	}
}

func identifiers(ids []modular.Identifier) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
