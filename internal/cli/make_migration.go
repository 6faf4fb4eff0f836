package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/getpup/modular/pkg/migrations"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// MakeMigrationOptions holds flags for the make-migration command.
type MakeMigrationOptions struct {
	*RootOptions
	Type  string
	Table string

	// Fs overrides the filesystem the file is written to (for testing).
	Fs afero.Fs
}

// MakeMigrationReport is the result of make-migration.
type MakeMigrationReport struct {
	Module string `json:"module"`
	File   string `json:"file"`
	Path   string `json:"path"`
}

func (r MakeMigrationReport) String() string {
	return fmt.Sprintf("[Module %s] Created migration file: %s\n", r.Module, r.File)
}

// NewMakeMigrationCommand creates the make-migration command.
func NewMakeMigrationCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MakeMigrationOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "make-migration <module> <name>",
		Short: "Create a migration in a module",
		Long: `Create a new timestamped migration file in the module's migration directory.

The name is converted to snake case. --type and --table must be used together.

Example:
  modular make-migration Blog create_posts_table --type create --table posts
  modular make-migration Blog AddSlugToPosts`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMakeMigration(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Type, "type", "", "migration template: default, create or edit")
	cmd.Flags().StringVar(&opts.Table, "table", "", "table name (use with --type)")

	return cmd
}

func runMakeMigration(opts *MakeMigrationOptions, moduleName, name string, cmd *cobra.Command) error {
	env, err := newEnvironment(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer env.close()

	reg, err := env.cfg.Registry()
	if err != nil {
		return env.formatter.Fail("invalid modules configuration", err)
	}

	dir, err := reg.MigrationDirectory(moduleName)
	if err != nil {
		return env.formatter.Fail("unknown module", err)
	}
	module, _ := reg.Find(moduleName)

	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	path, err := migrations.CreateMigration(fs, dir, name, migrations.CreateOptions{
		Type:        migrations.MigrationType(opts.Type),
		Table:       opts.Table,
		DefaultType: migrations.MigrationType(env.cfg.Migrations.DefaultType),
		Extension:   env.cfg.Migrations.Extension,
	})
	if err != nil {
		if errors.Is(err, migrations.ErrTypeTableMismatch) ||
			errors.Is(err, migrations.ErrInvalidType) ||
			errors.Is(err, migrations.ErrInvalidName) {
			_ = env.formatter.Error(ErrCodeConfiguration, err.Error(), nil)
			return WrapExitError(ExitCommandError, "invalid arguments", err)
		}
		_ = env.formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
		return WrapExitError(ExitFailure, "failed to create migration", err)
	}

	env.logger.Info().Str("module", module.Name).Str("path", path).Msg("migration created")

	return env.formatter.Success(MakeMigrationReport{
		Module: module.Name,
		File:   filepath.Base(path),
		Path:   path,
	})
}
