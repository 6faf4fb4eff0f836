package cli

import (
	"context"
	"database/sql"

	"github.com/getpup/modular"
	"github.com/getpup/modular/internal/config"
	"github.com/getpup/modular/internal/logx"
	"github.com/getpup/modular/metrics"
	pkgmodular "github.com/getpup/modular/pkg/modular"
	"github.com/getpup/modular/store/sqlstore"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// environment is the per-invocation state shared by commands: the loaded
// configuration, the logger and the output formatter.
type environment struct {
	cfg       config.Config
	formatter *OutputFormatter
	logger    zerolog.Logger
	closeLog  func() error
	db        *sql.DB
}

// newEnvironment loads the configuration and sets up logging for cmd.
func newEnvironment(opts *RootOptions, cmd *cobra.Command) (*environment, error) {
	runID := uuid.NewString()
	formatter := newFormatter(opts, cmd, runID)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		_ = formatter.Error(ErrCodeConfiguration, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	if opts.Verbose {
		cfg.Log.Level = zerolog.LevelDebugValue
	}

	logger, closeLog, err := logx.New(cfg.Log, cmd.ErrOrStderr(), map[string]string{
		"runId":   runID,
		"command": cmd.CommandPath(),
	})
	if err != nil {
		_ = formatter.Error(ErrCodeConfiguration, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to initialize logging", err)
	}

	return &environment{
		cfg:       cfg,
		formatter: formatter,
		logger:    logger,
		closeLog:  closeLog,
	}, nil
}

func newFormatter(opts *RootOptions, cmd *cobra.Command, runID string) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
		RunID:     runID,
	}
}

// migrator connects to the configured database and builds a Migrator over
// the application directory and the registered modules.
func (e *environment) migrator(ctx context.Context) (modular.Migrator, error) {
	dialect, err := e.cfg.Dialect()
	if err != nil {
		_ = e.formatter.Error(ErrCodeConfiguration, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "invalid database configuration", err)
	}

	db, err := sqlstore.Open(ctx, dialect, e.cfg.Database.DSN)
	if err != nil {
		_ = e.formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to connect to database", err)
	}
	e.db = db

	reg, err := e.cfg.Registry()
	if err != nil {
		_ = e.formatter.Error(ErrCodeConfiguration, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "invalid modules configuration", err)
	}

	m, err := pkgmodular.New(
		pkgmodular.WithDatabase(db, dialect),
		pkgmodular.WithTableName(e.cfg.Database.Table),
		pkgmodular.WithRegistry(reg),
		pkgmodular.WithDefaultDirectory(e.cfg.Migrations.Directory),
		pkgmodular.WithExtension(e.cfg.Migrations.Extension),
		pkgmodular.WithLogger(logx.NewAdapter(e.logger)),
		pkgmodular.WithMetricsEnabled(e.cfg.Metrics.Enabled),
	)
	if err != nil {
		return nil, e.formatter.Fail("failed to create migrator", err)
	}

	return m, nil
}

// close writes the metrics textfile when configured, then releases the
// database and the log file.
func (e *environment) close() {
	if e.cfg.Metrics.Enabled && e.cfg.Metrics.Textfile != "" && e.db != nil {
		if err := metrics.WriteTextfile(e.cfg.Metrics.Textfile); err != nil {
			e.logger.Error().Err(err).Str("path", e.cfg.Metrics.Textfile).Msg("failed to write metrics textfile")
		}
	}
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			e.logger.Error().Err(err).Msg("failed to close database")
		}
	}
	_ = e.closeLog()
}
