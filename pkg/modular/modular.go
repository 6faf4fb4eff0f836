// Package modular is the entry point for embedding the migration orchestrator
// in an application. It wires a history store, a migration loader and the
// module registry into a ready-to-use Migrator.
package modular

import (
	"database/sql"
	"fmt"

	rootpkg "github.com/getpup/modular"
	"github.com/getpup/modular/executor"
	"github.com/getpup/modular/migrator"
	"github.com/getpup/modular/registry"
	"github.com/getpup/modular/store"
	"github.com/getpup/modular/store/sqlstore"
	"github.com/spf13/afero"
)

// Re-export core types from root package
type (
	// Migrator runs Up, Rollback, Reset and Status.
	Migrator = rootpkg.Migrator

	// Identifier names a single migration.
	Identifier = rootpkg.Identifier

	// UpOptions configures an Up run.
	UpOptions = rootpkg.UpOptions

	// RollbackOptions configures a Rollback run.
	RollbackOptions = rootpkg.RollbackOptions

	// ResetOptions configures a Reset run.
	ResetOptions = rootpkg.ResetOptions

	// Module is a registered module.
	Module = registry.Module
)

// Option configures a Migrator.
type Option func(*config)

// config holds the internal configuration for creating a Migrator.
type config struct {
	db               *sql.DB
	dialect          sqlstore.Dialect
	tableConfig      sqlstore.TableConfig
	historyStore     store.HistoryStore
	loader           executor.Loader
	modules          migrator.ModuleSource
	defaultDirectory string
	extension        string
	fs               afero.Fs
	logger           rootpkg.Logger
	metricsEnabled   *bool
	metricsLabel     string
}

// New creates a new Migrator with the given options.
//
// Required options:
//   - WithDatabase: database connection and dialect
//     (not required when both WithHistoryStore and WithLoader are given)
//
// Optional configuration (with defaults):
//   - WithTableName: history table name (default: migrations)
//   - WithModules / WithRegistry: module migration directories (default: none)
//   - WithDefaultDirectory: application migration directory (default: database/migrations)
//   - WithExtension: migration file extension (default: .sql)
//   - WithFilesystem: filesystem to read migrations from (default: OS filesystem)
//   - WithLogger: logger for observability (default: nil)
//   - WithMetricsEnabled: enable Prometheus metrics (default: true)
//   - WithMetricsLabel: value of the "database" metrics label (default: the dialect)
//   - WithHistoryStore: custom history store (default: sqlstore on the database)
//   - WithLoader: custom migration loader (default: SQL file loader on the database)
//
// Example:
//
//	m, err := modular.New(
//	    modular.WithDatabase(db, sqlstore.Postgres),
//	    modular.WithModules(modular.Module{Name: "Blog", Active: true}),
//	)
//
// Returns an error if any required option is missing or the module list is invalid.
func New(opts ...Option) (rootpkg.Migrator, error) {
	// Apply defaults
	cfg := &config{
		tableConfig:      sqlstore.DefaultTableConfig(),
		defaultDirectory: migrator.DefaultDirectory,
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	// Validate required fields
	if invalid, ok := cfg.modules.(invalidModules); ok {
		return nil, invalid.err
	}
	if cfg.db == nil && (cfg.historyStore == nil || cfg.loader == nil) {
		return nil, fmt.Errorf("database is required: use WithDatabase option")
	}
	if cfg.db != nil && cfg.dialect == "" && cfg.historyStore == nil {
		return nil, fmt.Errorf("dialect is required: use WithDatabase option")
	}

	// Create history store if not provided
	if cfg.historyStore == nil {
		cfg.historyStore = sqlstore.NewWithConfig(cfg.db, cfg.dialect, cfg.tableConfig)
	}

	if cfg.fs == nil {
		cfg.fs = afero.NewOsFs()
	}

	// Create loader if not provided
	if cfg.loader == nil {
		cfg.loader = executor.New(executor.Config{
			DB:        cfg.db,
			Fs:        cfg.fs,
			Extension: cfg.extension,
			Logger:    cfg.logger,
		})
	}

	if cfg.metricsLabel == "" {
		cfg.metricsLabel = string(cfg.dialect)
	}

	return migrator.New(migrator.Config{
		Store:            cfg.historyStore,
		Loader:           cfg.loader,
		Modules:          cfg.modules,
		DefaultDirectory: cfg.defaultDirectory,
		Fs:               cfg.fs,
		Extension:        cfg.extension,
		Logger:           cfg.logger,
		MetricsEnabled:   cfg.metricsEnabled,
		MetricsLabel:     cfg.metricsLabel,
	}), nil
}

// WithDatabase sets the database connection migrations run against and the
// history is stored in.
func WithDatabase(db *sql.DB, dialect sqlstore.Dialect) Option {
	return func(c *config) {
		c.db = db
		c.dialect = dialect
	}
}

// WithTableName sets a custom history table name.
func WithTableName(table string) Option {
	return func(c *config) {
		c.tableConfig = sqlstore.TableConfig{Table: table}
	}
}

// WithModules registers modules under the default layout
// (app/Modules/<Name>/Database/Migrations). An invalid module list is
// reported by New.
func WithModules(modules ...Module) Option {
	return func(c *config) {
		reg, err := registry.New(registry.Config{Modules: modules})
		if err != nil {
			c.modules = invalidModules{err: err}
			return
		}
		c.modules = reg
	}
}

// WithRegistry sets a pre-built module registry or any other module source.
func WithRegistry(modules migrator.ModuleSource) Option {
	return func(c *config) {
		c.modules = modules
	}
}

// WithDefaultDirectory sets the application's migration directory.
func WithDefaultDirectory(dir string) Option {
	return func(c *config) {
		c.defaultDirectory = dir
	}
}

// WithExtension sets the migration file extension.
func WithExtension(ext string) Option {
	return func(c *config) {
		c.extension = ext
	}
}

// WithFilesystem sets the filesystem migration files are read from.
func WithFilesystem(fs afero.Fs) Option {
	return func(c *config) {
		c.fs = fs
	}
}

// WithLogger sets the logger for observability.
func WithLogger(logger rootpkg.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMetricsEnabled enables or disables Prometheus metrics collection.
func WithMetricsEnabled(enabled bool) Option {
	return func(c *config) {
		c.metricsEnabled = &enabled
	}
}

// WithMetricsLabel sets the "database" label attached to every metric.
func WithMetricsLabel(label string) Option {
	return func(c *config) {
		c.metricsLabel = label
	}
}

// WithHistoryStore sets a custom history store.
// Use this if you want to provide your own implementation of store.HistoryStore.
func WithHistoryStore(s store.HistoryStore) Option {
	return func(c *config) {
		c.historyStore = s
	}
}

// WithLoader sets a custom migration loader.
// Use this if you want to provide your own implementation of executor.Loader.
func WithLoader(loader executor.Loader) Option {
	return func(c *config) {
		c.loader = loader
	}
}

// RunMigrations creates the history table with the default name.
// The Migrator also does this on every operation; call it when the
// schema must exist before the first run, e.g. during deployment.
func RunMigrations(db *sql.DB, dialect sqlstore.Dialect) error {
	return RunMigrationsWithTableName(db, dialect, sqlstore.DefaultTableConfig())
}

// RunMigrationsWithTableName creates the history table with a custom name.
func RunMigrationsWithTableName(db *sql.DB, dialect sqlstore.Dialect, config sqlstore.TableConfig) error {
	if _, err := db.Exec(sqlstore.MigrationUp(dialect, config)); err != nil {
		return fmt.Errorf("failed to execute migrations: %w", err)
	}
	return nil
}

// invalidModules defers a registry error from WithModules to New.
type invalidModules struct {
	err error
}

func (invalidModules) ActiveMigrationDirectories() []string { return nil }
func (invalidModules) AllMigrationDirectories() []string    { return nil }
