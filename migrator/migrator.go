package migrator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/getpup/modular"
	"github.com/getpup/modular/catalog"
	"github.com/getpup/modular/executor"
	"github.com/getpup/modular/metrics"
	"github.com/getpup/modular/store"
	"github.com/spf13/afero"
)

// DefaultDirectory is the application's own migration directory.
const DefaultDirectory = "database/migrations"

// ModuleSource supplies module migration directories in registration order.
// *registry.Registry implements it.
type ModuleSource interface {
	ActiveMigrationDirectories() []string
	AllMigrationDirectories() []string
}

// Config holds configuration for the Migrator.
type Config struct {
	// Store persists the migration history (required).
	Store store.HistoryStore

	// Loader loads migration units from catalog records (required).
	Loader executor.Loader

	// Modules supplies module migration directories (optional).
	// When nil only the default directory is scanned.
	Modules ModuleSource

	// DefaultDirectory is the application's migration directory (default: "database/migrations").
	DefaultDirectory string

	// Fs is the filesystem scanned for migration files (default: OS filesystem).
	Fs afero.Fs

	// Extension is the migration file extension (default: ".sql").
	Extension string

	// Logger is for observability (optional).
	Logger modular.Logger

	// MetricsEnabled enables Prometheus metrics collection (default: true).
	// Set to false explicitly to disable metrics.
	MetricsEnabled *bool

	// MetricsLabel is the value of the "database" metrics label (default: "default").
	MetricsLabel string
}

// Migrator runs Up, Rollback and Reset across the default and module
// migration directories against a single history.
type Migrator struct {
	config    Config
	collector *metrics.Collector
}

var _ modular.Migrator = (*Migrator)(nil)

// New creates a new Migrator with the given configuration.
// Applies default values for optional fields left zero.
func New(cfg Config) *Migrator {
	if cfg.DefaultDirectory == "" {
		cfg.DefaultDirectory = DefaultDirectory
	}
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.Extension == "" {
		cfg.Extension = catalog.DefaultExtension
	}
	if cfg.MetricsLabel == "" {
		cfg.MetricsLabel = "default"
	}

	// Create metrics collector if enabled (default: true)
	var collector *metrics.Collector
	metricsEnabled := true
	if cfg.MetricsEnabled != nil {
		metricsEnabled = *cfg.MetricsEnabled
	}
	if metricsEnabled {
		collector = metrics.NewCollector(cfg.MetricsLabel)
	}

	return &Migrator{
		config:    cfg,
		collector: collector,
	}
}

// Up applies every pending migration under a new batch.
func (m *Migrator) Up(ctx context.Context, opts modular.UpOptions) (modular.UpResult, error) {
	defer m.track("up")()

	result := modular.UpResult{Applied: make([]modular.Identifier, 0)}

	if err := m.config.Store.EnsureSchema(ctx); err != nil {
		return result, fmt.Errorf("failed to ensure history schema: %w", err)
	}

	dirs := catalog.Resolve(opts.Paths, m.config.DefaultDirectory, m.activeModuleDirectories())
	cat, err := m.scan(dirs, false)
	if err != nil {
		return result, err
	}

	applied, err := m.config.Store.AllApplied(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to read migration history: %w", err)
	}

	ran := make(map[modular.Identifier]struct{}, len(applied))
	for _, entry := range applied {
		ran[entry.Identifier] = struct{}{}
	}

	pending := make([]modular.Record, 0)
	for _, rec := range cat.Records() {
		if _, ok := ran[rec.Identifier]; !ok {
			pending = append(pending, rec)
		}
	}

	if m.collector != nil {
		m.collector.SetPending(len(pending))
	}

	if len(pending) == 0 {
		if m.config.Logger != nil {
			m.config.Logger.Info(ctx, "nothing to migrate", "directories", len(dirs))
		}
		result.Notes = append(result.Notes, modular.NoteNothingToMigrate)
		return result, nil
	}

	if opts.Pretend {
		for _, rec := range pending {
			unit, err := m.config.Loader.Load(ctx, rec)
			if err != nil {
				return result, loadFailure(rec, modular.DirectionUp, err)
			}
			result.Notes = append(result.Notes, pretendNotes(unit, modular.DirectionUp)...)
		}
		return result, nil
	}

	batch, err := m.config.Store.NextBatchNumber(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to get next batch number: %w", err)
	}

	if m.config.Logger != nil {
		m.config.Logger.Info(ctx, "running migrations",
			"pending", len(pending),
			"batch", batch,
			"step", opts.Step)
	}

	for _, rec := range pending {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		unit, err := m.config.Loader.Load(ctx, rec)
		if err != nil {
			return result, loadFailure(rec, modular.DirectionUp, err)
		}

		if err := m.runUnit(ctx, unit, rec, modular.DirectionUp); err != nil {
			return result, err
		}

		if err := m.config.Store.RecordApplied(ctx, []modular.Identifier{rec.Identifier}, batch); err != nil {
			return result, fmt.Errorf("failed to record migration %s: %w", rec.Identifier, err)
		}

		if result.AppliedCount == 0 {
			result.Batch = batch
		}
		result.Applied = append(result.Applied, rec.Identifier)
		result.AppliedCount++

		if m.collector != nil {
			m.collector.SetCurrentBatch(batch)
		}
		if m.config.Logger != nil {
			m.config.Logger.Info(ctx, "migrated",
				"migration", rec.Identifier,
				"batch", batch,
				"directory", rec.Directory)
		}

		if opts.Step {
			batch++
		}
	}

	return result, nil
}

// Rollback reverts the most recent batch.
func (m *Migrator) Rollback(ctx context.Context, opts modular.RollbackOptions) (modular.RollbackResult, error) {
	defer m.track("rollback")()

	result := modular.RollbackResult{RolledBack: make([]modular.Identifier, 0)}

	if err := m.config.Store.EnsureSchema(ctx); err != nil {
		return result, fmt.Errorf("failed to ensure history schema: %w", err)
	}

	entries, err := m.config.Store.LastBatch(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to read last batch: %w", err)
	}

	if len(entries) == 0 {
		if m.config.Logger != nil {
			m.config.Logger.Info(ctx, "nothing to rollback")
		}
		result.Notes = append(result.Notes, modular.NoteNothingToRollback)
		return result, nil
	}

	if m.config.Logger != nil {
		m.config.Logger.Info(ctx, "rolling back batch",
			"batch", entries[0].Batch,
			"migrations", len(entries))
	}

	reverted, notes, err := m.revert(ctx, entries, opts.Pretend)
	result.RolledBack = reverted
	result.RolledBackCount = len(reverted)
	result.Notes = notes
	return result, err
}

// Reset reverts every applied migration, newest first.
func (m *Migrator) Reset(ctx context.Context, opts modular.ResetOptions) (modular.ResetResult, error) {
	defer m.track("reset")()

	result := modular.ResetResult{Reset: make([]modular.Identifier, 0)}

	if err := m.config.Store.EnsureSchema(ctx); err != nil {
		return result, fmt.Errorf("failed to ensure history schema: %w", err)
	}

	applied, err := m.config.Store.AllApplied(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to read migration history: %w", err)
	}

	if len(applied) == 0 {
		if m.config.Logger != nil {
			m.config.Logger.Info(ctx, "nothing to reset")
		}
		result.Notes = append(result.Notes, modular.NoteNothingToRollback)
		return result, nil
	}

	entries := make([]modular.HistoryEntry, len(applied))
	for i, entry := range applied {
		entries[len(applied)-1-i] = entry
	}

	reverted, notes, err := m.revert(ctx, entries, opts.Pretend)
	result.Reset = reverted
	result.ResetCount = len(reverted)
	result.Notes = notes
	return result, err
}

// Status lists every migration found on disk plus every applied migration
// whose file is missing, in identifier order.
func (m *Migrator) Status(ctx context.Context) ([]modular.StatusEntry, error) {
	defer m.track("status")()

	if err := m.config.Store.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure history schema: %w", err)
	}

	cat, err := m.scan(m.allDirectories(), false)
	if err != nil {
		return nil, err
	}

	applied, err := m.config.Store.AllApplied(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration history: %w", err)
	}

	batches := make(map[modular.Identifier]int, len(applied))
	for _, entry := range applied {
		batches[entry.Identifier] = entry.Batch
	}

	entries := make([]modular.StatusEntry, 0, cat.Len())
	for _, rec := range cat.Records() {
		batch, ran := batches[rec.Identifier]
		entries = append(entries, modular.StatusEntry{
			Identifier: rec.Identifier,
			Directory:  rec.Directory,
			Ran:        ran,
			Batch:      batch,
		})
	}

	for _, entry := range applied {
		if _, ok := cat.Lookup(entry.Identifier); !ok {
			entries = append(entries, modular.StatusEntry{
				Identifier: entry.Identifier,
				Ran:        true,
				Batch:      entry.Batch,
				Missing:    true,
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Identifier < entries[j].Identifier
	})

	return entries, nil
}

// revert runs Down for entries in the given order, removing each from the
// history as it succeeds. Every module directory is scanned, active or not.
func (m *Migrator) revert(ctx context.Context, entries []modular.HistoryEntry, pretend bool) ([]modular.Identifier, []string, error) {
	reverted := make([]modular.Identifier, 0, len(entries))
	var notes []string

	cat, err := m.scan(m.allDirectories(), true)
	if err != nil {
		return reverted, notes, err
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return reverted, notes, err
		}

		rec, ok := cat.Lookup(entry.Identifier)
		if !ok {
			if m.config.Logger != nil {
				m.config.Logger.Error(ctx, "migration not found",
					"migration", entry.Identifier,
					"batch", entry.Batch)
			}
			return reverted, notes, &modular.MissingFileError{Identifier: entry.Identifier, Batch: entry.Batch}
		}

		unit, err := m.config.Loader.Load(ctx, rec)
		if err != nil {
			return reverted, notes, loadFailure(rec, modular.DirectionDown, err)
		}

		if pretend {
			notes = append(notes, pretendNotes(unit, modular.DirectionDown)...)
			reverted = append(reverted, entry.Identifier)
			continue
		}

		if err := m.runUnit(ctx, unit, rec, modular.DirectionDown); err != nil {
			return reverted, notes, err
		}

		if err := m.config.Store.RemoveApplied(ctx, []modular.Identifier{entry.Identifier}); err != nil {
			return reverted, notes, fmt.Errorf("failed to remove migration %s from history: %w", entry.Identifier, err)
		}

		reverted = append(reverted, entry.Identifier)

		if m.config.Logger != nil {
			m.config.Logger.Info(ctx, "rolled back",
				"migration", entry.Identifier,
				"batch", entry.Batch,
				"directory", rec.Directory)
		}
	}

	return reverted, notes, nil
}

func (m *Migrator) runUnit(ctx context.Context, unit executor.Unit, rec modular.Record, direction modular.Direction) error {
	if m.config.Logger != nil {
		m.config.Logger.Debug(ctx, "running migration",
			"migration", rec.Identifier,
			"direction", direction)
	}

	start := time.Now()
	var err error
	if direction == modular.DirectionDown {
		err = unit.Down(ctx)
	} else {
		err = unit.Up(ctx)
	}

	if err != nil {
		if m.collector != nil {
			m.collector.IncErrors(string(direction))
		}
		if m.config.Logger != nil {
			m.config.Logger.Error(ctx, "migration failed",
				"migration", rec.Identifier,
				"direction", direction,
				"directory", rec.Directory,
				"error", err)
		}
		return &modular.ExecutionError{
			Identifier: rec.Identifier,
			Direction:  direction,
			Directory:  rec.Directory,
			Err:        err,
		}
	}

	if m.collector != nil {
		m.collector.IncExecuted(string(direction))
		m.collector.ObserveMigrationDuration(string(direction), time.Since(start).Seconds())
	}
	return nil
}

func (m *Migrator) scan(dirs []string, reverse bool) (*catalog.Catalog, error) {
	cat, err := catalog.Scan(m.config.Fs, dirs, reverse, catalog.WithExtension(m.config.Extension))
	if err != nil {
		return nil, err
	}
	if m.collector != nil {
		m.collector.SetCatalogSize(cat.Len())
	}
	return cat, nil
}

func (m *Migrator) activeModuleDirectories() []string {
	if m.config.Modules == nil {
		return nil
	}
	return m.config.Modules.ActiveMigrationDirectories()
}

func (m *Migrator) allDirectories() []string {
	dirs := []string{m.config.DefaultDirectory}
	if m.config.Modules != nil {
		dirs = append(dirs, m.config.Modules.AllMigrationDirectories()...)
	}
	return dirs
}

func (m *Migrator) track(operation string) func() {
	start := time.Now()
	return func() {
		if m.collector != nil {
			m.collector.IncOperations(operation)
			m.collector.ObserveOperationDuration(operation, time.Since(start).Seconds())
		}
	}
}

// loadFailure keeps missing-file errors as they are and reports every other
// load failure as an execution error of the unit.
func loadFailure(rec modular.Record, direction modular.Direction, err error) error {
	if errors.Is(err, modular.ErrMissingFile) {
		return err
	}
	return &modular.ExecutionError{
		Identifier: rec.Identifier,
		Direction:  direction,
		Directory:  rec.Directory,
		Err:        err,
	}
}

func pretendNotes(unit executor.Unit, direction modular.Direction) []string {
	statements := unit.Statements(direction)
	notes := make([]string, 0, len(statements))
	for _, stmt := range statements {
		notes = append(notes, fmt.Sprintf("%s: %s", unit.Identifier(), stmt))
	}
	return notes
}
