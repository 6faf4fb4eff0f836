package modular

import "path/filepath"

// Identifier names a single migration. It is the migration file name with its
// extension removed, e.g. "2024_01_01_000000_create_users_table".
// Identifiers start with a fixed-width timestamp so that lexicographic order
// is chronological order.
type Identifier string

// String returns the identifier as a plain string.
func (id Identifier) String() string {
	return string(id)
}

// Direction is the direction a migration unit is executed in.
type Direction string

const (
	// DirectionUp applies a migration.
	DirectionUp Direction = "up"

	// DirectionDown reverts a migration.
	DirectionDown Direction = "down"
)

// Record locates a migration file discovered during a catalog scan.
// Records are rebuilt on every invocation and never persisted.
type Record struct {
	// Identifier is the migration identifier.
	Identifier Identifier

	// Directory is the directory the migration file was found in.
	Directory string
}

// Path returns the full path of the migration file for the given extension.
func (r Record) Path(extension string) string {
	return filepath.Join(r.Directory, string(r.Identifier)+extension)
}

// HistoryEntry is a persisted record that a migration has been applied.
// An identifier appears at most once in the history.
type HistoryEntry struct {
	// Identifier is the applied migration.
	Identifier Identifier

	// Batch groups the migrations applied by the same Up invocation.
	// Batch numbers are positive and strictly increase across invocations.
	Batch int
}

// Notes reported when an operation finds nothing to do.
const (
	NoteNothingToMigrate  = "Nothing to migrate."
	NoteNothingToRollback = "Nothing to rollback."
)

// UpOptions configures an Up run.
type UpOptions struct {
	// Paths overrides the directories to scan. When empty, or when every
	// entry is the default directory, the default directory plus every active
	// module directory is scanned.
	Paths []string

	// Pretend parses pending migrations and reports their statements without
	// executing or recording them.
	Pretend bool

	// Step assigns each migration its own batch so they can be rolled back
	// one at a time.
	Step bool
}

// UpResult reports the outcome of an Up run.
type UpResult struct {
	// AppliedCount is the number of migrations executed and recorded.
	AppliedCount int

	// Applied lists the applied identifiers in execution order.
	Applied []Identifier

	// Batch is the batch number assigned to the first applied migration.
	// Zero when nothing was applied.
	Batch int

	// Notes carries human readable output such as "Nothing to migrate."
	// or pretended statements.
	Notes []string
}

// RollbackOptions configures a Rollback run.
type RollbackOptions struct {
	// Pretend reports the down statements without executing them.
	Pretend bool
}

// RollbackResult reports the outcome of a Rollback run.
type RollbackResult struct {
	// RolledBackCount is the number of migrations reverted, or that would
	// be reverted in pretend mode.
	RolledBackCount int

	// RolledBack lists the reverted identifiers in execution order.
	RolledBack []Identifier

	// Notes carries human readable output.
	Notes []string
}

// ResetOptions configures a Reset run.
type ResetOptions struct {
	// Pretend reports the down statements without executing them.
	Pretend bool
}

// ResetResult reports the outcome of a Reset run.
type ResetResult struct {
	// ResetCount is the number of migrations reverted, or that would be
	// reverted in pretend mode.
	ResetCount int

	// Reset lists the reverted identifiers in execution order.
	Reset []Identifier

	// Notes carries human readable output.
	Notes []string
}

// StatusEntry describes one migration known to either the catalog or the history.
type StatusEntry struct {
	Identifier Identifier

	// Directory is empty when the migration file no longer exists.
	Directory string

	// Ran reports whether the migration is recorded in the history.
	Ran bool

	// Batch is the batch the migration was applied in, zero if pending.
	Batch int

	// Missing is true when the history records the migration but no file
	// with its identifier was found.
	Missing bool
}
