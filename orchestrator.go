package modular

import "context"

// Migrator runs migrations collected from the application's default migration
// directory and every module's migration directory as one ordered sequence,
// recorded in a single history.
type Migrator interface {
	// Up applies every pending migration in ascending identifier order under
	// one new batch number (one batch per migration in step mode).
	//
	// Up returns a zero count and the note "Nothing to migrate." when every
	// migration is already applied; no batch number is consumed in that case.
	//
	// Up returns an error if:
	// - Two migration files share an identifier (nothing is executed)
	// - A migration fails (earlier migrations in the run stay applied)
	Up(ctx context.Context, opts UpOptions) (UpResult, error)

	// Rollback reverts every migration of the most recent batch, newest first.
	// Module directories are scanned regardless of whether the module is active.
	Rollback(ctx context.Context, opts RollbackOptions) (RollbackResult, error)

	// Reset reverts every applied migration in reverse application order.
	Reset(ctx context.Context, opts ResetOptions) (ResetResult, error)

	// Status reports every migration known to the catalog or the history.
	Status(ctx context.Context) ([]StatusEntry, error)
}

// Logger receives structured log output. Keyvals are alternating key/value pairs.
// Every component treats a nil Logger as disabled.
type Logger interface {
	Debug(ctx context.Context, msg string, keyvals ...interface{})
	Info(ctx context.Context, msg string, keyvals ...interface{})
	Error(ctx context.Context, msg string, keyvals ...interface{})
}
