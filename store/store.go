package store

import (
	"context"

	"github.com/getpup/modular"
)

// HistoryStore persists which migrations have been applied and in which batch.
// Implementations must be safe for concurrent access.
type HistoryStore interface {
	// EnsureSchema creates the backing storage if it does not exist yet.
	// Calling it repeatedly is a no-op.
	EnsureSchema(ctx context.Context) error

	// AllApplied returns every history entry ordered by batch ascending,
	// then identifier ascending.
	// Returns an empty slice if nothing has been applied.
	AllApplied(ctx context.Context) ([]modular.HistoryEntry, error)

	// LastBatch returns the entries of the highest batch ordered by
	// identifier descending.
	// Returns an empty slice if nothing has been applied.
	LastBatch(ctx context.Context) ([]modular.HistoryEntry, error)

	// NextBatchNumber returns one more than the highest recorded batch,
	// or 1 when the history is empty. It does not reserve the number.
	NextBatchNumber(ctx context.Context) (int, error)

	// RecordApplied records the identifiers under the given batch.
	// The set is recorded atomically.
	// Returns ErrAlreadyApplied if any identifier is already recorded.
	RecordApplied(ctx context.Context, ids []modular.Identifier, batch int) error

	// RemoveApplied deletes the identifiers from the history.
	// The set is removed atomically.
	// Returns ErrNotApplied if any identifier is not recorded.
	RemoveApplied(ctx context.Context, ids []modular.Identifier) error
}
