package executor

import (
	"context"

	"github.com/getpup/modular"
)

// Unit is a loaded migration: an opaque pair of up and down actions.
type Unit interface {
	// Identifier returns the migration identifier.
	Identifier() modular.Identifier

	// Up applies the migration.
	Up(ctx context.Context) error

	// Down reverts the migration.
	Down(ctx context.Context) error

	// Statements returns what Up or Down would execute, for pretend runs.
	Statements(direction modular.Direction) []string
}

// Loader turns a catalog record into a runnable Unit.
// This interface allows for mock implementations in tests.
type Loader interface {
	Load(ctx context.Context, rec modular.Record) (Unit, error)
}
