package modular

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration indicates invalid or incomplete configuration,
	// such as an unknown module or an unusable directory setting.
	ErrConfiguration = errors.New("configuration error")

	// ErrDuplicateIdentifier indicates the same migration identifier was found
	// in more than one place during a catalog scan. Nothing is executed.
	ErrDuplicateIdentifier = errors.New("duplicate migration identifier")

	// ErrMissingFile indicates a migration recorded in the history has no file
	// in any scanned directory, so it cannot be rolled back.
	ErrMissingFile = errors.New("migration file not found")

	// ErrExecution indicates a migration unit failed while running.
	// Migrations applied before the failure remain recorded.
	ErrExecution = errors.New("migration execution failed")
)

// ConfigurationError describes why a configuration value was rejected.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// Unwrap returns the underlying cause, if any.
func (e *ConfigurationError) Unwrap() error { return e.Err }

// Is reports whether target is ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// DuplicateIdentifierError is returned by a catalog scan when two migration
// files share an identifier.
type DuplicateIdentifierError struct {
	Identifier      Identifier
	FirstDirectory  string
	SecondDirectory string
}

func (e *DuplicateIdentifierError) Error() string {
	return fmt.Sprintf("duplicate migration identifier %q found in %s and %s",
		e.Identifier, e.FirstDirectory, e.SecondDirectory)
}

// Is reports whether target is ErrDuplicateIdentifier.
func (e *DuplicateIdentifierError) Is(target error) bool { return target == ErrDuplicateIdentifier }

// MissingFileError is returned when an applied migration cannot be located.
type MissingFileError struct {
	Identifier Identifier
	Batch      int
}

func (e *MissingFileError) Error() string {
	if e.Batch > 0 {
		return fmt.Sprintf("migration not found: %s (batch %d)", e.Identifier, e.Batch)
	}
	return fmt.Sprintf("migration not found: %s", e.Identifier)
}

// Is reports whether target is ErrMissingFile.
func (e *MissingFileError) Is(target error) bool { return target == ErrMissingFile }

// ExecutionError wraps a failure raised by a migration unit.
type ExecutionError struct {
	Identifier Identifier
	Direction  Direction
	Directory  string
	Err        error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("migration %s (%s) failed: %v", e.Identifier, e.Direction, e.Err)
}

// Unwrap returns the error raised by the unit.
func (e *ExecutionError) Unwrap() error { return e.Err }

// Is reports whether target is ErrExecution.
func (e *ExecutionError) Is(target error) bool { return target == ErrExecution }
