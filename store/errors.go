package store

import "errors"

var (
	// ErrAlreadyApplied indicates the identifier is already recorded in the history.
	ErrAlreadyApplied = errors.New("migration already applied")

	// ErrNotApplied indicates the identifier is not recorded in the history.
	ErrNotApplied = errors.New("migration not applied")

	// ErrInvalidBatch indicates a batch number below 1.
	ErrInvalidBatch = errors.New("batch number must be positive")
)
