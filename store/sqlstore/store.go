package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/getpup/modular"
	"github.com/getpup/modular/store"
)

// Store is a database/sql implementation of HistoryStore.
// It keeps one row per applied migration: (migration, batch).
type Store struct {
	db      *sql.DB
	dialect Dialect
	config  TableConfig
	table   string
}

// New creates a new store with the default table name.
func New(db *sql.DB, dialect Dialect) *Store {
	return NewWithConfig(db, dialect, DefaultTableConfig())
}

// NewWithConfig creates a new store with a custom table name.
func NewWithConfig(db *sql.DB, dialect Dialect, config TableConfig) *Store {
	if config.Table == "" {
		config.Table = DefaultTableConfig().Table
	}
	return &Store{
		db:      db,
		dialect: dialect,
		config:  config,
		table:   dialect.QuoteIdentifier(config.Table),
	}
}

// EnsureSchema creates the history table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, MigrationUp(s.dialect, s.config)); err != nil {
		return fmt.Errorf("failed to create history table: %w", err)
	}
	return nil
}

// AllApplied returns every entry ordered by batch, then migration.
func (s *Store) AllApplied(ctx context.Context) ([]modular.HistoryEntry, error) {
	query := fmt.Sprintf(`
		SELECT migration, batch
		FROM %s
		ORDER BY batch ASC, migration ASC
	`, s.table)

	entries, err := s.queryEntries(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	return entries, nil
}

// LastBatch returns the entries of the highest batch, newest migration first.
func (s *Store) LastBatch(ctx context.Context) ([]modular.HistoryEntry, error) {
	query := fmt.Sprintf(`
		SELECT migration, batch
		FROM %s
		WHERE batch = (SELECT MAX(batch) FROM %s)
		ORDER BY migration DESC
	`, s.table, s.table)

	entries, err := s.queryEntries(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get last batch: %w", err)
	}
	return entries, nil
}

// NextBatchNumber returns the highest batch plus one.
func (s *Store) NextBatchNumber(ctx context.Context) (int, error) {
	query := fmt.Sprintf(`SELECT COALESCE(MAX(batch), 0) FROM %s`, s.table)

	var last int
	if err := s.db.QueryRowContext(ctx, query).Scan(&last); err != nil {
		return 0, fmt.Errorf("failed to get last batch number: %w", err)
	}
	return last + 1, nil
}

// RecordApplied inserts all identifiers under batch in one transaction.
// Returns store.ErrAlreadyApplied if any identifier is already recorded.
func (s *Store) RecordApplied(ctx context.Context, ids []modular.Identifier, batch int) error {
	if batch < 1 {
		return store.ErrInvalidBatch
	}

	exists := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE migration = %s`, s.table, s.dialect.Placeholder(1))
	insert := fmt.Sprintf(`INSERT INTO %s (migration, batch) VALUES (%s, %s)`,
		s.table, s.dialect.Placeholder(1), s.dialect.Placeholder(2))

	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, id := range ids {
			var count int
			if err := tx.QueryRowContext(ctx, exists, string(id)).Scan(&count); err != nil {
				return fmt.Errorf("failed to check migration %s: %w", id, err)
			}
			if count > 0 {
				return fmt.Errorf("%w: %s", store.ErrAlreadyApplied, id)
			}
			if _, err := tx.ExecContext(ctx, insert, string(id), batch); err != nil {
				return fmt.Errorf("failed to record migration %s: %w", id, err)
			}
		}
		return nil
	})
}

// RemoveApplied deletes all identifiers in one transaction.
// Returns store.ErrNotApplied if any identifier is not recorded.
func (s *Store) RemoveApplied(ctx context.Context, ids []modular.Identifier) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE migration = %s`, s.table, s.dialect.Placeholder(1))

	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, id := range ids {
			result, err := tx.ExecContext(ctx, query, string(id))
			if err != nil {
				return fmt.Errorf("failed to remove migration %s: %w", id, err)
			}

			rowsAffected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			}
			if rowsAffected == 0 {
				return fmt.Errorf("%w: %s", store.ErrNotApplied, id)
			}
		}
		return nil
	})
}

func (s *Store) queryEntries(ctx context.Context, query string) ([]modular.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]modular.HistoryEntry, 0)
	for rows.Next() {
		var entry modular.HistoryEntry
		var id string
		if err := rows.Scan(&id, &entry.Batch); err != nil {
			return nil, err
		}
		entry.Identifier = modular.Identifier(id)
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
