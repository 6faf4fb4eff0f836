//go:build integration

package integration_test

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/getpup/modular"
	"github.com/getpup/modular/store"
	"github.com/getpup/modular/store/sqlstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// getTestDB returns a connection for the dialect whose URL variable is set.
// It skips the test if the variable is not set.
func getTestDB(t *testing.T, dialect sqlstore.Dialect, envVar string) *sql.DB {
	t.Helper()

	dsn := os.Getenv(envVar)
	if dsn == "" {
		t.Skipf("%s not set, skipping integration test", envVar)
	}

	db, err := sqlstore.Open(context.Background(), dialect, dsn)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// setupTable drops and recreates the history table so every test starts clean.
func setupTable(t *testing.T, db *sql.DB, dialect sqlstore.Dialect) *sqlstore.Store {
	t.Helper()

	config := sqlstore.TableConfig{Table: "modular_test_migrations"}

	if _, err := db.Exec(sqlstore.MigrationDown(dialect, config)); err != nil {
		t.Logf("warning: failed to drop table (may not exist): %v", err)
	}

	s := sqlstore.NewWithConfig(db, dialect, config)
	require.NoError(t, s.EnsureSchema(context.Background()))
	return s
}

func TestHistoryStore_Postgres(t *testing.T) {
	db := getTestDB(t, sqlstore.Postgres, "DATABASE_URL")
	runHistoryStoreSuite(t, setupTable(t, db, sqlstore.Postgres))
}

func TestHistoryStore_MySQL(t *testing.T) {
	db := getTestDB(t, sqlstore.MySQL, "MYSQL_URL")
	runHistoryStoreSuite(t, setupTable(t, db, sqlstore.MySQL))
}

func runHistoryStoreSuite(t *testing.T, s *sqlstore.Store) {
	ctx := context.Background()

	next, err := s.NextBatchNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, next)

	require.NoError(t, s.RecordApplied(ctx, []modular.Identifier{"2024_01_01_000000_a", "2024_01_02_000000_b"}, 1))
	require.NoError(t, s.RecordApplied(ctx, []modular.Identifier{"2024_01_03_000000_c"}, 2))

	all, err := s.AllApplied(ctx)
	require.NoError(t, err)
	assert.Equal(t, []modular.HistoryEntry{
		{Identifier: "2024_01_01_000000_a", Batch: 1},
		{Identifier: "2024_01_02_000000_b", Batch: 1},
		{Identifier: "2024_01_03_000000_c", Batch: 2},
	}, all)

	last, err := s.LastBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, []modular.HistoryEntry{{Identifier: "2024_01_03_000000_c", Batch: 2}}, last)

	err = s.RecordApplied(ctx, []modular.Identifier{"2024_01_01_000000_a"}, 3)
	assert.ErrorIs(t, err, store.ErrAlreadyApplied)

	err = s.RemoveApplied(ctx, []modular.Identifier{"2024_01_09_000000_missing"})
	assert.ErrorIs(t, err, store.ErrNotApplied)

	require.NoError(t, s.RemoveApplied(ctx, []modular.Identifier{"2024_01_03_000000_c"}))
	next, err = s.NextBatchNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, next)
}
