//go:build integration

package integration_test

import (
	"database/sql"
	"os"
	"testing"

	"github.com/getpup/modular/store/sqlstore"
	_ "github.com/lib/pq"
)

// historyTable is the history table the integration tests run against.
var historyTable = sqlstore.TableConfig{Table: "modular_it_migrations"}

// appTables are the tables the test migrations create.
var appTables = []string{"it_users", "it_posts", "it_orders", "it_comments"}

// getTestDB returns a database connection for integration tests.
// It reads the DATABASE_URL environment variable and skips the test if not set.
func getTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	return db
}

// setupTables creates the history table.
func setupTables(t *testing.T, db *sql.DB) {
	t.Helper()

	if _, err := db.Exec(sqlstore.MigrationUp(sqlstore.Postgres, historyTable)); err != nil {
		t.Fatalf("failed to create history table: %v", err)
	}
}

// cleanupTables empties the history table and drops the tables created by
// test migrations. Errors are logged but don't fail the test (cleanup is best-effort).
func cleanupTables(t *testing.T, db *sql.DB) {
	t.Helper()

	for _, table := range appTables {
		if _, err := db.Exec("DROP TABLE IF EXISTS " + table + " CASCADE"); err != nil {
			t.Logf("warning: failed to drop %s: %v", table, err)
		}
	}

	if _, err := db.Exec("TRUNCATE " + historyTable.Table); err != nil {
		t.Logf("warning: failed to truncate history table: %v", err)
	}
}

// teardownTables drops the history table.
// Errors are logged but don't fail the test.
func teardownTables(t *testing.T, db *sql.DB) {
	t.Helper()

	if _, err := db.Exec(sqlstore.MigrationDown(sqlstore.Postgres, historyTable)); err != nil {
		t.Logf("warning: failed to drop history table: %v", err)
	}
}
