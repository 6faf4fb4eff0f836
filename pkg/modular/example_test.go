package modular_test

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"

	"github.com/getpup/modular/pkg/modular"
	"github.com/getpup/modular/store/sqlstore"
)

// Example_basic demonstrates running pending migrations of the application
// and its active modules.
func Example_basic() {
	db, err := sql.Open("postgres", "postgres://localhost/app?sslmode=disable")
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	m, err := modular.New(
		modular.WithDatabase(db, sqlstore.Postgres),
		modular.WithModules(
			modular.Module{Name: "Blog", Active: true},
			modular.Module{Name: "Shop", Active: false},
		),
	)
	if err != nil {
		log.Fatalf("Failed to create migrator: %v", err)
	}

	result, err := m.Up(context.Background(), modular.UpOptions{})
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	for _, id := range result.Applied {
		fmt.Printf("Migrated: %s\n", id)
	}
	for _, note := range result.Notes {
		fmt.Println(note)
	}
}

// stdLogger adapts the standard library logger.
type stdLogger struct{}

func (stdLogger) Debug(_ context.Context, msg string, keyvals ...interface{}) {}

func (stdLogger) Info(_ context.Context, msg string, keyvals ...interface{}) {
	log.Println(append([]interface{}{"[MIGRATOR]", msg}, keyvals...)...)
}

func (stdLogger) Error(_ context.Context, msg string, keyvals ...interface{}) {
	log.Println(append([]interface{}{"[MIGRATOR] ERROR", msg}, keyvals...)...)
}

// Example_rollback demonstrates rolling back the last batch with a custom
// history table and logger.
func Example_rollback() {
	db, err := sql.Open("postgres", "postgres://localhost/app?sslmode=disable")
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	m, err := modular.New(
		modular.WithDatabase(db, sqlstore.Postgres),
		modular.WithTableName("app.schema_history"),
		modular.WithLogger(stdLogger{}),
	)
	if err != nil {
		log.Fatalf("Failed to create migrator: %v", err)
	}

	result, err := m.Rollback(context.Background(), modular.RollbackOptions{})
	if err != nil {
		log.Fatalf("Rollback failed: %v", err)
	}

	fmt.Printf("Rolled back %d migrations\n", result.RolledBackCount)
}
