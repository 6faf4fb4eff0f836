//go:build integration

package integration_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/getpup/modular"
	pkgmodular "github.com/getpup/modular/pkg/modular"
	"github.com/getpup/modular/registry"
	"github.com/getpup/modular/store/sqlstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// application lays out an application directory with two modules on disk.
type application struct {
	root     string
	appDir   string
	blogDir  string
	shopDir  string
	registry *registry.Registry
}

func newApplication(t *testing.T, shopActive bool) *application {
	t.Helper()
	root := t.TempDir()

	reg, err := registry.New(registry.Config{
		Directory: filepath.Join(root, "app", "Modules"),
		Modules: []registry.Module{
			{Name: "Blog", Active: true},
			{Name: "Shop", Active: shopActive},
		},
	})
	require.NoError(t, err)

	app := &application{
		root:     root,
		appDir:   filepath.Join(root, "database", "migrations"),
		registry: reg,
	}
	app.blogDir, _ = reg.MigrationDirectory("Blog")
	app.shopDir, _ = reg.MigrationDirectory("Shop")
	return app
}

func (a *application) write(t *testing.T, dir, id, up, down string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	content := fmt.Sprintf("-- +migrate Up\n%s\n\n-- +migrate Down\n%s\n", up, down)
	require.NoError(t, os.WriteFile(filepath.Join(dir, id+".sql"), []byte(content), 0o644))
}

func (a *application) migrator(t *testing.T, db *sql.DB) modular.Migrator {
	t.Helper()
	m, err := pkgmodular.New(
		pkgmodular.WithDatabase(db, sqlstore.Postgres),
		pkgmodular.WithTableName(historyTable.Table),
		pkgmodular.WithRegistry(a.registry),
		pkgmodular.WithDefaultDirectory(a.appDir),
		pkgmodular.WithMetricsEnabled(false),
	)
	require.NoError(t, err)
	return m
}

func setupTestEnvironment(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	db := getTestDB(t)
	setupTables(t, db)
	cleanupTables(t, db)

	return db, func() {
		cleanupTables(t, db)
		db.Close()
	}
}

func tableExists(t *testing.T, db *sql.DB, table string) bool {
	t.Helper()
	var name sql.NullString
	require.NoError(t, db.QueryRow("SELECT to_regclass($1)::text", table).Scan(&name))
	return name.Valid
}

func history(t *testing.T, db *sql.DB) map[string]int {
	t.Helper()
	rows, err := db.Query("SELECT migration, batch FROM " + historyTable.Table)
	require.NoError(t, err)
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var id string
		var batch int
		require.NoError(t, rows.Scan(&id, &batch))
		out[id] = batch
	}
	require.NoError(t, rows.Err())
	return out
}

func TestGlobalOrderAcrossModules(t *testing.T) {
	db, cleanup := setupTestEnvironment(t)
	defer cleanup()
	ctx := context.Background()

	app := newApplication(t, true)
	app.write(t, app.appDir, "2024_01_01_000000_create_users",
		"CREATE TABLE it_users (id BIGINT PRIMARY KEY);", "DROP TABLE it_users;")
	// Posts reference users, comments reference posts: only the global
	// identifier order across directories makes this set applicable.
	app.write(t, app.blogDir, "2024_01_02_000000_create_posts",
		"CREATE TABLE it_posts (id BIGINT PRIMARY KEY, user_id BIGINT REFERENCES it_users(id));", "DROP TABLE it_posts;")
	app.write(t, app.appDir, "2024_01_03_000000_create_comments",
		"CREATE TABLE it_comments (id BIGINT PRIMARY KEY, post_id BIGINT REFERENCES it_posts(id));", "DROP TABLE it_comments;")

	m := app.migrator(t, db)
	result, err := m.Up(ctx, modular.UpOptions{})
	require.NoError(t, err)

	assert.Equal(t, []modular.Identifier{
		"2024_01_01_000000_create_users",
		"2024_01_02_000000_create_posts",
		"2024_01_03_000000_create_comments",
	}, result.Applied)
	assert.Equal(t, map[string]int{
		"2024_01_01_000000_create_users":    1,
		"2024_01_02_000000_create_posts":    1,
		"2024_01_03_000000_create_comments": 1,
	}, history(t, db))

	reset, err := m.Reset(ctx, modular.ResetOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, reset.ResetCount)
	assert.False(t, tableExists(t, db, "it_users"))
	assert.Empty(t, history(t, db))
}

func TestRollbackIncludesInactiveModules(t *testing.T) {
	db, cleanup := setupTestEnvironment(t)
	defer cleanup()
	ctx := context.Background()

	active := newApplication(t, true)
	active.write(t, active.shopDir, "2024_02_01_000000_create_orders",
		"CREATE TABLE it_orders (id BIGINT PRIMARY KEY);", "DROP TABLE it_orders;")

	_, err := active.migrator(t, db).Up(ctx, modular.UpOptions{})
	require.NoError(t, err)
	require.True(t, tableExists(t, db, "it_orders"))

	// Same files, Shop deactivated since.
	inactive := *active
	inactive.registry, err = registry.New(registry.Config{
		Directory: filepath.Join(active.root, "app", "Modules"),
		Modules: []registry.Module{
			{Name: "Blog", Active: true},
			{Name: "Shop", Active: false},
		},
	})
	require.NoError(t, err)

	result, err := inactive.migrator(t, db).Rollback(ctx, modular.RollbackOptions{})
	require.NoError(t, err)

	assert.Equal(t, []modular.Identifier{"2024_02_01_000000_create_orders"}, result.RolledBack)
	assert.False(t, tableExists(t, db, "it_orders"))
}

func TestFailedMigrationRollsBackItsTransaction(t *testing.T) {
	db, cleanup := setupTestEnvironment(t)
	defer cleanup()
	ctx := context.Background()

	app := newApplication(t, false)
	app.write(t, app.appDir, "2024_01_01_000000_create_users",
		"CREATE TABLE it_users (id BIGINT PRIMARY KEY);", "DROP TABLE it_users;")
	app.write(t, app.blogDir, "2024_01_02_000000_broken",
		"CREATE TABLE it_posts (id BIGINT PRIMARY KEY);\nINSERT INTO it_missing VALUES (1);", "DROP TABLE it_posts;")

	result, err := app.migrator(t, db).Up(ctx, modular.UpOptions{})

	require.ErrorIs(t, err, modular.ErrExecution)
	var execErr *modular.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, modular.Identifier("2024_01_02_000000_broken"), execErr.Identifier)
	assert.Equal(t, 1, result.AppliedCount)

	assert.True(t, tableExists(t, db, "it_users"))
	assert.False(t, tableExists(t, db, "it_posts"), "statements of the failed migration are rolled back together")
	assert.Equal(t, map[string]int{"2024_01_01_000000_create_users": 1}, history(t, db))
}

func TestStepAssignsOneBatchPerMigration(t *testing.T) {
	db, cleanup := setupTestEnvironment(t)
	defer cleanup()
	ctx := context.Background()

	app := newApplication(t, false)
	app.write(t, app.appDir, "2024_01_01_000000_create_users",
		"CREATE TABLE it_users (id BIGINT PRIMARY KEY);", "DROP TABLE it_users;")
	app.write(t, app.blogDir, "2024_01_02_000000_create_posts",
		"CREATE TABLE it_posts (id BIGINT PRIMARY KEY);", "DROP TABLE it_posts;")

	m := app.migrator(t, db)
	_, err := m.Up(ctx, modular.UpOptions{Step: true})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{
		"2024_01_01_000000_create_users": 1,
		"2024_01_02_000000_create_posts": 2,
	}, history(t, db))

	result, err := m.Rollback(ctx, modular.RollbackOptions{})
	require.NoError(t, err)
	assert.Equal(t, []modular.Identifier{"2024_01_02_000000_create_posts"}, result.RolledBack)
	assert.True(t, tableExists(t, db, "it_users"))
}
