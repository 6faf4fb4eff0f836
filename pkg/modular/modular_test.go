package modular

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	rootpkg "github.com/getpup/modular"
	"github.com/getpup/modular/executor"
	"github.com/getpup/modular/migrator"
	"github.com/getpup/modular/store/memory"
	"github.com/getpup/modular/store/sqlstore"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_MissingDatabase(t *testing.T) {
	m, err := New()

	assert.Error(t, err)
	assert.Nil(t, m)
	assert.Contains(t, err.Error(), "database is required")
}

func TestNew_MissingDialect(t *testing.T) {
	m, err := New(WithDatabase(&sql.DB{}, ""))

	assert.Error(t, err)
	assert.Nil(t, m)
	assert.Contains(t, err.Error(), "dialect is required")
}

func TestNew_WithDatabase(t *testing.T) {
	m, err := New(WithDatabase(&sql.DB{}, sqlstore.Postgres), WithMetricsEnabled(false))

	require.NoError(t, err)
	assert.IsType(t, &migrator.Migrator{}, m)
}

func TestNew_CustomStoreAndLoaderNeedNoDatabase(t *testing.T) {
	m, err := New(
		WithHistoryStore(memory.New()),
		WithLoader(executor.NewMockLoader()),
		WithMetricsEnabled(false),
	)

	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestNew_InvalidModules(t *testing.T) {
	m, err := New(
		WithHistoryStore(memory.New()),
		WithLoader(executor.NewMockLoader()),
		WithModules(Module{Name: "Blog"}, Module{Name: "Blog"}),
	)

	assert.ErrorIs(t, err, rootpkg.ErrConfiguration)
	assert.Nil(t, m)
}

func TestNew_WiresModulesAndFilesystem(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, filepath.Join("migrations", "2024_01_01_000000_a.sql"), nil, 0o644))
	require.NoError(t, afero.WriteFile(fsys, filepath.Join("app", "Modules", "Blog", "Database", "Migrations", "2024_01_02_000000_b.sql"), nil, 0o644))

	loader := executor.NewMockLoader()
	history := memory.New()
	m, err := New(
		WithHistoryStore(history),
		WithLoader(loader),
		WithFilesystem(fsys),
		WithDefaultDirectory("migrations"),
		WithModules(Module{Name: "Blog", Active: true}),
		WithMetricsEnabled(false),
	)
	require.NoError(t, err)

	result, err := m.Up(context.Background(), UpOptions{})

	require.NoError(t, err)
	assert.Equal(t, []Identifier{"2024_01_01_000000_a", "2024_01_02_000000_b"}, result.Applied)
}

func TestNew_EndToEndWithSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := sqlstore.Open(ctx, sqlstore.SQLite, filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	defer db.Close()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, filepath.Join("database", "migrations", "2024_01_01_000000_create_users.sql"), []byte(`-- +migrate Up
CREATE TABLE users (id INTEGER PRIMARY KEY);

-- +migrate Down
DROP TABLE users;
`), 0o644))

	m, err := New(
		WithDatabase(db, sqlstore.SQLite),
		WithTableName("schema_history"),
		WithFilesystem(fsys),
		WithMetricsEnabled(false),
	)
	require.NoError(t, err)

	up, err := m.Up(ctx, UpOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, up.AppliedCount)

	var batch int
	require.NoError(t, db.QueryRow(`SELECT batch FROM schema_history WHERE migration = '2024_01_01_000000_create_users'`).Scan(&batch))
	assert.Equal(t, 1, batch)

	reset, err := m.Reset(ctx, ResetOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, reset.ResetCount)
}

func TestRunMigrations(t *testing.T) {
	db, err := sqlstore.Open(context.Background(), sqlstore.SQLite, filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunMigrations(db, sqlstore.SQLite))
	require.NoError(t, RunMigrations(db, sqlstore.SQLite), "must be idempotent")

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM migrations`).Scan(&count))
	assert.Equal(t, 0, count)
}
