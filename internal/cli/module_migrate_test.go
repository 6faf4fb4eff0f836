package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleMigrate_RunsOnlyTheModuleDirectory(t *testing.T) {
	p := newProject(t)
	p.seed(t)

	code, stdout, stderr := p.run(t, "migrate", "module", "blog", "Blog")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, "[Module Blog] Migrated: 2024_01_02_000000_create_posts\n", stdout)

	code, stdout, _ = p.run(t, "migrate", "status", "--format", "json")
	require.Equal(t, ExitSuccess, code)
	var status statusResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &status))
	ran := map[string]string{}
	for _, row := range status.Data.Migrations {
		ran[row.Migration] = row.Status
	}
	assert.Equal(t, map[string]string{
		"2024_01_01_000000_create_users":    "pending",
		"2024_01_02_000000_create_posts":    "ran",
		"2024_01_03_000000_create_comments": "pending",
		"2024_01_04_000000_create_orders":   "pending",
	}, ran)

	code, stdout, _ = p.run(t, "migrate", "module", "Blog")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "[Module Blog] Nothing to migrate.\n", stdout)
}

func TestModuleMigrate_JSONReport(t *testing.T) {
	p := newProject(t)
	p.seed(t)

	code, stdout, stderr := p.run(t, "migrate", "module", "Blog", "--format", "json")
	require.Equal(t, ExitSuccess, code, stderr)

	var resp struct {
		Status string              `json:"status"`
		Data   ModuleMigrateReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Len(t, resp.Data.Modules, 1)
	assert.Equal(t, "Blog", resp.Data.Modules[0].Module)
	assert.Equal(t, 1, resp.Data.Modules[0].Count)
	assert.Equal(t, 1, resp.Data.Modules[0].Batch)
}

func TestModuleMigrate_RejectsInactiveOrUnknownModules(t *testing.T) {
	tests := []struct {
		name    string
		modules []string
		message string
	}{
		{name: "inactive", modules: []string{"Blog", "Shop"}, message: `module "Shop" is not active`},
		{name: "unknown", modules: []string{"Billing"}, message: `module "Billing" is not registered`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProject(t)
			p.seed(t)

			code, stdout, stderr := p.run(t, append([]string{"migrate", "module"}, tt.modules...)...)

			assert.Equal(t, ExitCommandError, code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, "Error [E002]")
			assert.Contains(t, stderr, tt.message)

			code, stdout, _ = p.run(t, "migrate", "status")
			require.Equal(t, ExitSuccess, code)
			assert.Zero(t, countRows(stdout, "Ran"), "no module runs when one is rejected")
		})
	}
}

func TestModuleMigrate_StopsAtFailingModule(t *testing.T) {
	p := newProject(t)
	p.write(t, p.blogDir, "2024_01_02_000000_broken",
		"CREATE TABLE posts (id INTEGER PRIMARY KEY;", "DROP TABLE posts;")

	code, _, stderr := p.run(t, "migrate", "module", "Blog")

	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "Error [E103]")
	assert.Contains(t, stderr, "[Module Blog] failed to run migrations from "+p.blogDir)
}

func TestRollback_PretendReportsCountWithoutReverting(t *testing.T) {
	p := newProject(t)
	p.seed(t)

	code, _, stderr := p.run(t, "migrate")
	require.Equal(t, ExitSuccess, code, stderr)

	code, stdout, _ := p.run(t, "migrate", "rollback", "--pretend", "--format", "json")
	require.Equal(t, ExitSuccess, code)
	var resp struct {
		Data MigrationReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, 3, resp.Data.Count)
	assert.True(t, resp.Data.Pretend)

	code, stdout, _ = p.run(t, "migrate", "rollback", "--pretend")
	require.Equal(t, ExitSuccess, code)
	assert.NotContains(t, stdout, "Rolled back:")
	assert.Contains(t, stdout, "2024_01_01_000000_create_users: DROP TABLE users;")

	code, stdout, _ = p.run(t, "migrate", "status")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, 3, countRows(stdout, "Ran"))
}

// countRows counts the status table rows starting with label.
func countRows(table, label string) int {
	n := 0
	for _, line := range strings.Split(table, "\n") {
		if strings.HasPrefix(line, label+" ") {
			n++
		}
	}
	return n
}
