package cli

import (
	"bytes"
	"testing"

	"github.com/getpup/modular"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderStatus_Golden(t *testing.T) {
	report := newStatusReport([]modular.StatusEntry{
		{Identifier: "2023_12_31_000000_legacy", Ran: true, Batch: 1, Missing: true},
		{Identifier: "2024_01_01_000000_create_users", Directory: "database/migrations", Ran: true, Batch: 1},
		{Identifier: "2024_01_02_000000_create_posts", Directory: "app/Modules/Blog/Database/Migrations", Ran: true, Batch: 2},
		{Identifier: "2024_01_03_000000_add_slug", Directory: "app/Modules/Blog/Database/Migrations"},
	})

	var buf bytes.Buffer
	require.NoError(t, renderStatus(&buf, report.Migrations))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "status", buf.Bytes())
}

func TestRenderStatus_Empty(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, renderStatus(&buf, nil))

	assert.Equal(t, "No migrations found.\n", buf.String())
}

func TestNewStatusReport(t *testing.T) {
	report := newStatusReport([]modular.StatusEntry{
		{Identifier: "a", Directory: "d", Ran: true, Batch: 3},
		{Identifier: "b", Directory: "d"},
		{Identifier: "c", Ran: true, Batch: 1, Missing: true},
	})

	assert.Equal(t, []StatusRow{
		{Migration: "a", Status: "ran", Batch: 3, Directory: "d"},
		{Migration: "b", Status: "pending", Directory: "d"},
		{Migration: "c", Status: "missing", Batch: 1},
	}, report.Migrations)
}
