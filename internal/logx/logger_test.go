package logx

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/getpup/modular"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ modular.Logger = (*Adapter)(nil)

func TestNew_InvalidLevel(t *testing.T) {
	_, _, err := New(LoggingConfig{Level: "loud"}, nil, nil)

	assert.Error(t, err)
}

func TestNew_FileLogging(t *testing.T) {
	dir := t.TempDir()
	logger, closeLog, err := New(LoggingConfig{
		Level:       "info",
		FileLogging: true,
		Directory:   dir,
		Filename:    "modular.log",
		MaxSize:     1,
	}, nil, map[string]string{"runId": "run-1"})
	require.NoError(t, err)

	adapter := NewAdapter(logger)
	adapter.Debug(context.Background(), "hidden")
	adapter.Info(context.Background(), "migration applied", "migration", "2024_01_01_000000_a", "batch", 3)
	require.NoError(t, closeLog())

	content, err := os.ReadFile(filepath.Join(dir, "modular.log"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 1, "debug entries are below the configured level")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "migration applied", entry["message"])
	assert.Equal(t, "2024_01_01_000000_a", entry["migration"])
	assert.Equal(t, float64(3), entry["batch"])
	assert.Equal(t, "run-1", entry["runId"])
}

func TestNew_ConsoleLogging(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(LoggingConfig{Level: "debug", ConsoleLogging: true}, &buf, nil)
	require.NoError(t, err)

	NewAdapter(logger).Error(context.Background(), "migration failed", "migration", "x")

	assert.Contains(t, buf.String(), "migration failed")
	assert.Contains(t, buf.String(), "migration=")
}

func TestNew_NoOutputs(t *testing.T) {
	var buf bytes.Buffer
	logger, closeLog, err := New(LoggingConfig{Level: "debug"}, &buf, nil)
	require.NoError(t, err)

	NewAdapter(logger).Info(context.Background(), "dropped")

	assert.Empty(t, buf.String())
	assert.NoError(t, closeLog())
}
