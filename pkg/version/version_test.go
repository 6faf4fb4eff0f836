package version

import (
	"encoding/json"
	"testing"

	"github.com/joomcode/errorx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumber(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "v1.4"
	assert.Equal(t, "1.4.0", Number())

	Version = "dev"
	assert.Equal(t, "dev", Number())
}

func TestInfo_Format(t *testing.T) {
	info := Info{Number: "1.2.3", Commit: "abc123", GoVersion: "go1.24.11"}

	text, err := info.Format("text")
	require.NoError(t, err)
	assert.Equal(t, "modular 1.2.3 (commit abc123, go1.24.11)\n", text)

	out, err := info.Format("json")
	require.NoError(t, err)
	var decoded Info
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, info, decoded)

	out, err = info.Format("yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "version: 1.2.3")
	assert.Contains(t, out, "commit: abc123")

	_, err = info.Format("xml")
	assert.True(t, errorx.IsOfType(err, errorx.IllegalFormat))
}
