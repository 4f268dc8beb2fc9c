package builder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestGenerateBuilderConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	contracts := []map[string]interface{}{{"name": "auth-contract"}}

	path, err := GenerateBuilderConfig("auth", dir, "full", contracts, true)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var parsed Config
	require.NoError(t, yaml.Unmarshal(data, &parsed))

	assert.Equal(t, "build-auth", parsed.Milestone)
	assert.Equal(t, "full", parsed.Depth)
	assert.True(t, parsed.E2ETesting)
	assert.True(t, parsed.PostOrchestrationScans)
	assert.Equal(t, "auth", parsed.ServiceName)
	assert.True(t, parsed.MCP.Enabled)
	assert.Len(t, parsed.Contracts, 1)
}

func TestGenerateBuilderConfigToleratesNilContracts(t *testing.T) {
	dir := t.TempDir()
	path, err := GenerateBuilderConfig("order", dir, "quick", nil, false)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var parsed Config
	require.NoError(t, yaml.Unmarshal(data, &parsed))
	assert.Empty(t, parsed.Contracts)
	assert.False(t, parsed.MCP.Enabled)
}
