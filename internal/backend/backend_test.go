package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectDisabledAlwaysSubprocess(t *testing.T) {
	kind, err := Select(Config{Enabled: false}, true)
	require.NoError(t, err)
	assert.Equal(t, Subprocess, kind)

	kind, err = Select(Config{Enabled: false}, false)
	require.NoError(t, err)
	assert.Equal(t, Subprocess, kind)
}

func TestSelectEnabledAndCLIAvailableUsesAgent(t *testing.T) {
	kind, err := Select(Config{Enabled: true}, true)
	require.NoError(t, err)
	assert.Equal(t, Agent, kind)
}

func TestSelectEnabledNoCLIFallsBackWithWarning(t *testing.T) {
	kind, err := Select(Config{Enabled: true, FallbackToCLI: true}, false)
	require.NoError(t, err)
	assert.Equal(t, Subprocess, kind)
}

func TestSelectEnabledNoCLINoFallbackIsHardError(t *testing.T) {
	_, err := Select(Config{Enabled: true, FallbackToCLI: false}, false)
	assert.Error(t, err)
}

func TestExecuteWaveEmitsOrderedLifecycleTrail(t *testing.T) {
	tasks := []Task{{ServiceName: "auth", Depth: "full"}, {ServiceName: "order", Depth: "full"}}
	trail := ExecuteWave(tasks)

	require.Len(t, trail, 8)
	assert.Equal(t, EventCreate, trail[0].Kind)
	assert.Equal(t, TaskPending, trail[0].Status)
	assert.Equal(t, TaskCompleted, trail[3].Status)
	assert.Equal(t, "order", trail[4].ServiceName)
	assert.Equal(t, TaskCompleted, trail[7].Status)
}
