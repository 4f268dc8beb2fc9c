package statestore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	store := NewStore(path)

	state := NewPipelineState("run-abc123", time.Now().UTC().Truncate(time.Second))
	state.CurrentPhase = PhaseBuild
	state.CompletedPhases = []string{PhaseHealthCheck, PhaseMCPSmoke}
	AddFinding(state, Finding{Priority: P1, System: "Build1", Component: "auth/main.py", Evidence: "500 on /login", Recommendation: "add handler"})
	state.BuilderResults["auth"] = BuilderResult{ServiceName: "auth", Success: true, TestPassed: 4, TestTotal: 5}
	state.Scores["build1"] = 82.5
	state.AggregateScore = 71.0
	state.TrafficLight = Yellow
	state.TotalCost = 1.23
	state.PhaseCosts[PhaseBuild] = 0.45

	require.NoError(t, store.Save(state))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)

	// UpdatedAt is set by Save itself, so compare it separately and copy the
	// saved value over it before the deep-equality check on everything else.
	assert.WithinDuration(t, time.Now().UTC(), loaded.UpdatedAt, 5*time.Second)
	loaded.UpdatedAt = state.UpdatedAt

	if diff := cmp.Diff(state, loaded); diff != "" {
		t.Errorf("state round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFileReturnsFreshSentinel(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "does-not-exist.json"))

	state, err := store.Load()
	assert.NoError(t, err)
	assert.Nil(t, state)
}

func TestLoadCorruptJSONReturnsFreshSentinel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not valid json"), 0644))

	store := NewStore(path)
	state, err := store.Load()
	assert.NoError(t, err)
	assert.Nil(t, state)
}

func TestLoadNonObjectJSONReturnsFreshSentinel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`["just", "an", "array"]`), 0644))

	store := NewStore(path)
	state, err := store.Load()
	assert.NoError(t, err)
	assert.Nil(t, state)
}

func TestLoadSchemaVersionMismatchReturnsFreshSentinel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"schema_version": 999, "run_id": "x"}`), 0644))

	store := NewStore(path)
	state, err := store.Load()
	assert.NoError(t, err)
	assert.Nil(t, state)
}

func TestSaveLeavesOriginalUntouchedOnTmpFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	store := NewStore(path)

	original := NewPipelineState("run-original", time.Now().UTC())
	require.NoError(t, store.Save(original))

	// Make the directory read-only so the .tmp write fails, simulating a
	// crash between the tmp-write and the rename.
	require.NoError(t, os.Chmod(dir, 0555))
	defer os.Chmod(dir, 0755)

	broken := NewPipelineState("run-broken", time.Now().UTC())
	err := store.Save(broken)
	assert.Error(t, err)

	os.Chmod(dir, 0755)
	_, statErr := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(statErr), "expected .tmp file to be cleaned up")

	loaded, loadErr := store.Load()
	require.NoError(t, loadErr)
	require.NotNil(t, loaded)
	assert.Equal(t, "run-original", loaded.RunID)
}

func TestNextFindingIDIsMonotonicAndDense(t *testing.T) {
	state := NewPipelineState("run-x", time.Now())

	for i := 1; i <= 5; i++ {
		f := AddFinding(state, Finding{Priority: P2, System: "Integration", Component: "c"})
		assert.Equal(t, i, indexFromID(t, f.ID))
	}
}

func TestNextFindingIDIgnoresMalformedExistingIDs(t *testing.T) {
	state := NewPipelineState("run-x", time.Now())
	state.Findings = append(state.Findings, Finding{ID: "not-a-finding-id"})
	state.Findings = append(state.Findings, Finding{ID: "FINDING-007"})

	assert.Equal(t, "FINDING-008", NextFindingID(state))
}

func indexFromID(t *testing.T, id string) int {
	t.Helper()
	m := findingIDPattern.FindStringSubmatch(id)
	require.NotNil(t, m, "id %q does not match FINDING-NNN", id)
	n := 0
	for _, c := range m[1] {
		n = n*10 + int(c-'0')
	}
	return n
}
