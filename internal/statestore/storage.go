package statestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"
	"time"

	"svcaudit/pkg/logging"
)

// Store provides atomic, crash-safe persistence of a single PipelineState at
// a well-known path. Save and Load are serialized by a mutex; the
// PipelineState values they read and write are not guarded — only the
// conductor mutates state, and only between phase boundaries.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore returns a Store backed by the state file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Save atomically persists state: it updates UpdatedAt, serializes to
// path+".tmp", then renames over path. On any failure mid-write the .tmp
// file is removed and the original path is left untouched.
func (s *Store) Save(state *PipelineState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state.UpdatedAt = time.Now().UTC()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal pipeline state: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write state tmp file: %w", err)
	}

	f, err := os.Open(tmpPath)
	if err == nil {
		_ = f.Sync()
		f.Close()
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename state tmp file into place: %w", err)
	}

	logging.Debug("StateStore", "checkpointed state at phase %s to %s", state.CurrentPhase, s.path)
	return nil
}

// Load reads and parses the state file. It never raises to the caller: any
// of (file missing, invalid JSON, not a JSON object, schema mismatch)
// yields (nil, nil) — the "start fresh" sentinel.
func (s *Store) Load() (*PipelineState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Debug("StateStore", "no existing state at %s, starting fresh", s.path)
			return nil, nil
		}
		return nil, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		logging.Warn("StateStore", "state file %s is not valid JSON, starting fresh", s.path)
		return nil, nil
	}

	var state PipelineState
	if err := json.Unmarshal(data, &state); err != nil {
		logging.Warn("StateStore", "state file %s could not be decoded, starting fresh", s.path)
		return nil, nil
	}

	if state.SchemaVersion != CurrentSchemaVersion {
		logging.Warn("StateStore", "state file %s has schema_version %d, expected %d, starting fresh", s.path, state.SchemaVersion, CurrentSchemaVersion)
		return nil, nil
	}

	if state.MCPHealth == nil {
		state.MCPHealth = map[string]MCPWorkerHealth{}
	}
	if state.BuilderResults == nil {
		state.BuilderResults = map[string]BuilderResult{}
	}
	if state.Scores == nil {
		state.Scores = map[string]float64{}
	}
	if state.PhaseCosts == nil {
		state.PhaseCosts = map[string]float64{}
	}

	return &state, nil
}

var findingIDPattern = regexp.MustCompile(`^FINDING-(\d+)$`)

// NextFindingID scans state.Findings for the maximum numeric suffix and
// returns the next FINDING-NNN id, zero-padded to three digits. Malformed
// existing IDs are silently ignored during the scan.
func NextFindingID(state *PipelineState) string {
	max := 0
	for _, f := range state.Findings {
		m := findingIDPattern.FindStringSubmatch(f.ID)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("FINDING-%03d", max+1)
}

// AddFinding appends f to state.Findings, assigning an id via NextFindingID
// when f.ID is empty. No deduplication is performed.
func AddFinding(state *PipelineState, f Finding) Finding {
	if f.ID == "" {
		f.ID = NextFindingID(state)
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	if f.Resolution == "" {
		f.Resolution = Open
	}
	state.Findings = append(state.Findings, f)
	return f
}
