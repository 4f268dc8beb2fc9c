package builder

import (
	"encoding/json"
	"errors"
	"os"

	"svcaudit/internal/statestore"
)

// rawBuilderState mirrors the shape of a builder's STATE.json on disk. All
// fields are pointers/interface-typed so a missing or mistyped field
// degrades to the zero value rather than failing to unmarshal.
type rawBuilderState struct {
	Summary struct {
		Success          *bool    `json:"success"`
		TestPassed       *float64 `json:"test_passed"`
		TestTotal        *float64 `json:"test_total"`
		ConvergenceRatio *float64 `json:"convergence_ratio"`
	} `json:"summary"`
	TotalCost       *float64 `json:"total_cost"`
	Health          *string  `json:"health"`
	CompletedPhases []string `json:"completed_phases"`
}

// ParseBuilderState reads and parses cwd/.agent-team/STATE.json. This must
// never raise: a missing or corrupt file returns a zero-filled result with
// Success=false. All numeric fields are cast defensively; missing fields
// default to their zero value.
func ParseBuilderState(path string) statestore.BuilderResult {
	result := statestore.BuilderResult{Success: false, Health: "unknown", ExitCode: -1}

	data, err := os.ReadFile(path)
	if err != nil {
		return result
	}

	var raw rawBuilderState
	if err := json.Unmarshal(data, &raw); err != nil {
		// A type mismatch leaves only that field unset; Unmarshal still
		// fills every other field. Any other error means corrupt JSON.
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return result
		}
	}

	if raw.Summary.Success != nil {
		result.Success = *raw.Summary.Success
	}
	if raw.Summary.TestPassed != nil {
		result.TestPassed = int(*raw.Summary.TestPassed)
	}
	if raw.Summary.TestTotal != nil {
		result.TestTotal = int(*raw.Summary.TestTotal)
	}
	if raw.Summary.ConvergenceRatio != nil {
		result.ConvergenceRatio = *raw.Summary.ConvergenceRatio
	}
	if raw.TotalCost != nil {
		result.TotalCost = *raw.TotalCost
	}
	if raw.Health != nil && *raw.Health != "" {
		result.Health = *raw.Health
	}
	if raw.CompletedPhases != nil {
		result.CompletedPhases = raw.CompletedPhases
	} else {
		result.CompletedPhases = []string{}
	}

	return result
}
