// Package fixloop drives the iterative violation-fixing loop: feed
// violations back to the builder, re-run the quality gate, measure
// effectiveness and regressions, and stop at convergence or the pass cap.
package fixloop

import (
	"svcaudit/internal/statestore"
)

const subsystem = "FixLoop"

// Thresholds are the fixed termination constants for the fix loop,
// overridable per run via PipelineConfig.
type Thresholds struct {
	EffectivenessFloor   float64
	RegressionRateCeiling float64
	MaxFixPasses         int
}

// DefaultThresholds are the fix loop's out-of-the-box termination settings.
var DefaultThresholds = Thresholds{
	EffectivenessFloor:    0.30,
	RegressionRateCeiling: 0.25,
	MaxFixPasses:          5,
}

// ClassifiedViolations buckets a violation set by severity category, the
// shape classify_violations and detect_regressions both operate on.
type ClassifiedViolations map[statestore.ViolationSeverity][]statestore.ContractViolation

// ClassifyViolations groups violations by severity bucket.
func ClassifyViolations(violations []statestore.ContractViolation) ClassifiedViolations {
	classified := ClassifiedViolations{}
	for _, v := range violations {
		sev := v.NormalizedSeverity()
		classified[sev] = append(classified[sev], v)
	}
	return classified
}

// Regression is one violation present after a pass that was absent before
// it, in the same category.
type Regression struct {
	Category  statestore.ViolationSeverity
	Violation statestore.ContractViolation
}

// DetectRegressions returns every violation in after[category] that was
// absent from before[category], identity keyed on (code, service, endpoint)
// since a fresh violation carries no stable ID.
func DetectRegressions(before, after ClassifiedViolations) []Regression {
	var regressions []Regression
	for category, afterViolations := range after {
		beforeKeys := violationKeySet(before[category])
		for _, v := range afterViolations {
			if !beforeKeys[violationKey(v)] {
				regressions = append(regressions, Regression{Category: category, Violation: v})
			}
		}
	}
	return regressions
}

func violationKey(v statestore.ContractViolation) string {
	return v.Code + "|" + v.Service + "|" + v.Endpoint
}

func violationKeySet(violations []statestore.ContractViolation) map[string]bool {
	set := make(map[string]bool, len(violations))
	for _, v := range violations {
		set[violationKey(v)] = true
	}
	return set
}

func totalCount(classified ClassifiedViolations) int {
	n := 0
	for _, vs := range classified {
		n += len(vs)
	}
	return n
}

// Effectiveness computes (|pre| - |post|) / max(1, |pre|).
func Effectiveness(pre, post int) float64 {
	denom := pre
	if denom < 1 {
		denom = 1
	}
	return float64(pre-post) / float64(denom)
}

// RegressionRate computes |regressions| / max(1, |pre|).
func RegressionRate(regressionCount, pre int) float64 {
	denom := pre
	if denom < 1 {
		denom = 1
	}
	return float64(regressionCount) / float64(denom)
}

// ShouldTerminate evaluates the four termination conditions: any one
// holding stops the loop.
func ShouldTerminate(t Thresholds, effectiveness, regressionRate float64, passNumber int, openP0, openP1 int) bool {
	if effectiveness < t.EffectivenessFloor {
		return true
	}
	if regressionRate > t.RegressionRateCeiling {
		return true
	}
	if passNumber >= t.MaxFixPasses {
		return true
	}
	if openP0 == 0 && openP1 == 0 {
		return true
	}
	return false
}
