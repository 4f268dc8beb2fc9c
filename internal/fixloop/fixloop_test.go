package fixloop

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"svcaudit/internal/statestore"
)

func TestClassifyViolationsGroupsBySeverity(t *testing.T) {
	classified := ClassifyViolations([]statestore.ContractViolation{
		{Code: "A", Severity: statestore.SeverityCritical},
		{Code: "B", Severity: statestore.SeverityWarning},
		{Code: "C", Severity: statestore.SeverityCritical},
	})
	assert.Len(t, classified[statestore.SeverityCritical], 2)
	assert.Len(t, classified[statestore.SeverityWarning], 1)
}

func TestDetectRegressionsFindsNewViolationsSameCategory(t *testing.T) {
	before := ClassifiedViolations{
		statestore.SeverityError: {{Code: "v1", Service: "auth"}, {Code: "v2", Service: "auth"}},
	}
	after := ClassifiedViolations{
		statestore.SeverityError: {{Code: "v1", Service: "auth"}, {Code: "v3", Service: "auth"}},
	}

	regressions := DetectRegressions(before, after)
	assert.Len(t, regressions, 1)
	assert.Equal(t, "v3", regressions[0].Violation.Code)
}

func TestEffectivenessAndRegressionRateGuardZeroDenominator(t *testing.T) {
	assert.InDelta(t, 0, Effectiveness(0, 0), 0.001)
	assert.InDelta(t, 0, RegressionRate(0, 0), 0.001)
}

func TestShouldTerminateOnEffectivenessFloor(t *testing.T) {
	assert.True(t, ShouldTerminate(DefaultThresholds, 0.1, 0, 1, 1, 1))
}

func TestShouldTerminateOnRegressionCeiling(t *testing.T) {
	assert.True(t, ShouldTerminate(DefaultThresholds, 0.9, 0.5, 1, 1, 1))
}

func TestShouldTerminateOnMaxPasses(t *testing.T) {
	assert.True(t, ShouldTerminate(DefaultThresholds, 0.9, 0, 5, 1, 1))
}

func TestShouldTerminateWhenNoOpenP0OrP1(t *testing.T) {
	assert.True(t, ShouldTerminate(DefaultThresholds, 0.9, 0, 1, 0, 0))
}

func TestShouldTerminateFalseWhenStillMakingProgress(t *testing.T) {
	assert.False(t, ShouldTerminate(DefaultThresholds, 0.5, 0.1, 1, 1, 1))
}

func TestThreePassConvergenceExample(t *testing.T) {
	// worked example: 10 initial violations, each pass fixes up to 4
	// without regressions -> 10->6->2->0, effectiveness 0.4, then 0.667,
	// then 1.0 once the last pass clears the remaining 2; this asserts only
	// that every pass makes positive progress, not the exact values.
	pre := 10
	for pass := 1; pass <= 3; pass++ {
		post := pre - 4
		if post < 0 {
			post = 0
		}
		eff := Effectiveness(pre, post)
		assert.Greater(t, eff, 0.0)
		pre = post
	}
}
