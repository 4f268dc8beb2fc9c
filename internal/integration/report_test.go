package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"svcaudit/internal/health"
)

func TestBuildReportHealthyWhenEverythingPasses(t *testing.T) {
	healthResults := map[string]health.Result{
		"auth":  {Status: health.StatusHealthy},
		"order": {Status: health.StatusHealthy},
	}
	contractOutcomes := []ContractTestOutcome{
		{ServiceName: "auth", Passed: 10, Total: 10},
		{ServiceName: "order", Passed: 10, Total: 10},
	}
	flowResults := []FlowResult{
		{Step: "register", Passed: true},
		{Step: "login", Passed: true},
		{Step: "create_order", Passed: true},
		{Step: "read_notifications", Passed: true},
	}

	report := BuildReport(healthResults, contractOutcomes, flowResults)

	assert.Equal(t, 2, report.ServicesDeployed)
	assert.Equal(t, 2, report.ServicesHealthy)
	assert.Equal(t, 20, report.ContractTestsPassed)
	assert.Equal(t, 20, report.ContractTestsTotal)
	assert.Equal(t, 4, report.IntegrationTestsPassed)
	assert.Equal(t, 2, report.BoundaryTestsPassed)
	assert.Equal(t, 2, report.BoundaryTestsTotal)
	assert.Equal(t, 2, report.DataFlowTestsPassed)
	assert.Equal(t, 2, report.DataFlowTestsTotal)
	assert.Equal(t, "healthy", report.OverallHealth)
}

func TestBuildReportDegradedWhenServiceUnhealthy(t *testing.T) {
	healthResults := map[string]health.Result{
		"auth": {Status: health.StatusUnhealthy},
	}

	report := BuildReport(healthResults, nil, nil)
	assert.Equal(t, "degraded", report.OverallHealth)
}

func TestBuildReportDegradedWhenFlowStepFails(t *testing.T) {
	healthResults := map[string]health.Result{"auth": {Status: health.StatusHealthy}}
	flowResults := []FlowResult{
		{Step: "register", Passed: true},
		{Step: "login", Passed: false},
	}

	report := BuildReport(healthResults, nil, flowResults)
	assert.Equal(t, "degraded", report.OverallHealth)
	assert.Equal(t, 1, report.BoundaryTestsPassed)
	assert.Equal(t, 2, report.BoundaryTestsTotal)
}
