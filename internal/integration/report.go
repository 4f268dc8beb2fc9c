package integration

import (
	"svcaudit/internal/health"
)

// BuildReport assembles the IntegrationReport consumed by the quality
// gate's integration score from the three independent activities this
// package drives: health probing, contract testing, and the scripted flow.
//
// The scripted flow's first two steps (register, login) exercise the auth
// boundary; the last two (create_order, read_notifications) exercise data
// flowing across the order and notification services. That split is what
// feeds boundary_tests vs data_flow_tests below.
func BuildReport(healthResults map[string]health.Result, contractOutcomes []ContractTestOutcome, flowResults []FlowResult) IntegrationReport {
	report := IntegrationReport{
		ServicesDeployed: len(healthResults),
	}

	for _, r := range healthResults {
		if r.Status == health.StatusHealthy {
			report.ServicesHealthy++
		}
	}

	for _, outcome := range contractOutcomes {
		report.ContractTestsPassed += outcome.Passed
		report.ContractTestsTotal += outcome.Total
	}
	report.Violations = append(report.Violations, aggregateViolations(contractOutcomes)...)

	report.IntegrationTestsPassed, report.IntegrationTestsTotal = CountFlowPassed(flowResults)

	for _, r := range flowResults {
		switch r.Step {
		case "register", "login":
			report.BoundaryTestsTotal++
			if r.Passed {
				report.BoundaryTestsPassed++
			}
		case "create_order", "read_notifications":
			report.DataFlowTestsTotal++
			if r.Passed {
				report.DataFlowTestsPassed++
			}
		}
	}

	report.OverallHealth = overallHealth(report)
	return report
}

func overallHealth(r IntegrationReport) string {
	if r.ServicesDeployed == 0 || r.ServicesHealthy < r.ServicesDeployed {
		return "degraded"
	}
	if r.ContractTestsTotal > 0 && r.ContractTestsPassed < r.ContractTestsTotal {
		return "degraded"
	}
	if r.IntegrationTestsTotal > 0 && r.IntegrationTestsPassed < r.IntegrationTestsTotal {
		return "degraded"
	}
	return "healthy"
}
