package quality

import "svcaudit/internal/statestore"

// ScoreService computes the per-service build-quality score:
//
//	30*req_pass_rate + 20*test_pass_rate + 20*contract_pass_rate +
//	max(0, 15 - 1.5*violation_density) + 10*health_rate + 5*artifacts_ratio
//
// violation_density = violations / (LoC / 1000), guarded against a
// zero LoC denominator.
func ScoreService(m ServiceMetrics) ServiceScore {
	locThousands := safeDiv(float64(m.LinesOfCode), 1000)
	violationDensity := safeDiv(float64(m.ViolationCount), locThousands)

	densityTerm := 15 - 1.5*violationDensity
	if densityTerm < 0 {
		densityTerm = 0
	}

	score := 30*m.ReqPassRate +
		20*m.TestPassRate +
		20*m.ContractPassRate +
		densityTerm +
		10*m.HealthRate +
		5*m.ArtifactsRatio

	return ServiceScore{
		ServiceName: m.ServiceName,
		Score:       score,
		Light:       trafficLight(score),
	}
}

// ScoreIntegration computes the cross-service integration score:
//
//	25*mcp_tools_ok/20 + 25*flows_passing/flows_total +
//	max(0, 25 - 2.5*cross_build_violations) + 25*phases_complete/phases_total
//
// The mcp_tools_ok term is denominated against a fixed reference count of
// 20 tools rather than against MCPToolsTotal.
func ScoreIntegration(m IntegrationMetrics) float64 {
	const referenceMCPToolCount = 20

	violationTerm := 25 - 2.5*float64(m.CrossBuildViolations)
	if violationTerm < 0 {
		violationTerm = 0
	}

	return 25*safeDiv(float64(m.MCPToolsOK), referenceMCPToolCount) +
		25*safeDiv(float64(m.FlowsPassing), float64(m.FlowsTotal)) +
		violationTerm +
		25*safeDiv(float64(m.PhasesComplete), float64(m.PhasesTotal))
}

// Aggregate combines every per-service score and the integration score into
// the overall 0-100 aggregate. The reference three-service deployment uses a
// literal 0.30*build1 + 0.25*build2 + 0.25*build3 + 0.20*integration split;
// this generalizes it to N services by dividing the fixed 0.80 builder
// weight evenly across whatever services actually ran. With three services
// each gets 0.80/3, not the 0.30/0.25/0.25 split, so the result matches the
// reference formula only when the three service scores are equal. See
// DESIGN.md.
func Aggregate(serviceScores []ServiceScore, integrationScore float64) float64 {
	if len(serviceScores) == 0 {
		return 0.20 * integrationScore
	}

	var sum float64
	for _, s := range serviceScores {
		sum += s.Score
	}
	meanServiceScore := sum / float64(len(serviceScores))

	return 0.80*meanServiceScore + 0.20*integrationScore
}

func trafficLight(score float64) statestore.TrafficLight {
	switch {
	case score >= 80:
		return statestore.Green
	case score >= 50:
		return statestore.Yellow
	default:
		return statestore.Red
	}
}
