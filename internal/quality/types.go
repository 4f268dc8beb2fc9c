// Package quality evaluates the four-layer quality gate:
// builder results, integration results, code-quality rule scans, and
// cross-service static analysis, aggregated into per-service and overall
// scores, a traffic-light verdict, and a "good-enough" boolean gate.
package quality

import "svcaudit/internal/statestore"

// RuleCode identifies one fixed code-quality or static-analysis rule.
type RuleCode string

const (
	RuleSecScan001 RuleCode = "SEC-SCAN-001"
	RuleCORS001    RuleCode = "CORS-001"
	RuleLog001     RuleCode = "LOG-001"
	RuleLog002     RuleCode = "LOG-002"
	RuleDocker001  RuleCode = "DOCKER-001"
	RuleDocker002  RuleCode = "DOCKER-002"
	RuleDead001    RuleCode = "DEAD-001"
	RuleDead002    RuleCode = "DEAD-002"
	RuleOrphan001  RuleCode = "ORPHAN-001"
	RuleName001    RuleCode = "NAME-001"
)

// severityForRule maps each fixed rule to the severity it always reports at.
var severityForRule = map[RuleCode]statestore.ViolationSeverity{
	RuleSecScan001: statestore.SeverityCritical,
	RuleCORS001:    statestore.SeverityError,
	RuleLog001:     statestore.SeverityWarning,
	RuleLog002:     statestore.SeverityWarning,
	RuleDocker001:  statestore.SeverityError,
	RuleDocker002:  statestore.SeverityWarning,
	RuleDead001:    statestore.SeverityWarning,
	RuleDead002:    statestore.SeverityWarning,
	RuleOrphan001:  statestore.SeverityError,
	RuleName001:    statestore.SeverityError,
}

// PriorityForSeverity maps a ContractViolation severity to a Finding
// priority: critical -> P0, error -> P1, warning -> P2, info -> P3.
func PriorityForSeverity(sev statestore.ViolationSeverity) statestore.FindingPriority {
	switch sev {
	case statestore.SeverityCritical:
		return statestore.P0
	case statestore.SeverityError:
		return statestore.P1
	case statestore.SeverityWarning:
		return statestore.P2
	default:
		return statestore.P3
	}
}

// ServiceMetrics is the per-service input to the scoring formula, gathered
// from a BuilderResult plus the generated source tree.
type ServiceMetrics struct {
	ServiceName      string
	ReqPassRate      float64 // requirements coverage, from BuilderResult
	TestPassRate     float64 // test pass rate, from BuilderResult
	ContractPassRate float64 // from the integration tester's compliance ratio
	ViolationCount   int
	LinesOfCode      int
	HealthRate       float64 // fraction of health polls that succeeded
	ArtifactsRatio   float64 // artifacts registered / artifacts expected
}

// ServiceScore is the per-service Layer 1 scoring result.
type ServiceScore struct {
	ServiceName string
	Score       float64
	Light       statestore.TrafficLight
}

// IntegrationMetrics is the Layer 2 input to the integration score formula.
type IntegrationMetrics struct {
	MCPToolsOK           int
	MCPToolsTotal        int
	FlowsPassing         int
	FlowsTotal           int
	CrossBuildViolations int
	PhasesComplete       int
	PhasesTotal          int
}

// GateResult is the full output of the quality gate: per-service scores,
// the integration score, the aggregate, its traffic light, every violation
// found across layers 3 and 4, and the good-enough verdict.
type GateResult struct {
	ServiceScores     []ServiceScore
	IntegrationScore  float64
	Aggregate         float64
	Light             statestore.TrafficLight
	Violations        []statestore.ContractViolation
	GoodEnough        bool
	GoodEnoughReasons []string // populated only when GoodEnough is false
}

func safeDiv(numerator, denominator float64) float64 {
	if denominator == 0 {
		denominator = 1
	}
	return numerator / denominator
}
