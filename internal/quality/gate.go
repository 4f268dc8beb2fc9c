package quality

import (
	"fmt"

	"svcaudit/internal/statestore"
)

// GoodEnoughThresholds are the fixed constants the good-enough gate checks
// every run against. Exposed as a var so a pipeline config override could
// plug in, though no component currently does.
var GoodEnoughThresholds = struct {
	MinAggregate          float64
	MinPerServiceScore    float64
	MinIntegrationScore   float64
	MaxOpenP1             int
	MinTestPassRate       float64
	MinMCPToolCoverage    float64
	MinFixConvergence     float64
}{
	MinAggregate:        65,
	MinPerServiceScore:  60,
	MinIntegrationScore: 50,
	MaxOpenP1:           3,
	MinTestPassRate:     0.85,
	MinMCPToolCoverage:  0.90,
	MinFixConvergence:   0.70,
}

// GoodEnoughInputs are the additional run-wide facts the gate needs beyond
// the scores already computed: open finding counts and the two ratios that
// aren't implied by ServiceMetrics/IntegrationMetrics alone.
type GoodEnoughInputs struct {
	OpenP0Count      int
	OpenP1Count      int
	TestPassRate     float64
	MCPToolCoverage  float64
	FixConvergence   float64
}

// Evaluate runs the good-enough gate: a run is good-enough iff every one of
// the eight conditions holds. When it doesn't, every failing condition is
// reported, not just the first.
func Evaluate(aggregate float64, serviceScores []ServiceScore, integrationScore float64, in GoodEnoughInputs) (bool, []string) {
	var reasons []string

	if aggregate < GoodEnoughThresholds.MinAggregate {
		reasons = append(reasons, fmt.Sprintf("aggregate %.1f below floor %.1f", aggregate, GoodEnoughThresholds.MinAggregate))
	}
	for _, s := range serviceScores {
		if s.Score < GoodEnoughThresholds.MinPerServiceScore {
			reasons = append(reasons, fmt.Sprintf("service %s score %.1f below floor %.1f", s.ServiceName, s.Score, GoodEnoughThresholds.MinPerServiceScore))
		}
	}
	if integrationScore < GoodEnoughThresholds.MinIntegrationScore {
		reasons = append(reasons, fmt.Sprintf("integration score %.1f below floor %.1f", integrationScore, GoodEnoughThresholds.MinIntegrationScore))
	}
	if in.OpenP0Count != 0 {
		reasons = append(reasons, fmt.Sprintf("%d open P0 findings remain", in.OpenP0Count))
	}
	if in.OpenP1Count > GoodEnoughThresholds.MaxOpenP1 {
		reasons = append(reasons, fmt.Sprintf("%d open P1 findings exceeds ceiling %d", in.OpenP1Count, GoodEnoughThresholds.MaxOpenP1))
	}
	if in.TestPassRate < GoodEnoughThresholds.MinTestPassRate {
		reasons = append(reasons, fmt.Sprintf("test pass rate %.2f below floor %.2f", in.TestPassRate, GoodEnoughThresholds.MinTestPassRate))
	}
	if in.MCPToolCoverage < GoodEnoughThresholds.MinMCPToolCoverage {
		reasons = append(reasons, fmt.Sprintf("MCP tool coverage %.2f below floor %.2f", in.MCPToolCoverage, GoodEnoughThresholds.MinMCPToolCoverage))
	}
	if in.FixConvergence < GoodEnoughThresholds.MinFixConvergence {
		reasons = append(reasons, fmt.Sprintf("fix convergence %.2f below floor %.2f", in.FixConvergence, GoodEnoughThresholds.MinFixConvergence))
	}

	return len(reasons) == 0, reasons
}

// ViolationsToFindings converts code-quality and static-analysis violations
// into Findings ready for the catalog, mapping severity to priority.
func ViolationsToFindings(violations []statestore.ContractViolation) []statestore.Finding {
	findings := make([]statestore.Finding, 0, len(violations))
	for _, v := range violations {
		findings = append(findings, statestore.Finding{
			Priority:       PriorityForSeverity(v.NormalizedSeverity()),
			System:         v.Service,
			Component:      v.Endpoint,
			Evidence:       v.Message,
			Recommendation: recommendationFor(v.Code),
			Resolution:     statestore.Open,
		})
	}
	return findings
}

func recommendationFor(code string) string {
	switch RuleCode(code) {
	case RuleSecScan001:
		return "remove hardcoded secret and load it from environment/config instead"
	case RuleCORS001:
		return "restrict CORS origin to an explicit allowlist"
	case RuleLog001:
		return "replace print statements with structured logging"
	case RuleLog002:
		return "add request-logging middleware to the route"
	case RuleDocker001:
		return "add a HEALTHCHECK directive to the service Dockerfile"
	case RuleDocker002:
		return "pin the base image to a specific tag instead of :latest"
	case RuleDead001:
		return "remove the unconsumed event or add a consumer"
	case RuleDead002:
		return "validate the registered contract or remove it"
	case RuleOrphan001:
		return "add a proxy route for the orphaned service or remove it from the manifest"
	case RuleName001:
		return "reconcile the service name across manifest, code, and contracts"
	default:
		return "review and resolve the reported violation"
	}
}
