package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"svcaudit/internal/statestore"
)

func TestScoreServicePerfectInputsYieldsGreen(t *testing.T) {
	score := ScoreService(ServiceMetrics{
		ServiceName:      "auth",
		ReqPassRate:      1,
		TestPassRate:     1,
		ContractPassRate: 1,
		ViolationCount:   0,
		LinesOfCode:      1000,
		HealthRate:       1,
		ArtifactsRatio:   1,
	})

	assert.InDelta(t, 100, score.Score, 0.001)
	assert.Equal(t, statestore.Green, score.Light)
}

func TestScoreServiceZeroLoCDoesNotDivideByZero(t *testing.T) {
	score := ScoreService(ServiceMetrics{ServiceName: "auth", ViolationCount: 5, LinesOfCode: 0})
	assert.False(t, score.Score < 0)
}

func TestScoreServiceHighViolationDensityFloorsAtZero(t *testing.T) {
	score := ScoreService(ServiceMetrics{ServiceName: "auth", ViolationCount: 1000, LinesOfCode: 1000})
	assert.Equal(t, statestore.Red, score.Light)
}

func TestScoreIntegrationFullCoverage(t *testing.T) {
	got := ScoreIntegration(IntegrationMetrics{
		MCPToolsOK: 20, MCPToolsTotal: 20,
		FlowsPassing: 4, FlowsTotal: 4,
		CrossBuildViolations: 0,
		PhasesComplete:       7, PhasesTotal: 7,
	})
	assert.InDelta(t, 100, got, 0.001)
}

func TestScoreIntegrationZeroFlowsTotalDoesNotDivideByZero(t *testing.T) {
	got := ScoreIntegration(IntegrationMetrics{FlowsTotal: 0})
	assert.False(t, got < 0)
}

func TestAggregateGeneralizesThreeServiceFormula(t *testing.T) {
	scores := []ServiceScore{{Score: 90}, {Score: 80}, {Score: 70}}
	got := Aggregate(scores, 100)
	assert.InDelta(t, 0.8*80+0.2*100, got, 0.001)
}

func TestAggregateNoServicesOnlyIntegration(t *testing.T) {
	got := Aggregate(nil, 50)
	assert.InDelta(t, 10, got, 0.001)
}
