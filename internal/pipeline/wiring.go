package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"svcaudit/internal/backend"
	"svcaudit/internal/builder"
	"svcaudit/internal/compose"
	"svcaudit/internal/config"
	"svcaudit/internal/fixloop"
	"svcaudit/internal/health"
	"svcaudit/internal/integration"
	"svcaudit/internal/mcpclient"
	"svcaudit/internal/quality"
	"svcaudit/internal/statestore"
	"svcaudit/pkg/logging"
)

// Runtime holds the cross-phase, non-persisted working data the default
// phase implementations thread between each other: the decomposed service
// map, generated compose manifests, and anything else derived during a run
// that PipelineState's fixed schema has no field for. Only PipelineState is
// persisted; Runtime starts empty on every process start, including resumes.
// No phase re-derives it from state or disk, so a resumed run that skips
// decompose reaches the later phases with no ServiceEndpoints.
type Runtime struct {
	Config *config.PipelineConfig

	ServiceMap       map[string]interface{}
	ServiceEndpoints []integration.ServiceEndpoint
	ComposeManifests []string

	// Tester is the external property-testing tool client. Nil means
	// contract testing is skipped for this run, e.g. in environments where
	// the tool isn't deployed.
	Tester integration.PropertyTester

	lastReport *integration.IntegrationReport
}

func (rt *Runtime) propertyTester() integration.PropertyTester {
	return rt.Tester
}

// DefaultPhases wires every named phase to the production components in
// internal/health, internal/mcpclient, internal/builder, internal/compose,
// internal/integration, internal/quality, and internal/fixloop.
func DefaultPhases(rt *Runtime) map[string]PhaseFunc {
	return map[string]PhaseFunc{
		statestore.PhaseHealthCheck:      rt.healthCheckPhase,
		statestore.PhaseMCPSmoke:         rt.mcpSmokePhase,
		statestore.PhaseDecompose:        rt.decomposePhase,
		statestore.PhaseContractRegister: rt.contractRegisterPhase,
		statestore.PhaseBuild:            rt.buildPhase,
		statestore.PhaseDeployAndTest:    rt.deployAndTestPhase,
		statestore.PhaseQualityGate:      rt.qualityGatePhase,
	}
}

func (rt *Runtime) healthCheckPhase(ctx context.Context, state *statestore.PipelineState) (float64, error) {
	if len(rt.Config.InfraHealthEndpoints) == 0 {
		return 0, nil
	}
	results, err := health.PollUntilHealthy(ctx, rt.Config.InfraHealthEndpoints,
		rt.Config.HealthPollTimeout, rt.Config.HealthPollInterval, health.DefaultRequiredConsecutive)
	if err != nil {
		return 0, fmt.Errorf("infrastructure health check failed: %w", err)
	}
	for name, r := range results {
		if r.Status != health.StatusHealthy {
			return 0, fmt.Errorf("infrastructure endpoint %s never became healthy", name)
		}
	}
	return 0, nil
}

func (rt *Runtime) mcpSmokePhase(ctx context.Context, state *statestore.PipelineState) (float64, error) {
	if state.MCPHealth == nil {
		state.MCPHealth = map[string]statestore.MCPWorkerHealth{}
	}

	for name, workerCfg := range rt.Config.MCPWorkers {
		spec := mcpclient.SessionSpec{Name: name, Command: workerCfg.Command, Args: workerCfg.Args, Env: workerCfg.Env}
		status, toolsCount, toolNames, errMsg := mcpclient.CheckHealth(ctx, spec, rt.Config.MCPFirstStartTimeout)
		state.MCPHealth[name] = statestore.MCPWorkerHealth{
			Status:     status,
			ToolsCount: toolsCount,
			ToolNames:  toolNames,
			Error:      errMsg,
		}
	}
	return 0, nil
}

func (rt *Runtime) decomposePhase(ctx context.Context, state *statestore.PipelineState) (float64, error) {
	prdText, err := readPRD(rt.Config.PRDPath)
	if err != nil {
		return 0, fmt.Errorf("failed to read PRD: %w", err)
	}

	workerCfg, hasWorker := rt.Config.MCPWorkers["decomposer"]
	var serviceMap map[string]interface{}

	if hasWorker {
		spec := mcpclient.SessionSpec{Name: "decomposer", Command: workerCfg.Command, Args: workerCfg.Args, Env: workerCfg.Env}
		_ = mcpclient.WithSession(ctx, spec, rt.Config.MCPStartupTimeout, func(session *mcpclient.Session) error {
			client := mcpclient.NewDecomposerClient(session, "")
			serviceMap = client.Decompose(ctx, prdText)
			return nil
		})
	}

	if len(serviceMap) == 0 || mcpclient.IsFallback(serviceMap) {
		serviceMap = mcpclient.DecomposerFallback(prdText)
	}

	services := stringsFromAny(serviceMap["services"])
	if len(services) == 0 {
		return 0, fmt.Errorf("decomposition yielded no services")
	}

	rt.ServiceMap = serviceMap
	rt.ServiceEndpoints = serviceEndpointsFor(services)
	return 0, nil
}

func (rt *Runtime) contractRegisterPhase(ctx context.Context, state *statestore.PipelineState) (float64, error) {
	workerCfg, hasWorker := rt.Config.MCPWorkers["contract"]
	if !hasWorker {
		return 0, nil
	}

	spec := mcpclient.SessionSpec{Name: "contract", Command: workerCfg.Command, Args: workerCfg.Args, Env: workerCfg.Env}
	return 0, mcpclient.WithSession(ctx, spec, rt.Config.MCPStartupTimeout, func(session *mcpclient.Session) error {
		client := mcpclient.NewContractClient(session)
		for _, ep := range rt.ServiceEndpoints {
			client.CreateContract(ctx, map[string]interface{}{"service_name": ep.Name})
		}
		return nil
	})
}

func (rt *Runtime) buildPhase(ctx context.Context, state *statestore.PipelineState) (float64, error) {
	if state.BuilderResults == nil {
		state.BuilderResults = map[string]statestore.BuilderResult{}
	}

	invocations := make([]builder.Invocation, 0, len(rt.ServiceEndpoints))
	for _, ep := range rt.ServiceEndpoints {
		invocations = append(invocations, builder.Invocation{
			Cwd:     filepath.Join(rt.Config.BuilderOutputDir, ep.Name),
			Depth:   rt.Config.BuilderDepth,
			Timeout: rt.Config.BuilderTimeout,
		})
	}

	results := builder.RunParallelBuilders(ctx, invocations, rt.Config.MaxConcurrentBuilders)

	var totalCost float64
	for _, r := range results {
		state.BuilderResults[r.ServiceName] = r
		totalCost += r.TotalCost
	}
	return totalCost, nil
}

func (rt *Runtime) deployAndTestPhase(ctx context.Context, state *statestore.PipelineState) (float64, error) {
	outputs := make([]compose.BuilderOutput, 0, len(rt.ServiceEndpoints))
	for _, ep := range rt.ServiceEndpoints {
		outputs = append(outputs, compose.BuilderOutput{
			ServiceName: ep.Name,
			ComposeFile: filepath.Join(rt.Config.BuilderOutputDir, ep.Name, "docker-compose.yaml"),
		})
	}

	manifestPath, err := compose.GenerateManifest(rt.Config.BuilderOutputDir, outputs)
	if err != nil {
		return 0, fmt.Errorf("failed to generate compose manifest: %w", err)
	}
	rt.ComposeManifests = []string{manifestPath}

	if err := compose.Up(ctx, rt.ComposeManifests); err != nil {
		return 0, fmt.Errorf("compose up failed: %w", err)
	}

	healthResult, err := compose.WaitHealthy(ctx, rt.ComposeManifests, rt.Config.HealthPollTimeout)
	if err != nil {
		return 0, fmt.Errorf("compose stack never became healthy: %w", err)
	}

	healthByService := map[string]health.Result{}
	for _, name := range healthResult.ServicesHealthy {
		healthByService[name] = health.Result{Status: health.StatusHealthy}
	}
	for _, name := range healthResult.Failures {
		healthByService[name] = health.Result{Status: health.StatusUnhealthy}
	}

	var contractOutcomes []integration.ContractTestOutcome
	if tester := rt.propertyTester(); tester != nil {
		contractOutcomes = integration.RunContractTests(ctx, tester, rt.ServiceEndpoints)
	}

	var flowResults []integration.FlowResult
	if len(rt.ServiceEndpoints) > 0 {
		flowResults = integration.RunFlow(ctx, httpClientForFlow(),
			registerURL(rt.ServiceEndpoints), loginURL(rt.ServiceEndpoints),
			createOrderURL(rt.ServiceEndpoints), notificationsURL(rt.ServiceEndpoints))
	}

	report := integration.BuildReport(healthByService, contractOutcomes, flowResults)
	rt.lastReport = &report

	return 0, nil
}

func (rt *Runtime) qualityGatePhase(ctx context.Context, state *statestore.PipelineState) (float64, error) {
	serviceScores := make([]quality.ServiceScore, 0, len(rt.ServiceEndpoints))
	var violations []statestore.ContractViolation

	for _, ep := range rt.ServiceEndpoints {
		result := state.BuilderResults[ep.Name]
		root := filepath.Join(rt.Config.BuilderOutputDir, ep.Name)

		codeViolations := quality.ScanCodeQuality(ep.Name, root)
		violations = append(violations, codeViolations...)

		metrics := quality.ServiceMetrics{
			ServiceName:      ep.Name,
			ReqPassRate:      result.ConvergenceRatio,
			TestPassRate:     safeRatio(result.TestPassed, result.TestTotal),
			ContractPassRate: contractPassRateFor(ep.Name, rt.lastReport),
			ViolationCount:   len(codeViolations),
			LinesOfCode:      countLines(root),
			HealthRate:       boolToFloat(result.Health == "green"),
			ArtifactsRatio:   1,
		}
		serviceScores = append(serviceScores, quality.ScoreService(metrics))
	}

	integrationScore := 0.0
	if rt.lastReport != nil {
		r := *rt.lastReport
		mcpToolsOK := 0
		for _, h := range state.MCPHealth {
			if h.Status == "healthy" {
				mcpToolsOK += h.ToolsCount
			}
		}
		integrationScore = quality.ScoreIntegration(quality.IntegrationMetrics{
			MCPToolsOK:           mcpToolsOK,
			FlowsPassing:         r.IntegrationTestsPassed,
			FlowsTotal:           r.IntegrationTestsTotal,
			CrossBuildViolations: len(r.Violations),
			PhasesComplete:       len(state.CompletedPhases),
			PhasesTotal:          len(statestore.PhaseOrder),
		})
		violations = append(violations, r.Violations...)
	}

	aggregate := quality.Aggregate(serviceScores, integrationScore)

	for _, s := range serviceScores {
		state.Scores[s.ServiceName] = s.Score
	}
	state.Scores["integration"] = integrationScore
	state.AggregateScore = aggregate
	state.TrafficLight = trafficLightFor(aggregate)

	for _, f := range quality.ViolationsToFindings(violations) {
		statestore.AddFinding(state, f)
	}

	openP0, openP1 := countOpen(state)
	good, reasons := quality.Evaluate(aggregate, serviceScores, integrationScore, quality.GoodEnoughInputs{
		OpenP0Count:     openP0,
		OpenP1Count:     openP1,
		TestPassRate:    meanTestPassRate(state),
		MCPToolCoverage: mcpToolCoverage(state),
		FixConvergence:  fixConvergence(state),
	})
	if !good {
		logging.Info(subsystem, "run not good-enough: %v", reasons)
		rt.runFixLoop(ctx, state, violations)
	}

	return 0, nil
}

func (rt *Runtime) runFixLoop(ctx context.Context, state *statestore.PipelineState, preViolations []statestore.ContractViolation) {
	affected := map[string]string{}
	for _, ep := range rt.ServiceEndpoints {
		affected[ep.Name] = filepath.Join(rt.Config.BuilderOutputDir, ep.Name)
	}

	thresholds := fixloop.Thresholds{
		EffectivenessFloor:    rt.Config.FixEffectivenessFloor,
		RegressionRateCeiling: rt.Config.RegressionCeiling,
		MaxFixPasses:          rt.Config.MaxFixPasses,
	}

	feed := func(ctx context.Context, cwd string, violations []statestore.ContractViolation) (float64, error) {
		result, err := builder.FeedViolationsToBuilder(ctx, cwd, violations, rt.Config.BuilderTimeout)
		return result.TotalCost, err
	}
	gate := func(ctx context.Context) ([]statestore.ContractViolation, int, int, error) {
		var violations []statestore.ContractViolation
		for _, ep := range rt.ServiceEndpoints {
			root := filepath.Join(rt.Config.BuilderOutputDir, ep.Name)
			violations = append(violations, quality.ScanCodeQuality(ep.Name, root)...)
		}
		openP0, openP1 := countOpen(state)
		return violations, openP0, openP1, nil
	}

	passes, err := fixloop.Iterate(ctx, thresholds, preViolations, affected, feed, gate)
	if err != nil {
		logging.Warn(subsystem, "fix loop exited with error: %v", err)
	}
	state.FixPasses = append(state.FixPasses, passes...)
}

// Select chooses the execution backend for the build phase.
func (rt *Runtime) Select(cliAvailable bool) (backend.Kind, error) {
	return backend.Select(backend.Config{
		Enabled:       rt.Config.AgentBackendEnabled,
		FallbackToCLI: rt.Config.AgentBackendFallback,
	}, cliAvailable)
}

func readPRD(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
