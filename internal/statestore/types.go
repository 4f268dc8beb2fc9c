// Package statestore persists the pipeline's single mutable PipelineState
// record and maintains the append-only finding catalog threaded through it.
package statestore

import "time"

// CurrentSchemaVersion is the schema_version written by this build. A state
// file whose schema_version does not match this value is treated as absent
// by Load.
const CurrentSchemaVersion = 1

// Phase names, in conductor execution order.
const (
	PhaseInit             = "init"
	PhaseHealthCheck       = "health_check"
	PhaseMCPSmoke          = "mcp_smoke"
	PhaseDecompose         = "decompose"
	PhaseContractRegister  = "contract_register"
	PhaseBuild             = "build"
	PhaseDeployAndTest     = "deploy_and_test"
	PhaseQualityGate       = "quality_gate"
)

// PhaseOrder is the fixed forward sequence the conductor executes.
var PhaseOrder = []string{
	PhaseHealthCheck,
	PhaseMCPSmoke,
	PhaseDecompose,
	PhaseContractRegister,
	PhaseBuild,
	PhaseDeployAndTest,
	PhaseQualityGate,
}

// TrafficLight is the three-valued aggregate verdict.
type TrafficLight string

const (
	Red    TrafficLight = "RED"
	Yellow TrafficLight = "YELLOW"
	Green  TrafficLight = "GREEN"
)

// FindingPriority is the urgency bucket assigned to a Finding.
type FindingPriority string

const (
	P0 FindingPriority = "P0"
	P1 FindingPriority = "P1"
	P2 FindingPriority = "P2"
	P3 FindingPriority = "P3"
)

// FindingResolution is a Finding's lifecycle state.
type FindingResolution string

const (
	Open    FindingResolution = "OPEN"
	Fixed   FindingResolution = "FIXED"
	Wontfix FindingResolution = "WONTFIX"
)

// Finding is one persistent defect record. IDs are dense and strictly
// increasing within a run; see NextFindingID.
type Finding struct {
	ID              string            `json:"id"`
	Priority        FindingPriority   `json:"priority"`
	System          string            `json:"system"`
	Component       string            `json:"component"`
	Evidence        string            `json:"evidence"`
	Recommendation  string            `json:"recommendation"`
	Resolution      FindingResolution `json:"resolution"`
	FixPassNumber   int               `json:"fix_pass_number"`
	FixVerification string            `json:"fix_verification"`
	CreatedAt       time.Time         `json:"created_at"`
}

// BuilderResult is the single, unified result type for a builder invocation —
// it serves both as the process-invocation result and the value stored in
// PipelineState.BuilderResults. See DESIGN.md for why two record types were
// collapsed into one.
type BuilderResult struct {
	ServiceName      string   `json:"service_name"`
	Success          bool     `json:"success"`
	TestPassed       int      `json:"test_passed"`
	TestTotal        int      `json:"test_total"`
	ConvergenceRatio float64  `json:"convergence_ratio"`
	TotalCost        float64  `json:"total_cost"`
	Health           string   `json:"health"` // green|yellow|red|unknown
	CompletedPhases  []string `json:"completed_phases"`
	ExitCode         int      `json:"exit_code"` // -1 if never ran or killed
	Stdout           string   `json:"stdout"`
	Stderr           string   `json:"stderr"`
	DurationS        float64  `json:"duration_s"`
}

// ViolationSeverity buckets a ContractViolation for the fix loop.
type ViolationSeverity string

const (
	SeverityCritical ViolationSeverity = "critical"
	SeverityError    ViolationSeverity = "error"
	SeverityWarning  ViolationSeverity = "warning"
	SeverityInfo     ViolationSeverity = "info"
)

// ContractViolation is one classification record from the quality gate.
type ContractViolation struct {
	Code       string            `json:"code"`
	Severity   ViolationSeverity `json:"severity"`
	Service    string            `json:"service"`
	Endpoint   string            `json:"endpoint,omitempty"`
	Message    string            `json:"message"`
	Expected   string            `json:"expected,omitempty"`
	Actual     string            `json:"actual,omitempty"`
	FilePath   string            `json:"file_path,omitempty"`
}

// NormalizedSeverity returns Severity, defaulting unknown values to error.
func (v ContractViolation) NormalizedSeverity() ViolationSeverity {
	switch v.Severity {
	case SeverityCritical, SeverityError, SeverityWarning, SeverityInfo:
		return v.Severity
	default:
		return SeverityError
	}
}

// FixPassSummary records the outcome of one fix-loop iteration.
type FixPassSummary struct {
	PassNumber     int     `json:"pass_number"`
	Fixed          int     `json:"fixed"`
	Remaining      int     `json:"remaining"`
	Regressions    int     `json:"regressions"`
	Effectiveness  float64 `json:"effectiveness"`
	RegressionRate float64 `json:"regression_rate"`
	CostDelta      float64 `json:"cost_delta"`
}

// MCPWorkerHealth is the per-worker health record stored under
// PipelineState.MCPHealth.
type MCPWorkerHealth struct {
	Status     string   `json:"status"` // healthy|unhealthy
	ToolsCount int      `json:"tools_count"`
	ToolNames  []string `json:"tool_names"`
	Error      string   `json:"error,omitempty"`
}

// PipelineState is the one mutable record threaded through every phase.
type PipelineState struct {
	SchemaVersion   int                        `json:"schema_version"`
	RunID           string                     `json:"run_id"`
	CurrentPhase    string                     `json:"current_phase"`
	CompletedPhases []string                   `json:"completed_phases"`
	MCPHealth       map[string]MCPWorkerHealth `json:"mcp_health"`
	BuilderResults  map[string]BuilderResult   `json:"builder_results"`
	Findings        []Finding                  `json:"findings"`
	FixPasses       []FixPassSummary           `json:"fix_passes"`
	Scores          map[string]float64         `json:"scores"`
	AggregateScore  float64                    `json:"aggregate_score"`
	TrafficLight    TrafficLight               `json:"traffic_light"`
	TotalCost       float64                    `json:"total_cost"`
	PhaseCosts      map[string]float64         `json:"phase_costs"`
	StartedAt       time.Time                  `json:"started_at"`
	UpdatedAt       time.Time                  `json:"updated_at"`
}

// NewPipelineState returns a fresh state for a new run, with runID already
// assigned and all maps initialized so callers never need nil checks.
func NewPipelineState(runID string, now time.Time) *PipelineState {
	return &PipelineState{
		SchemaVersion:   CurrentSchemaVersion,
		RunID:           runID,
		CurrentPhase:    PhaseInit,
		CompletedPhases: []string{},
		MCPHealth:       map[string]MCPWorkerHealth{},
		BuilderResults:  map[string]BuilderResult{},
		Findings:        []Finding{},
		FixPasses:       []FixPassSummary{},
		Scores:          map[string]float64{},
		TrafficLight:    Red,
		PhaseCosts:      map[string]float64{},
		StartedAt:       now,
		UpdatedAt:       now,
	}
}

// IsPhaseCompleted reports whether phase is in CompletedPhases.
func (s *PipelineState) IsPhaseCompleted(phase string) bool {
	for _, p := range s.CompletedPhases {
		if p == phase {
			return true
		}
	}
	return false
}
