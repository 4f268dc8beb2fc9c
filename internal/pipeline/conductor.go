// Package pipeline is the top-level phase sequencer: it owns PipelineState,
// checkpoints after every phase, accounts cost, and dispatches fatal vs.
// recoverable phase failures. It is the only component that mutates
// PipelineState, and only between phase boundaries.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"svcaudit/internal/config"
	"svcaudit/internal/quality"
	"svcaudit/internal/statestore"
	"svcaudit/pkg/logging"
)

const subsystem = "Conductor"

// fatalPhases names the phases whose failure terminates the pipeline
// outright: health check and decompose.
var fatalPhases = map[string]bool{
	statestore.PhaseHealthCheck: true,
	statestore.PhaseDecompose:   true,
}

// PhaseFunc executes one phase body. It returns the cost incurred during
// the phase and an error; a non-nil error is recorded as a Finding by the
// conductor, which decides whether to terminate based on phase fatality.
type PhaseFunc func(ctx context.Context, state *statestore.PipelineState) (cost float64, err error)

// Conductor sequences the seven fixed phases over a single PipelineState,
// checkpointing via Store after every phase.
type Conductor struct {
	Store   *statestore.Store
	Config  *config.PipelineConfig
	Phases  map[string]PhaseFunc
}

// NewConductor wires a Conductor with the given phase implementations. A
// caller that wants every phase wired to production components should use
// DefaultPhases (pipeline/wiring.go).
func NewConductor(store *statestore.Store, cfg *config.PipelineConfig, phases map[string]PhaseFunc) *Conductor {
	return &Conductor{Store: store, Config: cfg, Phases: phases}
}

// RunResult is what the conductor reports at the end of a run: aggregate
// score, traffic light, complete Finding catalog, and a good-enough
// verdict.
type RunResult struct {
	State      *statestore.PipelineState
	GoodEnough bool
	Fatal      bool
}

// Run executes every phase in PhaseOrder starting from a freshly loaded (or
// fresh-start) state, honoring resume semantics: a phase already in
// completed_phases is skipped.
func (c *Conductor) Run(ctx context.Context, runID string) (RunResult, error) {
	state, err := c.Store.Load()
	if err != nil {
		return RunResult{}, err
	}
	if state == nil {
		state = statestore.NewPipelineState(runID, time.Now())
	}
	return c.runFrom(ctx, state)
}

// Resume is identical to Run except it never constructs a fresh state: a
// missing or schema-mismatched state file is a fatal condition rather than
// a fresh start.
func (c *Conductor) Resume(ctx context.Context) (RunResult, error) {
	state, err := c.Store.Load()
	if err != nil {
		return RunResult{}, err
	}
	if state == nil {
		return RunResult{}, fmt.Errorf("no resumable state found")
	}
	return c.runFrom(ctx, state)
}

func (c *Conductor) runFrom(ctx context.Context, state *statestore.PipelineState) (RunResult, error) {
	for _, phase := range statestore.PhaseOrder {
		if state.IsPhaseCompleted(phase) {
			logging.Info(subsystem, "phase %s already completed, skipping (resume)", phase)
			continue
		}

		fn, ok := c.Phases[phase]
		if !ok {
			return RunResult{State: state}, fmt.Errorf("no implementation registered for phase %s", phase)
		}

		state.CurrentPhase = phase
		if err := c.Store.Save(state); err != nil {
			return RunResult{State: state}, fmt.Errorf("checkpoint before phase %s failed: %w", phase, err)
		}

		costBefore := state.TotalCost
		cost, phaseErr := fn(ctx, state)
		state.TotalCost += cost
		state.PhaseCosts[phase] = state.TotalCost - costBefore

		if phaseErr != nil {
			finding := statestore.AddFinding(state, statestore.Finding{
				Priority:   statestore.P0,
				System:     phase,
				Component:  "conductor",
				Evidence:   phaseErr.Error(),
				Resolution: statestore.Open,
			})
			logging.Error(subsystem, phaseErr, "phase %s failed (finding %s)", phase, finding.ID)

			if fatalPhases[phase] {
				if err := c.Store.Save(state); err != nil {
					logging.Error(subsystem, err, "failed to checkpoint after fatal phase %s", phase)
				}
				return RunResult{State: state, Fatal: true}, nil
			}
			// Non-fatal: record and continue to the next phase anyway.
		}

		if budgetErr := c.enforceBudget(state); budgetErr != nil {
			statestore.AddFinding(state, statestore.Finding{
				Priority:   statestore.P0,
				System:     phase,
				Component:  "budget",
				Evidence:   budgetErr.Error(),
				Resolution: statestore.Open,
			})
			logging.Audit(logging.AuditEvent{
				Action:  "budget_termination",
				Outcome: "terminated",
				RunID:   state.RunID,
				Target:  phase,
				Details: budgetErr.Error(),
			})
			if err := c.Store.Save(state); err != nil {
				logging.Error(subsystem, err, "failed to checkpoint after budget termination")
			}
			return RunResult{State: state, Fatal: true}, nil
		}

		if phaseErr == nil {
			state.CompletedPhases = append(state.CompletedPhases, phase)
		}
		if err := c.Store.Save(state); err != nil {
			return RunResult{State: state}, fmt.Errorf("checkpoint after phase %s failed: %w", phase, err)
		}
	}

	return RunResult{State: state, GoodEnough: GoodEnough(state)}, nil
}

// GoodEnough reports whether a checkpointed state already meets the
// good-enough bar (quality.Evaluate over the persisted scores, findings and
// fix passes), without re-running any phase. Used both at the end of a
// run and by the report command to summarize a previously completed run.
func GoodEnough(state *statestore.PipelineState) bool {
	serviceScores := make([]quality.ServiceScore, 0, len(state.Scores))
	for name, score := range state.Scores {
		if name != "integration" {
			serviceScores = append(serviceScores, quality.ServiceScore{ServiceName: name, Score: score})
		}
	}
	openP0, openP1 := countOpen(state)
	good, _ := quality.Evaluate(state.AggregateScore, serviceScores, state.Scores["integration"], quality.GoodEnoughInputs{
		OpenP0Count:     openP0,
		OpenP1Count:     openP1,
		TestPassRate:    meanTestPassRate(state),
		MCPToolCoverage: mcpToolCoverage(state),
		FixConvergence:  fixConvergence(state),
	})
	return good
}

// enforceBudget terminates early once total_cost plus a projected next-phase
// cost would exceed the configured ceiling. The projection is approximated
// by the average cost of phases completed so far, since no phase declares
// its own estimate up front.
func (c *Conductor) enforceBudget(state *statestore.PipelineState) error {
	if c.Config.MaxBudgetUSD <= 0 {
		return nil
	}
	projected := averagePhaseCost(state)
	if state.TotalCost+projected > c.Config.MaxBudgetUSD {
		return fmt.Errorf("total_cost %.2f + projected %.2f exceeds max_budget_usd %.2f",
			state.TotalCost, projected, c.Config.MaxBudgetUSD)
	}
	return nil
}

func averagePhaseCost(state *statestore.PipelineState) float64 {
	if len(state.PhaseCosts) == 0 {
		return 0
	}
	var sum float64
	for _, v := range state.PhaseCosts {
		sum += v
	}
	return sum / float64(len(state.PhaseCosts))
}

func isGoodEnoughFromState(state *statestore.PipelineState) bool {
	return state.AggregateScore >= 65 && state.TrafficLight != statestore.Red
}
