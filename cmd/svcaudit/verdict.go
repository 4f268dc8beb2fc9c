package main

import (
	"fmt"
	"io"
	"sort"

	"svcaudit/internal/pipeline"
	"svcaudit/internal/statestore"
)

func printVerdict(w io.Writer, result pipeline.RunResult) {
	state := result.State
	fmt.Fprintf(w, "run %s: phase=%s aggregate=%.1f traffic_light=%s\n",
		state.RunID, state.CurrentPhase, state.AggregateScore, state.TrafficLight)

	if result.Fatal {
		fmt.Fprintln(w, "verdict: FATAL — pipeline terminated before completion")
	} else if result.GoodEnough {
		fmt.Fprintln(w, "verdict: GOOD ENOUGH")
	} else {
		fmt.Fprintln(w, "verdict: NOT GOOD ENOUGH")
	}

	printFindings(w, state)
}

func printFindings(w io.Writer, state *statestore.PipelineState) {
	open := make([]statestore.Finding, 0, len(state.Findings))
	for _, f := range state.Findings {
		if f.Resolution == statestore.Open {
			open = append(open, f)
		}
	}
	if len(open) == 0 {
		return
	}

	sort.Slice(open, func(i, j int) bool { return open[i].Priority < open[j].Priority })

	fmt.Fprintf(w, "open findings (%d):\n", len(open))
	for _, f := range open {
		fmt.Fprintf(w, "  [%s] %s/%s: %s\n", f.Priority, f.System, f.Component, f.Evidence)
	}
}
