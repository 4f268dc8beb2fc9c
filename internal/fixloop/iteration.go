package fixloop

import (
	"context"

	"svcaudit/internal/statestore"
	"svcaudit/pkg/logging"
)

// QualityGateFunc re-runs the quality gate and returns the resulting
// violation set plus open P0/P1 counts. Supplied by the conductor so this
// package stays decoupled from the quality package's evaluation plumbing.
type QualityGateFunc func(ctx context.Context) (violations []statestore.ContractViolation, openP0, openP1 int, err error)

// BuilderFeedFunc feeds a bucket of violations to one service's builder and
// returns its cost delta. Supplied by the conductor; in production this
// wraps builder.FeedViolationsToBuilder per affected service.
type BuilderFeedFunc func(ctx context.Context, cwd string, violations []statestore.ContractViolation) (costDelta float64, err error)

// Iterate runs the fix loop until a termination condition holds or ctx is
// canceled. affectedCwds maps service name to its source tree root, used to
// target feed calls per service.
func Iterate(ctx context.Context, t Thresholds, preViolations []statestore.ContractViolation, affectedCwds map[string]string, feed BuilderFeedFunc, gate QualityGateFunc) ([]statestore.FixPassSummary, error) {
	var passes []statestore.FixPassSummary
	before := ClassifyViolations(preViolations)
	preCount := totalCount(before)

	for passNumber := 1; ; passNumber++ {
		var costDelta float64
		byService := groupByService(flatten(before))
		for service, violations := range byService {
			cwd, ok := affectedCwds[service]
			if !ok {
				continue
			}
			delta, err := feed(ctx, cwd, violations)
			if err != nil {
				logging.Warn(subsystem, "feed_violations_to_builder failed for %s on pass %d: %v", service, passNumber, err)
				continue
			}
			costDelta += delta
		}

		postViolations, openP0, openP1, err := gate(ctx)
		if err != nil {
			return passes, err
		}
		after := ClassifyViolations(postViolations)
		postCount := totalCount(after)

		regressions := DetectRegressions(before, after)
		effectiveness := Effectiveness(preCount, postCount)
		regressionRate := RegressionRate(len(regressions), preCount)

		summary := statestore.FixPassSummary{
			PassNumber:     passNumber,
			Fixed:          maxInt(0, preCount-postCount),
			Remaining:      postCount,
			Regressions:    len(regressions),
			Effectiveness:  effectiveness,
			RegressionRate: regressionRate,
			CostDelta:      costDelta,
		}
		passes = append(passes, summary)

		logging.Info(subsystem, "fix pass %d: fixed=%d remaining=%d effectiveness=%.2f regression_rate=%.2f",
			passNumber, summary.Fixed, summary.Remaining, effectiveness, regressionRate)

		if ShouldTerminate(t, effectiveness, regressionRate, passNumber, openP0, openP1) {
			return passes, nil
		}

		before = after
		preCount = postCount

		select {
		case <-ctx.Done():
			return passes, ctx.Err()
		default:
		}
	}
}

func flatten(classified ClassifiedViolations) []statestore.ContractViolation {
	var all []statestore.ContractViolation
	for _, vs := range classified {
		all = append(all, vs...)
	}
	return all
}

func groupByService(violations []statestore.ContractViolation) map[string][]statestore.ContractViolation {
	grouped := map[string][]statestore.ContractViolation{}
	for _, v := range violations {
		grouped[v.Service] = append(grouped[v.Service], v)
	}
	return grouped
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
