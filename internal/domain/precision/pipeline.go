package precision

import (
	"time"

	"github.com/orcalabs/kyogre-go/internal/domain/shared"
)

// Pipeline runs a configured, ordered list of strategies per end until one
// matches (spec §4.2 "run configured start-strategies in order until one
// returns Some(timestamp); then end-strategies. Combine to
// period_precision").
type Pipeline struct {
	StartStrategies []ConfiguredStrategy
	EndStrategies   []ConfiguredStrategy
}

// ConfiguredStrategy pairs a strategy with the configuration it runs
// under, since different strategies in the same pipeline may use
// different thresholds.
type ConfiguredStrategy struct {
	Strategy Strategy
	Config   Config
}

// Refine runs the configured strategies and returns the resulting
// period_precision, or false if neither end found a match (spec §4.2
// "If none match, leave precision absent").
func (p Pipeline) Refine(ctx Context) (shared.Period, bool) {
	startTime, startOK := firstMatch(ctx, p.StartStrategies)
	endTime, endOK := firstMatch(ctx, p.EndStrategies)

	switch {
	case startOK && endOK:
		period, err := shared.NewPeriodWithBounds(startTime, endTime, ctx.Period.StartBound, ctx.Period.EndBound)
		if err != nil {
			return shared.Period{}, false
		}
		return period, true
	case startOK:
		period, err := shared.NewPeriodWithBounds(startTime, ctx.Period.End, ctx.Period.StartBound, ctx.Period.EndBound)
		if err != nil {
			return shared.Period{}, false
		}
		return period, true
	case endOK:
		period, err := shared.NewPeriodWithBounds(ctx.Period.Start, endTime, ctx.Period.StartBound, ctx.Period.EndBound)
		if err != nil {
			return shared.Period{}, false
		}
		return period, true
	default:
		return shared.Period{}, false
	}
}

func firstMatch(ctx Context, configured []ConfiguredStrategy) (time.Time, bool) {
	for _, cs := range configured {
		if ts, ok := cs.Strategy.Find(ctx, cs.Config); ok {
			return ts, true
		}
	}
	return time.Time{}, false
}
