// Package pipeline models the engine's state machine: the declared chain
// of processing stages, the Pending decision step that resumes or sleeps,
// and the transition log that makes a crash resumable (spec §4.6).
package pipeline

import "time"

// State is one stage in the declared chain, or one of the two
// non-processing control states (spec §4.6).
type State string

const (
	Scrape              State = "Scrape"
	Trips               State = "Trips"
	TripsPrecision      State = "TripsPrecision"
	HaulDistribution    State = "HaulDistribution"
	TripDistance        State = "TripDistance"
	Benchmark           State = "Benchmark"
	UpdateDatabaseViews State = "UpdateDatabaseViews"

	Pending State = "Pending"
	Sleep   State = "Sleep"
)

// Chain is the declared, ordered sequence of processing states the
// scheduler advances through (spec §4.6).
var Chain = []State{Scrape, Trips, TripsPrecision, HaulDistribution, TripDistance, Benchmark, UpdateDatabaseViews}

// indexInChain returns s's position in Chain, or -1 if s isn't a
// processing state.
func indexInChain(s State) int {
	for i, c := range Chain {
		if c == s {
			return i
		}
	}
	return -1
}

// Next returns the state that follows s in Chain, or false at the end.
func Next(s State) (State, bool) {
	idx := indexInChain(s)
	if idx < 0 || idx+1 >= len(Chain) {
		return "", false
	}
	return Chain[idx+1], true
}

// ScheduleKind is how often a state's work becomes due (spec §4.6 "Each
// non-scheduling state reports a Schedule ∈ {Disabled, Periodic(d)}").
type ScheduleKind int

const (
	Disabled ScheduleKind = iota
	Periodic
)

// Schedule is one state's reported cadence.
type Schedule struct {
	Kind     ScheduleKind
	Interval time.Duration
}

// DueAt returns when this schedule next becomes due after last, or false
// if Disabled.
func (s Schedule) DueAt(last time.Time) (time.Time, bool) {
	if s.Kind == Disabled {
		return time.Time{}, false
	}
	return last.Add(s.Interval), true
}

// Transition is one row of the persisted transition log (spec §4.6
// "Resumability"): the chain traversal history the engine replays after a
// crash.
type Transition struct {
	Timestamp time.Time
	From      State
	To        State
}

// DefaultMaxLookback bounds how far Pending searches the transition log to
// reconstruct an unfinished chain (spec §4.6 "max_lookback (default 20
// transitions)").
const DefaultMaxLookback = 20

// DefaultSleepOnAllDisabled is how long the engine sleeps when every
// schedule is Disabled (spec §4.6 "sleep 60s with a warning").
const DefaultSleepOnAllDisabled = 60 * time.Second
