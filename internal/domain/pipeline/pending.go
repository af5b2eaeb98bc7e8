package pipeline

import "time"

// Decision is what Pending decides to do next: resume a specific state,
// or sleep until some instant (spec §4.6 "Pending decides the next
// state").
type Decision struct {
	Resume   *State
	SleepFor time.Duration
	Warning  bool
}

// Schedules maps every chain state to its reported cadence.
type Schedules map[State]Schedule

// Decide scans the transition log (most recent DefaultMaxLookback entries
// matter) and the declared schedules to choose the next action (spec §4.6
// Pending rules and Resumability).
func Decide(now time.Time, log []Transition, schedules Schedules, maxLookback int) Decision {
	if maxLookback <= 0 {
		maxLookback = DefaultMaxLookback
	}

	if resume, ok := unfinishedChainStart(log, schedules, now, maxLookback); ok {
		return Decision{Resume: &resume}
	}

	if allDisabled(schedules) {
		return Decision{SleepFor: DefaultSleepOnAllDisabled, Warning: true}
	}

	nextDue, ok := earliestDue(schedules, lastCompletionOf(log))
	if !ok {
		return Decision{SleepFor: DefaultSleepOnAllDisabled, Warning: true}
	}

	wait := nextDue.Sub(now)
	if wait <= 0 {
		resume := Scrape
		return Decision{Resume: &resume}
	}
	return Decision{SleepFor: wait}
}

// unfinishedChainStart reports whether the most recent transition log
// entry sits inside an incomplete chain run whose start state is
// periodic-ready, and if so returns the first uncompleted state to
// resume at (spec §4.6 "resumes at the first uncompleted state of that
// chain").
func unfinishedChainStart(log []Transition, schedules Schedules, now time.Time, maxLookback int) (State, bool) {
	window := log
	if len(window) > maxLookback {
		window = window[len(window)-maxLookback:]
	}
	if len(window) == 0 {
		return "", false
	}

	last := window[len(window)-1]
	if last.To == UpdateDatabaseViews || indexInChain(last.To) < 0 {
		return "", false
	}

	if _, ok := schedules[Scrape]; !ok {
		return "", false
	}

	resumeFrom, ok := Next(last.To)
	if !ok {
		return "", false
	}
	return resumeFrom, true
}

func lastCompletionOf(log []Transition) time.Time {
	for i := len(log) - 1; i >= 0; i-- {
		if log[i].To == UpdateDatabaseViews {
			return log[i].Timestamp
		}
	}
	return time.Time{}
}

func allDisabled(schedules Schedules) bool {
	for _, s := range Chain {
		sched, ok := schedules[s]
		if !ok || sched.Kind != Disabled {
			return false
		}
	}
	return true
}

func earliestDue(schedules Schedules, last time.Time) (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, s := range Chain {
		sched, ok := schedules[s]
		if !ok {
			continue
		}
		due, hasDue := sched.DueAt(last)
		if !hasDue {
			continue
		}
		if !found || due.Before(earliest) {
			earliest = due
			found = true
		}
	}
	return earliest, found
}
