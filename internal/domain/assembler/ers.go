package assembler

import (
	"sort"

	"github.com/orcalabs/kyogre-go/internal/domain/shared"
	"github.com/orcalabs/kyogre-go/internal/domain/trip"
	"github.com/orcalabs/kyogre-go/internal/domain/vessel"
)

// ErsStrategy pairs each ErsDep with the next ErsPor by
// (relevant_year, message_number, estimated_timestamp) ordering, closing
// one trip per pair and reporting a trailing unmatched dep as the current
// trip (spec §4.1 "ERS assembler").
type ErsStrategy struct{}

func (ErsStrategy) ID() vessel.AssemblerID { return vessel.AssemblerErs }

func (ErsStrategy) Assemble(vesselID vessel.ID, events []vessel.Event) (Result, error) {
	deps := filterByType(events, vessel.EventErsDep)
	pors := filterByType(events, vessel.EventErsPor)

	sort.Sort(byErsOrder(deps))
	sort.Sort(byErsOrder(pors))

	trips := make([]trip.NewTrip, 0, len(deps))
	porIdx := 0

	for i, dep := range deps {
		por, idx, ok := nextPor(pors, porIdx, dep)
		if !ok {
			return ersTail(vesselID, deps[i:], trips)
		}
		porIdx = idx + 1

		period, err := shared.NewPeriodWithBounds(*dep.EstimatedTimestamp, *por.EstimatedTimestamp, shared.Inclusive, shared.Inclusive)
		if err != nil {
			return Result{}, err
		}

		var coverage shared.Period
		var openCoverage *shared.OpenEndedPeriod
		if i+1 < len(deps) {
			coverage, err = shared.NewPeriodWithBounds(*dep.EstimatedTimestamp, *deps[i+1].EstimatedTimestamp, shared.Inclusive, shared.Exclusive)
			if err != nil {
				return Result{}, err
			}
		} else {
			openCoverage = &shared.OpenEndedPeriod{Start: *dep.EstimatedTimestamp, StartBound: shared.Inclusive}
		}

		depEventID := dep.EventID
		porEventID := por.EventID
		depPort := portFromEvent(dep)
		porPort := portFromEvent(por)

		trips = append(trips, trip.NewTrip{
			VesselID:            vesselID,
			Period:              period,
			LandingCoverage:     coverage,
			OpenLandingCoverage: openCoverage,
			StartPort:           depPort,
			EndPort:             porPort,
			AssemblerID:         vessel.AssemblerErs,
			StartVesselEventID:  &depEventID,
			EndVesselEventID:    &porEventID,
		})
	}

	return Result{Trips: sortByStart(trips)}, nil
}

// ersTail handles a trailing run of unmatched ErsDep events: the first is
// reported as the open current trip (spec §4.7); any further dep events
// beyond it cannot be assembled and are simply left for a future run once
// their matching por arrives.
func ersTail(vesselID vessel.ID, unmatchedDeps []vessel.Event, trips []trip.NewTrip) (Result, error) {
	if len(unmatchedDeps) == 0 {
		return Result{Trips: sortByStart(trips)}, nil
	}
	dep := unmatchedDeps[0]
	depEventID := dep.EventID
	current := &CurrentTrip{
		VesselID:           vesselID,
		Period:             shared.OpenEndedPeriod{Start: *dep.EstimatedTimestamp, StartBound: shared.Inclusive},
		StartPort:          portFromEvent(dep),
		StartVesselEventID: &depEventID,
	}
	return Result{Trips: sortByStart(trips), Current: current}, nil
}

// nextPor finds the first por at or after startIdx whose
// (relevant_year, message_number, estimated_timestamp) ordering places it
// after dep (spec §4.1 pairing order).
func nextPor(pors []vessel.Event, startIdx int, dep vessel.Event) (vessel.Event, int, bool) {
	for i := startIdx; i < len(pors); i++ {
		if ersLess(dep, pors[i]) {
			return pors[i], i, true
		}
	}
	return vessel.Event{}, -1, false
}

// byErsOrder sorts by (relevant_year, message_number, estimated_timestamp)
// (spec §4.1).
type byErsOrder []vessel.Event

func (s byErsOrder) Len() int      { return len(s) }
func (s byErsOrder) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s byErsOrder) Less(i, j int) bool {
	return ersLess(s[i], s[j])
}

func ersLess(a, b vessel.Event) bool {
	if a.RelevantYear != b.RelevantYear {
		return a.RelevantYear < b.RelevantYear
	}
	if a.MessageNumber != b.MessageNumber {
		return a.MessageNumber < b.MessageNumber
	}
	if a.EstimatedTimestamp == nil || b.EstimatedTimestamp == nil {
		return false
	}
	return a.EstimatedTimestamp.Before(*b.EstimatedTimestamp)
}

func portFromEvent(e vessel.Event) *trip.Port {
	if e.PortID == nil {
		return nil
	}
	return &trip.Port{ID: *e.PortID}
}
