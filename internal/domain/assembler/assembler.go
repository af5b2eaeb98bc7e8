// Package assembler derives ordered, non-overlapping trip intervals for a
// vessel from its event stream, dispatching to the Landings or Ers
// strategy per the vessel's preferred assembler (spec §4.1).
package assembler

import (
	"sort"

	"github.com/orcalabs/kyogre-go/internal/domain/facility"
	"github.com/orcalabs/kyogre-go/internal/domain/haul"
	"github.com/orcalabs/kyogre-go/internal/domain/shared"
	"github.com/orcalabs/kyogre-go/internal/domain/trip"
	"github.com/orcalabs/kyogre-go/internal/domain/vessel"
)

// Strategy is the uniform interface both assembler variants satisfy.
type Strategy interface {
	ID() vessel.AssemblerID
	Assemble(vesselID vessel.ID, events []vessel.Event) (Result, error)
}

// Result is one run's output: the closed trips to persist, plus an open
// trip when the event stream ends mid-trip (spec §4.1, §4.7).
type Result struct {
	Trips   []trip.NewTrip
	Current *CurrentTrip
}

// CurrentTrip is the in-progress trip reported via the Current-Trip
// contract; it is never persisted as a closed trip. Hauls and
// FishingFacilityEvents are filled in by the repository after assembly —
// the strategy itself only has the vessel's event stream to work from
// (spec §4.7). FishingFacilityEvents stays nil for callers without the
// fishing-facility permission.
type CurrentTrip struct {
	VesselID              vessel.ID
	Period                shared.OpenEndedPeriod
	StartPort             *trip.Port
	StartVesselEventID    *uint64
	Hauls                 []haul.Haul
	FishingFacilityEvents []facility.Event
}

// Conflict is the contract that triggers reassembly: a new event arriving
// at Timestamp invalidates every previously assembled trip whose period
// overlaps it, and reassembly resumes at the earliest such event (spec
// §4.1 Conflict contract).
type Conflict struct {
	VesselID  vessel.ID
	Timestamp shared.Period
}

// ForVessel selects the strategy matching a vessel's preferred assembler
// (spec §4.1 "chosen per vessel by preferred_trip_assembler").
func ForVessel(v vessel.Vessel) Strategy {
	if v.PreferredAssembler == vessel.AssemblerErs {
		return ErsStrategy{}
	}
	return LandingsStrategy{}
}

// affectedTripIndices returns the indices of existing trips whose period
// overlaps the given timestamp, used to resolve a conflict to the
// earliest point reassembly must resume from (spec §4.1 Conflict
// contract).
func affectedTripIndices(trips []trip.Trip, at shared.Period) []int {
	affected := make([]int, 0)
	for i, t := range trips {
		if t.Period.Overlaps(at) {
			affected = append(affected, i)
		}
	}
	return affected
}

// sortByStart returns trips ordered ascending by period start, the
// invariant the assembler always produces and the persistence layer
// relies on for supersession (spec §4.1 "derive ordered, non-overlapping
// trip intervals").
func sortByStart(trips []trip.NewTrip) []trip.NewTrip {
	sorted := make([]trip.NewTrip, len(trips))
	copy(sorted, trips)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Period.Start.Before(sorted[j].Period.Start)
	})
	return sorted
}
