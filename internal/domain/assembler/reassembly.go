package assembler

import (
	"github.com/orcalabs/kyogre-go/internal/domain/shared"
	"github.com/orcalabs/kyogre-go/internal/domain/trip"
	"github.com/orcalabs/kyogre-go/internal/domain/vessel"
)

// ReassemblyPlan is the outcome of resolving a Conflict: the trip ids to
// delete (whose downstream artefacts cascade-remove) and the freshly
// assembled trips that supersede them (spec §4.1 Conflict contract).
type ReassemblyPlan struct {
	SupersededTripIDs []trip.ID
	NewTrips          []trip.NewTrip
	Current           *CurrentTrip
}

// Reassemble resolves a conflict by re-running the vessel's strategy over
// every event at or after the earliest affected timestamp, then marking
// every existing trip overlapping that range as superseded (spec §4.1:
// "reassembly from the earliest event at or after timestamp... New trips
// supersede any whose period overlaps; stale trip IDs are deleted").
func Reassemble(v vessel.Vessel, existingTrips []trip.Trip, eventsFromConflict []vessel.Event, conflictAt shared.Period) (ReassemblyPlan, error) {
	strategy := ForVessel(v)
	result, err := strategy.Assemble(v.ID, eventsFromConflict)
	if err != nil {
		return ReassemblyPlan{}, err
	}

	superseded := make([]trip.ID, 0)
	for _, idx := range affectedTripIndices(existingTrips, conflictAt) {
		superseded = append(superseded, existingTrips[idx].TripID)
	}

	return ReassemblyPlan{
		SupersededTripIDs: superseded,
		NewTrips:          result.Trips,
		Current:           result.Current,
	}, nil
}
