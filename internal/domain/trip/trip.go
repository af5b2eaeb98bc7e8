// Package trip holds the Trip aggregate: assembled intervals plus the
// precision refinement, positions, layer outputs and benchmark outputs it
// owns (spec §3 Ownership).
package trip

import (
	"github.com/orcalabs/kyogre-go/internal/domain/shared"
	"github.com/orcalabs/kyogre-go/internal/domain/vessel"
)

// ID identifies a persisted trip.
type ID uint64

// Port is a named location with a geographic point, used by the Port and
// DockPoint precision strategies (spec §4.2).
type Port struct {
	ID    string
	Point shared.Point
}

// DockPoint is an auxiliary point associated with a trip (e.g. a known
// unloading berth), iterated by the DockPoint precision strategy.
type DockPoint struct {
	ID    string
	Point shared.Point
}

// DeliveryPoint is an auxiliary end-only point; the DeliveryPoint strategy
// only fires when a trip has exactly one (spec §4.2).
type DeliveryPoint struct {
	ID    string
	Point shared.Point
}

// NewTrip is the assembler's output before persistence: it carries no trip
// id and no start/end vessel event ids resolved yet beyond what the
// assembler could determine directly.
type NewTrip struct {
	VesselID            vessel.ID
	Period              shared.Period
	LandingCoverage     shared.Period
	OpenLandingCoverage *shared.OpenEndedPeriod // set instead of LandingCoverage when coverage is +∞
	StartPort           *Port
	EndPort             *Port
	AssemblerID         vessel.AssemblerID
	StartVesselEventID  *uint64
	EndVesselEventID    *uint64
}

// Validate enforces the Trip/NewTrip invariant: period has positive
// duration and period ⊆ landing_coverage (spec §3, §8).
func (t NewTrip) Validate() error {
	if t.Period.Duration() <= 0 {
		return shared.NewInvalidRangeError("trip period must have positive duration")
	}
	if t.OpenLandingCoverage != nil {
		if !t.OpenLandingCoverage.Contains(t.Period.Start) {
			return shared.NewInvalidRangeError("trip period must be contained in landing coverage")
		}
		return nil
	}
	if t.LandingCoverage.Duration() <= 0 {
		return shared.NewInvalidRangeError("landing coverage must have positive duration")
	}
	if !t.Period.Subset(t.LandingCoverage) {
		return shared.NewInvalidRangeError("trip period must be a subset of landing coverage")
	}
	return nil
}

// Trip is a persisted, assembled interval for one vessel.
type Trip struct {
	TripID              ID
	VesselID            vessel.ID
	Period              shared.Period
	PeriodPrecision     *shared.Period
	LandingCoverage     shared.Period
	OpenLandingCoverage *shared.OpenEndedPeriod
	StartPort           *Port
	EndPort             *Port
	AssemblerID         vessel.AssemblerID
	FirstArrival        bool
	StartVesselEventID  *uint64
	EndVesselEventID    *uint64

	Status ProcessingStatus
}

// ProcessingStatus tracks reprocessing state for a trip, reusing the
// pipeline-wide lifecycle vocabulary (spec §4.4 Invalidation: trips whose
// period.end is after an out-of-order VMS insert reset to Unprocessed).
type ProcessingStatus string

const (
	StatusUnprocessed ProcessingStatus = "Unprocessed"
	StatusProcessed   ProcessingStatus = "Processed"
)

// EffectiveLandingCoverageEnd returns a closed approximation of the landing
// coverage for containment checks, substituting until.End as the open
// end's (exclusive) cutoff when present.
func (t Trip) EffectiveLandingCoverageEnd(until shared.Period) shared.Period {
	if t.OpenLandingCoverage == nil {
		return t.LandingCoverage
	}
	return shared.Period{
		Start:      t.OpenLandingCoverage.Start,
		End:        until.End,
		StartBound: t.OpenLandingCoverage.StartBound,
		EndBound:   shared.Exclusive,
	}
}
