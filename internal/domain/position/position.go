// Package position models the AIS/VMS position track for a trip: the merged
// sequence, the ordered pruning layers that refine it, and the kinematics
// helpers the fuel estimator and precision strategies build on.
package position

import (
	"sort"
	"time"

	"github.com/orcalabs/kyogre-go/internal/domain/shared"
)

// Type distinguishes the two position sources merged into one sequence
// (spec §3 AisVmsPosition, §4.3).
type Type string

const (
	TypeAis Type = "Ais"
	TypeVms Type = "Vms"
)

// PruneReason tags why a position was dropped by a layer (spec §3
// PrunedTripPosition `trip_layer` tag).
type PruneReason string

const (
	ReasonAisVmsConflict   PruneReason = "AisVmsConflict"
	ReasonUnrealisticSpeed PruneReason = "UnrealisticSpeed"
)

// AisVmsPosition is one point in the merged, sorted position sequence for a
// trip.
type AisVmsPosition struct {
	Point            shared.Point
	Timestamp        time.Time
	Course           *float64
	SpeedOverGround  *float64 // knots, reported
	NavStatus        *string
	Heading          *float64
	DistanceToShoreM float64
	PositionType     Type

	// PrunedBy is set on a retained neighbor when a layer prunes an
	// adjacent position and tags this one for audit (spec §4.3 L1).
	PrunedBy *PruneReason
}

// PrunedTripPosition records a position removed by a layer, with the
// reason and the layer that removed it, for downstream auditing (spec §3).
type PrunedTripPosition struct {
	Original  AisVmsPosition
	Value     map[string]any
	TripLayer PruneReason
}

// TripPositionLayerOutput is the working value threaded through the layer
// pipeline (spec §3, §4.3).
type TripPositionLayerOutput struct {
	TripPositions   []AisVmsPosition
	PrunedPositions []PrunedTripPosition
	TrackCoverage   float64
}

// Merge combines AIS and VMS positions into one sequence sorted ascending
// by timestamp, AIS breaking ties first (spec §4.3).
func Merge(ais, vms []AisVmsPosition) []AisVmsPosition {
	merged := make([]AisVmsPosition, 0, len(ais)+len(vms))
	merged = append(merged, ais...)
	merged = append(merged, vms...)

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.Timestamp.Equal(b.Timestamp) {
			return a.PositionType == TypeAis && b.PositionType != TypeAis
		}
		return a.Timestamp.Before(b.Timestamp)
	})
	return merged
}

// SpeedKnots estimates the speed between two positions from great-circle
// distance over elapsed time (spec §4.2, §4.4 step 1).
func SpeedKnots(a, b AisVmsPosition) float64 {
	dt := b.Timestamp.Sub(a.Timestamp).Hours()
	if dt <= 0 {
		return 0
	}
	distanceMeters := a.Point.DistanceMeters(b.Point)
	distanceNauticalMiles := distanceMeters / 1852.0
	return distanceNauticalMiles / dt
}
