// Package fuel models per-day fuel estimates derived from the kinematic
// engine model and the calibration measurements that can invalidate them
// (spec §3 FuelEstimate/FuelMeasurement, §4.4).
package fuel

import (
	"time"

	"github.com/orcalabs/kyogre-go/internal/domain/shared"
	"github.com/orcalabs/kyogre-go/internal/domain/vessel"
)

// Status tracks whether an estimate's day still reflects every position
// ingested for that vessel (spec §4.4 Invalidation).
type Status string

const (
	StatusUnprocessed Status = "Unprocessed"
	StatusProcessed   Status = "Processed"
)

// Estimate is the fuel estimator's output for one vessel-day, upserted
// exactly once per (vessel, date) (spec §3 FuelEstimate).
type Estimate struct {
	VesselID        vessel.ID
	Date            time.Time // truncated to the UTC calendar day
	EstimateLiters  float64
	NumAisPositions int
	NumVmsPositions int
	Status          Status
}

// Validate enforces the estimate's structural invariants.
func (e Estimate) Validate() error {
	if e.VesselID.IsZero() {
		return shared.NewValidationError("vessel_id", "must be positive")
	}
	if e.Date.IsZero() {
		return shared.NewValidationError("date", "must be set")
	}
	if e.EstimateLiters < 0 {
		return shared.NewValidationError("estimate_liter", "must be non-negative")
	}
	return nil
}

// Measurement is an operator-supplied calibration reading: the tank level
// at a point in time, optionally paired with the post-refuel level, which
// takes precedence over the kinematic model for spans it brackets (spec §3
// FuelMeasurement, §4.4 Calibration).
type Measurement struct {
	ID              uint64
	UserID          uint64
	CallSign        string
	Timestamp       time.Time
	FuelLiters      float64
	FuelAfterLiters *float64
}

// Validate enforces fuel_after_liter (post-refuel) strictly exceeds
// fuel_liter (pre-refuel) on create (spec §3).
func (m Measurement) Validate() error {
	if m.CallSign == "" {
		return shared.NewValidationError("call_sign", "must be set")
	}
	if m.Timestamp.IsZero() {
		return shared.NewValidationError("timestamp", "must be set")
	}
	if m.FuelLiters < 0 {
		return shared.NewValidationError("fuel_liter", "must be non-negative")
	}
	if m.FuelAfterLiters != nil && *m.FuelAfterLiters <= m.FuelLiters {
		return shared.NewValidationConflictError("fuel_after_liter", "must be strictly greater than fuel_liter")
	}
	return nil
}

// Pair is two consecutive measurements for the same vessel, ordered by
// timestamp, used by the calibration query (spec §4.4 Calibration).
type Pair struct {
	Earlier Measurement
	Later   Measurement
}

// Midpoint is the pair's temporal midpoint, the point used to decide
// whether the pair falls inside a query range (spec §4.4 Calibration).
func (p Pair) Midpoint() time.Time {
	d := p.Later.Timestamp.Sub(p.Earlier.Timestamp) / 2
	return p.Earlier.Timestamp.Add(d)
}

// ConsumedLiters is the pair's contribution to an actual-consumption
// query: the drop from the earlier reading to the later, plus any
// fuel_after jump recorded at the earlier reading (spec §4.4 Calibration).
func (p Pair) ConsumedLiters() float64 {
	consumed := p.Earlier.FuelLiters - p.Later.FuelLiters
	if p.Earlier.FuelAfterLiters != nil {
		consumed += *p.Earlier.FuelAfterLiters - p.Earlier.FuelLiters
	}
	return consumed
}

// InRange reports whether the pair's midpoint lies in [start, end], the
// inclusion test for the actual-consumption query (spec §4.4 Calibration).
func (p Pair) InRange(start, end time.Time) bool {
	mid := p.Midpoint()
	return !mid.Before(start) && !mid.After(end)
}

// StraddleFraction is how much of the pair's span falls inside [start,
// end], used to exclude pairs straddling the boundary by less than half
// (spec §4.4 Calibration: "excluded" when covered by less than half).
func (p Pair) StraddleFraction(start, end time.Time) float64 {
	total := p.Later.Timestamp.Sub(p.Earlier.Timestamp)
	if total <= 0 {
		return 0
	}
	overlapStart := p.Earlier.Timestamp
	if start.After(overlapStart) {
		overlapStart = start
	}
	overlapEnd := p.Later.Timestamp
	if end.Before(overlapEnd) {
		overlapEnd = end
	}
	overlap := overlapEnd.Sub(overlapStart)
	if overlap <= 0 {
		return 0
	}
	return float64(overlap) / float64(total)
}
