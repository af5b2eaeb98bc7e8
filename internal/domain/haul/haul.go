// Package haul models catch records and their assignment to the single
// trip whose period contains them (spec §3 Haul).
package haul

import (
	"time"

	"github.com/orcalabs/kyogre-go/internal/domain/shared"
	"github.com/orcalabs/kyogre-go/internal/domain/vessel"
)

// Haul is a catch record, assigned to exactly one trip when its span
// falls within that trip's period (spec §3). VesselID identifies the
// reporting vessel independent of trip assignment, so a haul can be
// found before the trip it belongs to has even been assembled (spec
// §4.7 Current-Trip contract: live hauls within an open trip's prefix).
type Haul struct {
	HaulID            uint64
	VesselID          vessel.ID
	StartTimestamp    time.Time
	StopTimestamp     time.Time
	GearGroup         string
	SpeciesGroup      string
	TotalLivingWeight float64
	CatchLocation     *shared.Point
	HasWeather        bool
	HasOceanClimate   bool
}

// Validate enforces the haul's structural invariants.
func (h Haul) Validate() error {
	if h.StartTimestamp.IsZero() || h.StopTimestamp.IsZero() {
		return shared.NewValidationError("start_ts/stop_ts", "must be set")
	}
	if h.StopTimestamp.Before(h.StartTimestamp) {
		return shared.NewInvalidRangeError("haul stop_ts must not precede start_ts")
	}
	if h.TotalLivingWeight < 0 {
		return shared.NewValidationError("total_living_weight", "must be non-negative")
	}
	return nil
}

// BelongsTo reports whether the haul's span falls entirely within the
// given period (spec §3: "Belongs to exactly one trip when its
// timestamps fall within that trip's period").
func (h Haul) BelongsTo(period shared.Period) bool {
	return period.Contains(h.StartTimestamp) && period.Contains(h.StopTimestamp)
}
