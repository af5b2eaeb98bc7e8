// Package landing models regulatory catch-sale records, the source of
// the landed-value figures CatchValuePerFuel needs (spec §3 Landing,
// §4.5; original_source postgres/models/landing_entry.rs, which carries
// the full fiskeridir sale-note schema — PriceForFisher and
// TotalLivingWeight are the two fields any benchmark consumer needs).
package landing

import (
	"time"

	"github.com/orcalabs/kyogre-go/internal/domain/shared"
	"github.com/orcalabs/kyogre-go/internal/domain/vessel"
)

// Landing is one sale/discharge record for a vessel's catch, distinct
// from the vessel.EventLanding marker used only for trip-boundary
// anchoring (spec §4.1): Landing carries the financial and weight
// figures a landing event itself does not.
type Landing struct {
	LandingID         string
	VesselID          vessel.ID
	LandingTimestamp  time.Time
	TotalLivingWeight float64
	PriceForFisher    *float64
}

// Validate enforces the landing's structural invariants.
func (l Landing) Validate() error {
	if l.LandingID == "" {
		return shared.NewValidationError("landing_id", "must be set")
	}
	if l.VesselID.IsZero() {
		return shared.NewValidationError("vessel_id", "must be positive")
	}
	if l.LandingTimestamp.IsZero() {
		return shared.NewValidationError("landing_timestamp", "must be set")
	}
	if l.TotalLivingWeight < 0 {
		return shared.NewValidationError("total_living_weight", "must be non-negative")
	}
	return nil
}
