// Package facility models fixed fishing gear (pots, nets, longlines) a
// vessel reports deploying and later removing, surfaced alongside live
// hauls in the Current-Trip contract for callers with the
// fishing-facility permission (spec §4.7; original_source
// postgres/models/fishing_facility.rs).
package facility

import (
	"time"

	"github.com/google/uuid"

	"github.com/orcalabs/kyogre-go/internal/domain/vessel"
)

// ToolType is the kind of gear deployed.
type ToolType string

const (
	ToolTypeCrabPot  ToolType = "CrabPot"
	ToolTypeFishpot  ToolType = "Fishpot"
	ToolTypeNet      ToolType = "Net"
	ToolTypeLongline ToolType = "Longline"
	ToolTypeOther    ToolType = "Other"
)

// Event is one fishing-facility deployment: gear set up at
// SetupTimestamp and, once reported, taken up at RemovedTimestamp.
type Event struct {
	ToolID           uuid.UUID
	VesselID         vessel.ID
	ToolType         ToolType
	ToolCount        *int
	SetupTimestamp   time.Time
	RemovedTimestamp *time.Time
}

// StillDeployedAt reports whether the gear was in the water at instant
// t: set up at or before t, and not yet removed (or removed after t).
func (e Event) StillDeployedAt(t time.Time) bool {
	if e.SetupTimestamp.After(t) {
		return false
	}
	return e.RemovedTimestamp == nil || e.RemovedTimestamp.After(t)
}
