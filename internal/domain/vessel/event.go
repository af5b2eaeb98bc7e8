package vessel

import (
	"time"

	"github.com/orcalabs/kyogre-go/internal/domain/shared"
)

// EventType enumerates the vessel event stream (spec §3 VesselEvent).
type EventType string

const (
	EventLanding EventType = "Landing"
	EventErsDep  EventType = "ErsDep"
	EventErsPor  EventType = "ErsPor"
	EventErsDca  EventType = "ErsDca"
	EventErsTra  EventType = "ErsTra"
	EventHaul    EventType = "Haul"
)

// Event is one row of a vessel's ordered event stream.
//
// ErsDep/ErsPor additionally carry a port and an estimated timestamp used
// for pairing (spec §4.1 ERS assembler); other event types leave those
// fields nil/zero.
type Event struct {
	EventID             uint64
	VesselID            ID
	ReportTimestamp     time.Time
	OccurrenceTimestamp *time.Time
	EventType           EventType

	// TripID is the owning trip, nil until assembled. Kept on the event
	// (not the reverse) to break the trip<->event reference cycle (spec §9).
	TripID *uint64

	// PortID and EstimatedTimestamp are populated for ErsDep/ErsPor only.
	PortID             *string
	EstimatedTimestamp *time.Time

	// RelevantYear/MessageNumber order ErsDep/ErsPor pairing when
	// EstimatedTimestamp ties (spec §4.1).
	RelevantYear  int
	MessageNumber int
}

// Validate checks the event's required fields for its type.
func (e Event) Validate() error {
	if e.VesselID.IsZero() {
		return shared.NewValidationError("vessel_id", "must be positive")
	}
	if e.ReportTimestamp.IsZero() {
		return shared.NewValidationError("report_timestamp", "must be set")
	}
	switch e.EventType {
	case EventErsDep, EventErsPor:
		if e.PortID == nil {
			return shared.NewValidationError("port_id", "required for ErsDep/ErsPor")
		}
		if e.EstimatedTimestamp == nil {
			return shared.NewValidationError("estimated_timestamp", "required for ErsDep/ErsPor")
		}
	case EventLanding, EventErsDca, EventErsTra, EventHaul:
		// no type-specific required fields
	default:
		return shared.NewValidationError("event_type", "unknown event type")
	}
	return nil
}

// ByReportTimestamp sorts events ascending by report timestamp, the
// ordering guarantee relied on throughout the assemblers (spec §5).
type ByReportTimestamp []Event

func (s ByReportTimestamp) Len() int      { return len(s) }
func (s ByReportTimestamp) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s ByReportTimestamp) Less(i, j int) bool {
	return s[i].ReportTimestamp.Before(s[j].ReportTimestamp)
}
