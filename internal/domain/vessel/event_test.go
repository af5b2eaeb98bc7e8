package vessel_test

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orcalabs/kyogre-go/internal/domain/vessel"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

func TestEvent_Validate_RequiresPortAndEstimatedTimestampForErsDepPor(t *testing.T) {
	e := vessel.Event{VesselID: 1, ReportTimestamp: mustTime(t, "2026-01-01T00:00:00Z"), EventType: vessel.EventErsDep}

	assert.Error(t, e.Validate())

	port := "NOBGO"
	e.PortID = &port
	assert.Error(t, e.Validate(), "still missing estimated_timestamp")

	estimated := mustTime(t, "2026-01-01T00:00:00Z")
	e.EstimatedTimestamp = &estimated
	assert.NoError(t, e.Validate())
}

func TestEvent_Validate_RejectsAnUnknownEventType(t *testing.T) {
	e := vessel.Event{VesselID: 1, ReportTimestamp: mustTime(t, "2026-01-01T00:00:00Z"), EventType: vessel.EventType("bogus")}

	assert.Error(t, e.Validate())
}

func TestEvent_Validate_LandingHasNoTypeSpecificRequirements(t *testing.T) {
	e := vessel.Event{VesselID: 1, ReportTimestamp: mustTime(t, "2026-01-01T00:00:00Z"), EventType: vessel.EventLanding}

	assert.NoError(t, e.Validate())
}

func TestByReportTimestamp_SortsAscending(t *testing.T) {
	events := []vessel.Event{
		{EventID: 2, ReportTimestamp: mustTime(t, "2026-01-02T00:00:00Z")},
		{EventID: 1, ReportTimestamp: mustTime(t, "2026-01-01T00:00:00Z")},
		{EventID: 3, ReportTimestamp: mustTime(t, "2026-01-03T00:00:00Z")},
	}

	sort.Sort(vessel.ByReportTimestamp(events))

	assert.Equal(t, []uint64{1, 2, 3}, []uint64{events[0].EventID, events[1].EventID, events[2].EventID})
}
