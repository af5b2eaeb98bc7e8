package assembler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orcalabs/kyogre-go/internal/domain/assembler"
	"github.com/orcalabs/kyogre-go/internal/domain/vessel"
)

func landingEvent(t *testing.T, id uint64, timestamp string) vessel.Event {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, timestamp)
	require.NoError(t, err)
	return vessel.Event{EventID: id, VesselID: 1, ReportTimestamp: ts, EventType: vessel.EventLanding}
}

func TestLandingsStrategy_GroupsByCalendarDayUsingLatestReport(t *testing.T) {
	events := []vessel.Event{
		landingEvent(t, 1, "2026-01-01T08:00:00Z"),
		landingEvent(t, 2, "2026-01-01T14:00:00Z"),
		landingEvent(t, 3, "2026-01-02T09:00:00Z"),
	}

	result, err := assembler.LandingsStrategy{}.Assemble(1, events)
	require.NoError(t, err)

	// Day 1 (events 1,2) and day 2 (event 3) produce two boundaries, plus
	// a synthetic leading boundary 24h before the first: three boundaries,
	// two trips.
	require.Len(t, result.Trips, 2)

	second := result.Trips[1]
	assert.Equal(t, vessel.AssemblerLandings, second.AssemblerID)
	assert.Equal(t, events[1].ReportTimestamp, second.Period.Start)
	assert.Equal(t, events[2].ReportTimestamp, second.Period.End)
	require.NotNil(t, second.StartVesselEventID)
	assert.Equal(t, uint64(2), *second.StartVesselEventID)
	require.NotNil(t, second.EndVesselEventID)
	assert.Equal(t, uint64(3), *second.EndVesselEventID)
}

func TestLandingsStrategy_NoLandingEventsYieldsNoTrips(t *testing.T) {
	events := []vessel.Event{
		{VesselID: 1, ReportTimestamp: time.Now(), EventType: vessel.EventHaul},
	}

	result, err := assembler.LandingsStrategy{}.Assemble(1, events)
	require.NoError(t, err)

	assert.Empty(t, result.Trips)
	assert.Nil(t, result.Current)
}

func TestLandingsStrategy_OnlyOneCalendarDayProducesOneTrip(t *testing.T) {
	events := []vessel.Event{
		landingEvent(t, 1, "2026-03-05T08:00:00Z"),
		landingEvent(t, 2, "2026-03-05T18:00:00Z"),
	}

	result, err := assembler.LandingsStrategy{}.Assemble(1, events)
	require.NoError(t, err)
	require.Len(t, result.Trips, 1)

	trip := result.Trips[0]
	assert.Equal(t, events[1].ReportTimestamp, trip.LandingCoverage.End)
	assert.Equal(t, events[1].ReportTimestamp.Add(-24*time.Hour), trip.LandingCoverage.Start)
}
