package scheduler_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orcalabs/kyogre-go/internal/application/common"
	"github.com/orcalabs/kyogre-go/internal/application/scheduler"
	"github.com/orcalabs/kyogre-go/internal/domain/benchmark"
	"github.com/orcalabs/kyogre-go/internal/domain/fuel"
	"github.com/orcalabs/kyogre-go/internal/domain/haul"
	"github.com/orcalabs/kyogre-go/internal/domain/landing"
	"github.com/orcalabs/kyogre-go/internal/domain/position"
	"github.com/orcalabs/kyogre-go/internal/domain/shared"
	"github.com/orcalabs/kyogre-go/internal/domain/trip"
	"github.com/orcalabs/kyogre-go/internal/domain/vessel"
)

// fakeOceanClient is an in-memory OceanClimateClient returning a fixed
// reading for every call.
type fakeOceanClient struct {
	calls int
}

func (f *fakeOceanClient) WeatherAt(context.Context, common.AreaPoint, time.Time) (*common.WeatherReading, error) {
	f.calls++
	return &common.WeatherReading{WindSpeedMs: 5.5, WindDirection: 180, AirTempC: 12}, nil
}

func (f *fakeOceanClient) OceanClimateAt(context.Context, common.AreaPoint, time.Time) (*common.OceanClimateReading, error) {
	f.calls++
	return &common.OceanClimateReading{SeaTempC: 8.2, SalinityPsu: 34.1}, nil
}

func TestScrapeHandler_NoOpsWithoutAConfiguredSource(t *testing.T) {
	h := &scheduler.ScrapeHandler{Events: newFakeEvents(), Source: nil}

	resp, err := h.Handle(context.Background(), scheduler.ScrapeCommand{VesselID: 1})

	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestScrapeHandler_SavesEventsFetchedSinceTheWatermark(t *testing.T) {
	events := newFakeEvents()
	watermark := mustTime(t, "2026-01-01T00:00:00Z")
	existing := vessel.Event{VesselID: 1, ReportTimestamp: watermark, EventType: vessel.EventHaul}
	require.NoError(t, events.Save(context.Background(), []vessel.Event{existing}))

	fresh := vessel.Event{VesselID: 1, ReportTimestamp: watermark.Add(time.Hour), EventType: vessel.EventHaul}
	h := &scheduler.ScrapeHandler{Events: events, Source: &fakeEventSource{events: []vessel.Event{fresh}}}

	_, err := h.Handle(context.Background(), scheduler.ScrapeCommand{VesselID: 1})
	require.NoError(t, err)

	saved, err := events.ListByVesselSince(context.Background(), 1, watermark)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, fresh.ReportTimestamp, saved[0].ReportTimestamp)
}

func TestScrapeHandler_EnqueuesConflictForEventThatBisectsAnExistingTrip(t *testing.T) {
	trips := newFakeTrips()
	period, err := shared.NewPeriod(mustTime(t, "2026-01-01T00:00:00Z"), mustTime(t, "2026-01-02T00:00:00Z"))
	require.NoError(t, err)
	_, err = trips.Insert(context.Background(), []trip.NewTrip{{VesselID: 1, Period: period, LandingCoverage: period}})
	require.NoError(t, err)

	conflicts := &fakeConflicts{}
	late := vessel.Event{VesselID: 1, ReportTimestamp: mustTime(t, "2026-01-01T12:00:00Z"), EventType: vessel.EventHaul}

	h := &scheduler.ScrapeHandler{
		Events:    newFakeEvents(),
		Trips:     trips,
		Conflicts: conflicts,
		Source:    &fakeEventSource{events: []vessel.Event{late}},
	}

	_, err = h.Handle(context.Background(), scheduler.ScrapeCommand{VesselID: 1})
	require.NoError(t, err)

	require.Len(t, conflicts.pending, 1, "an event at or before the latest trip's period end must enqueue a conflict")
	c := conflicts.pending[0]
	assert.Equal(t, vessel.ID(1), c.VesselID)
	assert.Equal(t, late.ReportTimestamp, c.Timestamp.Start)
	assert.True(t, c.Timestamp.End.After(period.End), "conflict window must cover through the latest affected trip's end")
}

func TestScrapeHandler_DoesNotEnqueueAConflictForAnEventAfterEveryExistingTrip(t *testing.T) {
	trips := newFakeTrips()
	period, err := shared.NewPeriod(mustTime(t, "2026-01-01T00:00:00Z"), mustTime(t, "2026-01-02T00:00:00Z"))
	require.NoError(t, err)
	_, err = trips.Insert(context.Background(), []trip.NewTrip{{VesselID: 1, Period: period, LandingCoverage: period}})
	require.NoError(t, err)

	conflicts := &fakeConflicts{}
	fresh := vessel.Event{VesselID: 1, ReportTimestamp: period.End.Add(time.Hour), EventType: vessel.EventHaul}

	h := &scheduler.ScrapeHandler{
		Events:    newFakeEvents(),
		Trips:     trips,
		Conflicts: conflicts,
		Source:    &fakeEventSource{events: []vessel.Event{fresh}},
	}

	_, err = h.Handle(context.Background(), scheduler.ScrapeCommand{VesselID: 1})
	require.NoError(t, err)
	assert.Empty(t, conflicts.pending, "an event after every existing trip extends forward assembly and needs no conflict")
}

func TestScrapeHandler_InvalidatesFuelEstimatesAndLaterTripsForAnOutOfOrderVmsPosition(t *testing.T) {
	trips := newFakeTrips()
	period, err := shared.NewPeriod(mustTime(t, "2026-06-01T00:00:00Z"), mustTime(t, "2026-07-01T00:00:00Z"))
	require.NoError(t, err)
	inserted, err := trips.Insert(context.Background(), []trip.NewTrip{{VesselID: 1, Period: period, LandingCoverage: period}})
	require.NoError(t, err)

	positions := newFakePositions()
	positions.latestVms[1] = mustTime(t, "2026-07-01T00:00:00Z")
	estimates := &fakeEstimates{}

	outOfOrder := mustTime(t, "2026-06-15T10:00:00Z")
	source := &fakePositionSource{positions: []position.AisVmsPosition{
		{Timestamp: outOfOrder, PositionType: position.TypeVms},
	}}

	h := &scheduler.ScrapeHandler{
		Events:         newFakeEvents(),
		Trips:          trips,
		Positions:      positions,
		Estimates:      estimates,
		PositionSource: source,
	}

	_, err = h.Handle(context.Background(), scheduler.ScrapeCommand{VesselID: 1})
	require.NoError(t, err)

	require.Len(t, estimates.unprocessed, 1)
	assert.Equal(t, vessel.ID(1), estimates.unprocessed[0].VesselID)
	assert.Equal(t, outOfOrder.Truncate(24*time.Hour), estimates.unprocessed[0].Day)

	affected, err := trips.FindByID(context.Background(), inserted[0].TripID)
	require.NoError(t, err)
	assert.Equal(t, trip.StatusUnprocessed, affected.Status, "a trip ending after the out-of-order VMS position must be reset to Unprocessed")
}

func TestDistributeHaulsHandler_AssignsHaulsToTheTripThatContainsThem(t *testing.T) {
	trips := newFakeTrips()
	period, err := shared.NewPeriod(mustTime(t, "2026-01-01T00:00:00Z"), mustTime(t, "2026-01-02T00:00:00Z"))
	require.NoError(t, err)

	inserted, err := trips.Insert(context.Background(), []trip.NewTrip{{
		VesselID:        1,
		Period:          period,
		LandingCoverage: period,
	}})
	require.NoError(t, err)
	require.Len(t, inserted, 1)

	hauls := newFakeHauls()
	inside := haul.Haul{HaulID: 100, StartTimestamp: period.Start.Add(time.Hour), StopTimestamp: period.Start.Add(2 * time.Hour)}
	outside := haul.Haul{HaulID: 200, StartTimestamp: period.End.Add(time.Hour), StopTimestamp: period.End.Add(2 * time.Hour)}
	hauls.byVessel[1] = []haul.Haul{inside, outside}

	h := &scheduler.DistributeHaulsHandler{Trips: trips, Hauls: hauls}

	_, err = h.Handle(context.Background(), scheduler.DistributeHaulsCommand{VesselID: 1})
	require.NoError(t, err)

	assignedTrip, ok := hauls.assignedTo[100]
	require.True(t, ok, "haul inside the trip period should be assigned")
	assert.Equal(t, inserted[0].TripID, assignedTrip)

	_, ok = hauls.assignedTo[200]
	assert.False(t, ok, "haul outside every trip period should stay unassigned")
}

func TestDistributeHaulsHandler_EnrichesHaulsMissingWeatherOrOceanClimate(t *testing.T) {
	trips := newFakeTrips()
	period, err := shared.NewPeriod(mustTime(t, "2026-01-01T00:00:00Z"), mustTime(t, "2026-01-02T00:00:00Z"))
	require.NoError(t, err)

	_, err = trips.Insert(context.Background(), []trip.NewTrip{{
		VesselID:        1,
		Period:          period,
		LandingCoverage: period,
	}})
	require.NoError(t, err)

	hauls := newFakeHauls()
	withLocation := haul.Haul{
		HaulID:         100,
		StartTimestamp: period.Start.Add(time.Hour),
		StopTimestamp:  period.Start.Add(2 * time.Hour),
		CatchLocation:  &shared.Point{Lat: 67.5, Lon: 14.0},
	}
	noLocation := haul.Haul{
		HaulID:         101,
		StartTimestamp: period.Start.Add(3 * time.Hour),
		StopTimestamp:  period.Start.Add(4 * time.Hour),
	}
	hauls.byVessel[1] = []haul.Haul{withLocation, noLocation}

	client := &fakeOceanClient{}
	h := &scheduler.DistributeHaulsHandler{Trips: trips, Hauls: hauls, OceanClient: client}

	_, err = h.Handle(context.Background(), scheduler.DistributeHaulsCommand{VesselID: 1})
	require.NoError(t, err)

	enriched, ok := hauls.enriched[100]
	require.True(t, ok, "haul with a catch location should be enriched")
	require.NotNil(t, enriched.Weather)
	require.NotNil(t, enriched.OceanClimate)
	assert.Equal(t, 8.2, enriched.OceanClimate.SeaTempC)

	_, ok = hauls.enriched[101]
	assert.False(t, ok, "haul without a catch location cannot be enriched")
}

func TestDistributeHaulsHandler_NoOpsWhenTheVesselHasNoTrips(t *testing.T) {
	h := &scheduler.DistributeHaulsHandler{Trips: newFakeTrips(), Hauls: newFakeHauls()}

	_, err := h.Handle(context.Background(), scheduler.DistributeHaulsCommand{VesselID: 1})

	assert.NoError(t, err)
}

func TestComputeBenchmarksHandler_UsesLandingsForCatchValuePerFuel(t *testing.T) {
	trips := newFakeTrips()
	period, err := shared.NewPeriod(mustTime(t, "2026-01-01T00:00:00Z"), mustTime(t, "2026-01-02T00:00:00Z"))
	require.NoError(t, err)

	inserted, err := trips.Insert(context.Background(), []trip.NewTrip{{
		VesselID:        1,
		Period:          period,
		LandingCoverage: period,
	}})
	require.NoError(t, err)

	price := 4000.0
	landings := newFakeLandings()
	landings.byVessel[1] = []landing.Landing{
		{LandingID: "a", VesselID: 1, LandingTimestamp: period.Start.Add(time.Hour), TotalLivingWeight: 500, PriceForFisher: &price},
	}

	estimates := &fakeEstimates{}
	err = estimates.Upsert(context.Background(), []fuel.Estimate{{VesselID: 1, Date: period.Start, EstimateLiters: 200}})
	require.NoError(t, err)

	h := &scheduler.ComputeBenchmarksHandler{
		Vessels:      newFakeVessels(&vessel.Vessel{ID: 1, ServiceSpeedKnots: 10, MaxCargoWeightKg: 1000, Engines: []vessel.Engine{{PowerKW: 500, SFC: 200}}}),
		Trips:        trips,
		Positions:    newFakePositions(),
		Hauls:        newFakeHauls(),
		Landings:     landings,
		Estimates:    estimates,
		Measurements: &fakeMeasurements{byCallSign: map[string][]fuel.Measurement{}},
		Benchmarks:   &fakeBenchmarks{},
	}

	_, err = h.Handle(context.Background(), scheduler.ComputeBenchmarksCommand{VesselID: 1})
	require.NoError(t, err)

	benchmarks := h.Benchmarks.(*fakeBenchmarks)
	require.Equal(t, len(benchmark.All), len(benchmarks.upserted))

	var found bool
	for _, o := range benchmarks.upserted {
		if o.BenchmarkID == benchmark.CatchValuePerFuel {
			found = true
			assert.Equal(t, inserted[0].TripID, o.TripID)
			assert.Equal(t, 20.0, o.Value, "4000 for fisher / 200 liters")
			assert.False(t, o.Unrealistic)
		}
	}
	require.True(t, found)
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}
