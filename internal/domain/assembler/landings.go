package assembler

import (
	"sort"
	"time"

	"github.com/orcalabs/kyogre-go/internal/domain/shared"
	"github.com/orcalabs/kyogre-go/internal/domain/trip"
	"github.com/orcalabs/kyogre-go/internal/domain/vessel"
)

// maxLandingTripDuration caps a landings trip's period span; longer spans
// are shrunk from the start (spec §4.1 MAX_LANDING_TRIP_DURATION).
const maxLandingTripDuration = 60 * 24 * time.Hour

// LandingsStrategy groups landing events by UTC calendar day, taking each
// day's latest report timestamp as the trip boundary between it and the
// next (spec §4.1 "Landings assembler").
type LandingsStrategy struct{}

func (LandingsStrategy) ID() vessel.AssemblerID { return vessel.AssemblerLandings }

func (LandingsStrategy) Assemble(vesselID vessel.ID, events []vessel.Event) (Result, error) {
	landings := filterByType(events, vessel.EventLanding)
	if len(landings) == 0 {
		return Result{}, nil
	}

	sorted := make([]vessel.Event, len(landings))
	copy(sorted, landings)
	sort.Sort(vessel.ByReportTimestamp(sorted))

	boundaries, ids := dailyRepresentatives(sorted)

	first := boundaries[0].Add(-24 * time.Hour)
	boundaries = append([]time.Time{first}, boundaries...)
	ids = append([]*uint64{nil}, ids...)

	trips := make([]trip.NewTrip, 0, len(boundaries)-1)
	for i := 0; i+1 < len(boundaries); i++ {
		start := boundaries[i]
		end := boundaries[i+1]
		if !end.After(start) {
			return Result{}, shared.NewInvalidRangeError("landing trip produced a non-positive range")
		}

		periodStart := start
		if end.Sub(start) > maxLandingTripDuration {
			periodStart = end.Add(-maxLandingTripDuration)
		}

		period, err := shared.NewPeriodWithBounds(periodStart, end, shared.Exclusive, shared.Inclusive)
		if err != nil {
			return Result{}, err
		}
		coverage, err := shared.NewPeriodWithBounds(start, end, shared.Exclusive, shared.Inclusive)
		if err != nil {
			return Result{}, err
		}

		trips = append(trips, trip.NewTrip{
			VesselID:           vesselID,
			Period:             period,
			LandingCoverage:    coverage,
			AssemblerID:        vessel.AssemblerLandings,
			StartVesselEventID: ids[i],
			EndVesselEventID:   ids[i+1],
		})
	}

	return Result{Trips: sortByStart(trips)}, nil
}

// dailyRepresentatives groups sorted landing events by UTC calendar day
// and returns the day's latest report timestamp plus its event id, one
// pair per day, in day order (spec §4.1: "Within a day the latest landing
// timestamp is the day's representative").
func dailyRepresentatives(sorted []vessel.Event) ([]time.Time, []*uint64) {
	type dayGroup struct {
		day       time.Time
		timestamp time.Time
		eventID   uint64
	}

	groups := make([]dayGroup, 0)
	for _, e := range sorted {
		day := truncateToUTCDay(e.ReportTimestamp)
		if len(groups) > 0 && groups[len(groups)-1].day.Equal(day) {
			last := &groups[len(groups)-1]
			if e.ReportTimestamp.After(last.timestamp) {
				last.timestamp = e.ReportTimestamp
				last.eventID = e.EventID
			}
			continue
		}
		groups = append(groups, dayGroup{day: day, timestamp: e.ReportTimestamp, eventID: e.EventID})
	}

	timestamps := make([]time.Time, len(groups))
	ids := make([]*uint64, len(groups))
	for i, g := range groups {
		timestamps[i] = g.timestamp
		id := g.eventID
		ids[i] = &id
	}
	return timestamps, ids
}

func truncateToUTCDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func filterByType(events []vessel.Event, t vessel.EventType) []vessel.Event {
	filtered := make([]vessel.Event, 0, len(events))
	for _, e := range events {
		if e.EventType == t {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
