package scheduler_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/orcalabs/kyogre-go/internal/application/common"
	"github.com/orcalabs/kyogre-go/internal/domain/assembler"
	"github.com/orcalabs/kyogre-go/internal/domain/benchmark"
	"github.com/orcalabs/kyogre-go/internal/domain/fuel"
	"github.com/orcalabs/kyogre-go/internal/domain/haul"
	"github.com/orcalabs/kyogre-go/internal/domain/landing"
	"github.com/orcalabs/kyogre-go/internal/domain/pipeline"
	"github.com/orcalabs/kyogre-go/internal/domain/position"
	"github.com/orcalabs/kyogre-go/internal/domain/shared"
	"github.com/orcalabs/kyogre-go/internal/domain/trip"
	"github.com/orcalabs/kyogre-go/internal/domain/vessel"
)

// fakeVessels is an in-memory VesselRepository for scheduler-layer tests.
type fakeVessels struct {
	byID map[vessel.ID]*vessel.Vessel
}

func newFakeVessels(vessels ...*vessel.Vessel) *fakeVessels {
	f := &fakeVessels{byID: make(map[vessel.ID]*vessel.Vessel)}
	for _, v := range vessels {
		f.byID[v.ID] = v
	}
	return f
}

func (f *fakeVessels) FindByID(_ context.Context, id vessel.ID) (*vessel.Vessel, error) {
	v, ok := f.byID[id]
	if !ok {
		return nil, shared.NewMissingValueError(fmt.Sprintf("vessel %d not found", id))
	}
	return v, nil
}

func (f *fakeVessels) ListAll(_ context.Context) ([]*vessel.Vessel, error) {
	out := make([]*vessel.Vessel, 0, len(f.byID))
	for _, v := range f.byID {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeVessels) Save(_ context.Context, v *vessel.Vessel) error {
	f.byID[v.ID] = v
	return nil
}

// fakeEvents is an in-memory VesselEventRepository.
type fakeEvents struct {
	byVessel map[vessel.ID][]vessel.Event
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{byVessel: make(map[vessel.ID][]vessel.Event)}
}

func (f *fakeEvents) ListByVesselSince(_ context.Context, id vessel.ID, since time.Time) ([]vessel.Event, error) {
	var out []vessel.Event
	for _, e := range f.byVessel[id] {
		if e.ReportTimestamp.After(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEvents) Save(_ context.Context, events []vessel.Event) error {
	for _, e := range events {
		f.byVessel[e.VesselID] = append(f.byVessel[e.VesselID], e)
	}
	return nil
}

// fakeEventSource is a scripted common.VesselEventSource.
type fakeEventSource struct {
	events []vessel.Event
	err    error
}

func (f *fakeEventSource) FetchSince(_ context.Context, _ vessel.ID, _ time.Time) ([]vessel.Event, error) {
	return f.events, f.err
}

// fakeTrips is an in-memory TripRepository.
type fakeTrips struct {
	byVessel map[vessel.ID][]trip.Trip
	nextID   trip.ID
}

func newFakeTrips() *fakeTrips {
	return &fakeTrips{byVessel: make(map[vessel.ID][]trip.Trip)}
}

func (f *fakeTrips) FindByVessel(_ context.Context, id vessel.ID) ([]trip.Trip, error) {
	return f.byVessel[id], nil
}

func (f *fakeTrips) FindByID(_ context.Context, id trip.ID) (*trip.Trip, error) {
	for _, trips := range f.byVessel {
		for _, t := range trips {
			if t.TripID == id {
				return &t, nil
			}
		}
	}
	return nil, shared.NewMissingValueError(fmt.Sprintf("trip %d not found", id))
}

func (f *fakeTrips) Insert(_ context.Context, newTrips []trip.NewTrip) ([]trip.Trip, error) {
	inserted := make([]trip.Trip, 0, len(newTrips))
	for _, nt := range newTrips {
		f.nextID++
		t := trip.Trip{
			TripID:          f.nextID,
			VesselID:        nt.VesselID,
			Period:          nt.Period,
			LandingCoverage: nt.LandingCoverage,
			StartPort:       nt.StartPort,
			EndPort:         nt.EndPort,
			AssemblerID:     nt.AssemblerID,
		}
		f.byVessel[nt.VesselID] = append(f.byVessel[nt.VesselID], t)
		inserted = append(inserted, t)
	}
	return inserted, nil
}

func (f *fakeTrips) DeleteCascade(_ context.Context, ids []trip.ID) error {
	toDelete := make(map[trip.ID]bool, len(ids))
	for _, id := range ids {
		toDelete[id] = true
	}
	for vesselID, trips := range f.byVessel {
		kept := trips[:0]
		for _, t := range trips {
			if !toDelete[t.TripID] {
				kept = append(kept, t)
			}
		}
		f.byVessel[vesselID] = kept
	}
	return nil
}

func (f *fakeTrips) UpdatePrecision(_ context.Context, id trip.ID, periodPrecision shared.Period) error {
	for vesselID, trips := range f.byVessel {
		for i, t := range trips {
			if t.TripID == id {
				f.byVessel[vesselID][i].PeriodPrecision = &periodPrecision
				return nil
			}
		}
	}
	return shared.NewMissingValueError(fmt.Sprintf("trip %d not found", id))
}

func (f *fakeTrips) SetStatus(_ context.Context, id trip.ID, status trip.ProcessingStatus) error {
	for vesselID, trips := range f.byVessel {
		for i, t := range trips {
			if t.TripID == id {
				f.byVessel[vesselID][i].Status = status
				return nil
			}
		}
	}
	return nil
}

func (f *fakeTrips) ResetStatusAfter(_ context.Context, vesselID vessel.ID, after time.Time) error {
	trips := f.byVessel[vesselID]
	for i, t := range trips {
		if t.Period.End.After(after) {
			trips[i].Status = trip.StatusUnprocessed
		}
	}
	return nil
}

// fakeConflicts is an in-memory ConflictRepository, always empty unless
// seeded, which is all these tests need.
type fakeConflicts struct {
	pending []assembler.Conflict
}

func (f *fakeConflicts) Enqueue(_ context.Context, c assembler.Conflict) error {
	f.pending = append(f.pending, c)
	return nil
}

func (f *fakeConflicts) NextPending(_ context.Context, limit int) ([]assembler.Conflict, error) {
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeConflicts) Resolve(_ context.Context, resolved assembler.Conflict) error {
	kept := f.pending[:0]
	for _, c := range f.pending {
		if c != resolved {
			kept = append(kept, c)
		}
	}
	f.pending = kept
	return nil
}

// fakePositions is an in-memory PositionRepository.
type fakePositions struct {
	byVessel  map[vessel.ID][]position.AisVmsPosition
	saved     map[trip.ID]position.TripPositionLayerOutput
	savedRaw  map[vessel.ID][]position.AisVmsPosition
	latestVms map[vessel.ID]time.Time
}

func newFakePositions() *fakePositions {
	return &fakePositions{
		byVessel:  make(map[vessel.ID][]position.AisVmsPosition),
		saved:     make(map[trip.ID]position.TripPositionLayerOutput),
		savedRaw:  make(map[vessel.ID][]position.AisVmsPosition),
		latestVms: make(map[vessel.ID]time.Time),
	}
}

func (f *fakePositions) SavePositions(_ context.Context, id vessel.ID, positions []position.AisVmsPosition) error {
	f.savedRaw[id] = append(f.savedRaw[id], positions...)
	f.byVessel[id] = append(f.byVessel[id], positions...)
	return nil
}

func (f *fakePositions) ListByVesselAndPeriod(_ context.Context, id vessel.ID, start, end time.Time) ([]position.AisVmsPosition, []position.AisVmsPosition, error) {
	var ais []position.AisVmsPosition
	for _, p := range f.byVessel[id] {
		if !p.Timestamp.Before(start) && !p.Timestamp.After(end) {
			ais = append(ais, p)
		}
	}
	return ais, nil, nil
}

func (f *fakePositions) SaveLayerOutput(_ context.Context, tripID trip.ID, output position.TripPositionLayerOutput) error {
	f.saved[tripID] = output
	return nil
}

func (f *fakePositions) LatestProcessedVms(_ context.Context, id vessel.ID) (*time.Time, error) {
	t, ok := f.latestVms[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

// fakePositionSource is a scripted common.PositionSource.
type fakePositionSource struct {
	positions []position.AisVmsPosition
	err       error
}

func (f *fakePositionSource) FetchSince(_ context.Context, _ vessel.ID, _ time.Time) ([]position.AisVmsPosition, error) {
	return f.positions, f.err
}

// fakeHauls is an in-memory HaulRepository.
type fakeHauls struct {
	mu         sync.Mutex
	byVessel   map[vessel.ID][]haul.Haul
	assignedTo map[uint64]trip.ID
	enriched   map[uint64]enrichedHaul
}

type enrichedHaul struct {
	Weather      *common.WeatherReading
	OceanClimate *common.OceanClimateReading
}

func newFakeHauls() *fakeHauls {
	return &fakeHauls{
		byVessel:   make(map[vessel.ID][]haul.Haul),
		assignedTo: make(map[uint64]trip.ID),
		enriched:   make(map[uint64]enrichedHaul),
	}
}

func (f *fakeHauls) ListByVesselAndPeriod(_ context.Context, id vessel.ID, start, end time.Time) ([]haul.Haul, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []haul.Haul
	for _, h := range f.byVessel[id] {
		if !h.StartTimestamp.Before(start) && !h.StopTimestamp.After(end) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeHauls) AssignToTrip(_ context.Context, haulID uint64, tripID trip.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assignedTo[haulID] = tripID
	return nil
}

func (f *fakeHauls) ListMissingEnrichment(_ context.Context, id vessel.ID, start, end time.Time) ([]haul.Haul, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []haul.Haul
	for _, h := range f.byVessel[id] {
		if h.StartTimestamp.Before(start) || h.StopTimestamp.After(end) {
			continue
		}
		if !h.HasWeather || !h.HasOceanClimate {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeHauls) SaveEnrichment(_ context.Context, haulID uint64, weather *common.WeatherReading, oceanClimate *common.OceanClimateReading) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enriched[haulID] = enrichedHaul{Weather: weather, OceanClimate: oceanClimate}
	return nil
}

// fakeLandings is an in-memory LandingRepository.
type fakeLandings struct {
	byVessel map[vessel.ID][]landing.Landing
}

func newFakeLandings() *fakeLandings {
	return &fakeLandings{byVessel: make(map[vessel.ID][]landing.Landing)}
}

func (f *fakeLandings) ListByVesselAndPeriod(_ context.Context, id vessel.ID, start, end time.Time) ([]landing.Landing, error) {
	var out []landing.Landing
	for _, l := range f.byVessel[id] {
		if !l.LandingTimestamp.Before(start) && !l.LandingTimestamp.After(end) {
			out = append(out, l)
		}
	}
	return out, nil
}

// markedUnprocessedDay records one FuelEstimateRepository.MarkUnprocessed call.
type markedUnprocessedDay struct {
	VesselID vessel.ID
	Day      time.Time
}

// fakeEstimates is an in-memory FuelEstimateRepository.
type fakeEstimates struct {
	upserted    []fuel.Estimate
	unprocessed []markedUnprocessedDay
}

func (f *fakeEstimates) Upsert(_ context.Context, estimates []fuel.Estimate) error {
	f.upserted = append(f.upserted, estimates...)
	return nil
}

func (f *fakeEstimates) ListByVesselAndRange(_ context.Context, _ vessel.ID, _, _ time.Time) ([]fuel.Estimate, error) {
	return f.upserted, nil
}

func (f *fakeEstimates) MarkUnprocessed(_ context.Context, id vessel.ID, day time.Time) error {
	f.unprocessed = append(f.unprocessed, markedUnprocessedDay{VesselID: id, Day: day})
	return nil
}

// fakeMeasurements is an in-memory FuelMeasurementRepository.
type fakeMeasurements struct {
	byCallSign map[string][]fuel.Measurement
}

func (f *fakeMeasurements) ListByCallSignOrdered(_ context.Context, callSign string) ([]fuel.Measurement, error) {
	return f.byCallSign[callSign], nil
}

func (f *fakeMeasurements) Save(_ context.Context, m fuel.Measurement) error {
	f.byCallSign[m.CallSign] = append(f.byCallSign[m.CallSign], m)
	return nil
}

// fakeBenchmarks is an in-memory BenchmarkRepository.
type fakeBenchmarks struct {
	upserted []benchmark.Output
}

func (f *fakeBenchmarks) Upsert(_ context.Context, outputs []benchmark.Output) error {
	f.upserted = append(f.upserted, outputs...)
	return nil
}

func (f *fakeBenchmarks) Average(_ context.Context, _ benchmark.ID, _ benchmark.Filters) (float64, int, error) {
	return 0, 0, nil
}

// fakeTransitions is an in-memory TransitionLogRepository.
type fakeTransitions struct {
	log []pipeline.Transition
}

func (f *fakeTransitions) Append(_ context.Context, t pipeline.Transition) error {
	f.log = append(f.log, t)
	return nil
}

func (f *fakeTransitions) Recent(_ context.Context, maxLookback int) ([]pipeline.Transition, error) {
	if len(f.log) > maxLookback {
		return f.log[len(f.log)-maxLookback:], nil
	}
	return f.log, nil
}

// fakeRuns is an in-memory PipelineRunRepository.
type fakeRuns struct {
	added   []string
	updated []string
}

func (f *fakeRuns) Add(_ context.Context, id string, _ pipeline.State) error {
	f.added = append(f.added, id)
	return nil
}

func (f *fakeRuns) UpdateStatus(_ context.Context, id string, _ string, _, _, _, _ int, _ string) error {
	f.updated = append(f.updated, id)
	return nil
}
