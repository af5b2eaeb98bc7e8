package common

import (
	"context"
	"time"

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

// VesselRepository abstracts vessel persistence, following hexagonal
// architecture: the application layer depends only on this interface,
// never on a concrete GORM/SQL type.
type VesselRepository interface {
	FindByID(ctx context.Context, id vessel.ID) (*vessel.Vessel, error)
	ListAll(ctx context.Context) ([]*vessel.Vessel, error)
	Save(ctx context.Context, v *vessel.Vessel) error
}

// VesselEventRepository abstracts the vessel event stream.
type VesselEventRepository interface {
	ListByVesselSince(ctx context.Context, id vessel.ID, since time.Time) ([]vessel.Event, error)
	Save(ctx context.Context, events []vessel.Event) error
}

// TripRepository abstracts trip persistence and the supersession writes
// the assembler's reassembly plan requires.
type TripRepository interface {
	FindByVessel(ctx context.Context, id vessel.ID) ([]trip.Trip, error)
	FindByID(ctx context.Context, id trip.ID) (*trip.Trip, error)
	Insert(ctx context.Context, newTrips []trip.NewTrip) ([]trip.Trip, error)
	DeleteCascade(ctx context.Context, ids []trip.ID) error
	UpdatePrecision(ctx context.Context, id trip.ID, periodPrecision shared.Period) error
	SetStatus(ctx context.Context, id trip.ID, status trip.ProcessingStatus) error
	ResetStatusAfter(ctx context.Context, vesselID vessel.ID, after time.Time) error
}

// ConflictRepository abstracts the conflict queue that triggers
// reassembly (spec §4.1 Conflict contract).
type ConflictRepository interface {
	Enqueue(ctx context.Context, conflict assembler.Conflict) error
	NextPending(ctx context.Context, limit int) ([]assembler.Conflict, error)
	Resolve(ctx context.Context, conflict assembler.Conflict) error
}

// PositionRepository abstracts AIS/VMS position storage and the merged
// per-trip layer output.
type PositionRepository interface {
	ListByVesselAndPeriod(ctx context.Context, id vessel.ID, start, end time.Time) (ais, vms []position.AisVmsPosition, err error)
	// SavePositions persists freshly ingested raw AIS/VMS positions for a
	// vessel, the trigger spec §4.4 Invalidation reacts to on insert.
	SavePositions(ctx context.Context, id vessel.ID, positions []position.AisVmsPosition) error
	SaveLayerOutput(ctx context.Context, tripID trip.ID, output position.TripPositionLayerOutput) error
	LatestProcessedVms(ctx context.Context, id vessel.ID) (*time.Time, error)
}

// FuelEstimateRepository abstracts per-vessel-day fuel estimate upserts
// and invalidation.
type FuelEstimateRepository interface {
	Upsert(ctx context.Context, estimates []fuel.Estimate) error
	ListByVesselAndRange(ctx context.Context, id vessel.ID, start, end time.Time) ([]fuel.Estimate, error)
	MarkUnprocessed(ctx context.Context, id vessel.ID, day time.Time) error
}

// FuelMeasurementRepository abstracts operator-supplied calibration
// readings.
type FuelMeasurementRepository interface {
	ListByCallSignOrdered(ctx context.Context, callSign string) ([]fuel.Measurement, error)
	Save(ctx context.Context, m fuel.Measurement) error
}

// HaulRepository abstracts catch-record persistence and trip assignment.
type HaulRepository interface {
	ListByVesselAndPeriod(ctx context.Context, id vessel.ID, start, end time.Time) ([]haul.Haul, error)
	AssignToTrip(ctx context.Context, haulID uint64, tripID trip.ID) error

	// ListMissingEnrichment returns the hauls in the given vessel/period
	// window that still lack a weather or ocean-climate reading, so the
	// OceanClimateClient collaborator is only ever queried for hauls that
	// actually need it (spec §3 Haul weather?/ocean_climate?, §4.7).
	ListMissingEnrichment(ctx context.Context, id vessel.ID, start, end time.Time) ([]haul.Haul, error)
	// SaveEnrichment persists whichever of the two readings were
	// obtained; either argument may be nil when that collaborator call
	// failed or returned nothing for the haul's catch location.
	SaveEnrichment(ctx context.Context, haulID uint64, weather *WeatherReading, oceanClimate *OceanClimateReading) error
}

// LandingRepository abstracts persisted catch-sale records, the source
// of the landed-value figures CatchValuePerFuel needs (spec §3 Landing,
// §4.5).
type LandingRepository interface {
	ListByVesselAndPeriod(ctx context.Context, id vessel.ID, start, end time.Time) ([]landing.Landing, error)
}

// BenchmarkRepository abstracts per-trip benchmark output persistence and
// the filtered-average query.
type BenchmarkRepository interface {
	Upsert(ctx context.Context, outputs []benchmark.Output) error
	Average(ctx context.Context, id benchmark.ID, filters benchmark.Filters) (value float64, count int, err error)
}

// TransitionLogRepository abstracts the scheduler's resumability log
// (spec §4.6 Resumability).
type TransitionLogRepository interface {
	Append(ctx context.Context, t pipeline.Transition) error
	Recent(ctx context.Context, maxLookback int) ([]pipeline.Transition, error)
}

// PipelineRunRepository abstracts persistence of a pipeline.Run's
// bookkeeping row, so a crash mid-run can be observed on restart.
type PipelineRunRepository interface {
	Add(ctx context.Context, id string, state pipeline.State) error
	UpdateStatus(ctx context.Context, id string, status string, vesselsTotal, vesselsDone, vesselsFailed, restartCount int, lastError string) error
}

// OceanClimateClient is the external weather/ocean-climate collaborator
// named in spec §6, described only by contract: haul records may be
// enriched with weather and ocean-climate readings for their catch
// location and time, but the service itself is out of scope.
type OceanClimateClient interface {
	WeatherAt(ctx context.Context, point AreaPoint, at time.Time) (*WeatherReading, error)
	OceanClimateAt(ctx context.Context, point AreaPoint, at time.Time) (*OceanClimateReading, error)
}

// AreaPoint is the coordinate shape the ocean-climate client takes,
// decoupled from the domain's shared.Point so this port has no domain
// import cycle back through the adapter.
type AreaPoint struct {
	Lat float64
	Lon float64
}

// WeatherReading is the enrichment attached to a Haul when the caller
// holds the fishing-facility permission (spec §4.7).
type WeatherReading struct {
	WindSpeedMs   float64
	WindDirection float64
	AirTempC      float64
}

// OceanClimateReading is the enrichment attached to a Haul's catch
// location.
type OceanClimateReading struct {
	SeaTempC    float64
	SalinityPsu float64
}

// VesselEventSource abstracts the scraper ingress named in spec §6
// ("from scrapers, out of scope here"): the Scrape state pulls whatever
// new vessel events a vessel's scrapers have produced since a watermark,
// without this package needing to know AIS-stream/ERS-feed transport
// details.
type VesselEventSource interface {
	FetchSince(ctx context.Context, id vessel.ID, since time.Time) ([]vessel.Event, error)
}

// PositionSource abstracts the AIS/VMS feed ingress named in spec §6,
// the same "out of scope here" shape as VesselEventSource: the Scrape
// state pulls whatever new raw positions a vessel's feeds produced since
// a watermark, without this package needing transport details.
type PositionSource interface {
	FetchSince(ctx context.Context, id vessel.ID, since time.Time) ([]position.AisVmsPosition, error)
}

// CurrentTripRepository abstracts the Current-Trip contract's read path:
// for Ers-assembled vessels, the live, unclosed trip prefix, including
// its live hauls and (permission-gated) fishing-facility events (spec
// §4.7). Those two reads have no independent caller outside this
// contract, so they are not split into their own port — GetCurrent's
// GORM implementation queries them directly, the same way it already
// queries events and trips.
type CurrentTripRepository interface {
	GetCurrent(ctx context.Context, id vessel.ID, hasFishingFacilityPermission bool) (*assembler.CurrentTrip, error)
}
