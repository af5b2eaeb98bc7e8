package scheduler

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/orcalabs/kyogre-go/internal/application/common"
	"github.com/orcalabs/kyogre-go/internal/domain/assembler"
	"github.com/orcalabs/kyogre-go/internal/domain/benchmark"
	"github.com/orcalabs/kyogre-go/internal/domain/fuel"
	"github.com/orcalabs/kyogre-go/internal/domain/haul"
	"github.com/orcalabs/kyogre-go/internal/domain/landing"
	"github.com/orcalabs/kyogre-go/internal/domain/position"
	"github.com/orcalabs/kyogre-go/internal/domain/precision"
	"github.com/orcalabs/kyogre-go/internal/domain/shared"
	"github.com/orcalabs/kyogre-go/internal/domain/trip"
	"github.com/orcalabs/kyogre-go/internal/domain/vessel"
)

// epoch bounds the first lookback a vessel with no prior trips/events gets;
// there is no meaningful "since" watermark before any data exists.
var epoch = time.Unix(0, 0).UTC()

// conflictResolutionLimit bounds how many pending conflicts one
// AssembleTripsCommand drains per vessel per pass, keeping a single
// worker's unit of work bounded (spec §5 "bounded worker fan-out").
const conflictResolutionLimit = 50

// ScrapeHandler ingests new vessel events and AIS/VMS positions from the
// scraper collaborators (spec §6 "from scrapers, out of scope here"). A
// freshly scraped event that bisects an already-assembled trip enqueues a
// reassembly conflict (spec §4.1 Conflict contract, §8 Conflict
// convergence); a freshly scraped position invalidates whatever
// downstream fuel/trip state its day or out-of-order arrival touches
// (spec §4.4 Invalidation, §8.3 Out-of-order VMS).
type ScrapeHandler struct {
	Events    common.VesselEventRepository
	Trips     common.TripRepository
	Conflicts common.ConflictRepository
	Positions common.PositionRepository
	Estimates common.FuelEstimateRepository

	Source         common.VesselEventSource
	PositionSource common.PositionSource
}

func (h *ScrapeHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd := request.(ScrapeCommand)

	if err := h.scrapeEvents(ctx, cmd.VesselID); err != nil {
		return nil, err
	}
	if err := h.scrapePositions(ctx, cmd.VesselID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (h *ScrapeHandler) scrapeEvents(ctx context.Context, id vessel.ID) error {
	if h.Source == nil {
		return nil
	}

	since := epoch
	existing, err := h.Events.ListByVesselSince(ctx, id, epoch)
	if err != nil {
		return err
	}
	for _, e := range existing {
		if e.ReportTimestamp.After(since) {
			since = e.ReportTimestamp
		}
	}

	fresh, err := h.Source.FetchSince(ctx, id, since)
	if err != nil {
		return err
	}
	if len(fresh) == 0 {
		return nil
	}

	if err := h.enqueueConflictIfLate(ctx, id, fresh); err != nil {
		return err
	}
	return h.Events.Save(ctx, fresh)
}

// enqueueConflictIfLate marks a conflict when a freshly scraped event's
// report timestamp falls at or before the latest already-assembled
// trip's period end: such an event bisects that trip (and possibly
// later ones), so ordinary forward assembly from the watermark would
// never revisit it (spec §4.1 "a new landing arrives that bisects an
// existing trip's period").
func (h *ScrapeHandler) enqueueConflictIfLate(ctx context.Context, id vessel.ID, fresh []vessel.Event) error {
	if h.Trips == nil || h.Conflicts == nil {
		return nil
	}

	existing, err := h.Trips.FindByVessel(ctx, id)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		return nil
	}

	var latestEnd time.Time
	for _, t := range existing {
		if t.Period.End.After(latestEnd) {
			latestEnd = t.Period.End
		}
	}

	var earliest time.Time
	for _, e := range fresh {
		if e.ReportTimestamp.After(latestEnd) {
			continue
		}
		if earliest.IsZero() || e.ReportTimestamp.Before(earliest) {
			earliest = e.ReportTimestamp
		}
	}
	if earliest.IsZero() {
		return nil
	}

	window, err := shared.NewPeriod(earliest, latestEnd.Add(time.Nanosecond))
	if err != nil {
		return err
	}
	return h.Conflicts.Enqueue(ctx, assembler.Conflict{VesselID: id, Timestamp: window})
}

// scrapePositions ingests new AIS/VMS positions since the vessel's last
// processed VMS watermark, then invalidates whatever downstream state
// the insert touches (spec §4.4 Invalidation).
func (h *ScrapeHandler) scrapePositions(ctx context.Context, id vessel.ID) error {
	if h.PositionSource == nil {
		return nil
	}

	latestVms, err := h.Positions.LatestProcessedVms(ctx, id)
	if err != nil {
		return err
	}
	since := epoch
	if latestVms != nil {
		since = *latestVms
	}

	fresh, err := h.PositionSource.FetchSince(ctx, id, since)
	if err != nil {
		return err
	}
	if len(fresh) == 0 {
		return nil
	}

	if err := h.Positions.SavePositions(ctx, id, fresh); err != nil {
		return err
	}
	return h.invalidateForPositions(ctx, id, latestVms, fresh)
}

// invalidateForPositions marks every touched day's fuel estimate
// Unprocessed, and — when one of the fresh positions is a VMS point
// older than the vessel's previous VMS watermark — resets every trip
// whose period ends after that position back to Unprocessed, since a
// later out-of-order arrival may change history (spec §4.4, §8.3).
func (h *ScrapeHandler) invalidateForPositions(ctx context.Context, id vessel.ID, latestVms *time.Time, fresh []position.AisVmsPosition) error {
	days := make(map[time.Time]struct{}, len(fresh))
	var outOfOrderVms time.Time
	for _, p := range fresh {
		days[p.Timestamp.Truncate(24*time.Hour)] = struct{}{}
		if latestVms == nil || p.PositionType != position.TypeVms || !p.Timestamp.Before(*latestVms) {
			continue
		}
		if outOfOrderVms.IsZero() || p.Timestamp.Before(outOfOrderVms) {
			outOfOrderVms = p.Timestamp
		}
	}

	for day := range days {
		if err := h.Estimates.MarkUnprocessed(ctx, id, day); err != nil {
			return err
		}
	}
	if outOfOrderVms.IsZero() {
		return nil
	}
	return h.Trips.ResetStatusAfter(ctx, id, outOfOrderVms)
}

// AssembleTripsHandler runs the vessel's preferred strategy over its event
// stream and resolves any pending conflicts first (spec §4.1).
type AssembleTripsHandler struct {
	Vessels   common.VesselRepository
	Events    common.VesselEventRepository
	Trips     common.TripRepository
	Conflicts common.ConflictRepository
}

func (h *AssembleTripsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd := request.(AssembleTripsCommand)

	v, err := h.Vessels.FindByID(ctx, cmd.VesselID)
	if err != nil {
		return nil, err
	}

	if err := h.resolveConflicts(ctx, *v); err != nil {
		return nil, err
	}

	existing, err := h.Trips.FindByVessel(ctx, cmd.VesselID)
	if err != nil {
		return nil, err
	}

	since := epoch
	for _, t := range existing {
		if t.Period.End.After(since) {
			since = t.Period.End
		}
	}

	events, err := h.Events.ListByVesselSince(ctx, cmd.VesselID, since)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	sort.Sort(vessel.ByReportTimestamp(events))

	strategy := assembler.ForVessel(*v)
	result, err := strategy.Assemble(v.ID, events)
	if err != nil {
		return nil, err
	}
	if len(result.Trips) == 0 {
		return nil, nil
	}
	_, err = h.Trips.Insert(ctx, result.Trips)
	return nil, err
}

// resolveConflicts drains this vessel's pending conflicts, reassembling
// and superseding the affected trips for each one (spec §4.1 Conflict
// contract).
func (h *AssembleTripsHandler) resolveConflicts(ctx context.Context, v vessel.Vessel) error {
	conflicts, err := h.Conflicts.NextPending(ctx, conflictResolutionLimit)
	if err != nil {
		return err
	}

	for _, c := range conflicts {
		if c.VesselID != v.ID {
			continue
		}

		existing, err := h.Trips.FindByVessel(ctx, v.ID)
		if err != nil {
			return err
		}
		events, err := h.Events.ListByVesselSince(ctx, v.ID, c.Timestamp.Start)
		if err != nil {
			return err
		}
		sort.Sort(vessel.ByReportTimestamp(events))

		plan, err := assembler.Reassemble(v, existing, events, c.Timestamp)
		if err != nil {
			return err
		}

		if len(plan.SupersededTripIDs) > 0 {
			if err := h.Trips.DeleteCascade(ctx, plan.SupersededTripIDs); err != nil {
				return err
			}
		}
		if len(plan.NewTrips) > 0 {
			if _, err := h.Trips.Insert(ctx, plan.NewTrips); err != nil {
				return err
			}
		}
		if err := h.Conflicts.Resolve(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// RefineTripsPrecisionHandler runs the configured precision pipeline over
// trips missing a period_precision (spec §4.2).
type RefineTripsPrecisionHandler struct {
	Trips     common.TripRepository
	Positions common.PositionRepository
}

func (h *RefineTripsPrecisionHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd := request.(RefineTripsPrecisionCommand)

	trips, err := h.Trips.FindByVessel(ctx, cmd.VesselID)
	if err != nil {
		return nil, err
	}

	pipeline := defaultPrecisionPipeline()
	for _, t := range trips {
		if t.PeriodPrecision != nil {
			continue
		}

		ais, vms, err := h.Positions.ListByVesselAndPeriod(ctx, cmd.VesselID, t.Period.Start, t.Period.End)
		if err != nil {
			return nil, err
		}

		precCtx := precision.Context{
			Positions:       position.Merge(ais, vms),
			Period:          t.Period,
			LandingCoverage: t.LandingCoverage,
			StartPort:       tripPortToPrecisionPoint(t.StartPort),
			EndPort:         tripPortToPrecisionPoint(t.EndPort),
		}

		refined, ok := pipeline.Refine(precCtx)
		if !ok {
			continue
		}
		if err := h.Trips.UpdatePrecision(ctx, t.TripID, refined); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func tripPortToPrecisionPoint(p *trip.Port) *precision.Point {
	if p == nil {
		return nil
	}
	return &precision.Point{ID: p.ID, Point: p.Point}
}

// defaultPrecisionPipeline runs every available strategy at each end,
// first match wins, in the order the spec describes: a close-range
// movement signal first, then the named reference points, then a coarse
// shore-distance fallback (spec §4.2 "run configured start-strategies in
// order until one returns Some(timestamp)").
func defaultPrecisionPipeline() precision.Pipeline {
	configured := []precision.ConfiguredStrategy{
		{Strategy: precision.FirstMovedPointStrategy{}, Config: precision.Config{}.WithDefaults()},
		{Strategy: precision.PortStrategy{}, Config: precision.Config{}.WithDefaults()},
		{Strategy: precision.DeliveryPointStrategy{}, Config: precision.Config{}.WithDefaults()},
		{Strategy: precision.DistanceToShoreStrategy{}, Config: precision.Config{}.WithDefaults()},
	}
	return precision.Pipeline{StartStrategies: configured, EndStrategies: configured}
}

// haulEnrichmentFanout bounds how many concurrent OceanClimateClient calls
// one DistributeHaulsCommand issues, so a vessel with a long backlog of
// unenriched hauls can't starve the rate-limited collaborator's other
// callers (spec §5 "all inter-worker channels are bounded").
const haulEnrichmentFanout = 4

// DistributeHaulsHandler assigns a vessel's catch records to the trip
// whose period contains them (spec §3 Haul), then enriches any hauls still
// missing a weather or ocean-climate reading via the OceanClimateClient
// collaborator (spec §4.7).
type DistributeHaulsHandler struct {
	Trips       common.TripRepository
	Hauls       common.HaulRepository
	OceanClient common.OceanClimateClient
}

func (h *DistributeHaulsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd := request.(DistributeHaulsCommand)

	trips, err := h.Trips.FindByVessel(ctx, cmd.VesselID)
	if err != nil {
		return nil, err
	}
	if len(trips) == 0 {
		return nil, nil
	}

	start, end := tripsBounds(trips)
	hauls, err := h.Hauls.ListByVesselAndPeriod(ctx, cmd.VesselID, start, end)
	if err != nil {
		return nil, err
	}

	for _, hl := range hauls {
		for _, t := range trips {
			if hl.BelongsTo(t.Period) {
				if err := h.Hauls.AssignToTrip(ctx, hl.HaulID, t.TripID); err != nil {
					return nil, err
				}
				break
			}
		}
	}

	if h.OceanClient == nil {
		return nil, nil
	}
	return nil, h.enrichHauls(ctx, cmd.VesselID, start, end)
}

// enrichHauls fetches weather/ocean-climate readings for every haul still
// missing one, fanning calls out across a bounded worker group. The first
// haul's collaborator failure cancels the group's shared context, so the
// remaining fetches are aborted, and the error is returned to the caller's
// per-vessel error handling (spec §7 "per-vessel failures ... are logged
// ... and skipped").
func (h *DistributeHaulsHandler) enrichHauls(ctx context.Context, id vessel.ID, start, end time.Time) error {
	pending, err := h.Hauls.ListMissingEnrichment(ctx, id, start, end)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(haulEnrichmentFanout)

	for _, hl := range pending {
		hl := hl
		if hl.CatchLocation == nil {
			continue
		}
		group.Go(func() error {
			return h.enrichOne(gctx, hl)
		})
	}
	return group.Wait()
}

func (h *DistributeHaulsHandler) enrichOne(ctx context.Context, hl haul.Haul) error {
	point := common.AreaPoint{Lat: hl.CatchLocation.Lat, Lon: hl.CatchLocation.Lon}
	at := hl.StartTimestamp

	var weather *common.WeatherReading
	if !hl.HasWeather {
		w, err := h.OceanClient.WeatherAt(ctx, point, at)
		if err != nil {
			return err
		}
		weather = w
	}

	var oceanClimate *common.OceanClimateReading
	if !hl.HasOceanClimate {
		o, err := h.OceanClient.OceanClimateAt(ctx, point, at)
		if err != nil {
			return err
		}
		oceanClimate = o
	}

	if weather == nil && oceanClimate == nil {
		return nil
	}
	return h.Hauls.SaveEnrichment(ctx, hl.HaulID, weather, oceanClimate)
}

func tripsBounds(trips []trip.Trip) (start, end time.Time) {
	start, end = trips[0].Period.Start, trips[0].Period.End
	for _, t := range trips[1:] {
		if t.Period.Start.Before(start) {
			start = t.Period.Start
		}
		if t.Period.End.After(end) {
			end = t.Period.End
		}
	}
	return start, end
}

// expectedPositionIntervalMinutes is the assumed nominal AIS/VMS reporting
// cadence used to derive Pipeline.Run's expectedPositions parameter (spec
// §4.3 track coverage); no fixed interval is given in spec, so this
// follows common AIS reporting cadence.
const expectedPositionIntervalMinutes = 15.0

// ComputeTripDistanceHandler runs the position layer pipeline over each
// trip's track, persists the pruning result, and upserts the day-bucketed
// fuel estimates the benchmark stage consumes (spec §4.3, §4.4).
type ComputeTripDistanceHandler struct {
	Vessels   common.VesselRepository
	Trips     common.TripRepository
	Positions common.PositionRepository
	Hauls     common.HaulRepository
	Estimates common.FuelEstimateRepository
}

func (h *ComputeTripDistanceHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd := request.(ComputeTripDistanceCommand)

	v, err := h.Vessels.FindByID(ctx, cmd.VesselID)
	if err != nil {
		return nil, err
	}
	if !v.HasPositionIdentity() {
		return nil, nil
	}

	trips, err := h.Trips.FindByVessel(ctx, cmd.VesselID)
	if err != nil {
		return nil, err
	}

	layerPipeline := position.NewPipeline(60*time.Second, 40)

	for _, t := range trips {
		ais, vms, err := h.Positions.ListByVesselAndPeriod(ctx, cmd.VesselID, t.Period.Start, t.Period.End)
		if err != nil {
			return nil, err
		}

		expected := t.Period.Duration().Minutes() / expectedPositionIntervalMinutes
		output := layerPipeline.Run(ais, vms, t.Period, expected)
		if err := h.Positions.SaveLayerOutput(ctx, t.TripID, output); err != nil {
			return nil, err
		}

		hauls, err := h.Hauls.ListByVesselAndPeriod(ctx, cmd.VesselID, t.Period.Start, t.Period.End)
		if err != nil {
			return nil, err
		}
		windows := make([]fuel.HaulWindow, 0, len(hauls))
		for _, hl := range hauls {
			windows = append(windows, fuel.HaulWindow{Start: hl.StartTimestamp, Stop: hl.StopTimestamp, Weight: hl.TotalLivingWeight})
		}

		estimates := fuel.DayEstimates(*v, output.TripPositions, v.MaxCargoWeightKg, windows)
		if len(estimates) == 0 {
			continue
		}
		if err := h.Estimates.Upsert(ctx, estimates); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// landingPriceForFisher sums the fisher's share of catch value across a
// trip's landings (spec §4.5 CatchValuePerFuel "landing_price_for_fisher").
// hasPrice is false when no landing in the window carries a price at
// all, distinguishing "zero landings/price" from "priced at zero".
func landingPriceForFisher(landings []landing.Landing) (sum float64, hasPrice bool) {
	for _, l := range landings {
		if l.PriceForFisher == nil {
			continue
		}
		sum += *l.PriceForFisher
		hasPrice = true
	}
	return sum, hasPrice
}

// tripDistanceMeters sums great-circle distance across a retained track in
// timestamp order (spec §4.5 WeightPerDistance/Eeoi inputs).
func tripDistanceMeters(positions []position.AisVmsPosition) float64 {
	var total float64
	for i := 0; i+1 < len(positions); i++ {
		total += positions[i].Point.DistanceMeters(positions[i+1].Point)
	}
	return total
}

// ComputeBenchmarksHandler computes the fixed benchmark set for every
// trip of a vessel and upserts the result (spec §4.5).
type ComputeBenchmarksHandler struct {
	Vessels      common.VesselRepository
	Trips        common.TripRepository
	Positions    common.PositionRepository
	Hauls        common.HaulRepository
	Landings     common.LandingRepository
	Estimates    common.FuelEstimateRepository
	Measurements common.FuelMeasurementRepository
	Benchmarks   common.BenchmarkRepository
}

func (h *ComputeBenchmarksHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd := request.(ComputeBenchmarksCommand)

	v, err := h.Vessels.FindByID(ctx, cmd.VesselID)
	if err != nil {
		return nil, err
	}
	trips, err := h.Trips.FindByVessel(ctx, cmd.VesselID)
	if err != nil {
		return nil, err
	}
	if len(trips) == 0 {
		return nil, nil
	}

	var pairs []fuel.Pair
	if v.CallSign != nil {
		measurements, err := h.Measurements.ListByCallSignOrdered(ctx, *v.CallSign)
		if err != nil {
			return nil, err
		}
		pairs = consecutivePairs(measurements)
	}

	outputs := make([]benchmark.Output, 0, len(trips)*len(benchmark.All))
	for _, t := range trips {
		ais, vms, err := h.Positions.ListByVesselAndPeriod(ctx, cmd.VesselID, t.Period.Start, t.Period.End)
		if err != nil {
			return nil, err
		}
		merged := position.Merge(ais, vms)

		hauls, err := h.Hauls.ListByVesselAndPeriod(ctx, cmd.VesselID, t.Period.Start, t.Period.End)
		if err != nil {
			return nil, err
		}
		var totalWeight float64
		for _, hl := range hauls {
			totalWeight += hl.TotalLivingWeight
		}

		estimates, err := h.Estimates.ListByVesselAndRange(ctx, cmd.VesselID, t.Period.Start, t.Period.End)
		if err != nil {
			return nil, err
		}
		fuelLiters := fuel.ActualConsumption(t.Period.Start, t.Period.End, pairs, estimates)

		coverage := t.EffectiveLandingCoverageEnd(t.Period)
		landings, err := h.Landings.ListByVesselAndPeriod(ctx, cmd.VesselID, coverage.Start, coverage.End)
		if err != nil {
			return nil, err
		}
		landingPrice, hasLandingPrice := landingPriceForFisher(landings)

		in := benchmark.Inputs{
			TripID:                t.TripID,
			TotalLivingWeight:     totalWeight,
			PeriodHours:           t.Period.Duration().Hours(),
			MetersTravelled:       tripDistanceMeters(merged),
			FuelLiters:            fuelLiters,
			HasEnginePower:        v.TotalEnginePowerKW() > 0,
			CargoWeightKg:         v.MaxCargoWeightKg,
			HasLandings:           len(landings) > 0,
			LandingPriceForFisher: landingPrice,
			HasLandingPrice:       hasLandingPrice,
		}
		outputs = append(outputs, benchmark.Compute(in)...)
	}

	return nil, h.Benchmarks.Upsert(ctx, outputs)
}

// consecutivePairs builds the ordered (earlier, later) pairs the
// calibration query walks over (spec §4.4 Calibration).
func consecutivePairs(measurements []fuel.Measurement) []fuel.Pair {
	if len(measurements) < 2 {
		return nil
	}
	pairs := make([]fuel.Pair, 0, len(measurements)-1)
	for i := 0; i+1 < len(measurements); i++ {
		pairs = append(pairs, fuel.Pair{Earlier: measurements[i], Later: measurements[i+1]})
	}
	return pairs
}

// UpdateDatabaseViewsHandler is the chain's vessel-agnostic terminal
// stage; a Refresher is optional since the spec names no concrete
// materialized view to rebuild, only the stage itself (spec §4.6).
type UpdateDatabaseViewsHandler struct {
	Refresher func(ctx context.Context) error
}

func (h *UpdateDatabaseViewsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if h.Refresher == nil {
		return nil, nil
	}
	return nil, h.Refresher(ctx)
}
