// Package benchmark computes the fixed set of per-trip scalar metrics and
// their cross-trip averages (spec §4.5).
package benchmark

import (
	"github.com/orcalabs/kyogre-go/internal/domain/trip"
)

// ID identifies one of the fixed benchmark metrics (spec §4.5).
type ID string

const (
	WeightPerHour     ID = "WeightPerHour"
	WeightPerDistance ID = "WeightPerDistance"
	FuelConsumption   ID = "FuelConsumption"
	WeightPerFuel     ID = "WeightPerFuel"
	Eeoi              ID = "Eeoi"
	CatchValuePerFuel ID = "CatchValuePerFuel"
)

// All lists the fixed benchmark set computed for every trip (spec §4.5).
var All = []ID{WeightPerHour, WeightPerDistance, FuelConsumption, WeightPerFuel, Eeoi, CatchValuePerFuel}

// Output is one stored (trip, benchmark) row; unrealistic rows are
// excluded from averages but still persisted (spec §3 TripBenchmarkOutput).
type Output struct {
	TripID      trip.ID
	BenchmarkID ID
	Value       float64
	Unrealistic bool
}

// tripLengthThresholdNM is the minimum trip distance for Eeoi to be
// considered meaningful (spec §4.5 Eeoi "distance ≤ trip-length
// threshold").
const tripLengthThresholdNM = 1.0

// co2FactorPerKgFuel is the IMO carbon factor for marine diesel oil, kg
// CO2 per kg fuel, applied after converting liters to mass at 0.84 kg/L
// (spec §4.5 Eeoi "CO2_mass").
const co2FactorPerKgFuel = 3.206
const dieselKgPerLiter = 0.84

// Inputs bundles every quantity the fixed benchmark set can need for one
// trip; fields a particular metric doesn't use are simply ignored.
type Inputs struct {
	TripID                trip.ID
	TotalLivingWeight     float64
	PeriodHours           float64
	MetersTravelled       float64
	FuelLiters            float64
	HasEnginePower        bool
	CargoWeightKg         float64
	HasLandings           bool
	LandingPriceForFisher float64
	HasLandingPrice       bool
}

// Compute evaluates every benchmark in All for one trip's inputs (spec
// §4.5 table).
func Compute(in Inputs) []Output {
	outputs := make([]Output, 0, len(All))
	for _, id := range All {
		outputs = append(outputs, computeOne(id, in))
	}
	return outputs
}

func computeOne(id ID, in Inputs) Output {
	switch id {
	case WeightPerHour:
		value := safeDiv(in.TotalLivingWeight, in.PeriodHours)
		return Output{TripID: in.TripID, BenchmarkID: id, Value: value, Unrealistic: value > 1e6}

	case WeightPerDistance:
		value := safeDiv(in.TotalLivingWeight, in.MetersTravelled)
		return Output{TripID: in.TripID, BenchmarkID: id, Value: value, Unrealistic: in.MetersTravelled <= 0}

	case FuelConsumption:
		value := in.FuelLiters
		return Output{TripID: in.TripID, BenchmarkID: id, Value: value, Unrealistic: in.MetersTravelled <= 0 || !in.HasEnginePower}

	case WeightPerFuel:
		value := safeDiv(in.TotalLivingWeight, in.FuelLiters)
		return Output{TripID: in.TripID, BenchmarkID: id, Value: value, Unrealistic: in.FuelLiters <= 0}

	case Eeoi:
		distanceNM := in.MetersTravelled / 1852.0
		co2Mass := in.FuelLiters * dieselKgPerLiter * co2FactorPerKgFuel
		denominator := in.CargoWeightKg * distanceNM
		value := safeDiv(co2Mass, denominator)
		unrealistic := distanceNM <= tripLengthThresholdNM || !in.HasLandings
		return Output{TripID: in.TripID, BenchmarkID: id, Value: value, Unrealistic: unrealistic}

	case CatchValuePerFuel:
		value := safeDiv(in.LandingPriceForFisher, in.FuelLiters)
		return Output{TripID: in.TripID, BenchmarkID: id, Value: value, Unrealistic: in.FuelLiters <= 0 || !in.HasLandingPrice}

	default:
		return Output{TripID: in.TripID, BenchmarkID: id, Value: 0, Unrealistic: true}
	}
}

func safeDiv(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// Filters narrows the trips an Average call considers (spec §4.5
// "/trip_benchmarks/average_* endpoints").
type Filters struct {
	GearGroups        []string
	VesselLengthGroup *string
}

// TripAttributes is what Average needs to test a trip against Filters,
// kept separate from Output so callers can join in repository-fetched
// metadata without the benchmark package depending on persistence.
type TripAttributes struct {
	TripID            trip.ID
	GearGroups        []string
	VesselLengthGroup string
}

// Average computes the arithmetic mean of one benchmark's value over
// trips with unrealistic=false matching Filters (spec §4.5 Aggregates).
func Average(id ID, outputs []Output, attrs map[trip.ID]TripAttributes, filters Filters) (value float64, count int) {
	var sum float64
	for _, o := range outputs {
		if o.BenchmarkID != id || o.Unrealistic {
			continue
		}
		attr, ok := attrs[o.TripID]
		if !ok || !matchesFilters(attr, filters) {
			continue
		}
		sum += o.Value
		count++
	}
	if count == 0 {
		return 0, 0
	}
	return sum / float64(count), count
}

func matchesFilters(attr TripAttributes, filters Filters) bool {
	if filters.VesselLengthGroup != nil && attr.VesselLengthGroup != *filters.VesselLengthGroup {
		return false
	}
	if len(filters.GearGroups) == 0 {
		return true
	}
	for _, want := range filters.GearGroups {
		for _, have := range attr.GearGroups {
			if want == have {
				return true
			}
		}
	}
	return false
}
