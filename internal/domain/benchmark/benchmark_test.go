package benchmark_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orcalabs/kyogre-go/internal/domain/benchmark"
	"github.com/orcalabs/kyogre-go/internal/domain/trip"
)

func TestCompute_ProducesOneOutputPerBenchmark(t *testing.T) {
	in := benchmark.Inputs{
		TripID:            1,
		TotalLivingWeight: 1000,
		PeriodHours:       10,
		MetersTravelled:   50000,
		FuelLiters:        200,
		HasEnginePower:    true,
		CargoWeightKg:     500,
		HasLandings:       true,
	}

	outputs := benchmark.Compute(in)

	require.Len(t, outputs, len(benchmark.All))
	seen := make(map[benchmark.ID]bool)
	for _, o := range outputs {
		seen[o.BenchmarkID] = true
	}
	for _, id := range benchmark.All {
		assert.True(t, seen[id], "missing output for %s", id)
	}
}

func TestCompute_WeightPerHour(t *testing.T) {
	in := benchmark.Inputs{TotalLivingWeight: 1000, PeriodHours: 10}

	outputs := benchmark.Compute(in)

	value := valueOf(t, outputs, benchmark.WeightPerHour)
	assert.Equal(t, 100.0, value)
}

func TestCompute_FuelConsumption_UnrealisticWithoutEnginePowerOrDistance(t *testing.T) {
	in := benchmark.Inputs{FuelLiters: 200, MetersTravelled: 0, HasEnginePower: true}
	outputs := benchmark.Compute(in)
	assert.True(t, unrealisticOf(t, outputs, benchmark.FuelConsumption))

	in = benchmark.Inputs{FuelLiters: 200, MetersTravelled: 1000, HasEnginePower: false}
	outputs = benchmark.Compute(in)
	assert.True(t, unrealisticOf(t, outputs, benchmark.FuelConsumption))

	in = benchmark.Inputs{FuelLiters: 200, MetersTravelled: 1000, HasEnginePower: true}
	outputs = benchmark.Compute(in)
	assert.False(t, unrealisticOf(t, outputs, benchmark.FuelConsumption))
}

func TestCompute_Eeoi_UnrealisticBelowLengthThresholdOrNoLandings(t *testing.T) {
	in := benchmark.Inputs{MetersTravelled: 100, CargoWeightKg: 500, FuelLiters: 10, HasLandings: true}
	assert.True(t, unrealisticOf(t, benchmark.Compute(in), benchmark.Eeoi), "under the 1nm threshold should be unrealistic")

	in = benchmark.Inputs{MetersTravelled: 5000, CargoWeightKg: 500, FuelLiters: 10, HasLandings: false}
	assert.True(t, unrealisticOf(t, benchmark.Compute(in), benchmark.Eeoi), "no landings should be unrealistic")

	in = benchmark.Inputs{MetersTravelled: 5000, CargoWeightKg: 500, FuelLiters: 10, HasLandings: true}
	assert.False(t, unrealisticOf(t, benchmark.Compute(in), benchmark.Eeoi))
}

func TestCompute_SafeDivisionByZeroYieldsZeroNotNaN(t *testing.T) {
	in := benchmark.Inputs{TotalLivingWeight: 1000, PeriodHours: 0}

	value := valueOf(t, benchmark.Compute(in), benchmark.WeightPerHour)
	assert.Equal(t, 0.0, value)
}

func TestAverage_ExcludesUnrealisticAndNonMatchingFilters(t *testing.T) {
	outputs := []benchmark.Output{
		{TripID: 1, BenchmarkID: benchmark.WeightPerHour, Value: 10, Unrealistic: false},
		{TripID: 2, BenchmarkID: benchmark.WeightPerHour, Value: 9999, Unrealistic: true},
		{TripID: 3, BenchmarkID: benchmark.WeightPerHour, Value: 20, Unrealistic: false},
	}
	attrs := map[trip.ID]benchmark.TripAttributes{
		1: {TripID: 1, GearGroups: []string{"Trawl"}, VesselLengthGroup: "Small"},
		3: {TripID: 3, GearGroups: []string{"Seine"}, VesselLengthGroup: "Large"},
	}

	value, count := benchmark.Average(benchmark.WeightPerHour, outputs, attrs, benchmark.Filters{GearGroups: []string{"Trawl"}})

	assert.Equal(t, 1, count)
	assert.Equal(t, 10.0, value)
}

func TestAverage_EmptyMatchSetReturnsZero(t *testing.T) {
	value, count := benchmark.Average(benchmark.WeightPerHour, nil, nil, benchmark.Filters{})

	assert.Equal(t, 0.0, value)
	assert.Equal(t, 0, count)
}

func valueOf(t *testing.T, outputs []benchmark.Output, id benchmark.ID) float64 {
	t.Helper()
	for _, o := range outputs {
		if o.BenchmarkID == id {
			return o.Value
		}
	}
	t.Fatalf("no output for %s", id)
	return 0
}

func unrealisticOf(t *testing.T, outputs []benchmark.Output, id benchmark.ID) bool {
	t.Helper()
	for _, o := range outputs {
		if o.BenchmarkID == id {
			return o.Unrealistic
		}
	}
	t.Fatalf("no output for %s", id)
	return false
}
