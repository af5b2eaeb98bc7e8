package fuel

import (
	"math"
	"time"

	"github.com/orcalabs/kyogre-go/internal/domain/position"
	"github.com/orcalabs/kyogre-go/internal/domain/vessel"
)

// dieselGramToLiter converts grams of marine diesel to liters at the
// model's reference density (spec §4.4 step 7 DIESEL_GRAM_TO_LITER).
const dieselGramToLiter = 1.0 / 840.0

// haulFactorCeiling is the maximum haul_factor a pair can receive when it
// falls inside a haul window (spec §4.4 step 2).
const haulFactorCeiling = 1.3

// PairInput is everything the kinematic model needs about one adjacent
// position pair to compute its fuel contribution (spec §4.4 steps 1-7).
type PairInput struct {
	A, B          position.AisVmsPosition
	Vessel        vessel.Vessel
	InHaulWindow  bool
	CargoWeightKg float64 // 0 when unknown
}

// PairResult is the per-pair fuel contribution plus its temporal midpoint,
// used by day aggregation (spec §4.4 "Day aggregation: sum pair fuels
// whose midpoint falls in the day").
type PairResult struct {
	Midpoint   time.Time
	FuelLiters float64
}

// EstimatePair runs the full MARU-derived kinematic model for one adjacent
// position pair (spec §4.4 steps 1-7).
func EstimatePair(in PairInput) PairResult {
	dt := in.B.Timestamp.Sub(in.A.Timestamp)
	midpoint := in.A.Timestamp.Add(dt / 2)

	if dt <= 0 {
		return PairResult{Midpoint: midpoint, FuelLiters: 0}
	}

	speedKnots := speedForPair(in.A, in.B)
	haulFactor := 1.0
	if in.InHaulWindow {
		haulFactor = haulFactorCeiling
	}

	serviceSpeed := serviceSpeedForCargo(in.Vessel, in.CargoWeightKg)
	loadFactor := loadFactor(speedKnots, serviceSpeed)

	deltaSeconds := dt.Seconds()
	var totalLiters float64
	for _, engine := range in.Vessel.Engines {
		kWh := loadFactor * engine.PowerKW * deltaSeconds * (1 - in.Vessel.DegreeOfElectrification) * haulFactor * 0.85 / 3600
		sfc := engine.SFC * (0.455*loadFactor*loadFactor - 0.71*loadFactor + 1.28)
		totalLiters += sfc * kWh * dieselGramToLiter
	}

	return PairResult{Midpoint: midpoint, FuelLiters: totalLiters}
}

// speedForPair prefers the reported speed_over_ground mean when both
// positions carry one, else derives speed from great-circle distance over
// elapsed time (spec §4.4 step 1).
func speedForPair(a, b position.AisVmsPosition) float64 {
	if a.SpeedOverGround != nil && b.SpeedOverGround != nil {
		return (*a.SpeedOverGround + *b.SpeedOverGround) / 2
	}
	return position.SpeedKnots(a, b)
}

// serviceSpeedForCargo interpolates between empty and full service speed
// by cargo load fraction (spec §4.4 step 3).
func serviceSpeedForCargo(v vessel.Vessel, cargoWeightKg float64) float64 {
	empty := v.EmptyServiceSpeed()
	if v.MaxCargoWeightKg <= 0 {
		return empty
	}
	full := v.FullServiceSpeed()
	frac := clamp(cargoWeightKg/v.MaxCargoWeightKg, 0, 1)
	return empty + frac*(full-empty)
}

// loadFactor is (speed/service_speed)^3 clamped to [0, 0.98] (spec §4.4
// step 4).
func loadFactor(speedKnots, serviceSpeed float64) float64 {
	if serviceSpeed <= 0 {
		return 0
	}
	ratio := speedKnots / serviceSpeed
	return clamp(ratio*ratio*ratio, 0, 0.98)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
