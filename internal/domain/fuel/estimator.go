package fuel

import (
	"sort"
	"time"

	"github.com/orcalabs/kyogre-go/internal/domain/position"
	"github.com/orcalabs/kyogre-go/internal/domain/vessel"
)

// HaulWindow is a [start,stop] span a pair may fall inside, bumping its
// haul_factor (spec §4.4 step 2: "positions inherit haul weight
// distribution"). Weight is the haul's total landed catch, the quantity
// CargoWeightAt distributes across the window to build up onboard cargo
// weight as the trip progresses.
type HaulWindow struct {
	Start, Stop time.Time
	Weight      float64
}

func (w HaulWindow) contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.Stop)
}

// CargoWeightAt returns a vessel's cumulative onboard cargo weight at
// timestamp t within a trip: every haul that finished at or before t
// contributes its full weight, and a haul straddling t contributes a
// share proportional to elapsed time across its own span — piecewise
// linear, reflecting catch accumulating gradually as gear comes in
// rather than landing all at once (spec supplement; grounded on
// original_source engine/states/trips/computation_step/cargo_weight.rs,
// which distributes each haul's weight evenly across the positions
// inside it).
func CargoWeightAt(hauls []HaulWindow, t time.Time) float64 {
	var weight float64
	for _, h := range hauls {
		switch {
		case !h.Stop.After(t):
			weight += h.Weight
		case h.Start.Before(t) && h.Stop.After(t):
			span := h.Stop.Sub(h.Start).Seconds()
			if span <= 0 {
				weight += h.Weight
				continue
			}
			weight += h.Weight * t.Sub(h.Start).Seconds() / span
		}
	}
	return weight
}

func midpoint(a, b time.Time) time.Time {
	return a.Add(b.Sub(a) / 2)
}

// DayEstimates aggregates a vessel's sorted, pruned trip positions into
// one Estimate per calendar day touched, running the kinematic model over
// every adjacent pair and bucketing by pair midpoint (spec §4.4 "Day
// aggregation"). Each pair's cargo weight is CargoWeightAt the pair's
// midpoint, capped at the vessel's maximum cargo capacity.
func DayEstimates(v vessel.Vessel, positions []position.AisVmsPosition, maxCargoWeightKg float64, hauls []HaulWindow) []Estimate {
	type dayAccum struct {
		liters float64
		ais    int
		vms    int
		day    time.Time
	}
	byDay := map[string]*dayAccum{}

	order := make([]string, 0)
	for i := 0; i+1 < len(positions); i++ {
		a, b := positions[i], positions[i+1]
		cargo := CargoWeightAt(hauls, midpoint(a.Timestamp, b.Timestamp))
		if cargo > maxCargoWeightKg {
			cargo = maxCargoWeightKg
		}
		result := EstimatePair(PairInput{
			A:             a,
			B:             b,
			Vessel:        v,
			InHaulWindow:  inAnyWindow(hauls, a.Timestamp, b.Timestamp),
			CargoWeightKg: cargo,
		})

		day := truncateToDay(result.Midpoint)
		key := day.Format(time.RFC3339)
		acc, ok := byDay[key]
		if !ok {
			acc = &dayAccum{day: day}
			byDay[key] = acc
			order = append(order, key)
		}
		acc.liters += result.FuelLiters
	}

	for _, p := range positions {
		day := truncateToDay(p.Timestamp)
		key := day.Format(time.RFC3339)
		acc, ok := byDay[key]
		if !ok {
			acc = &dayAccum{day: day}
			byDay[key] = acc
			order = append(order, key)
		}
		switch p.PositionType {
		case position.TypeAis:
			acc.ais++
		case position.TypeVms:
			acc.vms++
		}
	}

	sort.Strings(order)
	estimates := make([]Estimate, 0, len(order))
	for _, key := range order {
		acc := byDay[key]
		estimates = append(estimates, Estimate{
			VesselID:        v.ID,
			Date:            acc.day,
			EstimateLiters:  acc.liters,
			NumAisPositions: acc.ais,
			NumVmsPositions: acc.vms,
			Status:          StatusProcessed,
		})
	}
	return estimates
}

func inAnyWindow(windows []HaulWindow, a, b time.Time) bool {
	mid := midpoint(a, b)
	for _, w := range windows {
		if w.contains(mid) {
			return true
		}
	}
	return false
}

func truncateToDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// ActualConsumption answers the calibration query over [start, end]: sum
// measurement-pair contributions whose midpoint falls in range, plus the
// estimate liters for any subrange not covered by such a pair (spec §4.4
// Calibration).
func ActualConsumption(start, end time.Time, pairs []Pair, estimates []Estimate) float64 {
	var total float64
	covered := make([]bool, 0, len(estimates))
	estimateDays := make([]time.Time, 0, len(estimates))
	for _, e := range estimates {
		estimateDays = append(estimateDays, e.Date)
		covered = append(covered, false)
	}

	for _, p := range pairs {
		if p.StraddleFraction(start, end) < 0.5 {
			continue
		}
		if !p.InRange(start, end) {
			continue
		}
		total += p.ConsumedLiters()
		for i, d := range estimateDays {
			if !d.Before(p.Earlier.Timestamp) && d.Before(p.Later.Timestamp) {
				covered[i] = true
			}
		}
	}

	for i, e := range estimates {
		if covered[i] {
			continue
		}
		if e.Date.Before(start) || e.Date.After(end) {
			continue
		}
		total += e.EstimateLiters
	}

	return total
}
