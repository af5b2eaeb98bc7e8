package position

import (
	"time"

	"github.com/orcalabs/kyogre-go/internal/domain/shared"
)

// Layer is the uniform interface every pruning layer satisfies, dispatched
// in fixed pipeline order (spec §9 "sealed variant list dispatched via a
// uniform trait/interface").
type Layer interface {
	Name() PruneReason
	Prune(input TripPositionLayerOutput, period shared.Period, expectedPositions float64) TripPositionLayerOutput
}

// DefaultConflictDurationLimit is the Δt threshold below which adjacent
// differing-type positions are considered conflicting (spec §4.3 L1).
const DefaultConflictDurationLimit = 60 * time.Second

// DefaultUnrealisticSpeedKnotsLimit is the greedy-filter speed ceiling
// (spec §4.3 L2).
const DefaultUnrealisticSpeedKnotsLimit = 70.0

// AisVmsConflictLayer prunes the newer "newer-tags-current-and-next"
// formulation the open question in spec §9 resolves on: for adjacent pairs
// of differing position_type within DurationLimit, prune the less
// authoritative one, tagging both the retained predecessor and the
// retained successor with PrunedBy = AisVmsConflict.
type AisVmsConflictLayer struct {
	DurationLimit time.Duration
}

// NewAisVmsConflictLayer builds the layer with spec defaults unless
// overridden.
func NewAisVmsConflictLayer(durationLimit time.Duration) AisVmsConflictLayer {
	if durationLimit <= 0 {
		durationLimit = DefaultConflictDurationLimit
	}
	return AisVmsConflictLayer{DurationLimit: durationLimit}
}

func (l AisVmsConflictLayer) Name() PruneReason { return ReasonAisVmsConflict }

func (l AisVmsConflictLayer) Prune(input TripPositionLayerOutput, period shared.Period, expectedPositions float64) TripPositionLayerOutput {
	positions := input.TripPositions
	if len(positions) < 2 {
		return recompute(input, expectedPositions)
	}

	retained := make([]AisVmsPosition, len(positions))
	copy(retained, positions)
	pruned := append([]PrunedTripPosition{}, input.PrunedPositions...)

	// pruneAt marks index i as dropped, recording provenance.
	dropped := make([]bool, len(retained))

	for i := 0; i < len(retained)-1; i++ {
		if dropped[i] {
			continue
		}
		cur := retained[i]
		// find next non-dropped position
		j := i + 1
		for j < len(retained) && dropped[j] {
			j++
		}
		if j >= len(retained) {
			break
		}
		next := retained[j]

		if cur.PositionType == next.PositionType {
			continue
		}
		if next.Timestamp.Sub(cur.Timestamp) >= l.DurationLimit {
			continue
		}

		reason := l.Name()

		switch {
		case cur.PositionType == TypeAis && next.PositionType == TypeVms:
			pruned = append(pruned, PrunedTripPosition{
				Original:  next,
				TripLayer: reason,
				Value: map[string]any{
					"conflicting_position_type": string(cur.PositionType),
					"conflicting_timestamp":     cur.Timestamp,
				},
			})
			dropped[j] = true
			retained[i].PrunedBy = &reason

			// tag the position after next, if present
			k := j + 1
			for k < len(retained) && dropped[k] {
				k++
			}
			if k < len(retained) {
				retained[k].PrunedBy = &reason
			}

		case cur.PositionType == TypeVms && next.PositionType == TypeAis:
			pruned = append(pruned, PrunedTripPosition{
				Original:  cur,
				TripLayer: reason,
				Value: map[string]any{
					"conflicting_position_type": string(next.PositionType),
					"conflicting_timestamp":     next.Timestamp,
				},
			})
			dropped[i] = true

			// tag the previous retained position, if present
			p := i - 1
			for p >= 0 && dropped[p] {
				p--
			}
			if p >= 0 {
				retained[p].PrunedBy = &reason
			}
			retained[j].PrunedBy = &reason
		}
	}

	final := make([]AisVmsPosition, 0, len(retained))
	for i, p := range retained {
		if !dropped[i] {
			final = append(final, p)
		}
	}

	return recompute(TripPositionLayerOutput{
		TripPositions:   final,
		PrunedPositions: pruned,
	}, expectedPositions)
}

// UnrealisticSpeedLayer greedily drops candidates whose implied speed from
// the last retained position exceeds KnotsLimit (spec §4.3 L2).
type UnrealisticSpeedLayer struct {
	KnotsLimit float64
}

func NewUnrealisticSpeedLayer(knotsLimit float64) UnrealisticSpeedLayer {
	if knotsLimit <= 0 {
		knotsLimit = DefaultUnrealisticSpeedKnotsLimit
	}
	return UnrealisticSpeedLayer{KnotsLimit: knotsLimit}
}

func (l UnrealisticSpeedLayer) Name() PruneReason { return ReasonUnrealisticSpeed }

func (l UnrealisticSpeedLayer) Prune(input TripPositionLayerOutput, period shared.Period, expectedPositions float64) TripPositionLayerOutput {
	positions := input.TripPositions
	if len(positions) <= 1 {
		return recompute(input, expectedPositions)
	}

	retained := []AisVmsPosition{positions[0]}
	pruned := append([]PrunedTripPosition{}, input.PrunedPositions...)

	for _, candidate := range positions[1:] {
		last := retained[len(retained)-1]
		speed := SpeedKnots(last, candidate)
		if speed >= l.KnotsLimit {
			pruned = append(pruned, PrunedTripPosition{
				Original:  candidate,
				TripLayer: l.Name(),
				Value: map[string]any{
					"speed_knots": speed,
					"from":        last.Timestamp,
				},
			})
			continue
		}
		retained = append(retained, candidate)
	}

	return recompute(TripPositionLayerOutput{
		TripPositions:   retained,
		PrunedPositions: pruned,
	}, expectedPositions)
}

// recompute derives track_coverage as min(1, retained/expected) after a
// layer runs (spec §4.3).
func recompute(output TripPositionLayerOutput, expectedPositions float64) TripPositionLayerOutput {
	if expectedPositions <= 0 {
		output.TrackCoverage = 0
		return output
	}
	coverage := float64(len(output.TripPositions)) / expectedPositions
	if coverage > 1 {
		coverage = 1
	}
	output.TrackCoverage = coverage
	return output
}

// Pipeline runs the fixed-order layer sequence L1 AisVmsConflict, then L2
// UnrealisticSpeed (spec §4.3).
type Pipeline struct {
	Layers []Layer
}

// NewPipeline builds the default, spec-ordered pipeline.
func NewPipeline(conflictDuration time.Duration, speedLimitKnots float64) Pipeline {
	return Pipeline{Layers: []Layer{
		NewAisVmsConflictLayer(conflictDuration),
		NewUnrealisticSpeedLayer(speedLimitKnots),
	}}
}

// Run merges ais/vms positions and applies every configured layer in
// order, returning the final output.
func (p Pipeline) Run(ais, vms []AisVmsPosition, period shared.Period, expectedPositions float64) TripPositionLayerOutput {
	merged := Merge(ais, vms)
	output := recompute(TripPositionLayerOutput{TripPositions: merged}, expectedPositions)
	for _, layer := range p.Layers {
		output = layer.Prune(output, period, expectedPositions)
	}
	return output
}
