package position_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orcalabs/kyogre-go/internal/domain/position"
	"github.com/orcalabs/kyogre-go/internal/domain/shared"
)

func TestAisVmsConflictLayer_PrunesTheVmsPositionFollowingAnAisPosition(t *testing.T) {
	layer := position.NewAisVmsConflictLayer(time.Minute)
	input := position.TripPositionLayerOutput{
		TripPositions: []position.AisVmsPosition{
			{PositionType: position.TypeAis, Timestamp: mustTime(t, "2026-01-01T00:00:00Z")},
			{PositionType: position.TypeVms, Timestamp: mustTime(t, "2026-01-01T00:00:30Z")},
		},
	}

	output := layer.Prune(input, shared.Period{}, 2)

	require.Len(t, output.TripPositions, 1)
	assert.Equal(t, position.TypeAis, output.TripPositions[0].PositionType)
	require.NotNil(t, output.TripPositions[0].PrunedBy)
	assert.Equal(t, position.ReasonAisVmsConflict, *output.TripPositions[0].PrunedBy)
	require.Len(t, output.PrunedPositions, 1)
	assert.Equal(t, position.ReasonAisVmsConflict, output.PrunedPositions[0].TripLayer)
}

func TestAisVmsConflictLayer_PrunesTheVmsPositionPrecedingAnAisPosition(t *testing.T) {
	layer := position.NewAisVmsConflictLayer(time.Minute)
	input := position.TripPositionLayerOutput{
		TripPositions: []position.AisVmsPosition{
			{PositionType: position.TypeVms, Timestamp: mustTime(t, "2026-01-01T00:00:00Z")},
			{PositionType: position.TypeAis, Timestamp: mustTime(t, "2026-01-01T00:00:30Z")},
		},
	}

	output := layer.Prune(input, shared.Period{}, 2)

	require.Len(t, output.TripPositions, 1)
	assert.Equal(t, position.TypeAis, output.TripPositions[0].PositionType)
	require.NotNil(t, output.TripPositions[0].PrunedBy)
}

func TestAisVmsConflictLayer_LeavesPositionsOutsideTheDurationLimitUntouched(t *testing.T) {
	layer := position.NewAisVmsConflictLayer(time.Minute)
	input := position.TripPositionLayerOutput{
		TripPositions: []position.AisVmsPosition{
			{PositionType: position.TypeAis, Timestamp: mustTime(t, "2026-01-01T00:00:00Z")},
			{PositionType: position.TypeVms, Timestamp: mustTime(t, "2026-01-01T00:05:00Z")},
		},
	}

	output := layer.Prune(input, shared.Period{}, 2)

	require.Len(t, output.TripPositions, 2)
	assert.Nil(t, output.TripPositions[0].PrunedBy)
	assert.Nil(t, output.TripPositions[1].PrunedBy)
	assert.Empty(t, output.PrunedPositions)
}

func TestAisVmsConflictLayer_ComputesTrackCoverageAfterPruning(t *testing.T) {
	layer := position.NewAisVmsConflictLayer(time.Minute)
	input := position.TripPositionLayerOutput{
		TripPositions: []position.AisVmsPosition{
			{PositionType: position.TypeAis, Timestamp: mustTime(t, "2026-01-01T00:00:00Z")},
			{PositionType: position.TypeVms, Timestamp: mustTime(t, "2026-01-01T00:00:30Z")},
		},
	}

	output := layer.Prune(input, shared.Period{}, 4)

	assert.Equal(t, 0.25, output.TrackCoverage)
}

func TestUnrealisticSpeedLayer_GreedilyDropsImpliedUnrealisticSpeedFromTheLastRetained(t *testing.T) {
	layer := position.NewUnrealisticSpeedLayer(70)
	p0 := position.AisVmsPosition{Point: shared.Point{Lat: 0, Lon: 0}, Timestamp: mustTime(t, "2026-01-01T00:00:00Z")}
	tooFast := position.AisVmsPosition{Point: shared.Point{Lat: 0.01, Lon: 0}, Timestamp: mustTime(t, "2026-01-01T00:00:10Z")}
	p2 := position.AisVmsPosition{Point: shared.Point{Lat: 0, Lon: 0.001}, Timestamp: mustTime(t, "2026-01-01T00:10:00Z")}
	input := position.TripPositionLayerOutput{TripPositions: []position.AisVmsPosition{p0, tooFast, p2}}

	output := layer.Prune(input, shared.Period{}, 3)

	require.Len(t, output.TripPositions, 2)
	assert.Equal(t, p0.Timestamp, output.TripPositions[0].Timestamp)
	assert.Equal(t, p2.Timestamp, output.TripPositions[1].Timestamp)
	require.Len(t, output.PrunedPositions, 1)
	assert.Equal(t, position.ReasonUnrealisticSpeed, output.PrunedPositions[0].TripLayer)
}

func TestUnrealisticSpeedLayer_SinglePositionIsAlwaysRetained(t *testing.T) {
	layer := position.NewUnrealisticSpeedLayer(70)
	input := position.TripPositionLayerOutput{TripPositions: []position.AisVmsPosition{
		{Timestamp: mustTime(t, "2026-01-01T00:00:00Z")},
	}}

	output := layer.Prune(input, shared.Period{}, 1)

	assert.Len(t, output.TripPositions, 1)
}

func TestPipeline_Run_MergesAndAppliesLayersInOrder(t *testing.T) {
	pipeline := position.NewPipeline(time.Minute, 70)
	ais := []position.AisVmsPosition{
		{PositionType: position.TypeAis, Point: shared.Point{Lat: 0, Lon: 0}, Timestamp: mustTime(t, "2026-01-01T00:00:00Z")},
	}
	vms := []position.AisVmsPosition{
		{PositionType: position.TypeVms, Point: shared.Point{Lat: 0, Lon: 0.0001}, Timestamp: mustTime(t, "2026-01-01T00:00:30Z")},
	}

	output := pipeline.Run(ais, vms, shared.Period{}, 2)

	require.Len(t, output.TripPositions, 1, "the conflicting vms position within the duration limit is pruned")
	assert.Equal(t, position.TypeAis, output.TripPositions[0].PositionType)
}
