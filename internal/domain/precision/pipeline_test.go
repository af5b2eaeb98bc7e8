package precision_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orcalabs/kyogre-go/internal/domain/precision"
)

func TestPipeline_Refine_CombinesStartAndEndMatches(t *testing.T) {
	ctx := precision.Context{
		Positions:       track(t),
		Period:          mustPeriod(t, "2026-01-01T00:00:00Z", "2026-01-01T03:00:00Z"),
		LandingCoverage: mustPeriod(t, "2025-12-31T00:00:00Z", "2026-01-02T00:00:00Z"),
	}
	pipeline := precision.Pipeline{
		StartStrategies: []precision.ConfiguredStrategy{
			{Strategy: precision.FirstMovedPointStrategy{}, Config: precision.Config{StartSearchPoint: precision.SearchStart, DistanceThresholdM: 1000, PositionChunkSize: 2}},
		},
		EndStrategies: []precision.ConfiguredStrategy{
			{Strategy: precision.FirstMovedPointStrategy{}, Config: precision.Config{StartSearchPoint: precision.SearchEnd, DistanceThresholdM: 1000, PositionChunkSize: 2}},
		},
	}

	refined, ok := pipeline.Refine(ctx)

	require.True(t, ok)
	assert.Equal(t, mustTime(t, "2026-01-01T00:00:00Z"), refined.Start)
	assert.Equal(t, mustTime(t, "2026-01-01T03:00:00Z"), refined.End)
}

func TestPipeline_Refine_FallsBackToOriginalBoundWhenOneEndHasNoMatch(t *testing.T) {
	ctx := precision.Context{
		Positions:       track(t),
		Period:          mustPeriod(t, "2026-01-01T00:00:00Z", "2026-01-01T03:00:00Z"),
		LandingCoverage: mustPeriod(t, "2025-12-31T00:00:00Z", "2026-01-02T00:00:00Z"),
	}
	pipeline := precision.Pipeline{
		StartStrategies: []precision.ConfiguredStrategy{
			{Strategy: precision.FirstMovedPointStrategy{}, Config: precision.Config{StartSearchPoint: precision.SearchStart, DistanceThresholdM: 1000, PositionChunkSize: 2}},
		},
		EndStrategies: []precision.ConfiguredStrategy{
			{Strategy: precision.FirstMovedPointStrategy{}, Config: precision.Config{StartSearchPoint: precision.SearchEnd, DistanceThresholdM: 1_000_000, PositionChunkSize: 2}},
		},
	}

	refined, ok := pipeline.Refine(ctx)

	require.True(t, ok)
	assert.Equal(t, mustTime(t, "2026-01-01T00:00:00Z"), refined.Start)
	assert.Equal(t, ctx.Period.End, refined.End)
}

func TestPipeline_Refine_NoMatchOnEitherEndLeavesPrecisionAbsent(t *testing.T) {
	ctx := precision.Context{
		Positions:       track(t),
		Period:          mustPeriod(t, "2026-01-01T00:00:00Z", "2026-01-01T03:00:00Z"),
		LandingCoverage: mustPeriod(t, "2025-12-31T00:00:00Z", "2026-01-02T00:00:00Z"),
	}
	pipeline := precision.Pipeline{
		StartStrategies: []precision.ConfiguredStrategy{
			{Strategy: precision.FirstMovedPointStrategy{}, Config: precision.Config{StartSearchPoint: precision.SearchStart, DistanceThresholdM: 1_000_000, PositionChunkSize: 2}},
		},
		EndStrategies: []precision.ConfiguredStrategy{
			{Strategy: precision.FirstMovedPointStrategy{}, Config: precision.Config{StartSearchPoint: precision.SearchEnd, DistanceThresholdM: 1_000_000, PositionChunkSize: 2}},
		},
	}

	_, ok := pipeline.Refine(ctx)

	assert.False(t, ok)
}
