package precision_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/orcalabs/kyogre-go/internal/domain/position"
	"github.com/orcalabs/kyogre-go/internal/domain/precision"
	"github.com/orcalabs/kyogre-go/internal/domain/shared"
)

func track(t *testing.T) []position.AisVmsPosition {
	return []position.AisVmsPosition{
		{Point: shared.Point{Lat: 60.0, Lon: 5.0}, Timestamp: mustTime(t, "2026-01-01T00:00:00Z")},
		{Point: shared.Point{Lat: 60.0, Lon: 5.01}, Timestamp: mustTime(t, "2026-01-01T01:00:00Z")},
		{Point: shared.Point{Lat: 61.0, Lon: 6.0}, Timestamp: mustTime(t, "2026-01-01T02:00:00Z")},
		{Point: shared.Point{Lat: 61.0, Lon: 6.01}, Timestamp: mustTime(t, "2026-01-01T03:00:00Z")},
	}
}

func TestFirstMovedPointStrategy_FindsTheFirstChunkFarFromTheReference(t *testing.T) {
	ctx := precision.Context{
		Positions:       track(t),
		Period:          mustPeriod(t, "2026-01-01T00:00:00Z", "2026-01-01T03:00:00Z"),
		LandingCoverage: mustPeriod(t, "2025-12-31T00:00:00Z", "2026-01-02T00:00:00Z"),
	}
	cfg := precision.Config{StartSearchPoint: precision.SearchStart, DistanceThresholdM: 1000, PositionChunkSize: 2}

	ts, ok := precision.FirstMovedPointStrategy{}.Find(ctx, cfg)

	assert.True(t, ok)
	assert.Equal(t, mustTime(t, "2026-01-01T00:00:00Z"), ts)
}

func TestFirstMovedPointStrategy_NoMatchWhenEntireTrackIsWithinThreshold(t *testing.T) {
	ctx := precision.Context{
		Positions:       track(t),
		Period:          mustPeriod(t, "2026-01-01T00:00:00Z", "2026-01-01T03:00:00Z"),
		LandingCoverage: mustPeriod(t, "2025-12-31T00:00:00Z", "2026-01-02T00:00:00Z"),
	}
	cfg := precision.Config{StartSearchPoint: precision.SearchStart, DistanceThresholdM: 1_000_000, PositionChunkSize: 2}

	_, ok := precision.FirstMovedPointStrategy{}.Find(ctx, cfg)

	assert.False(t, ok)
}

func TestFirstMovedPointStrategy_ClampsCandidateToLandingCoverage(t *testing.T) {
	ctx := precision.Context{
		Positions:       track(t),
		Period:          mustPeriod(t, "2026-01-01T00:00:00Z", "2026-01-01T03:00:00Z"),
		LandingCoverage: mustPeriod(t, "2026-01-01T00:30:00Z", "2026-01-02T00:00:00Z"),
	}
	cfg := precision.Config{StartSearchPoint: precision.SearchStart, DistanceThresholdM: 1000, PositionChunkSize: 2}

	ts, ok := precision.FirstMovedPointStrategy{}.Find(ctx, cfg)

	assert.True(t, ok)
	assert.Equal(t, mustTime(t, "2026-01-01T00:30:00Z"), ts)
}

func TestPortStrategy_NoMatchWithoutAnAnchorForTheSearchedEnd(t *testing.T) {
	ctx := precision.Context{Positions: track(t), Period: mustPeriod(t, "2026-01-01T00:00:00Z", "2026-01-01T03:00:00Z")}
	cfg := precision.Config{StartSearchPoint: precision.SearchStart, DistanceThresholdM: 1000}

	_, ok := precision.PortStrategy{}.Find(ctx, cfg)

	assert.False(t, ok)
}

func TestPortStrategy_FindsChunkNearTheStartPort(t *testing.T) {
	ctx := precision.Context{
		Positions:       track(t),
		Period:          mustPeriod(t, "2026-01-01T00:00:00Z", "2026-01-01T03:00:00Z"),
		LandingCoverage: mustPeriod(t, "2025-12-31T00:00:00Z", "2026-01-02T00:00:00Z"),
		StartPort:       &precision.Point{ID: "NOBGO", Point: shared.Point{Lat: 60.0, Lon: 5.0}},
	}
	cfg := precision.Config{StartSearchPoint: precision.SearchStart, DistanceThresholdM: 1000, PositionChunkSize: 2}

	ts, ok := precision.PortStrategy{}.Find(ctx, cfg)

	assert.True(t, ok)
	assert.Equal(t, mustTime(t, "2026-01-01T00:00:00Z"), ts)
}

func TestDockPointStrategy_StopsAtTheFirstDockThatMatches(t *testing.T) {
	ctx := precision.Context{
		Positions:       track(t),
		Period:          mustPeriod(t, "2026-01-01T00:00:00Z", "2026-01-01T03:00:00Z"),
		LandingCoverage: mustPeriod(t, "2025-12-31T00:00:00Z", "2026-01-02T00:00:00Z"),
		DockPoints: []precision.Point{
			{ID: "far-away", Point: shared.Point{Lat: -10, Lon: -10}},
			{ID: "matches", Point: shared.Point{Lat: 61.0, Lon: 6.0}},
		},
	}
	cfg := precision.Config{StartSearchPoint: precision.SearchEnd, DistanceThresholdM: 1000, PositionChunkSize: 2}

	ts, ok := precision.DockPointStrategy{}.Find(ctx, cfg)

	assert.True(t, ok)
	assert.Equal(t, mustTime(t, "2026-01-01T03:00:00Z"), ts)
}

func TestDeliveryPointStrategy_OnlyAppliesToTheEndSearchWithExactlyOneDeliveryPoint(t *testing.T) {
	ctx := precision.Context{
		Positions:       track(t),
		Period:          mustPeriod(t, "2026-01-01T00:00:00Z", "2026-01-01T03:00:00Z"),
		LandingCoverage: mustPeriod(t, "2025-12-31T00:00:00Z", "2026-01-02T00:00:00Z"),
		DeliveryPoints:  []precision.Point{{ID: "d1", Point: shared.Point{Lat: 61.0, Lon: 6.0}}},
	}
	endCfg := precision.Config{StartSearchPoint: precision.SearchEnd, DistanceThresholdM: 1000, PositionChunkSize: 2}

	ts, ok := precision.DeliveryPointStrategy{}.Find(ctx, endCfg)
	assert.True(t, ok)
	assert.Equal(t, mustTime(t, "2026-01-01T03:00:00Z"), ts)

	startCfg := precision.Config{StartSearchPoint: precision.SearchStart, DistanceThresholdM: 1000, PositionChunkSize: 2}
	_, ok = precision.DeliveryPointStrategy{}.Find(ctx, startCfg)
	assert.False(t, ok, "delivery point strategy must not apply to the start end")

	ctx.DeliveryPoints = append(ctx.DeliveryPoints, precision.Point{ID: "d2", Point: shared.Point{Lat: 0, Lon: 0}})
	_, ok = precision.DeliveryPointStrategy{}.Find(ctx, endCfg)
	assert.False(t, ok, "must not apply when more than one delivery point is associated")
}

func TestDistanceToShoreStrategy_RequiresBothDistanceAndSpeedWithinThresholds(t *testing.T) {
	positions := []position.AisVmsPosition{
		{Point: shared.Point{Lat: 60.0, Lon: 5.0}, Timestamp: mustTime(t, "2026-01-01T00:00:00Z"), DistanceToShoreM: 100},
		{Point: shared.Point{Lat: 60.0, Lon: 5.0001}, Timestamp: mustTime(t, "2026-01-01T00:05:00Z"), DistanceToShoreM: 150},
	}
	ctx := precision.Context{
		Positions:       positions,
		Period:          mustPeriod(t, "2026-01-01T00:00:00Z", "2026-01-01T01:00:00Z"),
		LandingCoverage: mustPeriod(t, "2025-12-31T00:00:00Z", "2026-01-02T00:00:00Z"),
	}
	cfg := precision.Config{StartSearchPoint: precision.SearchStart, DistanceThresholdM: 200, SpeedThresholdKnots: 50, PositionChunkSize: 2}

	ts, ok := precision.DistanceToShoreStrategy{}.Find(ctx, cfg)

	assert.True(t, ok)
	assert.Equal(t, mustTime(t, "2026-01-01T00:00:00Z"), ts)
}
