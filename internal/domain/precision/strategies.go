package precision

import (
	"time"

	"github.com/orcalabs/kyogre-go/internal/domain/shared"
)

// FirstMovedPointStrategy finds the first chunk whose centroid lies more
// than DistanceThresholdM from the reference position: the trip's last
// position when searching from Start, its first when searching from End
// (spec §4.2 strategy 1).
type FirstMovedPointStrategy struct{}

func (FirstMovedPointStrategy) Name() string { return "FirstMovedPoint" }

func (s FirstMovedPointStrategy) Find(ctx Context, cfg Config) (time.Time, bool) {
	cfg = cfg.WithDefaults()
	start, end := boundsForSearch(ctx, cfg)
	positions := positionsInWindow(ctx.Positions, start, end)
	if len(positions) == 0 {
		return time.Time{}, false
	}
	ordered := orderedForSearchPoint(positions, cfg.StartSearchPoint)

	reference := ordered[len(ordered)-1].Point

	for _, group := range chunk(ordered, cfg.PositionChunkSize) {
		centroid := centroidOf(group)
		if reference.DistanceMeters(centroid) > cfg.DistanceThresholdM {
			candidate := group[0].Timestamp
			return clampToCoverage(candidate, ctx.LandingCoverage), true
		}
	}
	return time.Time{}, false
}

// PortStrategy finds positions clustered within DistanceThresholdM of the
// trip's start/end port (spec §4.2 strategy 2).
type PortStrategy struct{}

func (PortStrategy) Name() string { return "Port" }

func (s PortStrategy) Find(ctx Context, cfg Config) (time.Time, bool) {
	var anchor *Point
	if cfg.StartSearchPoint == SearchStart {
		anchor = ctx.StartPort
	} else {
		anchor = ctx.EndPort
	}
	if anchor == nil {
		return time.Time{}, false
	}
	return findNearPoint(ctx, cfg, anchor.Point)
}

// DockPointStrategy behaves like Port but iterates the trip's associated
// dock points, stopping at the first that yields a hit (spec §4.2
// strategy 3).
type DockPointStrategy struct{}

func (DockPointStrategy) Name() string { return "DockPoint" }

func (s DockPointStrategy) Find(ctx Context, cfg Config) (time.Time, bool) {
	for _, dock := range ctx.DockPoints {
		if ts, ok := findNearPoint(ctx, cfg, dock.Point); ok {
			return ts, true
		}
	}
	return time.Time{}, false
}

// DeliveryPointStrategy is end-only, applicable only when the trip has
// exactly one associated delivery point (spec §4.2 strategy 4).
type DeliveryPointStrategy struct{}

func (DeliveryPointStrategy) Name() string { return "DeliveryPoint" }

func (s DeliveryPointStrategy) Find(ctx Context, cfg Config) (time.Time, bool) {
	if cfg.StartSearchPoint != SearchEnd {
		return time.Time{}, false
	}
	if len(ctx.DeliveryPoints) != 1 {
		return time.Time{}, false
	}
	return findNearPoint(ctx, cfg, ctx.DeliveryPoints[0].Point)
}

// DistanceToShoreStrategy accepts a chunk whose mean distance_to_shore is
// within DistanceThresholdM and whose mean speed is within
// SpeedThresholdKnots (spec §4.2 strategy 5).
type DistanceToShoreStrategy struct{}

func (DistanceToShoreStrategy) Name() string { return "DistanceToShore" }

func (s DistanceToShoreStrategy) Find(ctx Context, cfg Config) (time.Time, bool) {
	cfg = cfg.WithDefaults()
	start, end := boundsForSearch(ctx, cfg)
	positions := positionsInWindow(ctx.Positions, start, end)
	if len(positions) == 0 {
		return time.Time{}, false
	}
	ordered := orderedForSearchPoint(positions, cfg.StartSearchPoint)

	for _, group := range chunk(ordered, cfg.PositionChunkSize) {
		if meanDistanceToShore(group) <= cfg.DistanceThresholdM && meanSpeedKnots(group) <= cfg.SpeedThresholdKnots {
			candidate := group[0].Timestamp
			return clampToCoverage(candidate, ctx.LandingCoverage), true
		}
	}
	return time.Time{}, false
}

// findNearPoint is the shared chunk-clustering search used by Port,
// DockPoint and DeliveryPoint: the first chunk whose centroid is within
// DistanceThresholdM of reference (spec §4.2 strategies 2-4).
func findNearPoint(ctx Context, cfg Config, reference shared.Point) (time.Time, bool) {
	cfg = cfg.WithDefaults()
	start, end := boundsForSearch(ctx, cfg)
	positions := positionsInWindow(ctx.Positions, start, end)
	if len(positions) == 0 {
		return time.Time{}, false
	}
	ordered := orderedForSearchPoint(positions, cfg.StartSearchPoint)

	for _, group := range chunk(ordered, cfg.PositionChunkSize) {
		centroid := centroidOf(group)
		if reference.DistanceMeters(centroid) <= cfg.DistanceThresholdM {
			candidate := group[0].Timestamp
			return clampToCoverage(candidate, ctx.LandingCoverage), true
		}
	}
	return time.Time{}, false
}
