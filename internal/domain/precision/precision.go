// Package precision refines a trip's assembled period into a tighter
// period_precision using its position track, trying a configured sequence
// of strategies per end (spec §4.2).
package precision

import (
	"time"

	"github.com/orcalabs/kyogre-go/internal/domain/position"
	"github.com/orcalabs/kyogre-go/internal/domain/shared"
)

// Direction controls whether a strategy searches inside the trip's
// existing range or beyond it (spec §4.2).
type Direction string

const (
	Shrinking Direction = "Shrinking"
	Extending Direction = "Extending"
)

// SearchPoint is which end of the track a strategy anchors its reference
// position to (spec §4.2).
type SearchPoint string

const (
	SearchStart SearchPoint = "Start"
	SearchEnd   SearchPoint = "End"
)

// DefaultSearchThreshold bounds how far an Extending search may look
// beyond the trip's existing range (spec §4.2 "search_threshold, default
// 6 hours").
const DefaultSearchThreshold = 6 * time.Hour

// DefaultPositionChunkSize is the strategies' default grouping size (spec
// §4.2 "position_chunk_size (e.g. 10)").
const DefaultPositionChunkSize = 10

// Config parameterizes one strategy run (spec §4.2).
type Config struct {
	Direction           Direction
	StartSearchPoint    SearchPoint
	DistanceThresholdM  float64
	SpeedThresholdKnots float64
	PositionChunkSize   int
	SearchThreshold     time.Duration
}

// WithDefaults fills zero-valued fields with the spec defaults.
func (c Config) WithDefaults() Config {
	if c.PositionChunkSize <= 0 {
		c.PositionChunkSize = DefaultPositionChunkSize
	}
	if c.SearchThreshold <= 0 {
		c.SearchThreshold = DefaultSearchThreshold
	}
	return c
}

// Context bundles everything one trip's precision search may reference:
// its track, landing-coverage boundary, and the auxiliary points the
// Port/DockPoint/DeliveryPoint strategies iterate (spec §4.2).
type Context struct {
	Positions       []position.AisVmsPosition
	Period          shared.Period
	LandingCoverage shared.Period
	StartPort       *Point
	EndPort         *Point
	DockPoints      []Point
	DeliveryPoints  []Point
}

// Point is a named reference location a strategy searches the track
// against (ports, dock points, delivery points all reduce to this shape).
type Point struct {
	ID    string
	Point shared.Point
}

// Strategy finds a refined timestamp for one end of the trip, or reports
// no match (spec §4.2 "If none match, leave precision absent").
type Strategy interface {
	Name() string
	Find(ctx Context, cfg Config) (time.Time, bool)
}

// chunk splits positions into contiguous groups of size n; a final
// remainder smaller than n is kept as its own group, and only an empty
// group is skipped, per "if a chunk contains < 1 position, skip".
func chunk(positions []position.AisVmsPosition, n int) [][]position.AisVmsPosition {
	if n <= 0 {
		n = DefaultPositionChunkSize
	}
	chunks := make([][]position.AisVmsPosition, 0, len(positions)/n+1)
	for i := 0; i < len(positions); i += n {
		end := i + n
		if end > len(positions) {
			end = len(positions)
		}
		group := positions[i:end]
		if len(group) < 1 {
			continue
		}
		chunks = append(chunks, group)
	}
	return chunks
}

func centroidOf(group []position.AisVmsPosition) shared.Point {
	points := make([]shared.Point, len(group))
	for i, p := range group {
		points[i] = p.Point
	}
	return shared.Centroid(points)
}

func meanSpeedKnots(group []position.AisVmsPosition) float64 {
	if len(group) < 2 {
		return 0
	}
	var total float64
	for i := 0; i+1 < len(group); i++ {
		total += position.SpeedKnots(group[i], group[i+1])
	}
	return total / float64(len(group)-1)
}

func meanDistanceToShore(group []position.AisVmsPosition) float64 {
	if len(group) == 0 {
		return 0
	}
	var total float64
	for _, p := range group {
		total += p.DistanceToShoreM
	}
	return total / float64(len(group))
}

// clampToCoverage bounds a candidate timestamp to the trip's landing
// coverage, per "if the candidate window would extend past the
// landing-coverage boundary, clamp" (spec §4.2 Edge cases).
func clampToCoverage(candidate time.Time, coverage shared.Period) time.Time {
	if candidate.Before(coverage.Start) {
		return coverage.Start
	}
	if candidate.After(coverage.End) {
		return coverage.End
	}
	return candidate
}

// boundsForSearch narrows the track to the window a strategy is allowed
// to search, given its Direction and the configured threshold (spec
// §4.2).
func boundsForSearch(ctx Context, cfg Config) (time.Time, time.Time) {
	switch cfg.Direction {
	case Extending:
		return ctx.Period.Start.Add(-cfg.SearchThreshold), ctx.Period.End.Add(cfg.SearchThreshold)
	default: // Shrinking
		return ctx.Period.Start, ctx.Period.End
	}
}

func positionsInWindow(positions []position.AisVmsPosition, start, end time.Time) []position.AisVmsPosition {
	filtered := make([]position.AisVmsPosition, 0, len(positions))
	for _, p := range positions {
		if !p.Timestamp.Before(start) && !p.Timestamp.After(end) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// orderedForSearchPoint returns positions ordered so index 0 is nearest
// the search anchor: ascending from Start, descending from End.
func orderedForSearchPoint(positions []position.AisVmsPosition, point SearchPoint) []position.AisVmsPosition {
	if point == SearchStart {
		return positions
	}
	reversed := make([]position.AisVmsPosition, len(positions))
	for i, p := range positions {
		reversed[len(positions)-1-i] = p
	}
	return reversed
}
