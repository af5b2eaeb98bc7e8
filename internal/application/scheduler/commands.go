// Package scheduler wires the pipeline state machine (domain/pipeline) to
// concrete per-vessel work: one Mediator command per chain state,
// dispatched through a bounded worker pool and tracked by a StuckJobMonitor,
// the Kyogre analogue of the teacher's container/fleet coordination layer.
package scheduler

import (
	"github.com/orcalabs/kyogre-go/internal/domain/vessel"
)

// ScrapeCommand pulls whatever new vessel events a scraper has produced
// for one vessel and saves them (spec §4.6 Scrape).
type ScrapeCommand struct {
	VesselID vessel.ID
}

// AssembleTripsCommand runs the vessel's preferred assembler strategy over
// its event stream and persists any newly closed trips (spec §4.1).
type AssembleTripsCommand struct {
	VesselID vessel.ID
}

// RefineTripsPrecisionCommand runs the precision pipeline over a vessel's
// unprocessed trips (spec §4.2).
type RefineTripsPrecisionCommand struct {
	VesselID vessel.ID
}

// DistributeHaulsCommand assigns a vessel's catch records to the trip
// whose period contains them (spec §3 Haul "belongs to exactly one trip").
type DistributeHaulsCommand struct {
	VesselID vessel.ID
}

// ComputeTripDistanceCommand runs the position layer pipeline over a
// vessel's trips, persists the pruning/conflict result, and derives the
// distance-travelled and fuel-estimate inputs the benchmark stage needs
// (spec §4.3, §4.4).
type ComputeTripDistanceCommand struct {
	VesselID vessel.ID
}

// ComputeBenchmarksCommand computes and upserts the fixed benchmark set
// for a vessel's processed trips (spec §4.5).
type ComputeBenchmarksCommand struct {
	VesselID vessel.ID
}

// UpdateDatabaseViewsCommand is the chain's terminal, vessel-agnostic
// stage: it carries no per-vessel payload since it runs once per pass
// after every vessel has been processed by every prior state.
type UpdateDatabaseViewsCommand struct{}
