package pipeline

import (
	"fmt"

	"github.com/orcalabs/kyogre-go/internal/domain/vessel"
)

// DefaultWorkerFanout is the default number of concurrent per-vessel jobs
// a state runs, per spec §5 "parallel worker fan-out within a state...
// work is partitioned per vessel".
const DefaultWorkerFanout = 8

// Partitioner splits a vessel worklist into batches for a bounded pool of
// workers, adapted from the teacher's fleet.Selector: that selector chose
// one ship from a fleet by priority/distance, this partitions a whole
// fleet into balanced batches up front rather than picking one at a time.
type Partitioner struct{}

func NewPartitioner() *Partitioner { return &Partitioner{} }

// Partition splits ids into at most workerCount batches, round-robin, so
// that a failing or slow vessel's batch doesn't starve the others (no
// work-stealing, per spec §5).
func (p *Partitioner) Partition(ids []vessel.ID, workerCount int) ([][]vessel.ID, error) {
	if workerCount <= 0 {
		return nil, fmt.Errorf("worker count must be positive, got %d", workerCount)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if workerCount > len(ids) {
		workerCount = len(ids)
	}

	batches := make([][]vessel.ID, workerCount)
	for i, id := range ids {
		b := i % workerCount
		batches[b] = append(batches[b], id)
	}
	return batches, nil
}
