package pipeline

import (
	"fmt"
	"time"

	"github.com/orcalabs/kyogre-go/internal/domain/shared"
)

// MaxRestartAttempts bounds automatic restarts of a state run that failed
// transiently, preventing an infinite restart loop.
const MaxRestartAttempts = 3

// Run is one execution of a single chain state: it owns the lifecycle
// state machine tracking PENDING/RUNNING/COMPLETED/FAILED plus the
// vessel-count bookkeeping the scheduler reports (spec §4.6
// Concurrency/§5).
type Run struct {
	id    string
	state State

	lifecycle *shared.LifecycleStateMachine

	restartCount int

	vesselsTotal     int
	vesselsProcessed int
	vesselsFailed    int
}

// NewRun creates a run for the given state in PENDING status.
func NewRun(id string, state State, clock shared.Clock) *Run {
	return &Run{
		id:        id,
		state:     state,
		lifecycle: shared.NewLifecycleStateMachine(clock),
	}
}

func (r *Run) ID() string                     { return r.id }
func (r *Run) State() State                   { return r.state }
func (r *Run) RestartCount() int              { return r.restartCount }
func (r *Run) VesselsTotal() int              { return r.vesselsTotal }
func (r *Run) VesselsFailed() int             { return r.vesselsFailed }
func (r *Run) Status() shared.LifecycleStatus { return r.lifecycle.Status() }
func (r *Run) RuntimeDuration() time.Duration { return r.lifecycle.RuntimeDuration() }

// Start begins the run with the number of vessels it will partition work
// across (spec §5 "work is partitioned per vessel").
func (r *Run) Start(vesselsTotal int) error {
	if err := r.lifecycle.Start(); err != nil {
		return err
	}
	r.vesselsTotal = vesselsTotal
	return nil
}

// RecordVesselResult tallies one vessel's completion, succeeded or not; a
// per-vessel failure does not fail the whole run (spec §4.1 "other
// vessels continue").
func (r *Run) RecordVesselResult(err error) {
	r.vesselsProcessed++
	if err != nil {
		r.vesselsFailed++
	}
}

// Complete marks the run finished once every vessel has reported back.
func (r *Run) Complete() error {
	if r.vesselsProcessed < r.vesselsTotal {
		return shared.NewPipelineStateBrokenError(fmt.Sprintf("run %s completed with %d/%d vessels processed", r.id, r.vesselsProcessed, r.vesselsTotal))
	}
	return r.lifecycle.Complete()
}

// Fail marks the run failed and, if attempts remain, signals that a
// restart should be attempted (spec §4.6; modeled on the teacher's
// Container restart bookkeeping).
func (r *Run) Fail(cause error) (shouldRestart bool, err error) {
	if err := r.lifecycle.Fail(cause); err != nil {
		return false, err
	}
	if r.restartCount >= MaxRestartAttempts {
		return false, nil
	}
	r.restartCount++
	return true, nil
}

// Restart resets the run to PENDING for another attempt, preserving the
// restart count already accrued.
func (r *Run) Restart() {
	r.lifecycle.ResetForRestart()
	r.vesselsProcessed = 0
	r.vesselsFailed = 0
}
