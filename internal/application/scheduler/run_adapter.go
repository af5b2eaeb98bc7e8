package scheduler

import (
	"time"

	"github.com/orcalabs/kyogre-go/internal/adapters/metrics"
	"github.com/orcalabs/kyogre-go/internal/domain/pipeline"
)

// runInfoAdapter narrows a *pipeline.Run's named-type accessors
// (pipeline.State, shared.LifecycleStatus) down to the plain strings
// metrics.RunInfo expects, keeping the metrics package free of a domain
// import back to pipeline.
type runInfoAdapter struct {
	run *pipeline.Run
}

func (a runInfoAdapter) ID() string                     { return a.run.ID() }
func (a runInfoAdapter) State() string                  { return string(a.run.State()) }
func (a runInfoAdapter) Status() string                 { return string(a.run.Status()) }
func (a runInfoAdapter) RestartCount() int              { return a.run.RestartCount() }
func (a runInfoAdapter) VesselsTotal() int              { return a.run.VesselsTotal() }
func (a runInfoAdapter) VesselsFailed() int             { return a.run.VesselsFailed() }
func (a runInfoAdapter) RuntimeDuration() time.Duration { return a.run.RuntimeDuration() }

var _ metrics.RunInfo = runInfoAdapter{}
