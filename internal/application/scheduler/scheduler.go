package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/orcalabs/kyogre-go/internal/adapters/metrics"
	"github.com/orcalabs/kyogre-go/internal/application/common"
	"github.com/orcalabs/kyogre-go/internal/domain/pipeline"
	"github.com/orcalabs/kyogre-go/internal/domain/shared"
	"github.com/orcalabs/kyogre-go/internal/domain/vessel"
)

// Scheduler drives the chain state machine declared in domain/pipeline:
// Pending decides the next state, the state fans per-vessel commands out
// to a bounded worker pool through the Mediator, and the transition log
// records progress so a crash resumes instead of restarting (spec §4.6).
type Scheduler struct {
	Mediator    common.Mediator
	Vessels     common.VesselRepository
	Transitions common.TransitionLogRepository
	Runs        common.PipelineRunRepository

	Schedules    pipeline.Schedules
	WorkerFanout int
	MaxLookback  int

	Clock       shared.Clock
	Partitioner *pipeline.Partitioner
	Monitor     *pipeline.StuckJobMonitor

	mu         sync.Mutex
	activeRuns map[string]*pipeline.Run
	nextRunID  int
}

// NewScheduler wires a scheduler with the spec defaults; Clock nil
// defaults to RealClock.
func NewScheduler(mediator common.Mediator, vessels common.VesselRepository, transitions common.TransitionLogRepository, runs common.PipelineRunRepository, schedules pipeline.Schedules, clock shared.Clock) *Scheduler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Scheduler{
		Mediator:     mediator,
		Vessels:      vessels,
		Transitions:  transitions,
		Runs:         runs,
		Schedules:    schedules,
		WorkerFanout: pipeline.DefaultWorkerFanout,
		MaxLookback:  pipeline.DefaultMaxLookback,
		Clock:        clock,
		Partitioner:  pipeline.NewPartitioner(),
		Monitor:      pipeline.NewStuckJobMonitor(30*time.Second, 10*time.Minute, clock),
		activeRuns:   make(map[string]*pipeline.Run),
	}
}

// ActiveRuns exposes in-flight runs to the metrics collector, narrowed to
// its RunInfo contract.
func (s *Scheduler) ActiveRuns() map[string]metrics.RunInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]metrics.RunInfo, len(s.activeRuns))
	for id, r := range s.activeRuns {
		out[id] = runInfoAdapter{run: r}
	}
	return out
}

// Tick performs one Pending decision and, if a state is due, runs it to
// completion; otherwise it sleeps for the decided duration (spec §4.6).
func (s *Scheduler) Tick(ctx context.Context) error {
	log, err := s.Transitions.Recent(ctx, s.MaxLookback)
	if err != nil {
		return fmt.Errorf("failed to load transition log: %w", err)
	}

	decision := pipeline.Decide(s.Clock.Now(), log, s.Schedules, s.MaxLookback)
	if decision.Resume == nil {
		logger := common.LoggerFromContext(ctx)
		if decision.Warning {
			logger.Log("warn", "no schedule is due; all states disabled", nil)
		}
		s.Clock.Sleep(decision.SleepFor)
		return nil
	}

	return s.runChainFrom(ctx, *decision.Resume)
}

// runChainFrom executes every state starting at `from` through the end
// of the chain, appending a transition after each whose To is the state
// just completed (the first From is `from` itself), which is how
// pipeline.Decide reads the log back (spec §4.6 Resumability).
func (s *Scheduler) runChainFrom(ctx context.Context, from pipeline.State) error {
	state := from
	prev := from
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := s.runState(ctx, state); err != nil {
			if err := s.Transitions.Append(ctx, pipeline.Transition{Timestamp: s.Clock.Now(), From: state, To: pipeline.Sleep}); err != nil {
				return err
			}
			return err
		}

		if err := s.Transitions.Append(ctx, pipeline.Transition{Timestamp: s.Clock.Now(), From: prev, To: state}); err != nil {
			return err
		}

		next, ok := pipeline.Next(state)
		if !ok {
			return nil
		}
		prev, state = state, next
	}
}

// runState executes one chain state's work across every vessel, bounded
// worker fan-out, single writer per vessel job (spec §4.6 Concurrency).
func (s *Scheduler) runState(ctx context.Context, state pipeline.State) error {
	s.nextRunID++
	runID := fmt.Sprintf("%s-%d", state, s.nextRunID)
	run := pipeline.NewRun(runID, state, s.Clock)

	s.mu.Lock()
	s.activeRuns[runID] = run
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.activeRuns, runID)
		s.mu.Unlock()
	}()

	if err := s.Runs.Add(ctx, runID, state); err != nil {
		return fmt.Errorf("failed to record run start: %w", err)
	}

	if state == pipeline.UpdateDatabaseViews {
		return s.runSingleton(ctx, run)
	}

	vessels, err := s.Vessels.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list vessels: %w", err)
	}
	ids := make([]vessel.ID, 0, len(vessels))
	for _, v := range vessels {
		ids = append(ids, v.ID)
	}

	if err := run.Start(len(ids)); err != nil {
		return err
	}
	if len(ids) == 0 {
		return s.finishRun(ctx, run)
	}

	batches, err := s.Partitioner.Partition(ids, s.WorkerFanout)
	if err != nil {
		return err
	}

	var mu sync.Mutex
	p := pool.New()
	for _, batch := range batches {
		batch := batch
		p.Go(func() {
			for _, id := range batch {
				mu.Lock()
				s.Monitor.Watch(id)
				mu.Unlock()

				_, err := s.Mediator.Send(ctx, commandFor(state, id))

				mu.Lock()
				s.Monitor.Done(id)
				run.RecordVesselResult(err)
				mu.Unlock()

				if err != nil {
					common.LoggerFromContext(ctx).Log("error", "vessel failed in state", map[string]interface{}{
						"vessel_id": int64(id),
						"state":     string(state),
						"error":     err.Error(),
					})
				}
				mu.Lock()
				metrics.RecordVesselOutcome(runInfoAdapter{run: run}, err == nil)
				mu.Unlock()
			}
		})
	}
	p.Wait()

	return s.finishRun(ctx, run)
}

// runSingleton executes the vessel-agnostic terminal stage once.
func (s *Scheduler) runSingleton(ctx context.Context, run *pipeline.Run) error {
	if err := run.Start(1); err != nil {
		return err
	}
	_, err := s.Mediator.Send(ctx, UpdateDatabaseViewsCommand{})
	run.RecordVesselResult(err)
	if err != nil {
		return err
	}
	return s.finishRun(ctx, run)
}

func (s *Scheduler) finishRun(ctx context.Context, run *pipeline.Run) error {
	if err := run.Complete(); err != nil {
		shouldRestart, failErr := run.Fail(err)
		if failErr != nil {
			return failErr
		}
		s.persistStatus(ctx, run, err)
		metrics.RecordRunRestart(runInfoAdapter{run: run})
		if shouldRestart {
			run.Restart()
			return nil
		}
		return err
	}
	s.persistStatus(ctx, run, nil)
	metrics.RecordRunCompletion(runInfoAdapter{run: run})
	return nil
}

func (s *Scheduler) persistStatus(ctx context.Context, run *pipeline.Run, cause error) {
	lastError := ""
	if cause != nil {
		lastError = cause.Error()
	}
	vesselsDone := run.VesselsTotal() - run.VesselsFailed()
	err := s.Runs.UpdateStatus(ctx, run.ID(), string(run.Status()), run.VesselsTotal(), vesselsDone, run.VesselsFailed(), run.RestartCount(), lastError)
	if err != nil {
		common.LoggerFromContext(ctx).Log("error", "failed to persist run status", map[string]interface{}{
			"run_id": run.ID(),
			"error":  err.Error(),
		})
	}
}

// commandFor maps a chain state to the per-vessel command its handler
// expects.
func commandFor(state pipeline.State, id vessel.ID) common.Request {
	switch state {
	case pipeline.Scrape:
		return ScrapeCommand{VesselID: id}
	case pipeline.Trips:
		return AssembleTripsCommand{VesselID: id}
	case pipeline.TripsPrecision:
		return RefineTripsPrecisionCommand{VesselID: id}
	case pipeline.HaulDistribution:
		return DistributeHaulsCommand{VesselID: id}
	case pipeline.TripDistance:
		return ComputeTripDistanceCommand{VesselID: id}
	case pipeline.Benchmark:
		return ComputeBenchmarksCommand{VesselID: id}
	default:
		return nil
	}
}
