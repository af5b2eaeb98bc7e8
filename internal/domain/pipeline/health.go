package pipeline

import (
	"time"

	"github.com/orcalabs/kyogre-go/internal/domain/shared"
	"github.com/orcalabs/kyogre-go/internal/domain/vessel"
)

// StuckJobMetrics tracks per-state recovery statistics, adapted from the
// teacher's RecoveryMetrics for per-vessel jobs instead of ships.
type StuckJobMetrics struct {
	SuccessfulRecoveries int
	FailedRecoveries     int
	AbandonedVessels     int
}

// StuckJobMonitor watches the per-vessel jobs a running state's worker
// pool has in flight and flags ones that have exceeded RecoveryTimeout,
// the Kyogre analogue of the teacher's ship-stuck-in-transit detector
// (spec §5 "in-flight per-vessel work finishes to a safe checkpoint").
type StuckJobMonitor struct {
	checkInterval       time.Duration
	recoveryTimeout     time.Duration
	maxRecoveryAttempts int
	lastCheckTime       *time.Time
	watchList           map[vessel.ID]time.Time
	recoveryAttempts    map[vessel.ID]int
	metrics             *StuckJobMetrics
	clock               shared.Clock
}

// NewStuckJobMonitor creates a monitor; clock nil defaults to RealClock.
func NewStuckJobMonitor(checkInterval, recoveryTimeout time.Duration, clock shared.Clock) *StuckJobMonitor {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &StuckJobMonitor{
		checkInterval:       checkInterval,
		recoveryTimeout:     recoveryTimeout,
		maxRecoveryAttempts: 5,
		watchList:           make(map[vessel.ID]time.Time),
		recoveryAttempts:    make(map[vessel.ID]int),
		metrics:             &StuckJobMetrics{},
		clock:               clock,
	}
}

func (m *StuckJobMonitor) SetMaxRecoveryAttempts(max int) { m.maxRecoveryAttempts = max }
func (m *StuckJobMonitor) Metrics() *StuckJobMetrics      { return m.metrics }

// Watch registers a vessel as having an in-flight job for the current
// state, recording the start time used to detect staleness.
func (m *StuckJobMonitor) Watch(id vessel.ID) {
	m.watchList[id] = m.clock.Now()
}

// Done clears a vessel's watch entry once its job finishes, successfully
// or not, and resets its recovery attempt counter.
func (m *StuckJobMonitor) Done(id vessel.ID) {
	delete(m.watchList, id)
	delete(m.recoveryAttempts, id)
}

// DueForCheck reports whether CheckInterval has elapsed since the last
// sweep, avoiding a check on every scheduler tick.
func (m *StuckJobMonitor) DueForCheck() bool {
	if m.lastCheckTime == nil {
		return true
	}
	return m.clock.Now().Sub(*m.lastCheckTime) >= m.checkInterval
}

// Sweep returns the vessels whose in-flight job has exceeded
// RecoveryTimeout, each eligible for a bounded number of requeue
// attempts before being abandoned for this run (spec §5 cancellation:
// "in-flight work finishes to a safe checkpoint, then the state
// returns").
func (m *StuckJobMonitor) Sweep() []vessel.ID {
	now := m.clock.Now()
	m.lastCheckTime = &now

	var stuck []vessel.ID
	for id, startedAt := range m.watchList {
		if now.Sub(startedAt) < m.recoveryTimeout {
			continue
		}
		attempts := m.recoveryAttempts[id]
		if attempts >= m.maxRecoveryAttempts {
			m.metrics.AbandonedVessels++
			delete(m.watchList, id)
			delete(m.recoveryAttempts, id)
			continue
		}
		m.recoveryAttempts[id] = attempts + 1
		stuck = append(stuck, id)
	}
	return stuck
}

// RecordOutcome records a recovery attempt's result for metrics.
func (m *StuckJobMonitor) RecordOutcome(success bool) {
	if success {
		m.metrics.SuccessfulRecoveries++
	} else {
		m.metrics.FailedRecoveries++
	}
}
