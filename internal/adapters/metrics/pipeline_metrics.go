package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RunInfo is the data needed for metrics collection, abstracting away the
// concrete pipeline.Run type the same way the teacher's ContainerInfo
// abstracted away the container runner.
type RunInfo interface {
	ID() string
	State() string
	Status() string
	RestartCount() int
	VesselsTotal() int
	VesselsFailed() int
	RuntimeDuration() time.Duration
}

// PipelineMetricsCollector handles all run and vessel-throughput metrics,
// adapted from the teacher's ContainerMetricsCollector: one chain state's
// run replaces one player's container, a vessel replaces a ship.
type PipelineMetricsCollector struct {
	getRuns func() map[string]RunInfo // current in-flight runs, keyed by run ID

	runRunningTotal *prometheus.GaugeVec
	runTotal        *prometheus.CounterVec
	runDuration     *prometheus.HistogramVec
	runRestarts     *prometheus.CounterVec
	vesselOutcomes  *prometheus.CounterVec

	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewPipelineMetricsCollector creates a collector; getRuns is polled
// periodically to refresh the running-gauge, the rest are updated
// event-driven via Record* calls.
func NewPipelineMetricsCollector(getRuns func() map[string]RunInfo) *PipelineMetricsCollector {
	return &PipelineMetricsCollector{
		getRuns: getRuns,

		runRunningTotal: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "run_running_total",
				Help:      "Number of currently running chain states by state name",
			},
			[]string{"state"},
		),

		runTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "run_total",
				Help:      "Total number of run lifecycle events by state and status",
			},
			[]string{"state", "status"},
		),

		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "run_duration_seconds",
				Help:      "Chain state run duration distribution",
				Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800, 3600},
			},
			[]string{"state"},
		),

		runRestarts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "run_restarts_total",
				Help:      "Total number of run restarts after transient failure",
			},
			[]string{"state"},
		),

		vesselOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "vessel_outcomes_total",
				Help:      "Total number of per-vessel processing outcomes by state and success",
			},
			[]string{"state", "outcome"},
		),
	}
}

// Register registers all metrics with the Prometheus registry.
func (c *PipelineMetricsCollector) Register() error {
	if Registry == nil {
		return nil
	}

	collectors := []prometheus.Collector{
		c.runRunningTotal,
		c.runTotal,
		c.runDuration,
		c.runRestarts,
		c.vesselOutcomes,
	}
	for _, collector := range collectors {
		if err := Registry.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

// Start begins the periodic running-gauge refresh.
func (c *PipelineMetricsCollector) Start(ctx context.Context) {
	c.ctx, c.cancelFunc = context.WithCancel(ctx)
	c.wg.Add(1)
	go c.collectRunMetrics(10 * time.Second)
}

// Stop gracefully stops metrics collection.
func (c *PipelineMetricsCollector) Stop() {
	if c.cancelFunc != nil {
		c.cancelFunc()
	}
	c.wg.Wait()
}

func (c *PipelineMetricsCollector) collectRunMetrics(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.updateRunMetrics()
		}
	}
}

func (c *PipelineMetricsCollector) updateRunMetrics() {
	if c.getRuns == nil {
		return
	}

	runs := c.getRuns()
	c.runRunningTotal.Reset()
	for _, run := range runs {
		if run.Status() == "RUNNING" {
			c.runRunningTotal.WithLabelValues(run.State()).Set(1)
		}
	}
}

// RecordRunCompletion records a run reaching a terminal status.
func (c *PipelineMetricsCollector) RecordRunCompletion(run RunInfo) {
	c.runTotal.WithLabelValues(run.State(), run.Status()).Inc()

	if run.Status() == "COMPLETED" || run.Status() == "FAILED" {
		c.runDuration.WithLabelValues(run.State()).Observe(run.RuntimeDuration().Seconds())
	}
}

// RecordRunRestart records a run being restarted after transient failure.
func (c *PipelineMetricsCollector) RecordRunRestart(run RunInfo) {
	c.runRestarts.WithLabelValues(run.State()).Inc()
}

// RecordVesselOutcome records one vessel's processing outcome within a
// run's state.
func (c *PipelineMetricsCollector) RecordVesselOutcome(run RunInfo, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	c.vesselOutcomes.WithLabelValues(run.State(), outcome).Inc()
}
