package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orcalabs/kyogre-go/internal/adapters/metrics"
)

type fakeRun struct {
	id       string
	state    string
	status   string
	restarts int
	total    int
	failed   int
	runtime  time.Duration
}

func (f fakeRun) ID() string                     { return f.id }
func (f fakeRun) State() string                  { return f.state }
func (f fakeRun) Status() string                 { return f.status }
func (f fakeRun) RestartCount() int              { return f.restarts }
func (f fakeRun) VesselsTotal() int              { return f.total }
func (f fakeRun) VesselsFailed() int             { return f.failed }
func (f fakeRun) RuntimeDuration() time.Duration { return f.runtime }

func withFreshRegistry(t *testing.T) {
	t.Helper()
	metrics.InitRegistry()
	t.Cleanup(func() { metrics.Registry = nil })
}

func TestInitRegistry_EnablesMetrics(t *testing.T) {
	assert.False(t, metrics.IsEnabled())
	withFreshRegistry(t)
	assert.True(t, metrics.IsEnabled())
}

func TestCommandMetricsCollector_RecordsOneSeriesPerCommandAndOutcome(t *testing.T) {
	withFreshRegistry(t)
	collector := metrics.NewCommandMetricsCollector()
	require.NoError(t, collector.Register())

	collector.RecordCommandExecution("ScrapeCommand", 0.02, true)
	collector.RecordCommandExecution("ScrapeCommand", 0.5, false)

	count, err := testutil.GatherAndCount(metrics.Registry, "kyogre_engine_command_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series for the success outcome, one for the failure outcome")
}

func TestCommandMetricsCollector_Register_IsANoOpWithoutARegistry(t *testing.T) {
	collector := metrics.NewCommandMetricsCollector()

	assert.NoError(t, collector.Register())
}

func TestPipelineMetricsCollector_RecordRunCompletion_ObservesDurationOnTerminalStatus(t *testing.T) {
	withFreshRegistry(t)
	collector := metrics.NewPipelineMetricsCollector(nil)
	require.NoError(t, collector.Register())

	run := fakeRun{state: "Scrape", status: "COMPLETED", runtime: 2 * time.Second}
	collector.RecordRunCompletion(run)

	totalCount, err := testutil.GatherAndCount(metrics.Registry, "kyogre_engine_run_total")
	require.NoError(t, err)
	assert.Equal(t, 1, totalCount)

	durationCount, err := testutil.GatherAndCount(metrics.Registry, "kyogre_engine_run_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, durationCount, "a COMPLETED run must also observe a duration sample")
}

func TestPipelineMetricsCollector_RecordRunCompletion_SkipsDurationForNonTerminalStatus(t *testing.T) {
	withFreshRegistry(t)
	collector := metrics.NewPipelineMetricsCollector(nil)
	require.NoError(t, collector.Register())

	run := fakeRun{state: "Scrape", status: "RUNNING"}
	collector.RecordRunCompletion(run)

	durationCount, err := testutil.GatherAndCount(metrics.Registry, "kyogre_engine_run_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 0, durationCount)
}

func TestPipelineMetricsCollector_RecordVesselOutcome_RecordsBothOutcomes(t *testing.T) {
	withFreshRegistry(t)
	collector := metrics.NewPipelineMetricsCollector(nil)
	require.NoError(t, collector.Register())

	run := fakeRun{state: "Trips"}
	collector.RecordVesselOutcome(run, true)
	collector.RecordVesselOutcome(run, false)

	count, err := testutil.GatherAndCount(metrics.Registry, "kyogre_engine_vessel_outcomes_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestGlobalRecorders_NoOpWithoutACollectorSet(t *testing.T) {
	run := fakeRun{state: "Scrape", status: "COMPLETED"}

	assert.NotPanics(t, func() {
		metrics.RecordRunCompletion(run)
		metrics.RecordRunRestart(run)
		metrics.RecordVesselOutcome(run, true)
	})
}

func TestGlobalRecorders_DelegateToTheCollectorOnceSet(t *testing.T) {
	withFreshRegistry(t)
	collector := metrics.NewPipelineMetricsCollector(nil)
	require.NoError(t, collector.Register())
	metrics.SetGlobalCollector(collector)
	t.Cleanup(func() { metrics.SetGlobalCollector(nil) })

	run := fakeRun{state: "Scrape", status: "COMPLETED"}
	metrics.RecordRunCompletion(run)

	count, err := testutil.GatherAndCount(metrics.Registry, "kyogre_engine_run_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
