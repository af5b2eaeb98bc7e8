package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// namespace for all metrics
	namespace = "kyogre"
	// subsystem for engine metrics
	subsystem = "engine"
)

var (
	// Registry is the global Prometheus registry for all metrics. Nil
	// until InitRegistry is called, which every recorder treats as
	// "metrics disabled" rather than erroring.
	Registry *prometheus.Registry

	// globalCollector is the singleton pipeline metrics collector, set by
	// SetGlobalCollector once metrics are enabled at startup.
	globalCollector PipelineMetricsRecorder
)

// PipelineMetricsRecorder is the interface application code records
// pipeline lifecycle events through, kept separate from the Prometheus
// implementation so handlers don't depend on prometheus directly.
type PipelineMetricsRecorder interface {
	RecordRunCompletion(run RunInfo)
	RecordRunRestart(run RunInfo)
	RecordVesselOutcome(run RunInfo, success bool)
}

// InitRegistry initializes the Prometheus registry. Called once at
// startup if metrics are enabled.
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// GetRegistry returns the global Prometheus registry, or nil if metrics
// are not initialized.
func GetRegistry() *prometheus.Registry {
	return Registry
}

// IsEnabled reports whether metrics collection is enabled.
func IsEnabled() bool {
	return Registry != nil
}

// SetGlobalCollector sets the global pipeline metrics collector. Called
// once the collector has been created and registered.
func SetGlobalCollector(collector PipelineMetricsRecorder) {
	globalCollector = collector
}

// RecordRunCompletion records a run completion event globally.
func RecordRunCompletion(run RunInfo) {
	if globalCollector != nil {
		globalCollector.RecordRunCompletion(run)
	}
}

// RecordRunRestart records a run restart event globally.
func RecordRunRestart(run RunInfo) {
	if globalCollector != nil {
		globalCollector.RecordRunRestart(run)
	}
}

// RecordVesselOutcome records one vessel's processing outcome within a
// run globally.
func RecordVesselOutcome(run RunInfo, success bool) {
	if globalCollector != nil {
		globalCollector.RecordVesselOutcome(run, success)
	}
}
