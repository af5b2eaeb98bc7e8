package metrics

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/orcalabs/kyogre-go/internal/application/common"
)

// CommandMetricsCollector records Mediator command/query execution
// metrics: duration and success/failure counts, keyed by command name.
type CommandMetricsCollector struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
}

// NewCommandMetricsCollector creates a collector.
func NewCommandMetricsCollector() *CommandMetricsCollector {
	return &CommandMetricsCollector{
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "command_duration_seconds",
				Help:      "Mediator command/query execution duration distribution",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			},
			[]string{"command"},
		),
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "command_total",
				Help:      "Total number of Mediator command/query executions by outcome",
			},
			[]string{"command", "outcome"},
		),
	}
}

// Register registers the collector's metrics with the Prometheus registry.
func (c *CommandMetricsCollector) Register() error {
	if Registry == nil {
		return nil
	}
	if err := Registry.Register(c.duration); err != nil {
		return err
	}
	return Registry.Register(c.total)
}

// RecordCommandExecution records one command execution's duration and
// outcome.
func (c *CommandMetricsCollector) RecordCommandExecution(command string, durationSeconds float64, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	c.duration.WithLabelValues(command).Observe(durationSeconds)
	c.total.WithLabelValues(command, outcome).Inc()
}

// PrometheusMiddleware wraps Mediator dispatch with command execution
// metrics. Command names are extracted via reflection and trimmed to
// their bare type name, e.g. "*scheduler.ScrapeCommand" becomes
// "ScrapeCommand".
func PrometheusMiddleware(collector *CommandMetricsCollector) common.Middleware {
	return func(ctx context.Context, request common.Request, next common.HandlerFunc) (common.Response, error) {
		if collector == nil {
			return next(ctx, request)
		}

		commandName := extractCommandName(request)
		start := time.Now()

		response, err := next(ctx, request)

		collector.RecordCommandExecution(commandName, time.Since(start).Seconds(), err == nil)
		return response, err
	}
}

func extractCommandName(request common.Request) string {
	if request == nil {
		return "UnknownCommand"
	}

	fullName := strings.TrimPrefix(reflect.TypeOf(request).String(), "*")
	parts := strings.Split(fullName, ".")
	if len(parts) > 0 {
		return parts[len(parts)-1]
	}
	return fullName
}
