package config

import "time"

// EngineConfig holds the kyogre-engine scheduler process configuration:
// the chain it runs is fixed (pipeline.Chain), but fan-out, recovery, and
// shutdown behavior are tunable (spec §5).
type EngineConfig struct {
	// PID file location
	PIDFile string `mapstructure:"pid_file"`

	// Number of concurrent per-vessel workers a running state fans out to
	WorkerFanout int `mapstructure:"worker_fanout" validate:"min=1"`

	// How often the scheduler sweeps for stuck per-vessel jobs
	HealthCheckInterval time.Duration `mapstructure:"health_check_interval" validate:"required"`

	// In-flight job restart policy
	RestartPolicy RestartPolicyConfig `mapstructure:"restart_policy"`

	// Graceful shutdown timeout: in-flight per-vessel work finishes to a
	// safe checkpoint before the state returns (spec §5 cancellation)
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`
}

// RestartPolicyConfig holds run restart policy configuration.
type RestartPolicyConfig struct {
	// Enable automatic restart on transient failure
	Enabled bool `mapstructure:"enabled"`

	// Maximum restart attempts before giving up
	MaxAttempts int `mapstructure:"max_attempts" validate:"min=0"`

	// Delay between restart attempts
	Delay time.Duration `mapstructure:"delay"`

	// Backoff multiplier for retry delays
	BackoffMultiplier float64 `mapstructure:"backoff_multiplier" validate:"min=1"`

	// How long an in-flight per-vessel job may run before it is
	// considered stuck and eligible for requeue
	RecoveryTimeout time.Duration `mapstructure:"recovery_timeout" validate:"required"`

	// Maximum requeue attempts before a vessel is abandoned for the run
	MaxRecoveryAttempts int `mapstructure:"max_recovery_attempts" validate:"min=1"`
}
