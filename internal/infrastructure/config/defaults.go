package config

import (
	"time"

	"github.com/orcalabs/kyogre-go/internal/domain/pipeline"
)

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "kyogre"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "kyogre"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Ocean-climate client defaults
	if cfg.OceanClimate.Timeout == 0 {
		cfg.OceanClimate.Timeout = 30 * time.Second
	}
	if cfg.OceanClimate.RateLimit.Requests == 0 {
		cfg.OceanClimate.RateLimit.Requests = 2
	}
	if cfg.OceanClimate.RateLimit.Burst == 0 {
		cfg.OceanClimate.RateLimit.Burst = 10
	}
	if cfg.OceanClimate.Retry.MaxAttempts == 0 {
		cfg.OceanClimate.Retry.MaxAttempts = 3
	}
	if cfg.OceanClimate.Retry.BackoffBase == 0 {
		cfg.OceanClimate.Retry.BackoffBase = 1 * time.Second
	}

	// Engine defaults
	if cfg.Engine.PIDFile == "" {
		cfg.Engine.PIDFile = "/tmp/kyogre-engine.pid"
	}
	if cfg.Engine.WorkerFanout == 0 {
		cfg.Engine.WorkerFanout = pipeline.DefaultWorkerFanout
	}
	if cfg.Engine.HealthCheckInterval == 0 {
		cfg.Engine.HealthCheckInterval = 30 * time.Second
	}
	if cfg.Engine.ShutdownTimeout == 0 {
		cfg.Engine.ShutdownTimeout = 30 * time.Second
	}
	if cfg.Engine.RestartPolicy.MaxAttempts == 0 {
		cfg.Engine.RestartPolicy.MaxAttempts = pipeline.MaxRestartAttempts
	}
	if cfg.Engine.RestartPolicy.Delay == 0 {
		cfg.Engine.RestartPolicy.Delay = 5 * time.Second
	}
	if cfg.Engine.RestartPolicy.BackoffMultiplier == 0 {
		cfg.Engine.RestartPolicy.BackoffMultiplier = 2.0
	}
	if cfg.Engine.RestartPolicy.RecoveryTimeout == 0 {
		cfg.Engine.RestartPolicy.RecoveryTimeout = 10 * time.Minute
	}
	if cfg.Engine.RestartPolicy.MaxRecoveryAttempts == 0 {
		cfg.Engine.RestartPolicy.MaxRecoveryAttempts = 5
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
	if cfg.Logging.Rotation.MaxSize == 0 {
		cfg.Logging.Rotation.MaxSize = 100 // MB
	}
	if cfg.Logging.Rotation.MaxBackups == 0 {
		cfg.Logging.Rotation.MaxBackups = 3
	}
	if cfg.Logging.Rotation.MaxAge == 0 {
		cfg.Logging.Rotation.MaxAge = 28 // days
	}

	// Metrics defaults
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}
