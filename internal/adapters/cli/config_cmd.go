package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orcalabs/kyogre-go/internal/infrastructure/config"
)

// newConfigCommand creates the config command with subcommands, grounded
// on the teacher's NewConfigCommand/newConfigShowCommand shape.
func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect engine configuration",
		Long: `Inspect the configuration the engine would load.

Configuration is assembled from, in priority order:
1. Environment variables (KYOGRE_* prefix)
2. Config file (config.yaml)
3. Default values

Example:
  kyogre-cli config show`,
	}
	cmd.AddCommand(newConfigShowCommand())
	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the configuration the engine would load",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				fmt.Printf("Warning: failed to load config: %v\n", err)
				fmt.Println("Using default configuration.")
				cfg = config.LoadConfigOrDefault(configPath)
			}

			fmt.Println("Kyogre Engine Configuration")
			fmt.Println("===========================")

			fmt.Println("\nDatabase:")
			fmt.Printf("  Type:              %s\n", cfg.Database.Type)
			if cfg.Database.URL != "" {
				fmt.Printf("  URL:               %s\n", maskPassword(cfg.Database.URL))
			} else {
				fmt.Printf("  Host:              %s\n", cfg.Database.Host)
				fmt.Printf("  Port:              %d\n", cfg.Database.Port)
				fmt.Printf("  Database:          %s\n", cfg.Database.Name)
			}
			fmt.Printf("  Max Connections:   %d\n", cfg.Database.Pool.MaxOpen)

			fmt.Println("\nOcean Climate:")
			fmt.Printf("  Base URL:          %s\n", cfg.OceanClimate.BaseURL)
			fmt.Printf("  Timeout:           %s\n", cfg.OceanClimate.Timeout)
			fmt.Printf("  Rate Limit:        %d req/s (burst: %d)\n", cfg.OceanClimate.RateLimit.Requests, cfg.OceanClimate.RateLimit.Burst)
			fmt.Printf("  Max Retries:       %d\n", cfg.OceanClimate.Retry.MaxAttempts)

			fmt.Println("\nEngine:")
			fmt.Printf("  Worker Fanout:     %d\n", cfg.Engine.WorkerFanout)
			fmt.Printf("  Health Interval:   %s\n", cfg.Engine.HealthCheckInterval)
			fmt.Printf("  Shutdown Timeout:  %s\n", cfg.Engine.ShutdownTimeout)
			fmt.Printf("  PID File:          %s\n", cfg.Engine.PIDFile)

			fmt.Println("\nMetrics:")
			fmt.Printf("  Enabled:           %t\n", cfg.Metrics.Enabled)
			fmt.Printf("  Address:           %s:%d%s\n", cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)

			fmt.Println("\nLogging:")
			fmt.Printf("  Level:             %s\n", cfg.Logging.Level)
			fmt.Printf("  Format:            %s\n", cfg.Logging.Format)
			fmt.Printf("  Output:            %s\n", cfg.Logging.Output)

			return nil
		},
	}
}

// maskPassword masks credentials embedded in a connection URL for display.
func maskPassword(url string) string {
	atIdx := -1
	for i, r := range url {
		if r == '@' {
			atIdx = i
		}
	}
	schemeEnd := -1
	for i := 0; i+2 < len(url); i++ {
		if url[i] == ':' && url[i+1] == '/' && url[i+2] == '/' {
			schemeEnd = i + 3
			break
		}
	}
	if atIdx < 0 || schemeEnd < 0 || atIdx < schemeEnd {
		return url
	}
	return url[:schemeEnd] + "***:***" + url[atIdx:]
}
