// Package cli implements the operator command-line surface for Kyogre,
// grounded on the teacher's internal/adapters/cli package shape (one
// file per command family, RunE closures, a root command wiring them
// together). Unlike the teacher, which talks to a running daemon over a
// Unix socket, kyogre-cli is a direct-to-database operator tool: the
// engine (cmd/kyogre-engine) is a single scheduled batch process, not a
// long-lived server a CLI would dial into.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

// NewRootCommand creates the root command for the CLI.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kyogre-cli",
		Short: "Kyogre CLI - operator tooling for the fishery data pipeline",
		Long: `kyogre-cli provides commands to inspect and drive the Kyogre trip
pipeline directly against its database.

Examples:
  kyogre-cli config show
  kyogre-cli vessel list
  kyogre-cli trip list --vessel 2305001
  kyogre-cli fuel-measurement add --call-sign LK-2043 --fuel-liter 4000 --timestamp 2026-01-10T12:00:00Z
  kyogre-cli pipeline status
  kyogre-cli pipeline trigger TripsPrecision --vessel 2305001`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"path to config file (defaults to ./config.yaml, ./configs/config.yaml, /etc/kyogre/config.yaml)")

	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVesselCommand())
	rootCmd.AddCommand(newTripCommand())
	rootCmd.AddCommand(newFuelMeasurementCommand())
	rootCmd.AddCommand(newPipelineCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
