package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/orcalabs/kyogre-go/internal/adapters/persistence"
	"github.com/orcalabs/kyogre-go/internal/domain/fuel"
	"github.com/orcalabs/kyogre-go/internal/infrastructure/config"
	"github.com/orcalabs/kyogre-go/internal/infrastructure/database"
)

// newFuelMeasurementCommand creates the fuel-measurement command with
// subcommands, grounded on the teacher's refuel.go (create an operation
// via flags) and ledger.go (tabwriter list) shapes.
func newFuelMeasurementCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fuel-measurement",
		Short: "Record and inspect operator fuel calibration readings",
		Long: `Fuel measurements are operator-supplied tank readings that calibrate
the kinematic fuel estimate for a call sign (spec §3 FuelMeasurement,
§4.4 Calibration).`,
	}
	cmd.AddCommand(newFuelMeasurementAddCommand())
	cmd.AddCommand(newFuelMeasurementListCommand())
	return cmd
}

func newFuelMeasurementAddCommand() *cobra.Command {
	var (
		callSign        string
		timestamp       string
		fuelLiters      float64
		fuelAfterLiters float64
		userID          uint64
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a fuel tank reading",
		Long: `Record a fuel tank reading for a call sign.

If --fuel-after-liter is given, the reading is a refuel event: the tank
level observed just before refueling (--fuel-liter) and the level
observed just after (--fuel-after-liter), which must be strictly
greater (spec §3 Invariant).

Examples:
  kyogre-cli fuel-measurement add --call-sign LK-2043 --timestamp 2026-01-10T12:00:00Z --fuel-liter 4000
  kyogre-cli fuel-measurement add --call-sign LK-2043 --timestamp 2026-01-10T12:00:00Z --fuel-liter 300 --fuel-after-liter 4200`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if callSign == "" {
				return fmt.Errorf("--call-sign flag is required")
			}
			ts, err := time.Parse(time.RFC3339, timestamp)
			if err != nil {
				return fmt.Errorf("--timestamp must be RFC3339: %w", err)
			}

			m := fuel.Measurement{
				UserID:     userID,
				CallSign:   callSign,
				Timestamp:  ts,
				FuelLiters: fuelLiters,
			}
			if cmd.Flags().Changed("fuel-after-liter") {
				m.FuelAfterLiters = &fuelAfterLiters
			}
			if err := m.Validate(); err != nil {
				return fmt.Errorf("invalid measurement: %w", err)
			}

			cfg := config.LoadConfigOrDefault(configPath)
			db, err := database.NewConnection(&cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer func() { _ = database.Close(db) }()

			measurements := persistence.NewFuelMeasurementRepository(db)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := measurements.Save(ctx, m); err != nil {
				return fmt.Errorf("failed to save measurement: %w", err)
			}

			fmt.Println("✓ Fuel measurement recorded")
			fmt.Printf("  Call Sign:  %s\n", callSign)
			fmt.Printf("  Timestamp:  %s\n", ts.Format(time.RFC3339))
			fmt.Printf("  Fuel:       %.1f L\n", fuelLiters)
			if m.FuelAfterLiters != nil {
				fmt.Printf("  After:      %.1f L\n", *m.FuelAfterLiters)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&callSign, "call-sign", "", "Vessel call sign (required)")
	cmd.Flags().StringVar(&timestamp, "timestamp", "", "Reading timestamp, RFC3339 (required)")
	cmd.Flags().Float64Var(&fuelLiters, "fuel-liter", 0, "Fuel level at the reading, in liters (required)")
	cmd.Flags().Float64Var(&fuelAfterLiters, "fuel-after-liter", 0, "Post-refuel fuel level, in liters (omit for a plain reading)")
	cmd.Flags().Uint64Var(&userID, "user-id", 0, "Operator user ID recording the reading")
	return cmd
}

func newFuelMeasurementListCommand() *cobra.Command {
	var callSign string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a call sign's fuel measurements",
		Long: `List fuel measurements for a call sign, oldest first — the same
order the calibration query walks consecutive pairs in (spec §4.4).

Example:
  kyogre-cli fuel-measurement list --call-sign LK-2043`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if callSign == "" {
				return fmt.Errorf("--call-sign flag is required")
			}

			cfg := config.LoadConfigOrDefault(configPath)
			db, err := database.NewConnection(&cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer func() { _ = database.Close(db) }()

			measurements := persistence.NewFuelMeasurementRepository(db)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			all, err := measurements.ListByCallSignOrdered(ctx, callSign)
			if err != nil {
				return fmt.Errorf("failed to list measurements: %w", err)
			}
			if len(all) == 0 {
				fmt.Println("No measurements found for this call sign.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			defer w.Flush()
			fmt.Fprintln(w, "ID\tTIMESTAMP\tFUEL (L)\tAFTER (L)")
			for _, m := range all {
				after := "-"
				if m.FuelAfterLiters != nil {
					after = fmt.Sprintf("%.1f", *m.FuelAfterLiters)
				}
				fmt.Fprintf(w, "%d\t%s\t%.1f\t%s\n", m.ID, m.Timestamp.Format(time.RFC3339), m.FuelLiters, after)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&callSign, "call-sign", "", "Vessel call sign (required)")
	return cmd
}
