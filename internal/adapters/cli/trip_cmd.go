package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/orcalabs/kyogre-go/internal/adapters/persistence"
	"github.com/orcalabs/kyogre-go/internal/domain/vessel"
	"github.com/orcalabs/kyogre-go/internal/infrastructure/config"
	"github.com/orcalabs/kyogre-go/internal/infrastructure/database"
)

// newTripCommand creates the trip command with subcommands, grounded on
// the teacher's ship.go status-table listing shape.
func newTripCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trip",
		Short: "Inspect assembled trips",
	}
	cmd.AddCommand(newTripListCommand())
	return cmd
}

func newTripListCommand() *cobra.Command {
	var vesselID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a vessel's assembled trips",
		Long: `List a vessel's trips in period order, showing both the assembled
period and any precision refinement.

Example:
  kyogre-cli trip list --vessel 2305001`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if vesselID <= 0 {
				return fmt.Errorf("--vessel flag is required")
			}

			cfg := config.LoadConfigOrDefault(configPath)
			db, err := database.NewConnection(&cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer func() { _ = database.Close(db) }()

			trips := persistence.NewTripRepository(db)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			all, err := trips.FindByVessel(ctx, vessel.ID(vesselID))
			if err != nil {
				return fmt.Errorf("failed to list trips: %w", err)
			}
			if len(all) == 0 {
				fmt.Println("No trips found for this vessel.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			defer w.Flush()
			fmt.Fprintln(w, "TRIP ID\tSTART\tEND\tPRECISION\tASSEMBLER\tSTATUS")
			for _, t := range all {
				precision := "-"
				if t.PeriodPrecision != nil {
					precision = fmt.Sprintf("%s..%s", t.PeriodPrecision.Start.Format(time.RFC3339), t.PeriodPrecision.End.Format(time.RFC3339))
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					t.TripID,
					t.Period.Start.Format(time.RFC3339),
					t.Period.End.Format(time.RFC3339),
					precision,
					t.AssemblerID,
					t.Status,
				)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&vesselID, "vessel", 0, "Vessel ID to list trips for (required)")
	return cmd
}
