package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/orcalabs/kyogre-go/internal/adapters/persistence"
	"github.com/orcalabs/kyogre-go/internal/infrastructure/config"
	"github.com/orcalabs/kyogre-go/internal/infrastructure/database"
)

// newVesselCommand creates the vessel command with subcommands, grounded
// on the teacher's player.go ("list registered agents") table-print shape.
func newVesselCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vessel",
		Short: "Inspect vessels",
	}
	cmd.AddCommand(newVesselListCommand())
	return cmd
}

func newVesselListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered vessels",
		Long: `List every vessel known to the platform, with its position-lookup
identity and fuel-model inputs.

Example:
  kyogre-cli vessel list`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfigOrDefault(configPath)
			db, err := database.NewConnection(&cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer func() { _ = database.Close(db) }()

			vessels := persistence.NewVesselRepository(db)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			all, err := vessels.ListAll(ctx)
			if err != nil {
				return fmt.Errorf("failed to list vessels: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			defer w.Flush()
			fmt.Fprintln(w, "VESSEL ID\tCALL SIGN\tMMSI\tASSEMBLER\tENGINES\tSERVICE SPEED (kn)")
			for _, v := range all {
				callSign := "-"
				if v.CallSign != nil {
					callSign = *v.CallSign
				}
				mmsi := "-"
				if v.Mmsi != nil {
					mmsi = fmt.Sprintf("%d", *v.Mmsi)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%.1f\n",
					v.ID, callSign, mmsi, v.PreferredAssembler, len(v.Engines), v.ServiceSpeedKnots)
			}
			return nil
		},
	}
}
