package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/orcalabs/kyogre-go/internal/adapters/persistence"
	"github.com/orcalabs/kyogre-go/internal/application/common"
	"github.com/orcalabs/kyogre-go/internal/application/scheduler"
	"github.com/orcalabs/kyogre-go/internal/domain/pipeline"
	"github.com/orcalabs/kyogre-go/internal/domain/vessel"
	"github.com/orcalabs/kyogre-go/internal/infrastructure/config"
	"github.com/orcalabs/kyogre-go/internal/infrastructure/database"
)

// newPipelineCommand creates the pipeline command with subcommands,
// grounded on the teacher's container.go (status table over a running
// unit of work) and workflow.go (trigger a named operation by flags).
func newPipelineCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Inspect and manually drive the chain state machine",
	}
	cmd.AddCommand(newPipelineStatusCommand())
	cmd.AddCommand(newPipelineTriggerCommand())
	return cmd
}

func newPipelineStatusCommand() *cobra.Command {
	var lookback int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the most recent chain transitions",
		Long: `Show the scheduler's transition log, most recent first — the same
log Pending replays to resume an interrupted chain after a crash (spec
§4.6 Resumability).

Example:
  kyogre-cli pipeline status`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfigOrDefault(configPath)
			db, err := database.NewConnection(&cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer func() { _ = database.Close(db) }()

			transitions := persistence.NewTransitionLogRepository(db)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			recent, err := transitions.Recent(ctx, lookback)
			if err != nil {
				return fmt.Errorf("failed to load transitions: %w", err)
			}
			if len(recent) == 0 {
				fmt.Println("No transitions recorded yet.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			defer w.Flush()
			fmt.Fprintln(w, "TIMESTAMP\tFROM\tTO")
			for i := len(recent) - 1; i >= 0; i-- {
				t := recent[i]
				fmt.Fprintf(w, "%s\t%s\t%s\n", t.Timestamp.Format(time.RFC3339), t.From, t.To)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&lookback, "lookback", pipeline.DefaultMaxLookback, "How many recent transitions to show")
	return cmd
}

// triggerable is the subset of Chain a standalone CLI invocation can run
// without the collaborators only the long-lived engine process holds —
// Scrape needs a VesselEventSource and UpdateDatabaseViews has no vessel
// scope, so both are left to the engine's own schedule.
var triggerable = []pipeline.State{
	pipeline.Trips,
	pipeline.TripsPrecision,
	pipeline.HaulDistribution,
	pipeline.TripDistance,
	pipeline.Benchmark,
}

func newPipelineTriggerCommand() *cobra.Command {
	var vesselID int64

	cmd := &cobra.Command{
		Use:   "trigger <state>",
		Short: "Run a single chain state for one vessel out of band",
		Long: `Run a single chain state immediately for one vessel, outside the
scheduler's own cadence — useful for reprocessing a vessel after a data
correction without waiting for the next periodic tick.

Valid states: Trips, TripsPrecision, HaulDistribution, TripDistance,
Benchmark. Scrape and UpdateDatabaseViews only run as part of the
engine's own schedule.

Example:
  kyogre-cli pipeline trigger TripsPrecision --vessel 2305001`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state := pipeline.State(args[0])
			if vesselID <= 0 {
				return fmt.Errorf("--vessel flag is required")
			}

			cfg := config.LoadConfigOrDefault(configPath)
			db, err := database.NewConnection(&cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer func() { _ = database.Close(db) }()

			req, handler, err := triggerHandlerFor(db, state, vessel.ID(vesselID))
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), cfg.Engine.ShutdownTimeout)
			defer cancel()

			if _, err := handler.Handle(ctx, req); err != nil {
				return fmt.Errorf("%s failed for vessel %d: %w", state, vesselID, err)
			}
			fmt.Printf("✓ %s completed for vessel %d\n", state, vesselID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&vesselID, "vessel", 0, "Vessel ID to run the state for (required)")
	return cmd
}

// triggerHandlerFor constructs the one handler a trigger needs, wired
// directly against GORM repositories built from db — mirroring main.go's
// registerHandlers, but scoped to a single state instead of the whole
// chain, since this process has no mediator of its own to dispatch
// through. No OceanClient is wired here, so a HaulDistribution trigger
// assigns hauls to trips but does not enrich them with weather or
// ocean-climate readings.
func triggerHandlerFor(db *gorm.DB, state pipeline.State, id vessel.ID) (common.Request, common.RequestHandler, error) {
	trips := persistence.NewTripRepository(db)
	positions := persistence.NewPositionRepository(db)
	hauls := persistence.NewHaulRepository(db)

	switch state {
	case pipeline.Trips:
		return scheduler.AssembleTripsCommand{VesselID: id}, &scheduler.AssembleTripsHandler{
			Vessels:   persistence.NewVesselRepository(db),
			Events:    persistence.NewVesselEventRepository(db),
			Trips:     trips,
			Conflicts: persistence.NewConflictRepository(db),
		}, nil
	case pipeline.TripsPrecision:
		return scheduler.RefineTripsPrecisionCommand{VesselID: id}, &scheduler.RefineTripsPrecisionHandler{
			Trips:     trips,
			Positions: positions,
		}, nil
	case pipeline.HaulDistribution:
		return scheduler.DistributeHaulsCommand{VesselID: id}, &scheduler.DistributeHaulsHandler{
			Trips: trips,
			Hauls: hauls,
		}, nil
	case pipeline.TripDistance:
		return scheduler.ComputeTripDistanceCommand{VesselID: id}, &scheduler.ComputeTripDistanceHandler{
			Vessels:   persistence.NewVesselRepository(db),
			Trips:     trips,
			Positions: positions,
			Hauls:     hauls,
			Estimates: persistence.NewFuelEstimateRepository(db),
		}, nil
	case pipeline.Benchmark:
		return scheduler.ComputeBenchmarksCommand{VesselID: id}, &scheduler.ComputeBenchmarksHandler{
			Vessels:      persistence.NewVesselRepository(db),
			Trips:        trips,
			Positions:    positions,
			Hauls:        hauls,
			Landings:     persistence.NewLandingRepository(db),
			Estimates:    persistence.NewFuelEstimateRepository(db),
			Measurements: persistence.NewFuelMeasurementRepository(db),
			Benchmarks:   persistence.NewBenchmarkRepository(db),
		}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported state %q; valid states are %v", state, triggerable)
	}
}
