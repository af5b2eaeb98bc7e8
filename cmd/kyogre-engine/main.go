package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/orcalabs/kyogre-go/internal/adapters/logging"
	"github.com/orcalabs/kyogre-go/internal/adapters/metrics"
	"github.com/orcalabs/kyogre-go/internal/adapters/ocean"
	"github.com/orcalabs/kyogre-go/internal/adapters/persistence"
	"github.com/orcalabs/kyogre-go/internal/application/common"
	"github.com/orcalabs/kyogre-go/internal/application/scheduler"
	"github.com/orcalabs/kyogre-go/internal/domain/pipeline"
	"github.com/orcalabs/kyogre-go/internal/domain/shared"
	"github.com/orcalabs/kyogre-go/internal/infrastructure/config"
	"github.com/orcalabs/kyogre-go/internal/infrastructure/database"
	"github.com/orcalabs/kyogre-go/internal/infrastructure/pidfile"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults to ./config.yaml, ./configs/config.yaml, /etc/kyogre/config.yaml)")
	flag.Parse()

	fmt.Println("Kyogre Engine v0.1.0")
	fmt.Println("====================")

	fmt.Println("Loading configuration...")
	cfg := config.MustLoadConfig(*configPath)

	fmt.Printf("Acquiring PID file lock: %s\n", cfg.Engine.PIDFile)
	pf := pidfile.New(cfg.Engine.PIDFile)
	if err := pf.Acquire(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to acquire PID file lock: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := pf.Release(); err != nil {
			fmt.Printf("Warning: failed to release PID file: %v\n", err)
		}
	}()
	fmt.Println("PID file lock acquired")

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	log := logging.NewSlogLogger(cfg.Logging)

	fmt.Printf("Connecting to %s database...\n", cfg.Database.Type)
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Log("warn", "failed to close database connection", map[string]interface{}{"error": err.Error()})
		}
	}()

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	fmt.Println("Database connected and migrated")

	// Repositories
	vessels := persistence.NewVesselRepository(db)
	events := persistence.NewVesselEventRepository(db)
	trips := persistence.NewTripRepository(db)
	conflicts := persistence.NewConflictRepository(db)
	positions := persistence.NewPositionRepository(db)
	estimates := persistence.NewFuelEstimateRepository(db)
	measurements := persistence.NewFuelMeasurementRepository(db)
	hauls := persistence.NewHaulRepository(db)
	landings := persistence.NewLandingRepository(db)
	benchmarks := persistence.NewBenchmarkRepository(db)
	transitions := persistence.NewTransitionLogRepository(db)
	runs := persistence.NewPipelineRunRepository(db)
	fmt.Println("Repositories initialized")

	clock := shared.NewRealClock()

	oceanClient, err := ocean.NewClient(cfg.OceanClimate, clock)
	if err != nil {
		return fmt.Errorf("failed to initialize ocean-climate client: %w", err)
	}
	fmt.Println("Ocean-climate client initialized")

	// Metrics
	var commandCollector *metrics.CommandMetricsCollector
	var pipelineCollector *metrics.PipelineMetricsCollector
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		commandCollector = metrics.NewCommandMetricsCollector()
		if err := commandCollector.Register(); err != nil {
			return fmt.Errorf("failed to register command metrics: %w", err)
		}
		fmt.Println("Metrics enabled")
	}

	mediator := common.NewMediator()
	if commandCollector != nil {
		mediator.RegisterMiddleware(metrics.PrometheusMiddleware(commandCollector))
	}

	if err := registerHandlers(mediator, vessels, events, trips, conflicts, positions, hauls, landings, estimates, measurements, benchmarks, oceanClient); err != nil {
		return fmt.Errorf("failed to register command handlers: %w", err)
	}
	fmt.Println("Command handlers registered")

	sched := scheduler.NewScheduler(mediator, vessels, transitions, runs, defaultSchedules(cfg.Engine), clock)
	sched.WorkerFanout = cfg.Engine.WorkerFanout

	if cfg.Metrics.Enabled {
		pipelineCollector = metrics.NewPipelineMetricsCollector(sched.ActiveRuns)
		if err := pipelineCollector.Register(); err != nil {
			return fmt.Errorf("failed to register pipeline metrics: %w", err)
		}
		metrics.SetGlobalCollector(pipelineCollector)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = common.WithLogger(ctx, log)

	if cfg.Metrics.Enabled {
		pipelineCollector.Start(ctx)
		defer pipelineCollector.Stop()

		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
		addr := fmt.Sprintf("%s:%d", cfg.Metrics.Host, cfg.Metrics.Port)
		metricsServer := &http.Server{Addr: addr, Handler: mux}
		go func() {
			fmt.Printf("Metrics server listening on %s%s\n", addr, cfg.Metrics.Path)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Log("error", "metrics server failed", map[string]interface{}{"error": err.Error()})
			}
		}()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = metricsServer.Shutdown(shutdownCtx)
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		tickLoop(ctx, sched, log)
	}()

	sig := <-sigChan
	fmt.Printf("\nReceived signal %v, shutting down...\n", sig)
	cancel()

	select {
	case <-done:
	case <-time.After(cfg.Engine.ShutdownTimeout):
		log.Log("warn", "shutdown timeout elapsed before tick loop exited", nil)
	}

	fmt.Println("Kyogre Engine stopped")
	return nil
}

// tickLoop repeatedly drives the scheduler until ctx is cancelled, logging
// tick errors rather than exiting the process on a single failed tick
// (spec §7 "a run failure degrades the run, not the process").
func tickLoop(ctx context.Context, sched *scheduler.Scheduler, log common.RunLogger) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := sched.Tick(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Log("error", "tick failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

func registerHandlers(
	mediator common.Mediator,
	vessels common.VesselRepository,
	events common.VesselEventRepository,
	trips common.TripRepository,
	conflicts common.ConflictRepository,
	positions common.PositionRepository,
	hauls common.HaulRepository,
	landings common.LandingRepository,
	estimates common.FuelEstimateRepository,
	measurements common.FuelMeasurementRepository,
	benchmarks common.BenchmarkRepository,
	oceanClient common.OceanClimateClient,
) error {
	if err := common.RegisterHandler[scheduler.ScrapeCommand](mediator, &scheduler.ScrapeHandler{
		Events:    events,
		Trips:     trips,
		Conflicts: conflicts,
		Positions: positions,
		Estimates: estimates,

		Source:         nil, // no scraper transport is wired; spec §6 leaves vessel-event/position ingress out of scope here
		PositionSource: nil,
	}); err != nil {
		return err
	}

	if err := common.RegisterHandler[scheduler.AssembleTripsCommand](mediator, &scheduler.AssembleTripsHandler{
		Vessels:   vessels,
		Events:    events,
		Trips:     trips,
		Conflicts: conflicts,
	}); err != nil {
		return err
	}

	if err := common.RegisterHandler[scheduler.RefineTripsPrecisionCommand](mediator, &scheduler.RefineTripsPrecisionHandler{
		Trips:     trips,
		Positions: positions,
	}); err != nil {
		return err
	}

	if err := common.RegisterHandler[scheduler.DistributeHaulsCommand](mediator, &scheduler.DistributeHaulsHandler{
		Trips:       trips,
		Hauls:       hauls,
		OceanClient: oceanClient,
	}); err != nil {
		return err
	}

	if err := common.RegisterHandler[scheduler.ComputeTripDistanceCommand](mediator, &scheduler.ComputeTripDistanceHandler{
		Vessels:   vessels,
		Trips:     trips,
		Positions: positions,
		Hauls:     hauls,
		Estimates: estimates,
	}); err != nil {
		return err
	}

	if err := common.RegisterHandler[scheduler.ComputeBenchmarksCommand](mediator, &scheduler.ComputeBenchmarksHandler{
		Vessels:      vessels,
		Trips:        trips,
		Positions:    positions,
		Hauls:        hauls,
		Landings:     landings,
		Estimates:    estimates,
		Measurements: measurements,
		Benchmarks:   benchmarks,
	}); err != nil {
		return err
	}

	return common.RegisterHandler[scheduler.UpdateDatabaseViewsCommand](mediator, &scheduler.UpdateDatabaseViewsHandler{
		Refresher: nil, // no materialized view is named in spec; the stage still runs and transitions
	})
}

// defaultSchedules gives every processing state a periodic cadence driven
// off the engine's health-check interval, since the spec leaves per-state
// cadence to deployment configuration (spec §4.6 "Each non-scheduling
// state reports a Schedule").
func defaultSchedules(cfg config.EngineConfig) pipeline.Schedules {
	interval := cfg.HealthCheckInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	schedules := make(pipeline.Schedules, len(pipeline.Chain))
	for _, state := range pipeline.Chain {
		schedules[state] = pipeline.Schedule{Kind: pipeline.Periodic, Interval: interval}
	}
	return schedules
}
