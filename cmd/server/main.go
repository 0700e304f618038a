/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the crew roster scheduling server. Handles
  configuration loading, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load configuration (koanf: defaults, optional file, env overrides);
     fleet sizing errors here are fatal
  3. Initialize SQLite store
  4. Build the detector, coordinator, and API handler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Configuration file path (YAML or JSON); omit for defaults
  -db      Override the SQLite database path (":memory:" works)
  -seed    Load the demo fleet on startup (development only)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, drain active requests (30s
  timeout), close the database, exit.
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fleetops/roster-engine/api"
	"github.com/fleetops/roster-engine/config"
	"github.com/fleetops/roster-engine/leave"
	"github.com/fleetops/roster-engine/logger"
	"github.com/fleetops/roster-engine/store/sqlite"
)

func main() {
	configPath := flag.String("config", "", "configuration file (YAML or JSON); ROSTER_* environment variables override in either case")
	dbPath := flag.String("db", "", "SQLite database path override")
	seed := flag.Bool("seed", false, "load demo fleet data on startup")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.DB.Path = *dbPath
	}

	log := logger.New("server", cfg.Logging.Level)

	calendar, err := cfg.Calendar()
	if err != nil {
		log.Fatal().Err(err).Msg("roster calendar configuration")
	}
	fleet := cfg.FleetSettings()
	detector, err := leave.NewDetector(calendar, fleet, cfg.Fleet.AllowOverride)
	if err != nil {
		log.Fatal().Err(err).Msg("fleet configuration")
	}

	store, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer store.Close()

	if *seed {
		if err := api.SeedDemo(context.Background(), store, calendar); err != nil {
			log.Fatal().Err(err).Msg("failed to seed demo data")
		}
		log.Info().Msg("demo fleet loaded")
	}

	coordinator := leave.NewCoordinator(store, store, detector, calendar, logger.New("reschedule", cfg.Logging.Level))

	handler := &api.Handler{
		Store:       store,
		Overrides:   store,
		Detector:    detector,
		Coordinator: coordinator,
		Calendar:    calendar,
		Fleet:       fleet,
		Log:         logger.New("api", cfg.Logging.Level),
	}
	router := api.NewRouter(handler, cfg.HTTP.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.HTTP.Port).
			Int("total_crew", fleet.TotalCrew).Int("minimum_crew", fleet.MinimumCrew).
			Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server stopped")
}
