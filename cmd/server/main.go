// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/tomtom215/degreematch/internal/api"
	"github.com/tomtom215/degreematch/internal/config"
	"github.com/tomtom215/degreematch/internal/database"
	"github.com/tomtom215/degreematch/internal/explain"
	"github.com/tomtom215/degreematch/internal/logging"
	"github.com/tomtom215/degreematch/internal/metrics"
	"github.com/tomtom215/degreematch/internal/schedules"
	"github.com/tomtom215/degreematch/internal/supervisor"
	"github.com/tomtom215/degreematch/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	configPath := flag.String("config", "", "path to YAML config file (default: search CONFIG_PATH and standard locations)")
	flag.Parse()

	// Load configuration first to get logging settings
	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Str("models_dir", cfg.Models.Dir).
		Str("environment", cfg.Server.Environment).
		Msg("Starting DegreeMatch with supervisor tree")
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	scheduleStore, err := schedules.Open(schedules.Config{
		Path:     cfg.Schedules.Path,
		TTL:      cfg.Schedules.TTL,
		InMemory: cfg.Schedules.InMemory,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open schedule store")
	}
	defer func() {
		if err := scheduleStore.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing schedule store")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engineLogger := logging.WithComponent("engine")
	engine, err := initEngine(ctx, cfg, db, engineLogger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize recommendation engine")
	}

	explainer, err := explain.New(&cfg.Explain, logging.WithComponent("explain"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize explainer")
	}
	logging.Info().Str("provider", explainer.Name()).Msg("Match explanations configured")

	if cfg.Server.RateLimitDisabled {
		logging.Warn().Msg("API rate limiting is DISABLED (RATE_LIMIT_DISABLED=true)")
	}

	handler := api.NewHandler(db, scheduleStore, engine, explainer, cfg)
	handler.SetVersion(version)
	chiMw := api.NewChiMiddleware(api.ChiMiddlewareConfigFromServer(&cfg.Server))
	router := api.NewRouter(handler, chiMw, logging.WithComponent("api"))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLoggerWithComponent("supervisor"), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout + 5*time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	addEngineServices(tree, cfg, engine, scheduleStore, engineLogger)

	httpService := services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout)
	httpService.SetDrain(handler.Wait)
	tree.AddAPIService(httpService)
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// The tree returns once the context is canceled or the root gives up.
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}
	stop()

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
