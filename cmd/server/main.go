// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/leaguesync/internal/api"
	"github.com/tomtom215/leaguesync/internal/app"
	"github.com/tomtom215/leaguesync/internal/auth"
	"github.com/tomtom215/leaguesync/internal/authz"
	"github.com/tomtom215/leaguesync/internal/config"
	"github.com/tomtom215/leaguesync/internal/logging"
	"github.com/tomtom215/leaguesync/internal/scheduler"
	"github.com/tomtom215/leaguesync/internal/supervisor"
	"github.com/tomtom215/leaguesync/internal/supervisor/services"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("version", Version).
		Str("db_path", cfg.Database.Path).
		Int("daily_limit", cfg.Budget.DailyLimit).
		Str("timezone", cfg.Budget.Timezone).
		Bool("scheduler_enabled", cfg.Scheduler.Enabled).
		Msg("Starting LeagueSync")

	core, err := app.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize sync core")
	}
	defer func() {
		if err := core.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing storage")
		}
	}()

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create JWT manager")
	}
	enforcer, err := authz.NewEnforcer(authz.EnforcerConfig{
		ModelPath:  cfg.Security.CasbinModelPath,
		PolicyPath: cfg.Security.CasbinPolicyPath,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create authorization enforcer")
	}

	handlerOpts := []api.HandlerOption{
		api.WithBreaker(core.Breaker),
		api.WithVersion(Version),
	}

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched, err = scheduler.New(core.Orchestrator, cfg.Scheduler.Interval, cfg.Budget.Location())
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to create scheduler")
		}
		handlerOpts = append(handlerOpts, api.WithScheduler(sched))
	}

	handler := api.NewHandler(core.Orchestrator, core.Budget, core.DB, handlerOpts...)
	chiMiddleware := api.NewChiMiddleware(&api.ChiMiddlewareConfig{
		CORSAllowedOrigins: cfg.Security.CORSOrigins,
		RateLimitRequests:  cfg.Security.RateLimitReqs,
		RateLimitWindow:    cfg.Security.RateLimitWindow,
		RateLimitDisabled:  cfg.Security.RateLimitDisabled,
	})
	router := api.NewRouter(handler, chiMiddleware, cfg.Security.CronSecret, jwtManager, enforcer)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Leave the HTTP service room to force-close after its drain window.
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout + 5*time.Second,
	})

	if sched != nil {
		tree.AddSchedulingService(services.NewSchedulerService(sched))
		logging.Info().Dur("interval", cfg.Scheduler.Interval).Msg("Sync scheduler added to supervisor tree")
	} else {
		logging.Info().Msg("In-process scheduler disabled, waiting for external timer on POST /api/v1/sync/run")
	}

	tree.AddAPIService(services.NewHTTPServerService(server, &cfg.Server))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("LeagueSync stopped")
}
