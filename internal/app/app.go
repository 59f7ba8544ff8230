// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package app

import (
	"errors"
	"fmt"

	"github.com/tomtom215/leaguesync/internal/budget"
	"github.com/tomtom215/leaguesync/internal/config"
	"github.com/tomtom215/leaguesync/internal/database"
	"github.com/tomtom215/leaguesync/internal/events"
	"github.com/tomtom215/leaguesync/internal/logging"
	"github.com/tomtom215/leaguesync/internal/schedule"
	lsync "github.com/tomtom215/leaguesync/internal/sync"
	"github.com/tomtom215/leaguesync/internal/upstream"
)

// App holds the assembled sync core.
type App struct {
	Config       *config.Config
	DB           *database.DB
	Budget       *budget.Tracker
	Breaker      *lsync.BreakerSyncer
	Orchestrator *lsync.Orchestrator

	// Publisher is nil when NATS is disabled.
	Publisher *events.Publisher

	closers []func() error
}

// New opens storage and builds the orchestrator. On error everything opened
// so far is closed again.
func New(cfg *config.Config) (a *App, err error) {
	a = &App{Config: cfg}
	defer func() {
		if err != nil {
			if closeErr := a.Close(); closeErr != nil {
				logging.Warn().Err(closeErr).Msg("Cleanup after failed startup")
			}
			a = nil
		}
	}()

	a.DB, err = database.New(&cfg.Database, database.WithFailureBackoff(cfg.Sync.FailureBackoff))
	if err != nil {
		return a, fmt.Errorf("open database: %w", err)
	}
	a.closers = append(a.closers, a.DB.Close)

	store, err := a.budgetStore()
	if err != nil {
		return a, err
	}
	a.Budget, err = budget.NewTracker(store, budget.Config{
		DailyLimit:          cfg.Budget.DailyLimit,
		Location:            cfg.Budget.Location(),
		DefaultUserEstimate: cfg.Budget.DefaultUserEstimate,
	})
	if err != nil {
		return a, fmt.Errorf("create budget tracker: %w", err)
	}

	client, err := upstream.NewClient(&cfg.Upstream, a.DB)
	if err != nil {
		return a, fmt.Errorf("create upstream client: %w", err)
	}
	a.Breaker = lsync.NewBreakerSyncer(client, BreakerSettings(&cfg.Upstream))

	opts := []lsync.Option{lsync.WithRecorder(a.DB)}
	if cfg.NATS.Enabled {
		a.Publisher, err = events.NewNATSPublisher(&cfg.NATS)
		if err != nil {
			return a, fmt.Errorf("connect NATS publisher: %w", err)
		}
		a.closers = append(a.closers, a.Publisher.Close)
		opts = append(opts, lsync.WithPublisher(a.Publisher))
		logging.Info().Str("url", cfg.NATS.URL).Bool("jetstream", cfg.NATS.JetStream).Msg("NATS report publishing enabled")
	}

	a.Orchestrator, err = lsync.NewOrchestrator(a.DB, a.Breaker, a.Budget, OrchestratorConfig(&cfg.Sync), opts...)
	if err != nil {
		return a, fmt.Errorf("create orchestrator: %w", err)
	}
	return a, nil
}

func (a *App) budgetStore() (budget.Store, error) {
	path := a.Config.Budget.StorePath
	if path == "" {
		logging.Warn().Msg("BUDGET_STORE_PATH not set, budget counter will reset on restart")
		return budget.NewMemoryStore(), nil
	}
	store, err := budget.OpenBadgerStore(path)
	if err != nil {
		return nil, fmt.Errorf("open budget store: %w", err)
	}
	a.closers = append(a.closers, store.Close)
	return store, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// BreakerSettings maps the upstream config onto breaker settings, keeping
// defaults for unset fields.
func BreakerSettings(cfg *config.UpstreamConfig) lsync.BreakerSettings {
	s := lsync.DefaultBreakerSettings()
	if cfg.BreakerMaxRequests > 0 {
		s.MaxRequests = cfg.BreakerMaxRequests
	}
	if cfg.BreakerInterval > 0 {
		s.Interval = cfg.BreakerInterval
	}
	if cfg.BreakerTimeout > 0 {
		s.Timeout = cfg.BreakerTimeout
	}
	if cfg.BreakerFailureRatio > 0 {
		s.FailureRatio = cfg.BreakerFailureRatio
	}
	if cfg.BreakerMinRequests > 0 {
		s.MinRequests = cfg.BreakerMinRequests
	}
	return s
}

// OrchestratorConfig maps the sync config onto the orchestrator.
func OrchestratorConfig(cfg *config.SyncConfig) lsync.Config {
	return lsync.Config{
		PacingDelay:    cfg.PacingDelay,
		BatchTimeout:   cfg.BatchTimeout,
		MaxGamesPerRun: cfg.MaxGamesPerRun,
		ManualCooldown: cfg.ManualCooldown,
		Windows: schedule.Windows{
			RoundStart:    cfg.RoundStartWindow,
			TradeDeadline: cfg.TradeDeadlineWindow,
			RoundEnded:    cfg.RoundEndedWindow,
		},
	}
}
