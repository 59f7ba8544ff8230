// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package api

import (
	"context"
	"time"

	"github.com/tomtom215/leaguesync/internal/models"
)

// Orchestrator runs batches and manual syncs. *sync.Orchestrator satisfies it.
type Orchestrator interface {
	RunBatch(ctx context.Context) (*models.BatchReport, error)
	TriggerManual(ctx context.Context, gameKey string) (*models.GameSyncReport, error)
	Schedule(ctx context.Context, includeIdle bool) ([]models.SyncSchedule, error)
}

// BudgetReporter exposes the daily allowance. *budget.Tracker satisfies it.
type BudgetReporter interface {
	Status(ctx context.Context) (models.BudgetStatus, error)
}

// GameStore is the game registry and run history. *database.DB satisfies it.
type GameStore interface {
	ListGames(ctx context.Context) ([]*models.Game, error)
	GetGame(ctx context.Context, key string) (*models.Game, error)
	UpsertGame(ctx context.Context, g *models.Game) error
	SetActive(ctx context.Context, key string, active bool) error
	RecentRuns(ctx context.Context, gameKey string, limit int) ([]models.SyncRun, error)
	Ping(ctx context.Context) error
}

// NextRunReporter is the in-process scheduler, when enabled.
type NextRunReporter interface {
	NextRun() (time.Time, bool)
}

// BreakerReporter reports the sync worker circuit breaker state.
type BreakerReporter interface {
	State() string
}

// Handler holds the dependencies of every route.
type Handler struct {
	orchestrator Orchestrator
	budget       BudgetReporter
	games        GameStore
	scheduler    NextRunReporter
	breaker      BreakerReporter
	version      string
	startTime    time.Time
}

// HandlerOption configures optional Handler dependencies.
type HandlerOption func(*Handler)

// WithScheduler reports the next timer-driven batch on /health.
func WithScheduler(s NextRunReporter) HandlerOption {
	return func(h *Handler) { h.scheduler = s }
}

// WithBreaker reports the circuit breaker state on /health.
func WithBreaker(b BreakerReporter) HandlerOption {
	return func(h *Handler) { h.breaker = b }
}

// WithVersion sets the version string shown on /health.
func WithVersion(v string) HandlerOption {
	return func(h *Handler) { h.version = v }
}

func NewHandler(orch Orchestrator, budget BudgetReporter, games GameStore, opts ...HandlerOption) *Handler {
	h := &Handler{
		orchestrator: orch,
		budget:       budget,
		games:        games,
		version:      "dev",
		startTime:    time.Now(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}
