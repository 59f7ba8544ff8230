// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/leaguesync/internal/config"
	"github.com/tomtom215/leaguesync/internal/models"
)

func testConfig(t *testing.T, upstreamURL string) *config.Config {
	t.Helper()
	return &config.Config{
		Database: config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "leaguesync.duckdb"), MaxMemory: "256MB", Threads: 1},
		Budget: config.BudgetConfig{
			DailyLimit:          500,
			Timezone:            "UTC",
			StorePath:           filepath.Join(t.TempDir(), "budget"),
			DefaultUserEstimate: 100,
		},
		Sync: config.SyncConfig{
			ManualCooldown:      5 * time.Minute,
			RoundStartWindow:    2 * time.Hour,
			TradeDeadlineWindow: 2 * time.Hour,
			RoundEndedWindow:    time.Hour,
		},
		Upstream: config.UpstreamConfig{
			BaseURL:           upstreamURL,
			Token:             "worker-token",
			Timeout:           5 * time.Second,
			RequestsPerSecond: 100,
			Burst:             10,
		},
	}
}

func TestNewRunsBatchEndToEnd(t *testing.T) {
	var calls atomic.Int32
	worker := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("Authorization") != "Bearer worker-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if !strings.HasSuffix(r.URL.Path, "/v1/games/epl-2026/sync") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"users_synced":120,"elements_synced":600,"game":{"current_round":13,"total_rounds":38,"round_state":"open","users_total":120}}`))
	}))
	defer worker.Close()

	a, err := New(testConfig(t, worker.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	}()
	if a.Publisher != nil {
		t.Error("Publisher should be nil with NATS disabled")
	}

	ctx := context.Background()
	if err := a.DB.UpsertGame(ctx, &models.Game{
		Key:                 "epl-2026",
		Name:                "Premier League",
		Sport:               "football",
		IsActive:            true,
		SyncIntervalMinutes: 30,
		CurrentRound:        12,
		TotalRounds:         38,
		RoundState:          models.RoundStateOpen,
		UsersTotal:          100,
	}); err != nil {
		t.Fatalf("UpsertGame: %v", err)
	}

	report, err := a.Orchestrator.RunBatch(ctx)
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if report.Status != models.BatchCompleted || report.Succeeded != 1 || report.UsersSynced != 120 {
		t.Errorf("report = %+v", report)
	}
	if calls.Load() != 1 {
		t.Errorf("worker calls = %d, want 1", calls.Load())
	}

	game, err := a.DB.GetGame(ctx, "epl-2026")
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if game.CurrentRound != 13 || game.UsersTotal != 120 || game.LastSyncedAt == nil {
		t.Errorf("game after sync = %+v", game)
	}

	runs, err := a.DB.RecentRuns(ctx, "epl-2026", 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != "success" || runs[0].Trigger != models.TriggerScheduled {
		t.Errorf("runs = %+v", runs)
	}

	status, err := a.Budget.Status(ctx)
	if err != nil {
		t.Fatalf("Budget.Status: %v", err)
	}
	if status.DailyLimit != 500 || status.Remaining >= 500 {
		t.Errorf("budget status = %+v", status)
	}

	if got := a.Breaker.State(); got != "closed" {
		t.Errorf("breaker state = %q, want closed", got)
	}
}

func TestNewInvalidUpstreamClosesDatabase(t *testing.T) {
	cfg := testConfig(t, "not a url")
	cfg.Budget.StorePath = ""

	a, err := New(cfg)
	if err == nil {
		_ = a.Close()
		t.Fatal("New succeeded with an invalid upstream URL")
	}
	if a != nil {
		t.Error("New returned a non-nil App on error")
	}

	// The database file lock must be released, so a second open succeeds.
	cfg.Upstream.BaseURL = "http://127.0.0.1:1"
	again, err := New(cfg)
	if err != nil {
		t.Fatalf("reopen after failed startup: %v", err)
	}
	_ = again.Close()
}

func TestBreakerSettingsKeepsDefaults(t *testing.T) {
	got := BreakerSettings(&config.UpstreamConfig{BreakerTimeout: 30 * time.Second, BreakerMinRequests: 4})
	if got.Timeout != 30*time.Second || got.MinRequests != 4 {
		t.Errorf("overrides not applied: %+v", got)
	}
	if got.FailureRatio != 0.6 || got.MaxRequests != 3 || got.Interval != time.Minute {
		t.Errorf("defaults lost: %+v", got)
	}
}

func TestOrchestratorConfigMapsWindows(t *testing.T) {
	got := OrchestratorConfig(&config.SyncConfig{
		PacingDelay:         2 * time.Second,
		MaxGamesPerRun:      7,
		RoundStartWindow:    90 * time.Minute,
		TradeDeadlineWindow: 45 * time.Minute,
		RoundEndedWindow:    30 * time.Minute,
	})
	if got.PacingDelay != 2*time.Second || got.MaxGamesPerRun != 7 {
		t.Errorf("got %+v", got)
	}
	if got.Windows.RoundStart != 90*time.Minute || got.Windows.TradeDeadline != 45*time.Minute || got.Windows.RoundEnded != 30*time.Minute {
		t.Errorf("windows = %+v", got.Windows)
	}
}
