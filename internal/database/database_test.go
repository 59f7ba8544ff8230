// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/leaguesync/internal/config"
	"github.com/tomtom215/leaguesync/internal/models"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

// DuckDB CGO calls misbehave under heavy test parallelism; serialise them.
var testDBSemaphore = make(chan struct{}, 1)

func setupTestDB(t *testing.T, opts ...Option) *DB {
	t.Helper()
	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	db, err := New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "256MB", Threads: 1}, opts...)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func ptr(t time.Time) *time.Time { return &t }

func seedGame(t *testing.T, db *DB, g *models.Game) {
	t.Helper()
	if err := db.UpsertGame(context.Background(), g); err != nil {
		t.Fatalf("UpsertGame(%s): %v", g.Key, err)
	}
}

func TestUpsertAndGetGame(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	want := &models.Game{
		Key:                 "epl-2026",
		Name:                "Premier League Fantasy",
		Sport:               "football",
		IsActive:            true,
		LastSyncedAt:        ptr(testNow.Add(-time.Hour)),
		SyncIntervalMinutes: 30,
		CurrentRound:        12,
		TotalRounds:         38,
		RoundState:          models.RoundStateOpen,
		RoundStart:          ptr(testNow.Add(90 * time.Minute)),
		TradeDeadline:       ptr(testNow.Add(80 * time.Minute)),
		UsersTotal:          1240,
	}
	seedGame(t, db, want)

	got, err := db.GetGame(ctx, "epl-2026")
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if got.Name != want.Name || got.SyncIntervalMinutes != 30 || got.UsersTotal != 1240 {
		t.Errorf("GetGame = %+v", got)
	}
	if got.RoundState != models.RoundStateOpen || got.CurrentRound != 12 || got.TotalRounds != 38 {
		t.Errorf("round fields = %d/%d %s", got.CurrentRound, got.TotalRounds, got.RoundState)
	}
	if got.LastSyncedAt == nil || !got.LastSyncedAt.Equal(*want.LastSyncedAt) {
		t.Errorf("LastSyncedAt = %v, want %v", got.LastSyncedAt, want.LastSyncedAt)
	}
	if got.RoundEnd != nil {
		t.Errorf("RoundEnd = %v, want nil", got.RoundEnd)
	}

	want.Name = "EPL Fantasy"
	want.IsActive = false
	seedGame(t, db, want)
	got, _ = db.GetGame(ctx, "epl-2026")
	if got.Name != "EPL Fantasy" || got.IsActive {
		t.Errorf("upsert did not replace row: %+v", got)
	}
}

func TestGetGameNotFound(t *testing.T) {
	db := setupTestDB(t)
	_, err := db.GetGame(context.Background(), "nope")
	if !errors.Is(err, ErrGameNotFound) || !errors.Is(err, models.ErrGameNotFound) {
		t.Errorf("err = %v, want ErrGameNotFound", err)
	}
}

func TestListSchedulableExcludesInactive(t *testing.T) {
	db := setupTestDB(t)
	seedGame(t, db, &models.Game{Key: "b", Name: "B", IsActive: true})
	seedGame(t, db, &models.Game{Key: "a", Name: "A", IsActive: true})
	seedGame(t, db, &models.Game{Key: "c", Name: "C", IsActive: false})

	games, err := db.ListSchedulable(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(games) != 2 || games[0].Key != "a" || games[1].Key != "b" {
		t.Errorf("ListSchedulable = %v", keys(games))
	}

	all, _ := db.ListGames(context.Background())
	if len(all) != 3 {
		t.Errorf("ListGames = %v", keys(all))
	}
}

func TestListSchedulableFailureBackoff(t *testing.T) {
	db := setupTestDB(t, WithFailureBackoff(30*time.Minute))
	ctx := context.Background()
	for _, k := range []string{"broken", "recovered", "stale-failure", "skipped-only"} {
		seedGame(t, db, &models.Game{Key: k, Name: k, IsActive: true})
	}

	runs := []models.SyncRun{
		{RunID: "r1", GameKey: "broken", Status: "failed", StartedAt: testNow.Add(-10 * time.Minute)},
		{RunID: "r1", GameKey: "recovered", Status: "failed", StartedAt: testNow.Add(-20 * time.Minute)},
		{RunID: "r2", GameKey: "recovered", Status: "success", StartedAt: testNow.Add(-5 * time.Minute)},
		{RunID: "r0", GameKey: "stale-failure", Status: "failed", StartedAt: testNow.Add(-2 * time.Hour)},
		{RunID: "r2", GameKey: "skipped-only", Status: "skipped", StartedAt: testNow.Add(-time.Minute)},
	}
	for _, r := range runs {
		r.Trigger = models.TriggerScheduled
		if err := db.RecordRun(ctx, r); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}

	games, err := db.ListSchedulable(ctx)
	if err != nil {
		t.Fatal(err)
	}
	got := keys(games)
	want := []string{"recovered", "skipped-only", "stale-failure"}
	if len(got) != len(want) {
		t.Fatalf("ListSchedulable = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ListSchedulable = %v, want %v", got, want)
			break
		}
	}
}

func TestRecordSync(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedGame(t, db, &models.Game{Key: "nba", Name: "NBA", IsActive: true, CurrentRound: 3, TradeDeadline: ptr(testNow)})

	synced := testNow.Add(time.Minute)
	err := db.RecordSync(ctx, "nba", models.GameUpdate{
		SyncedAt:     synced,
		CurrentRound: 4,
		TotalRounds:  20,
		RoundState:   models.RoundStateEnded,
		RoundEnd:     ptr(testNow.Add(-10 * time.Minute)),
		UsersTotal:   640,
	})
	if err != nil {
		t.Fatalf("RecordSync: %v", err)
	}

	g, _ := db.GetGame(ctx, "nba")
	if g.LastSyncedAt == nil || !g.LastSyncedAt.Equal(synced) {
		t.Errorf("LastSyncedAt = %v, want %v", g.LastSyncedAt, synced)
	}
	if g.CurrentRound != 4 || g.RoundState != models.RoundStateEnded || g.UsersTotal != 640 {
		t.Errorf("game = %+v", g)
	}
	if g.TradeDeadline != nil {
		t.Error("nil deadline in the update should clear the stored value")
	}

	if err := db.RecordSync(ctx, "ghost", models.GameUpdate{SyncedAt: synced}); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("RecordSync(ghost) err = %v, want ErrGameNotFound", err)
	}
}

func TestSetActive(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedGame(t, db, &models.Game{Key: "nfl", Name: "NFL", IsActive: true})

	if err := db.SetActive(ctx, "nfl", false); err != nil {
		t.Fatal(err)
	}
	g, _ := db.GetGame(ctx, "nfl")
	if g.IsActive {
		t.Error("game should be inactive")
	}
	if err := db.SetActive(ctx, "missing", true); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("err = %v, want ErrGameNotFound", err)
	}
}

func TestRecentRuns(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for i, status := range []string{"success", "failed", "skipped"} {
		run := models.SyncRun{
			RunID:         "run-" + status,
			GameKey:       "mlb",
			Trigger:       models.TriggerManual,
			Status:        status,
			UsersSynced:   i * 10,
			EstimatedCost: 7,
			StartedAt:     testNow.Add(time.Duration(i) * time.Minute),
			DurationMS:    1500,
		}
		if status == "failed" {
			run.Error = "sync worker returned 503"
		}
		if err := db.RecordRun(ctx, run); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}

	runs, err := db.RecentRuns(ctx, "mlb", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(runs))
	}
	if runs[0].Status != "skipped" || runs[1].Status != "failed" {
		t.Errorf("order = %s, %s; want newest first", runs[0].Status, runs[1].Status)
	}
	if runs[1].Error != "sync worker returned 503" || runs[1].Trigger != models.TriggerManual {
		t.Errorf("run = %+v", runs[1])
	}
	if runs[0].EstimatedCost != 7 {
		t.Errorf("estimated cost = %d, want 7", runs[0].EstimatedCost)
	}

	none, err := db.RecentRuns(ctx, "unknown", 0)
	if err != nil || len(none) != 0 {
		t.Errorf("RecentRuns(unknown) = %v, %v", none, err)
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx, cancel := schemaContext()
	defer cancel()

	if err := db.runVersionedMigrations(ctx); err != nil {
		t.Fatalf("second migration run: %v", err)
	}
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM schema_migrations`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != len(migrations) {
		t.Errorf("schema_migrations rows = %d, want %d", n, len(migrations))
	}
}

func TestPing(t *testing.T) {
	db := setupTestDB(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func keys(games []*models.Game) []string {
	out := make([]string, len(games))
	for i, g := range games {
		out[i] = g.Key
	}
	return out
}
