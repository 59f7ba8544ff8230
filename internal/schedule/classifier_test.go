// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package schedule

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/leaguesync/internal/models"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := testNow.Add(d)
	return &t
}

// activeGame is synced 10 minutes ago on a 60 minute interval, so it is
// routine unless a test changes something.
func activeGame(key string) *models.Game {
	return &models.Game{
		Key:                 key,
		Name:                "League " + key,
		Sport:               "football",
		IsActive:            true,
		LastSyncedAt:        at(-10 * time.Minute),
		SyncIntervalMinutes: 60,
		CurrentRound:        12,
		TotalRounds:         38,
		RoundState:          models.RoundStateOpen,
	}
}

func TestClassifyInactiveAlwaysIdle(t *testing.T) {
	variants := map[string]func(g *models.Game){
		"plain":              func(g *models.Game) {},
		"never synced":       func(g *models.Game) { g.LastSyncedAt = nil },
		"round starting":     func(g *models.Game) { g.RoundStart = at(30 * time.Minute) },
		"deadline imminent":  func(g *models.Game) { g.TradeDeadline = at(5 * time.Minute) },
		"round just ended":   func(g *models.Game) { g.RoundState = models.RoundStateEnded; g.RoundEnd = at(-5 * time.Minute) },
		"massively overdue":  func(g *models.Game) { g.LastSyncedAt = at(-72 * time.Hour) },
		"terminal season":    func(g *models.Game) { g.CurrentRound = 38; g.RoundState = models.RoundStateEnded },
		"zero sync interval": func(g *models.Game) { g.SyncIntervalMinutes = 0 },
	}
	for name, mutate := range variants {
		t.Run(name, func(t *testing.T) {
			g := activeGame("x")
			g.IsActive = false
			mutate(g)

			c := Classify(g, testNow, DefaultWindows())
			if c.Priority != models.PriorityIdle {
				t.Errorf("Priority = %s, want idle", c.Priority)
			}
			if c.Reason != "Game is inactive" {
				t.Errorf("Reason = %q", c.Reason)
			}
			if c.CriticalPeriod != nil {
				t.Errorf("inactive game should carry no critical period, got %+v", c.CriticalPeriod)
			}
		})
	}
}

func TestClassifyRoundStartingIn90Minutes(t *testing.T) {
	g := activeGame("fpl")
	g.RoundStart = at(90 * time.Minute)

	c := Classify(g, testNow, DefaultWindows())
	if c.Priority != models.PriorityCritical {
		t.Fatalf("Priority = %s, want critical", c.Priority)
	}
	if !strings.Contains(c.Reason, "90 min") {
		t.Errorf("Reason %q should mention 90 min", c.Reason)
	}
	if c.CriticalPeriod == nil || c.CriticalPeriod.Type != models.CriticalRoundStarting {
		t.Fatalf("CriticalPeriod = %+v, want round_starting", c.CriticalPeriod)
	}
	if c.CriticalPeriod.Label != "round 12 starting in 90 min" {
		t.Errorf("Label = %q", c.CriticalPeriod.Label)
	}

	s := BuildSchedule(g, testNow, DefaultWindows())
	if !s.InCriticalPeriod {
		t.Error("InCriticalPeriod should be true")
	}
}

func TestClassifyCriticalPrecedence(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(g *models.Game)
		want   models.CriticalPeriodType
	}{
		{
			name: "round start beats trade deadline and round ended",
			mutate: func(g *models.Game) {
				g.RoundStart = at(100 * time.Minute)
				g.TradeDeadline = at(20 * time.Minute)
				g.RoundState = models.RoundStateEnded
				g.RoundEnd = at(-10 * time.Minute)
			},
			want: models.CriticalRoundStarting,
		},
		{
			name: "trade deadline beats round ended",
			mutate: func(g *models.Game) {
				g.TradeDeadline = at(45 * time.Minute)
				g.RoundState = models.RoundStateEndedLatest
				g.RoundEnd = at(-10 * time.Minute)
			},
			want: models.CriticalTradeDeadline,
		},
		{
			name: "round ended alone",
			mutate: func(g *models.Game) {
				g.RoundState = models.RoundStateEnded
				g.RoundEnd = at(-25 * time.Minute)
			},
			want: models.CriticalRoundEnded,
		},
		{
			name: "round start outside window falls through to deadline",
			mutate: func(g *models.Game) {
				g.RoundStart = at(121 * time.Minute)
				g.TradeDeadline = at(60 * time.Minute)
			},
			want: models.CriticalTradeDeadline,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := activeGame("x")
			tt.mutate(g)
			cp := DetectCriticalPeriod(g, testNow, DefaultWindows())
			if cp == nil {
				t.Fatal("expected a critical period")
			}
			if cp.Type != tt.want {
				t.Errorf("Type = %s, want %s", cp.Type, tt.want)
			}
		})
	}
}

func TestDetectCriticalPeriodBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(g *models.Game)
		want   bool
	}{
		{"round start exactly 120 min", func(g *models.Game) { g.RoundStart = at(120 * time.Minute) }, true},
		{"round start 120 min 20 sec", func(g *models.Game) { g.RoundStart = at(120*time.Minute + 20*time.Second) }, false},
		{"round start now", func(g *models.Game) { g.RoundStart = at(0) }, false},
		{"round start in past", func(g *models.Game) { g.RoundStart = at(-time.Minute) }, false},
		{"deadline passed", func(g *models.Game) { g.TradeDeadline = at(-time.Second) }, false},
		{"round ended this instant", func(g *models.Game) {
			g.RoundState = models.RoundStateEnded
			g.RoundEnd = at(0)
		}, true},
		{"round ended 60 min ago", func(g *models.Game) {
			g.RoundState = models.RoundStateEnded
			g.RoundEnd = at(-60 * time.Minute)
		}, true},
		{"round ended 61 min ago", func(g *models.Game) {
			g.RoundState = models.RoundStateEnded
			g.RoundEnd = at(-61 * time.Minute)
		}, false},
		{"round end set but state open", func(g *models.Game) { g.RoundEnd = at(-5 * time.Minute) }, false},
		{"round end in future", func(g *models.Game) {
			g.RoundState = models.RoundStateEnded
			g.RoundEnd = at(5 * time.Minute)
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := activeGame("x")
			tt.mutate(g)
			got := DetectCriticalPeriod(g, testNow, DefaultWindows()) != nil
			if got != tt.want {
				t.Errorf("critical = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectCriticalPeriodCustomWindows(t *testing.T) {
	g := activeGame("x")
	g.RoundStart = at(90 * time.Minute)

	narrow := Windows{RoundStart: 30 * time.Minute, TradeDeadline: 30 * time.Minute, RoundEnded: 10 * time.Minute}
	if cp := DetectCriticalPeriod(g, testNow, narrow); cp != nil {
		t.Errorf("90 min lead should be outside a 30 min window, got %+v", cp)
	}
}

func TestClassifyDisplayRounding(t *testing.T) {
	g := activeGame("x")
	g.RoundStart = at(89*time.Minute + 36*time.Second)

	c := Classify(g, testNow, DefaultWindows())
	if !strings.HasSuffix(c.Reason, "in 90 min") {
		t.Errorf("Reason = %q, want rounded 90 min", c.Reason)
	}
	if math.Abs(c.CriticalPeriod.MinutesToEvent-89.6) > 1e-9 {
		t.Errorf("MinutesToEvent = %v, want unrounded 89.6", c.CriticalPeriod.MinutesToEvent)
	}
}

func TestClassifyOverdueAndRoutine(t *testing.T) {
	g := activeGame("x")
	g.LastSyncedAt = at(-75 * time.Minute)
	c := Classify(g, testNow, DefaultWindows())
	if c.Priority != models.PriorityOverdue || c.Reason != "Overdue by 15 min" {
		t.Errorf("got %s %q, want overdue 'Overdue by 15 min'", c.Priority, c.Reason)
	}

	g.LastSyncedAt = at(-15 * time.Minute)
	c = Classify(g, testNow, DefaultWindows())
	if c.Priority != models.PriorityRoutine || c.Reason != "Next sync in 45 min" {
		t.Errorf("got %s %q, want routine 'Next sync in 45 min'", c.Priority, c.Reason)
	}

	g.LastSyncedAt = at(-60 * time.Minute)
	c = Classify(g, testNow, DefaultWindows())
	if c.Priority != models.PriorityOverdue {
		t.Errorf("exactly at next sync should be overdue, got %s", c.Priority)
	}
}

func TestClassifyNeverSynced(t *testing.T) {
	g := activeGame("new")
	g.LastSyncedAt = nil

	s := BuildSchedule(g, testNow, DefaultWindows())
	if s.MinutesUntilSync > 0 {
		t.Errorf("MinutesUntilSync = %v, want <= 0", s.MinutesUntilSync)
	}
	if s.Priority.Rank() > models.PriorityOverdue.Rank() {
		t.Errorf("Priority = %s, want at least overdue", s.Priority)
	}
	if !s.NextSyncAt.Equal(testNow) {
		t.Errorf("NextSyncAt = %v, want now", s.NextSyncAt)
	}
	if s.MinutesSinceSync != nil {
		t.Errorf("MinutesSinceSync should be nil for never-synced game")
	}
}

func TestClassifyTerminalSeasonStillSyncs(t *testing.T) {
	g := activeGame("final")
	g.CurrentRound = 38
	g.TotalRounds = 38
	g.RoundState = models.ParseRoundState("Ended")
	g.RoundEnd = at(-20 * time.Minute)
	g.LastSyncedAt = at(-3 * time.Hour)

	c := Classify(g, testNow, DefaultWindows())
	if c.Priority != models.PriorityOverdue {
		t.Errorf("Priority = %s, want overdue (terminal season is not auto-idled)", c.Priority)
	}
	if c.CriticalPeriod != nil {
		t.Errorf("terminal season should not open the round-ended window, got %+v", c.CriticalPeriod)
	}

	due := SelectDue([]*models.Game{g}, testNow, DefaultWindows())
	if len(due) != 1 {
		t.Fatalf("terminal-season active game should still be due, got %d", len(due))
	}
}

func TestBuildScheduleFields(t *testing.T) {
	g := activeGame("fields")
	s := BuildSchedule(g, testNow, DefaultWindows())

	if s.GameKey != "fields" || s.GameName != "League fields" || s.Sport != "football" {
		t.Errorf("identity not echoed: %+v", s)
	}
	if s.MinutesSinceSync == nil || *s.MinutesSinceSync != 10 {
		t.Errorf("MinutesSinceSync = %v, want 10", s.MinutesSinceSync)
	}
	if s.MinutesUntilSync != 50 {
		t.Errorf("MinutesUntilSync = %v, want 50", s.MinutesUntilSync)
	}
	if !s.NextSyncAt.Equal(testNow.Add(50 * time.Minute)) {
		t.Errorf("NextSyncAt = %v", s.NextSyncAt)
	}
}
