// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package models

import "testing"

func TestParseRoundState(t *testing.T) {
	tests := map[string]RoundState{
		"Ended":        RoundStateEnded,
		"ended-latest": RoundStateEndedLatest,
		"ENDED_LATEST": RoundStateEndedLatest,
		" open ":       RoundStateOpen,
		"pending":      RoundStatePending,
		"":             RoundStatePending,
		"live":         RoundStatePending,
	}
	for in, want := range tests {
		if got := ParseRoundState(in); got != want {
			t.Errorf("ParseRoundState(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGameIsTerminal(t *testing.T) {
	tests := []struct {
		name string
		game Game
		want bool
	}{
		{"final round ended", Game{CurrentRound: 38, TotalRounds: 38, RoundState: RoundStateEnded}, true},
		{"final round ended latest", Game{CurrentRound: 38, TotalRounds: 38, RoundState: RoundStateEndedLatest}, true},
		{"final round still open", Game{CurrentRound: 38, TotalRounds: 38, RoundState: RoundStateOpen}, false},
		{"mid season ended", Game{CurrentRound: 12, TotalRounds: 38, RoundState: RoundStateEnded}, false},
		{"total unknown", Game{CurrentRound: 38, RoundState: RoundStateEnded}, false},
	}
	for _, tt := range tests {
		if got := tt.game.IsTerminal(); got != tt.want {
			t.Errorf("%s: IsTerminal() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPriorityRank(t *testing.T) {
	order := []Priority{PriorityCritical, PriorityOverdue, PriorityRoutine, PriorityIdle}
	for i, p := range order {
		if p.Rank() != i {
			t.Errorf("%s.Rank() = %d, want %d", p, p.Rank(), i)
		}
	}
}

func TestBatchReportAdd(t *testing.T) {
	var r BatchReport
	r.Add(GameSyncResult{GameKey: "a", Success: true, UsersSynced: 10, ElementsSynced: 600})
	r.Add(GameSyncResult{GameKey: "b", Skipped: true})
	r.Add(GameSyncResult{GameKey: "c", Error: "upstream 502"})
	r.Add(GameSyncResult{GameKey: "d", Success: true, UsersSynced: 5, ElementsSynced: 600})

	if r.Succeeded != 2 || r.Skipped != 1 || r.Failed != 1 {
		t.Errorf("counts = %d/%d/%d, want 2/1/1", r.Succeeded, r.Skipped, r.Failed)
	}
	if r.UsersSynced != 15 || r.ElementsSynced != 1200 {
		t.Errorf("totals = %d users, %d elements", r.UsersSynced, r.ElementsSynced)
	}
	if len(r.Results) != 4 {
		t.Errorf("len(Results) = %d, want 4", len(r.Results))
	}
}
