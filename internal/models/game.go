// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package models

import (
	"errors"
	"strings"
	"time"
)

// ErrGameNotFound is returned by game lookups when no row matches the key.
var ErrGameNotFound = errors.New("game not found")

// RoundState is the lifecycle state of a game's current round.
type RoundState string

const (
	RoundStatePending     RoundState = "pending"
	RoundStateOpen        RoundState = "open"
	RoundStateEnded       RoundState = "ended"
	RoundStateEndedLatest RoundState = "ended_latest"
)

// ParseRoundState normalises the spellings used by the upstream and by
// operators ("Ended", "ended-latest", "ENDED_LATEST"). Unknown values map to
// pending so they can never open the round-ended window.
func ParseRoundState(s string) RoundState {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "-", "_")
	norm = strings.ReplaceAll(norm, " ", "_")
	switch RoundState(norm) {
	case RoundStateOpen, RoundStateEnded, RoundStateEndedLatest:
		return RoundState(norm)
	default:
		return RoundStatePending
	}
}

// IsEnded reports whether the state is in the ended set.
func (s RoundState) IsEnded() bool {
	return s == RoundStateEnded || s == RoundStateEndedLatest
}

// Game is the scheduler's view of one fantasy game.
type Game struct {
	Key   string `json:"key" validate:"required,gamekey"`
	Name  string `json:"name" validate:"max=200"`
	Sport string `json:"sport" validate:"max=32"`

	IsActive            bool       `json:"is_active"`
	LastSyncedAt        *time.Time `json:"last_synced_at,omitempty"`
	SyncIntervalMinutes int        `json:"sync_interval_minutes" validate:"min=0,max=10080"`

	CurrentRound  int        `json:"current_round" validate:"min=0"`
	TotalRounds   int        `json:"total_rounds" validate:"min=0"` // 0 when unknown
	RoundState    RoundState `json:"round_state"`
	RoundStart    *time.Time `json:"round_start,omitempty"`
	RoundEnd      *time.Time `json:"round_end,omitempty"`
	TradeDeadline *time.Time `json:"trade_deadline,omitempty"`

	// UsersTotal is the approximate downstream user count. 0 when unknown.
	UsersTotal int `json:"users_total" validate:"min=0"`
}

// IsTerminal reports whether the game has played its final round.
// Requires TotalRounds to be known.
func (g *Game) IsTerminal() bool {
	return g.TotalRounds > 0 && g.CurrentRound >= g.TotalRounds && g.RoundState.IsEnded()
}

// SyncInterval returns the configured interval as a duration.
func (g *Game) SyncInterval() time.Duration {
	return time.Duration(g.SyncIntervalMinutes) * time.Minute
}

// GameUpdate carries the fields the sync worker refreshes on a successful
// sync. Nil times clear the stored value.
type GameUpdate struct {
	SyncedAt      time.Time
	CurrentRound  int
	TotalRounds   int
	RoundState    RoundState
	RoundStart    *time.Time
	RoundEnd      *time.Time
	TradeDeadline *time.Time
	UsersTotal    int
}
