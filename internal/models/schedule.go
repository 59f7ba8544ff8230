// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package models

import "time"

// Priority is the urgency tier assigned to a game.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityOverdue  Priority = "overdue"
	PriorityRoutine  Priority = "routine"
	PriorityIdle     Priority = "idle"
)

// Rank orders tiers for sorting; lower runs first.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityOverdue:
		return 1
	case PriorityRoutine:
		return 2
	default:
		return 3
	}
}

// CriticalPeriodType identifies which event window matched.
type CriticalPeriodType string

const (
	CriticalRoundStarting CriticalPeriodType = "round_starting"
	CriticalTradeDeadline CriticalPeriodType = "trade_deadline"
	CriticalRoundEnded    CriticalPeriodType = "round_ended"
)

// CriticalPeriod describes the event that makes a game critical.
// MinutesToEvent is negative for events in the past (round ended).
type CriticalPeriod struct {
	Type           CriticalPeriodType `json:"type"`
	Label          string             `json:"label"`
	EventTime      time.Time          `json:"event_time"`
	MinutesToEvent float64            `json:"minutes_to_event"`
}

// SyncSchedule is the derived scheduling view of one game at one instant.
type SyncSchedule struct {
	GameKey  string `json:"game_key"`
	GameName string `json:"game_name"`
	Sport    string `json:"sport"`
	IsActive bool   `json:"is_active"`

	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
	// MinutesSinceSync is nil for games that have never synced.
	MinutesSinceSync *float64 `json:"minutes_since_sync,omitempty"`
	NextSyncAt       time.Time `json:"next_sync_at"`
	MinutesUntilSync float64   `json:"minutes_until_sync"`

	Priority         Priority        `json:"priority"`
	Reason           string          `json:"reason"`
	InCriticalPeriod bool            `json:"in_critical_period"`
	CriticalPeriod   *CriticalPeriod `json:"critical_period,omitempty"`
}

// ScheduledGame pairs a game with its schedule entry.
type ScheduledGame struct {
	Game     *Game
	Schedule SyncSchedule
}
