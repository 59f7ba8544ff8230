// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package models

import "time"

// TriggerKind records what started a sync. It is kept for audit only.
type TriggerKind string

const (
	TriggerScheduled TriggerKind = "scheduled"
	TriggerManual    TriggerKind = "manual"
)

// SyncOutcome is what the per-game sync operation reports back.
type SyncOutcome struct {
	UsersSynced    int `json:"users_synced"`
	ElementsSynced int `json:"elements_synced"`
}

// GameSyncResult is one game's entry in a report.
//
// Skipped means admission was denied and nothing was attempted. A failed
// result (Success false, Skipped false) was attempted and errored.
type GameSyncResult struct {
	GameKey        string   `json:"game_key"`
	GameName       string   `json:"game_name"`
	Priority       Priority `json:"priority,omitempty"`
	Reason         string   `json:"reason,omitempty"`
	EstimatedCost  int      `json:"estimated_cost"`
	Success        bool     `json:"success"`
	Skipped        bool     `json:"skipped,omitempty"`
	UsersSynced    int      `json:"users_synced"`
	ElementsSynced int      `json:"elements_synced"`
	Error          string   `json:"error,omitempty"`
	DurationMS     int64    `json:"duration_ms"`
}

// BatchStatus is the terminal state of a batch run.
type BatchStatus string

const (
	BatchCompleted       BatchStatus = "completed"
	BatchBudgetExhausted BatchStatus = "budget_exhausted"
	BatchTimedOut        BatchStatus = "timed_out"
	BatchCrashed         BatchStatus = "crashed"
)

// BatchReport is returned by every batch run, including crashed ones.
type BatchReport struct {
	RunID   string      `json:"run_id"`
	Trigger TriggerKind `json:"trigger"`
	Status  BatchStatus `json:"status"`

	// Success is true only when every attempted, non-skipped game succeeded.
	Success bool `json:"success"`

	DueCount       int `json:"due_count"`
	Succeeded      int `json:"succeeded"`
	Skipped        int `json:"skipped"`
	Failed         int `json:"failed"`
	UsersSynced    int `json:"users_synced"`
	ElementsSynced int `json:"elements_synced"`

	RemainingBudget int              `json:"remaining_budget"`
	Results         []GameSyncResult `json:"results"`

	Error       string    `json:"error,omitempty"`
	DurationMS  int64     `json:"duration_ms"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// Add folds one result into the counters and appends it.
func (r *BatchReport) Add(res GameSyncResult) {
	switch {
	case res.Skipped:
		r.Skipped++
	case res.Success:
		r.Succeeded++
		r.UsersSynced += res.UsersSynced
		r.ElementsSynced += res.ElementsSynced
	default:
		r.Failed++
	}
	r.Results = append(r.Results, res)
}

// GameSyncReport is returned by the manual trigger.
type GameSyncReport struct {
	RunID           string         `json:"run_id"`
	Trigger         TriggerKind    `json:"trigger"`
	Result          GameSyncResult `json:"result"`
	Succeeded       int            `json:"succeeded"`
	Skipped         int            `json:"skipped"`
	Failed          int            `json:"failed"`
	RemainingBudget int            `json:"remaining_budget"`
	DurationMS      int64          `json:"duration_ms"`
	CompletedAt     time.Time      `json:"completed_at"`
}

// SyncRun is the audit row written for every attempted game.
type SyncRun struct {
	RunID          string      `json:"run_id"`
	GameKey        string      `json:"game_key"`
	Trigger        TriggerKind `json:"trigger"`
	Status         string      `json:"status"` // success, failed, skipped
	UsersSynced    int         `json:"users_synced"`
	ElementsSynced int         `json:"elements_synced"`
	Error          string      `json:"error,omitempty"`
	EstimatedCost  int         `json:"estimated_cost"`
	StartedAt      time.Time   `json:"started_at"`
	DurationMS     int64       `json:"duration_ms"`
}

// BudgetStatus is the read-only view of the daily allowance.
type BudgetStatus struct {
	Remaining  int       `json:"remaining"`
	DailyLimit int       `json:"daily_limit"`
	Day        string    `json:"day"`
	ResetsAt   time.Time `json:"resets_at"`
}
