// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package sync

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tomtom215/leaguesync/internal/models"
)

// BudgetExhaustedMarker prefixes every error message that signals the
// upstream refused a call because the shared daily allowance is spent.
const BudgetExhaustedMarker = "BUDGET_EXHAUSTED:"

var (
	// ErrBudgetExhausted is the sentinel behind every budget exhaustion error.
	ErrBudgetExhausted = errors.New("upstream budget exhausted")

	// ErrBatchInProgress is returned when another batch or manual sync holds
	// the orchestrator.
	ErrBatchInProgress = errors.New("a sync run is already in progress")

	// ErrSyncCrashed marks a manual sync that panicked. TriggerManual still
	// returns a report alongside it.
	ErrSyncCrashed = errors.New("manual sync crashed")

	// ErrGameNotFound is returned by TriggerManual for unknown game keys.
	ErrGameNotFound = models.ErrGameNotFound
)

type budgetExhaustedError struct {
	detail string
}

func (e *budgetExhaustedError) Error() string {
	if e.detail == "" {
		return BudgetExhaustedMarker + " " + ErrBudgetExhausted.Error()
	}
	return BudgetExhaustedMarker + " " + e.detail
}

func (e *budgetExhaustedError) Unwrap() error { return ErrBudgetExhausted }

// NewBudgetExhaustedError builds the error a Syncer returns when the upstream
// reports the daily allowance is gone mid-game.
func NewBudgetExhaustedError(detail string) error {
	return &budgetExhaustedError{detail: detail}
}

// IsBudgetExhausted reports whether err carries the budget exhaustion
// signal, either as ErrBudgetExhausted in its chain or as a message in the
// chain that starts with BudgetExhaustedMarker.
func IsBudgetExhausted(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrBudgetExhausted) {
		return true
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		if strings.HasPrefix(e.Error(), BudgetExhaustedMarker) {
			return true
		}
	}
	return false
}

// CooldownError rejects a manual sync requested too soon after the game's
// previous sync.
type CooldownError struct {
	GameKey   string
	Remaining time.Duration
}

// RemainingMinutes rounds the wait up to whole minutes, never below one.
func (e *CooldownError) RemainingMinutes() int {
	m := int(math.Ceil(e.Remaining.Minutes()))
	if m < 1 {
		m = 1
	}
	return m
}

func (e *CooldownError) Error() string {
	unit := "minutes"
	if e.RemainingMinutes() == 1 {
		unit = "minute"
	}
	return fmt.Sprintf("game %s was synced recently; try again in %d %s", e.GameKey, e.RemainingMinutes(), unit)
}
