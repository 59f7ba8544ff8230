// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package sync

import (
	"context"

	"github.com/tomtom215/leaguesync/internal/models"
)

// GameSource is the read side of the game repository.
type GameSource interface {
	// ListSchedulable returns the candidate pool for scheduled batches:
	// active games not held back by a recent failure.
	ListSchedulable(ctx context.Context) ([]*models.Game, error)

	// ListGames returns every game, active or not.
	ListGames(ctx context.Context) ([]*models.Game, error)

	// GetGame returns an error wrapping models.ErrGameNotFound for unknown keys.
	GetGame(ctx context.Context, key string) (*models.Game, error)
}

// Syncer performs the upstream fetch and persistence for one game.
type Syncer interface {
	Sync(ctx context.Context, game *models.Game, trigger models.TriggerKind) (models.SyncOutcome, error)
}

// SyncerFunc adapts a function to Syncer.
type SyncerFunc func(ctx context.Context, game *models.Game, trigger models.TriggerKind) (models.SyncOutcome, error)

func (f SyncerFunc) Sync(ctx context.Context, game *models.Game, trigger models.TriggerKind) (models.SyncOutcome, error) {
	return f(ctx, game, trigger)
}

// Budget is the admission control surface of budget.Tracker.
type Budget interface {
	EstimateCost(game *models.Game) int
	Remaining(ctx context.Context) (int, error)
	TrySpend(ctx context.Context, amount int) (bool, error)

	// Refund returns an admitted amount that was never sent upstream.
	Refund(ctx context.Context, amount int) error
}

// RunRecorder writes the per-game audit trail.
type RunRecorder interface {
	RecordRun(ctx context.Context, run models.SyncRun) error
}

// ReportPublisher fans finished reports out to downstream consumers.
type ReportPublisher interface {
	PublishBatch(ctx context.Context, report *models.BatchReport) error
	PublishGameSync(ctx context.Context, report *models.GameSyncReport) error
}
