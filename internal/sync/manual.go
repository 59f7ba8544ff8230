// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/leaguesync/internal/logging"
	"github.com/tomtom215/leaguesync/internal/metrics"
	"github.com/tomtom215/leaguesync/internal/models"
	"github.com/tomtom215/leaguesync/internal/schedule"
)

// TriggerManual syncs a single game on operator request.
//
// The due filter does not apply, but the game must not have been synced
// within the manual cooldown; otherwise a *CooldownError is returned before
// any budget is spent. Unknown keys yield ErrGameNotFound and a concurrent
// run yields ErrBatchInProgress. Budget admission still applies: a game the
// budget cannot cover comes back as a skipped result, not an error.
func (o *Orchestrator) TriggerManual(ctx context.Context, gameKey string) (report *models.GameSyncReport, err error) {
	if !o.runMu.TryLock() {
		return nil, ErrBatchInProgress
	}
	defer o.runMu.Unlock()

	runID := uuid.NewString()
	ctx = logging.ContextWithCorrelationID(ctx, runID[:8])
	started := o.now()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic during manual sync of %s: %v", ErrSyncCrashed, gameKey, r)
			report = o.crashedManualReport(ctx, runID, gameKey, started, err)
			logging.Ctx(ctx).Error().Err(err).Str("game_key", gameKey).Msg("Manual sync crashed")
		}
	}()

	g, err := o.games.GetGame(ctx, gameKey)
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", gameKey, err)
	}

	if g.LastSyncedAt != nil {
		elapsed := started.Sub(*g.LastSyncedAt)
		if elapsed < o.cfg.ManualCooldown {
			cerr := &CooldownError{GameKey: g.Key, Remaining: o.cfg.ManualCooldown - elapsed}
			metrics.RecordGameSync(string(models.TriggerManual), "cooldown", 0)
			logging.Ctx(ctx).Info().
				Str("game_key", g.Key).
				Int("retry_after_minutes", cerr.RemainingMinutes()).
				Msg("Manual sync refused by cooldown")
			return nil, cerr
		}
	}

	cls := schedule.Classify(g, started, o.cfg.Windows)
	item := models.ScheduledGame{
		Game:     g,
		Schedule: models.SyncSchedule{Priority: cls.Priority, Reason: cls.Reason},
	}

	res, _, err := o.attempt(ctx, runID, models.TriggerManual, item, false)
	if err != nil {
		return nil, err
	}

	report = &models.GameSyncReport{
		RunID:       runID,
		Trigger:     models.TriggerManual,
		Result:      res,
		CompletedAt: o.now(),
	}
	switch {
	case res.Skipped:
		report.Skipped = 1
	case res.Success:
		report.Succeeded = 1
	default:
		report.Failed = 1
	}
	report.DurationMS = report.CompletedAt.Sub(started).Milliseconds()

	parent := context.WithoutCancel(ctx)
	if remaining, rerr := o.budget.Remaining(parent); rerr == nil {
		report.RemainingBudget = remaining
	}

	logging.Ctx(ctx).Info().
		Str("run_id", runID).
		Str("game_key", g.Key).
		Bool("success", res.Success).
		Bool("skipped", res.Skipped).
		Int("users_synced", res.UsersSynced).
		Int("remaining_budget", report.RemainingBudget).
		Int64("duration_ms", report.DurationMS).
		Msg("Manual sync finished")

	if o.publisher != nil {
		if perr := o.publisher.PublishGameSync(parent, report); perr != nil {
			logging.Ctx(ctx).Warn().Err(perr).Str("run_id", runID).Msg("Failed to publish manual sync report")
		}
	}
	return report, nil
}

// crashedManualReport describes a manual sync that panicked: one failed game,
// the error text and the allowance left afterwards.
func (o *Orchestrator) crashedManualReport(ctx context.Context, runID, gameKey string, started time.Time, err error) *models.GameSyncReport {
	metrics.RecordGameSync(string(models.TriggerManual), "failed", 0)
	report := &models.GameSyncReport{
		RunID:       runID,
		Trigger:     models.TriggerManual,
		Result:      models.GameSyncResult{GameKey: gameKey, Error: err.Error()},
		Failed:      1,
		CompletedAt: o.now(),
	}
	report.DurationMS = report.CompletedAt.Sub(started).Milliseconds()
	if remaining, rerr := o.budget.Remaining(context.WithoutCancel(ctx)); rerr == nil {
		report.RemainingBudget = remaining
	}
	return report
}
