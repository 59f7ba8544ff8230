// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/leaguesync/internal/logging"
	"github.com/tomtom215/leaguesync/internal/metrics"
	"github.com/tomtom215/leaguesync/internal/models"
	"github.com/tomtom215/leaguesync/internal/schedule"
)

// DefaultManualCooldown is used when Config.ManualCooldown is zero.
const DefaultManualCooldown = 5 * time.Minute

// Config holds the orchestrator tunables.
type Config struct {
	// PacingDelay is waited before every attempted game except the first.
	// It must be at least the upstream's minimum inter-request spacing.
	PacingDelay time.Duration

	// BatchTimeout is the wall-clock ceiling of one batch. Zero disables it.
	BatchTimeout time.Duration

	// MaxGamesPerRun caps attempted games per batch. Skipped games do not
	// count. Zero means unlimited.
	MaxGamesPerRun int

	ManualCooldown time.Duration
	Windows        schedule.Windows
}

// Option customises an Orchestrator.
type Option func(*Orchestrator)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithSleeper replaces the pacing wait. The sleeper must return ctx.Err()
// when ctx ends before d has elapsed.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(o *Orchestrator) { o.sleep = sleep }
}

// WithRecorder enables the sync_runs audit trail.
func WithRecorder(r RunRecorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithPublisher enables report fan-out.
func WithPublisher(p ReportPublisher) Option {
	return func(o *Orchestrator) { o.publisher = p }
}

// Orchestrator executes scheduled batches and manual syncs.
type Orchestrator struct {
	games  GameSource
	syncer Syncer
	budget Budget
	cfg    Config

	recorder  RunRecorder
	publisher ReportPublisher

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	runMu sync.Mutex // held for the whole of a batch or manual sync
}

// NewOrchestrator validates its collaborators and applies defaults.
func NewOrchestrator(games GameSource, syncer Syncer, budget Budget, cfg Config, opts ...Option) (*Orchestrator, error) {
	if games == nil {
		return nil, errors.New("sync: game source is required")
	}
	if syncer == nil {
		return nil, errors.New("sync: syncer is required")
	}
	if budget == nil {
		return nil, errors.New("sync: budget is required")
	}
	if cfg.PacingDelay < 0 || cfg.BatchTimeout < 0 || cfg.MaxGamesPerRun < 0 {
		return nil, fmt.Errorf("sync: negative tunable in config %+v", cfg)
	}
	if cfg.ManualCooldown <= 0 {
		cfg.ManualCooldown = DefaultManualCooldown
	}
	if cfg.Windows == (schedule.Windows{}) {
		cfg.Windows = schedule.DefaultWindows()
	}

	o := &Orchestrator{
		games:  games,
		syncer: syncer,
		budget: budget,
		cfg:    cfg,
		now:    time.Now,
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Schedule returns the schedule view of every game in urgency order.
// Inactive games are only included when includeIdle is set.
func (o *Orchestrator) Schedule(ctx context.Context, includeIdle bool) ([]models.SyncSchedule, error) {
	games, err := o.games.ListGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	items := schedule.FullSchedule(games, o.now(), o.cfg.Windows, includeIdle)
	out := make([]models.SyncSchedule, len(items))
	for i := range items {
		out[i] = items[i].Schedule
	}
	return out, nil
}

// RunBatch syncs the current due set. It returns ErrBatchInProgress when
// another run holds the orchestrator; otherwise it always returns a report,
// whose Status tells how the batch ended.
func (o *Orchestrator) RunBatch(ctx context.Context) (*models.BatchReport, error) {
	if !o.runMu.TryLock() {
		return nil, ErrBatchInProgress
	}
	defer o.runMu.Unlock()

	report := &models.BatchReport{
		RunID:     uuid.NewString(),
		Trigger:   models.TriggerScheduled,
		StartedAt: o.now(),
		Results:   []models.GameSyncResult{},
	}

	ctx = logging.ContextWithCorrelationID(ctx, report.RunID[:8])
	// Reporting must survive the batch ceiling.
	parent := context.WithoutCancel(ctx)
	if o.cfg.BatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.BatchTimeout)
		defer cancel()
	}

	logging.Ctx(ctx).Info().
		Str("run_id", report.RunID).
		Str("trigger", string(report.Trigger)).
		Msg("Sync batch started")

	status, err := o.execute(ctx, report)
	o.finishBatch(parent, report, status, err)
	return report, nil
}

// execute walks the due set. The returned error is only set for timed-out
// and crashed runs.
func (o *Orchestrator) execute(ctx context.Context, report *models.BatchReport) (status models.BatchStatus, err error) {
	defer func() {
		if r := recover(); r != nil {
			status = models.BatchCrashed
			err = fmt.Errorf("panic during sync batch: %v", r)
		}
	}()

	games, err := o.games.ListSchedulable(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return models.BatchTimedOut, stoppedEarly(ctx)
		}
		return models.BatchCrashed, fmt.Errorf("query due games: %w", err)
	}

	// The due set is frozen for the rest of the batch.
	due := schedule.SelectDue(games, o.now(), o.cfg.Windows)
	report.DueCount = len(due)
	if len(due) == 0 {
		return models.BatchCompleted, nil
	}

	attempted := 0
	for _, item := range due {
		if ctx.Err() != nil {
			return models.BatchTimedOut, stoppedEarly(ctx)
		}
		if o.cfg.MaxGamesPerRun > 0 && attempted >= o.cfg.MaxGamesPerRun {
			logging.Ctx(ctx).Info().
				Int("max_games_per_run", o.cfg.MaxGamesPerRun).
				Int("remaining_due", report.DueCount-len(report.Results)).
				Msg("Per-run game limit reached")
			break
		}

		res, next, err := o.attempt(ctx, report.RunID, models.TriggerScheduled, item, attempted > 0)
		if err != nil {
			return models.BatchCrashed, err
		}
		if next == stepTimedOut {
			return models.BatchTimedOut, stoppedEarly(ctx)
		}
		report.Add(res)
		if !res.Skipped {
			attempted++
		}
		if next == stepExhausted {
			return models.BatchBudgetExhausted, nil
		}
		if next == stepAborted {
			return models.BatchTimedOut, stoppedEarly(ctx)
		}
	}
	return models.BatchCompleted, nil
}

type step int

const (
	stepContinue  step = iota
	stepExhausted      // upstream signalled budget exhaustion
	stepTimedOut       // stopped before the game was attempted
	stepAborted        // attempted, then the batch context ended
)

// attempt admits, paces and syncs one game. A non-nil error is fatal to
// the batch.
func (o *Orchestrator) attempt(ctx context.Context, runID string, trigger models.TriggerKind, item models.ScheduledGame, paced bool) (models.GameSyncResult, step, error) {
	g := item.Game
	res := models.GameSyncResult{
		GameKey:  g.Key,
		GameName: g.Name,
		Priority: item.Schedule.Priority,
		Reason:   item.Schedule.Reason,
	}
	res.EstimatedCost = o.budget.EstimateCost(g)

	ok, err := o.budget.TrySpend(ctx, res.EstimatedCost)
	if err != nil {
		return res, stepContinue, fmt.Errorf("spend budget for %s: %w", g.Key, err)
	}
	if !ok {
		have, err := o.budget.Remaining(ctx)
		if err != nil {
			return res, stepContinue, fmt.Errorf("read remaining budget: %w", err)
		}
		res.Skipped = true
		res.Error = fmt.Sprintf("insufficient budget (need %d, have %d)", res.EstimatedCost, have)
		metrics.RecordGameSync(string(trigger), "skipped", 0)
		logging.Ctx(ctx).Warn().
			Str("game_key", g.Key).
			Int("need", res.EstimatedCost).
			Int("have", have).
			Msg("Game skipped for insufficient budget")
		o.record(ctx, runID, trigger, res, o.now())
		return res, stepContinue, nil
	}

	if paced && o.cfg.PacingDelay > 0 {
		if err := o.sleep(ctx, o.cfg.PacingDelay); err != nil {
			logging.Ctx(ctx).Warn().
				Str("game_key", g.Key).
				Msg("Batch ceiling reached during pacing delay")
			o.refund(ctx, g.Key, res.EstimatedCost)
			return res, stepTimedOut, nil
		}
	}

	started := o.now()
	out, syncErr := o.syncer.Sync(ctx, g, trigger)
	res.DurationMS = o.now().Sub(started).Milliseconds()

	next := stepContinue
	switch {
	case syncErr == nil:
		res.Success = true
		res.UsersSynced = out.UsersSynced
		res.ElementsSynced = out.ElementsSynced
		metrics.RecordGameSync(string(trigger), "success", out.UsersSynced)
		logging.Ctx(ctx).Debug().
			Str("game_key", g.Key).
			Int("users", out.UsersSynced).
			Int("elements", out.ElementsSynced).
			Int64("duration_ms", res.DurationMS).
			Msg("Game synced")
	case IsBudgetExhausted(syncErr):
		res.Error = syncErr.Error()
		next = stepExhausted
		metrics.RecordGameSync(string(trigger), "failed", 0)
		logging.Ctx(ctx).Warn().Err(syncErr).
			Str("game_key", g.Key).
			Msg("Upstream budget exhausted; stopping batch")
	case IsBreakerRejection(syncErr):
		res.Error = syncErr.Error()
		if o.refund(ctx, g.Key, res.EstimatedCost) {
			res.EstimatedCost = 0
		}
		metrics.RecordGameSync(string(trigger), "failed", 0)
		logging.Ctx(ctx).Warn().Err(syncErr).
			Str("game_key", g.Key).
			Msg("Sync worker circuit open; game not sent")
	default:
		res.Error = syncErr.Error()
		if ctx.Err() != nil {
			next = stepAborted
		}
		metrics.RecordGameSync(string(trigger), "failed", 0)
		logging.Ctx(ctx).Warn().Err(syncErr).
			Str("game_key", g.Key).
			Msg("Game sync failed")
	}

	o.record(ctx, runID, trigger, res, started)
	return res, next, nil
}

// refund hands back an admitted spend that never reached the worker. It
// reports whether the allowance was restored.
func (o *Orchestrator) refund(ctx context.Context, gameKey string, amount int) bool {
	if err := o.budget.Refund(context.WithoutCancel(ctx), amount); err != nil {
		logging.Ctx(ctx).Error().Err(err).
			Str("game_key", gameKey).
			Int("amount", amount).
			Msg("Failed to refund budget")
		return false
	}
	return true
}

// record writes the audit row. Failures are logged and never affect the run.
func (o *Orchestrator) record(ctx context.Context, runID string, trigger models.TriggerKind, res models.GameSyncResult, started time.Time) {
	if o.recorder == nil {
		return
	}
	status := "failed"
	switch {
	case res.Skipped:
		status = "skipped"
	case res.Success:
		status = "success"
	}
	run := models.SyncRun{
		RunID:          runID,
		GameKey:        res.GameKey,
		Trigger:        trigger,
		Status:         status,
		UsersSynced:    res.UsersSynced,
		ElementsSynced: res.ElementsSynced,
		Error:          res.Error,
		EstimatedCost:  res.EstimatedCost,
		StartedAt:      started,
		DurationMS:     res.DurationMS,
	}
	if err := o.recorder.RecordRun(context.WithoutCancel(ctx), run); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("game_key", res.GameKey).Msg("Failed to record sync run")
	}
}

func (o *Orchestrator) finishBatch(ctx context.Context, report *models.BatchReport, status models.BatchStatus, err error) {
	report.Status = status
	report.CompletedAt = o.now()
	duration := report.CompletedAt.Sub(report.StartedAt)
	report.DurationMS = duration.Milliseconds()

	if status == models.BatchCrashed {
		report.Results = []models.GameSyncResult{}
		report.Succeeded, report.Skipped, report.Failed = 0, 0, 0
		report.UsersSynced, report.ElementsSynced = 0, 0
	}
	if err != nil {
		report.Error = err.Error()
	}
	report.Success = status != models.BatchCrashed && report.Failed == 0

	if remaining, rerr := o.budget.Remaining(ctx); rerr == nil {
		report.RemainingBudget = remaining
	} else {
		logging.Ctx(ctx).Warn().Err(rerr).Msg("Could not read remaining budget for report")
	}

	metrics.RecordBatch(string(status), duration)

	evt := logging.Ctx(ctx).Info()
	if status == models.BatchCrashed {
		evt = logging.Ctx(ctx).Error().Err(err)
	}
	evt.Str("run_id", report.RunID).
		Str("trigger", string(report.Trigger)).
		Str("status", string(status)).
		Int("due", report.DueCount).
		Int("succeeded", report.Succeeded).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Int("users_synced", report.UsersSynced).
		Int("remaining_budget", report.RemainingBudget).
		Int64("duration_ms", report.DurationMS).
		Msg("Sync batch finished")

	if o.publisher != nil {
		if perr := o.publisher.PublishBatch(ctx, report); perr != nil {
			logging.Ctx(ctx).Warn().Err(perr).Str("run_id", report.RunID).Msg("Failed to publish batch report")
		}
	}
}

func stoppedEarly(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("batch stopped before finishing the due set: %w", err)
	}
	return errors.New("batch stopped before finishing the due set")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
