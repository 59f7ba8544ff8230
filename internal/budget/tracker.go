// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package budget

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/leaguesync/internal/logging"
	"github.com/tomtom215/leaguesync/internal/metrics"
	"github.com/tomtom215/leaguesync/internal/models"
)

const dayLayout = "2006-01-02"

// ErrInvalidAmount is returned by TrySpend for negative amounts.
var ErrInvalidAmount = errors.New("budget: spend amount must not be negative")

// Config holds the tracker parameters.
type Config struct {
	DailyLimit          int
	Location            *time.Location // nil means UTC
	DefaultUserEstimate int
}

// Option customises a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now. Used by tests to cross day boundaries.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// Tracker is the process-wide budget counter. All methods are safe for
// concurrent use; spends are serialised so Remaining never goes below zero.
type Tracker struct {
	mu     sync.Mutex
	store  Store
	cfg    Config
	now    func() time.Time
	state  State
	loaded bool
}

// NewTracker validates cfg and returns a tracker. State is loaded lazily.
func NewTracker(store Store, cfg Config, opts ...Option) (*Tracker, error) {
	if store == nil {
		return nil, errors.New("budget: store is required")
	}
	if cfg.DailyLimit <= 0 {
		return nil, fmt.Errorf("budget: daily limit must be positive, got %d", cfg.DailyLimit)
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.DefaultUserEstimate <= 0 {
		cfg.DefaultUserEstimate = DefaultUserEstimate
	}
	t := &Tracker{store: store, cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// EstimateCost returns the number of upstream calls a sync of g will spend.
func (t *Tracker) EstimateCost(g *models.Game) int {
	return EstimateCalls(g.UsersTotal, t.cfg.DefaultUserEstimate)
}

// Remaining returns the allowance left for the current day, resetting it
// first if the day boundary has been crossed.
func (t *Tracker) Remaining(ctx context.Context) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, err := t.current(ctx)
	if err != nil {
		return 0, err
	}
	return st.Remaining, nil
}

// TrySpend deducts amount when the allowance covers it and reports whether it
// did. A refused spend, or one whose write fails, leaves the counter unchanged.
func (t *Tracker) TrySpend(ctx context.Context, amount int) (bool, error) {
	if amount < 0 {
		return false, ErrInvalidAmount
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	st, err := t.current(ctx)
	if err != nil {
		return false, err
	}
	if st.Remaining < amount {
		return false, nil
	}
	if amount == 0 {
		return true, nil
	}

	next := st
	next.Remaining -= amount
	next.UpdatedAt = t.now()
	if err := t.store.Save(ctx, next); err != nil {
		return false, fmt.Errorf("persist budget spend: %w", err)
	}
	t.state = next
	metrics.BudgetRemaining.Set(float64(next.Remaining))
	metrics.BudgetSpent.Add(float64(amount))
	return true, nil
}

// Refund returns amount to today's allowance, capped at the daily limit.
// It is for admitted spends that never reached the upstream. After a day
// rollover the fresh allowance is already full, so the cap absorbs it.
func (t *Tracker) Refund(ctx context.Context, amount int) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	if amount == 0 {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	st, err := t.current(ctx)
	if err != nil {
		return err
	}
	next := st
	next.Remaining = min(st.Remaining+amount, t.cfg.DailyLimit)
	if next.Remaining == st.Remaining {
		return nil
	}
	next.UpdatedAt = t.now()
	if err := t.store.Save(ctx, next); err != nil {
		return fmt.Errorf("persist budget refund: %w", err)
	}
	t.state = next
	metrics.BudgetRemaining.Set(float64(next.Remaining))
	metrics.BudgetRefunded.Add(float64(next.Remaining - st.Remaining))
	return nil
}

// Status reports the allowance together with the day and next reset time.
func (t *Tracker) Status(ctx context.Context) (models.BudgetStatus, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, err := t.current(ctx)
	if err != nil {
		return models.BudgetStatus{}, err
	}
	y, m, d := t.now().In(t.cfg.Location).Date()
	return models.BudgetStatus{
		Remaining:  st.Remaining,
		DailyLimit: t.cfg.DailyLimit,
		Day:        st.Day,
		ResetsAt:   time.Date(y, m, d+1, 0, 0, 0, 0, t.cfg.Location),
	}, nil
}

// current returns today's state, loading or rolling it over as needed.
// Caller must hold t.mu.
func (t *Tracker) current(ctx context.Context) (State, error) {
	now := t.now()
	today := now.In(t.cfg.Location).Format(dayLayout)

	if !t.loaded {
		st, ok, err := t.store.Load(ctx)
		if err != nil {
			return State{}, fmt.Errorf("load budget state: %w", err)
		}
		if ok {
			t.state = sanitize(st, t.cfg.DailyLimit)
		}
		t.loaded = true
	}

	if t.state.Day == today {
		return t.state, nil
	}

	reset := State{Day: today, Remaining: t.cfg.DailyLimit, UpdatedAt: now}
	if err := t.store.Save(ctx, reset); err != nil {
		return State{}, fmt.Errorf("persist budget reset: %w", err)
	}
	if t.state.Day != "" {
		logging.Info().
			Str("previous_day", t.state.Day).
			Int("unused_calls", t.state.Remaining).
			Str("day", today).
			Int("daily_limit", t.cfg.DailyLimit).
			Msg("Daily API budget reset")
	}
	t.state = reset
	metrics.BudgetRemaining.Set(float64(reset.Remaining))
	return reset, nil
}

// sanitize clamps a loaded state into [0, limit]. The limit may have been
// lowered since the state was written.
func sanitize(st State, limit int) State {
	if st.Remaining < 0 {
		st.Remaining = 0
	}
	if st.Remaining > limit {
		st.Remaining = limit
	}
	return st
}
