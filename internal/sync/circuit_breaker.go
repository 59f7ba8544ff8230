// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package sync

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/leaguesync/internal/logging"
	"github.com/tomtom215/leaguesync/internal/metrics"
	"github.com/tomtom215/leaguesync/internal/models"
)

// BreakerSettings configures BreakerSyncer.
type BreakerSettings struct {
	Name         string
	MaxRequests  uint32        // allowed through while half-open
	Interval     time.Duration // closed-state count reset
	Timeout      time.Duration // open to half-open
	FailureRatio float64
	MinRequests  uint32
}

// DefaultBreakerSettings opens after 60% failures over at least 10 requests
// and tries again after two minutes.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Name:         "sync-worker",
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      2 * time.Minute,
		FailureRatio: 0.6,
		MinRequests:  10,
	}
}

// BreakerSyncer wraps a Syncer with a circuit breaker. While the circuit is
// open, Sync fails fast with gobreaker.ErrOpenState and the game is recorded
// as failed without touching the sync worker.
type BreakerSyncer struct {
	next Syncer
	cb   *gobreaker.CircuitBreaker[models.SyncOutcome]
	name string
}

// NewBreakerSyncer wraps next.
func NewBreakerSyncer(next Syncer, s BreakerSettings) *BreakerSyncer {
	if s.Name == "" {
		s.Name = DefaultBreakerSettings().Name
	}
	metrics.CircuitBreakerState.WithLabelValues(s.Name).Set(0)

	cb := gobreaker.NewCircuitBreaker[models.SyncOutcome](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			trip := ratio >= s.FailureRatio
			if trip {
				logging.Warn().
					Str("breaker", s.Name).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", ratio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return trip
		},
		// The worker answered; the shared allowance ran out. Cancellation
		// comes from our own batch ceiling.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				IsBudgetExhausted(err) ||
				errors.Is(err, context.Canceled) ||
				errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("[CIRCUIT BREAKER] State transition")
			metrics.RecordBreakerTransition(name, from.String(), to.String(), stateToFloat(to))
		},
	})

	return &BreakerSyncer{next: next, cb: cb, name: s.Name}
}

// Sync runs the wrapped Syncer through the breaker.
func (b *BreakerSyncer) Sync(ctx context.Context, game *models.Game, trigger models.TriggerKind) (models.SyncOutcome, error) {
	return b.cb.Execute(func() (models.SyncOutcome, error) {
		return b.next.Sync(ctx, game, trigger)
	})
}

// IsBreakerRejection reports whether err is the breaker refusing the call
// (open, or half-open with its trial quota used), so the worker was never
// contacted.
func IsBreakerRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// State returns the breaker state name.
func (b *BreakerSyncer) State() string {
	return b.cb.State().String()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
