// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

// Package scheduler runs sync batches on a fixed in-process timer.
//
// Deployments driven by an external cron call POST /api/v1/sync/run instead
// and leave scheduler.enabled off. Both paths end in the same
// Orchestrator.RunBatch, which refuses to overlap with itself.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/tomtom215/leaguesync/internal/logging"
	"github.com/tomtom215/leaguesync/internal/models"
	lsync "github.com/tomtom215/leaguesync/internal/sync"
)

// MinInterval is the shortest accepted batch interval.
const MinInterval = time.Minute

// BatchRunner is satisfied by *sync.Orchestrator.
type BatchRunner interface {
	RunBatch(ctx context.Context) (*models.BatchReport, error)
}

// Scheduler owns a gocron scheduler with a single singleton job.
type Scheduler struct {
	runner   BatchRunner
	interval time.Duration
	loc      *time.Location

	mu   sync.Mutex
	cron gocron.Scheduler
	job  gocron.Job
}

// New validates the interval. loc only affects how gocron reports run times.
func New(runner BatchRunner, interval time.Duration, loc *time.Location) (*Scheduler, error) {
	if runner == nil {
		return nil, errors.New("scheduler: batch runner is required")
	}
	if interval < MinInterval {
		return nil, fmt.Errorf("scheduler: interval %s is below the %s minimum", interval, MinInterval)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{runner: runner, interval: interval, loc: loc}, nil
}

// Start registers the batch job and starts the timer. The first batch runs
// immediately. ctx bounds every batch the job starts.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return errors.New("scheduler: already started")
	}

	cron, err := gocron.NewScheduler(gocron.WithLocation(s.loc))
	if err != nil {
		return fmt.Errorf("create gocron scheduler: %w", err)
	}

	job, err := cron.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() { s.runOnce(ctx) }),
		gocron.WithName("sync-batch"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = cron.Shutdown()
		return fmt.Errorf("register sync batch job: %w", err)
	}

	cron.Start()
	s.cron = cron
	s.job = job

	logging.Info().Dur("interval", s.interval).Msg("Sync scheduler started")
	return nil
}

// Stop waits for a running batch to return and shuts the timer down.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron == nil {
		return nil
	}
	err := s.cron.Shutdown()
	s.cron = nil
	s.job = nil
	if err != nil {
		return fmt.Errorf("shutdown gocron scheduler: %w", err)
	}
	logging.Info().Msg("Sync scheduler stopped")
	return nil
}

// NextRun reports when the next batch is due. ok is false when stopped.
func (s *Scheduler) NextRun() (next time.Time, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.job == nil {
		return time.Time{}, false
	}
	next, err := s.job.NextRun()
	if err != nil {
		return time.Time{}, false
	}
	return next, true
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	report, err := s.runner.RunBatch(ctx)
	switch {
	case errors.Is(err, lsync.ErrBatchInProgress):
		logging.Info().Msg("Skipping scheduled batch; another sync run is active")
	case err != nil:
		logging.Error().Err(err).Msg("Scheduled batch failed to start")
	case report.Status == models.BatchCrashed:
		logging.Error().Str("run_id", report.RunID).Str("error", report.Error).Msg("Scheduled batch crashed")
	}
}
