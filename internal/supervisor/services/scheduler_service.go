// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package services

import (
	"context"
	"fmt"
)

// Scheduler is satisfied by *scheduler.Scheduler.
type Scheduler interface {
	Start(ctx context.Context) error
	Stop() error
}

// SchedulerService keeps the batch timer running under supervision.
type SchedulerService struct {
	scheduler Scheduler
}

func NewSchedulerService(s Scheduler) *SchedulerService {
	return &SchedulerService{scheduler: s}
}

// Serve starts the timer, waits for ctx and stops it. Stop blocks until an
// in-flight batch returns.
func (s *SchedulerService) Serve(ctx context.Context) error {
	if err := s.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("sync scheduler start failed: %w", err)
	}
	<-ctx.Done()
	if err := s.scheduler.Stop(); err != nil {
		return fmt.Errorf("sync scheduler stop failed: %w", err)
	}
	return ctx.Err()
}

func (s *SchedulerService) String() string { return "sync-scheduler" }
