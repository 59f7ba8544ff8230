// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package schedule

import (
	"sort"
	"time"

	"github.com/tomtom215/leaguesync/internal/models"
)

// BuildSchedule derives the schedule entry for g at now.
func BuildSchedule(g *models.Game, now time.Time, w Windows) models.SyncSchedule {
	c := Classify(g, now, w)
	next := NextSyncAt(g, now)

	s := models.SyncSchedule{
		GameKey:          g.Key,
		GameName:         g.Name,
		Sport:            g.Sport,
		IsActive:         g.IsActive,
		LastSyncedAt:     g.LastSyncedAt,
		NextSyncAt:       next,
		MinutesUntilSync: next.Sub(now).Minutes(),
		Priority:         c.Priority,
		Reason:           c.Reason,
		InCriticalPeriod: c.CriticalPeriod != nil,
		CriticalPeriod:   c.CriticalPeriod,
	}
	if g.LastSyncedAt != nil {
		since := now.Sub(*g.LastSyncedAt).Minutes()
		s.MinutesSinceSync = &since
	}
	return s
}

// SelectDue returns the active games that need a sync now, most urgent first.
//
// A game is due when its next sync time has passed or it is inside a
// critical window. Idle games are never returned. The input is not modified
// and the ordering is deterministic for a given input.
func SelectDue(games []*models.Game, now time.Time, w Windows) []models.ScheduledGame {
	due := make([]models.ScheduledGame, 0, len(games))
	for _, g := range games {
		if g == nil || !g.IsActive {
			continue
		}
		s := BuildSchedule(g, now, w)
		if s.Priority == models.PriorityIdle {
			continue
		}
		if s.MinutesUntilSync <= 0 || s.InCriticalPeriod {
			due = append(due, models.ScheduledGame{Game: g, Schedule: s})
		}
	}
	sortByUrgency(due)
	return due
}

// FullSchedule returns a schedule entry for every game in selector order.
// Idle games are included only when includeIdle is set.
func FullSchedule(games []*models.Game, now time.Time, w Windows, includeIdle bool) []models.ScheduledGame {
	all := make([]models.ScheduledGame, 0, len(games))
	for _, g := range games {
		if g == nil {
			continue
		}
		s := BuildSchedule(g, now, w)
		if s.Priority == models.PriorityIdle && !includeIdle {
			continue
		}
		all = append(all, models.ScheduledGame{Game: g, Schedule: s})
	}
	sortByUrgency(all)
	return all
}

// sortByUrgency orders by tier rank, then soonest (most overdue) first.
// The sort is stable so equal entries keep their input order.
func sortByUrgency(items []models.ScheduledGame) {
	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := items[i].Schedule.Priority.Rank(), items[j].Schedule.Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		return items[i].Schedule.MinutesUntilSync < items[j].Schedule.MinutesUntilSync
	})
}
