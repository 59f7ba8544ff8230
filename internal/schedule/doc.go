// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

// Package schedule decides which games need a sync and in what order.
//
// Classify maps a game snapshot to a priority tier (critical, overdue,
// routine or idle) plus a human-readable reason. It is a pure function of the
// game, the evaluation instant and the configured critical windows.
//
// SelectDue turns a pool of games into the ordered work queue consumed by the
// orchestrator: active games that are overdue or inside a critical window,
// sorted by tier and then by how overdue they are. FullSchedule returns the
// same ordering for every game, including the ones that are not due.
package schedule
