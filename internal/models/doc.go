// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

// Package models defines the data shapes shared across LeagueSync packages.
//
// Game is a read-only snapshot of a fantasy game as stored in DuckDB.
// SyncSchedule, GameSyncResult and the report types are recomputed on
// every evaluation and never persisted by the scheduler itself. The only
// long-lived state owned by this service is the budget counter, which lives
// in package budget.
package models
