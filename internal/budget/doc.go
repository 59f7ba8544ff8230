// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

// Package budget tracks the daily allowance of upstream API calls.
//
// The upstream provider throttles or bans integrations that exceed their
// daily call quota, so every sync must be admitted by Tracker.TrySpend before
// it runs. Estimates round up: a game that cannot be afforded is skipped
// rather than risking an overrun.
//
// The counter is persisted through a Store. BadgerStore keeps it across
// restarts; MemoryStore is for tests and single-shot runs. The allowance
// resets to the daily limit the first time it is read after midnight in the
// configured time zone.
package budget
