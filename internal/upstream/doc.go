// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

// Package upstream implements the per-game sync operation against the sync
// worker, the service that pulls a game's live state from the fantasy data
// provider and fans it out to the personalization service.
//
// Every request waits on a shared token-bucket limiter first. A 429 or a
// body error code of "budget_exhausted" becomes a BUDGET_EXHAUSTED error so
// the orchestrator stops the batch. On success the refreshed game fields are
// written back through GameRecorder.
package upstream
