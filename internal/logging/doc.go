// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

// Package logging is the zerolog-backed logging layer for LeagueSync.
//
// A single global logger is configured once from main via Init and then used
// through the package-level helpers:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("game_key", key).Msg("Game synced")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Sync failed")
//
// Ctx attaches the correlation and request IDs stored in the context, so every
// line written while handling a trigger request or running a batch can be
// joined back together. NewSlogLogger exposes the same logger through log/slog
// for suture and watermill.
//
// Always finish an event with Msg or Send, otherwise nothing is written.
package logging
