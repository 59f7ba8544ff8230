// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

/*
Package api exposes LeagueSync over HTTP using the chi router.

Routes:

	POST /api/v1/sync/run                    shared secret       RunScheduledSync
	POST /api/v1/games/{gameKey}/sync        JWT games:trigger   TriggerGameSync
	GET  /api/v1/games                       JWT games:read      ListGames
	PUT  /api/v1/games/{gameKey}             JWT games:write     PutGame
	PUT  /api/v1/games/{gameKey}/active      JWT games:write     SetGameActive
	GET  /api/v1/games/{gameKey}/runs        JWT runs:read       GetGameRuns
	GET  /api/v1/schedule                    JWT schedule:read   GetSchedule
	GET  /api/v1/budget                      JWT budget:read     GetBudget
	GET  /health                             none                Health
	GET  /metrics                            none                promhttp

Every response uses models.APIResponse. Trigger endpoints always return the
structured report when one exists, including for crashed batches, so callers
can read per-game detail alongside the overall success flag.
*/
package api
