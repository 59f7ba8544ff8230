// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

/*
Package supervisor runs LeagueSync's long-lived services under suture v4.

	RootSupervisor ("leaguesync")
	├── SchedulingSupervisor ("scheduling-layer")
	│   └── SchedulerService (if scheduler.enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A crashed scheduler is restarted without dropping the HTTP listener, so the
external cron path and manual triggers stay available. Supervisor events
are logged through sutureslog using the zerolog-backed slog handler.
*/
package supervisor
