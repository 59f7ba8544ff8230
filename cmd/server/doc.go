// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

/*
Package main is the entry point for the LeagueSync server.

LeagueSync decides which fantasy league games to refresh from the upstream
sync worker on every tick of a fixed timer, without exceeding a daily call
allowance. Games are ranked critical, overdue, routine or idle, and the
batch walks that order until the budget, the per-run cap or the batch
timeout stops it.

# Application Architecture

	RootSupervisor ("leaguesync")
	├── SchedulingSupervisor ("scheduling-layer")
	│   └── Sync Scheduler (optional, SCHEDULER_ENABLED=true)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Sync core (internal/app): DuckDB, Badger budget store, upstream client
    behind a circuit breaker, optional NATS publisher, orchestrator
 4. Authentication: cron shared secret and JWT bearer tokens
 5. Authorization: Casbin RBAC (viewer, operator, admin)
 6. Scheduler: gocron singleton job (optional)
 7. Supervisor Tree: Suture v4 process supervision
 8. HTTP Server: Chi router with middleware stack

# Timer modes

With SCHEDULER_ENABLED=false (the default) an external timer calls
POST /api/v1/sync/run with the X-Cron-Secret header. With the in-process
scheduler enabled both paths can coexist; the orchestrator rejects a second
concurrent batch with 409.

# Shutdown

SIGINT and SIGTERM cancel the root context. The HTTP server drains within
HTTP_SHUTDOWN_TIMEOUT, the scheduler waits for a running batch to stop,
and storage is closed last.
*/
package main
