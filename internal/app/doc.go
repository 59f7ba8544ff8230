// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

/*
Package app assembles the sync core from configuration.

Both binaries share the same wiring: the server runs it behind the HTTP API
and the in-process scheduler, while leaguesyncctl runs single batches or
manual syncs from the command line (for example from a Kubernetes CronJob
when the external timer is preferred over the built-in one).

	cfg, _ := config.Load()
	a, err := app.New(cfg)
	if err != nil { ... }
	defer a.Close()
	report, err := a.Orchestrator.RunBatch(ctx)

Components built by New, in order:

  - database.DB (DuckDB game registry and run history)
  - budget.Tracker over a Badger store, or an in-memory store when
    BUDGET_STORE_PATH is empty
  - upstream.Client wrapped in sync.BreakerSyncer
  - events.Publisher over NATS when NATS_ENABLED=true
  - sync.Orchestrator

Close releases them in reverse order. DuckDB and Badger both take an
exclusive lock on their files, so two processes cannot open the same
paths at once.
*/
package app
