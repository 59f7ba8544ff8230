// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

/*
Package database is the DuckDB-backed game repository.

It owns two tables:

  - games: one row per fantasy game, holding the scheduling inputs (activity
    flag, interval, last sync time, round lifecycle fields, user count).
    Rows are created by administrative upserts and refreshed by RecordSync
    after every successful sync.
  - sync_runs: an append-only audit trail with one row per attempted or
    skipped game in every batch and manual sync.

ListSchedulable is the due-games query consumed by the orchestrator. When a
failure backoff is configured it hides games whose latest attempted run
failed within the backoff window, so a broken game does not burn budget on
every batch.

Schema changes after the first release go through versioned migrations
recorded in schema_migrations.
*/
package database
