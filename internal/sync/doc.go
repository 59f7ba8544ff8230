// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

/*
Package sync runs budget-aware sync batches against the upstream sync worker.

The Orchestrator is the single entry point for both trigger paths:

  - RunBatch evaluates every schedulable game, keeps the due set, and syncs
    it strictly in priority order. Each game is admitted only if the budget
    tracker can cover its estimated call cost. Games that do not fit are
    skipped and the batch moves on.
  - TriggerManual syncs one explicitly named game, bypassing the due filter
    but enforcing a per-game cooldown since its last sync.

Batch lifecycle:

	Idle -> Running -> Completed | BudgetExhausted | TimedOut | Crashed

A budget exhaustion signal from the sync operation stops the batch and keeps
the results gathered so far. A timeout of the batch ceiling does the same.
A crash (panic, budget store failure, or a failed due-games query) discards
partial results and reports only the error and duration.

Only one run, batch or manual, may hold the orchestrator at a time. A second
caller receives ErrBatchInProgress instead of queueing.

BreakerSyncer wraps any Syncer in a sony/gobreaker circuit breaker so a
failing sync worker is not hammered on every batch. Budget exhaustion is not
counted as a breaker failure.
*/
package sync
