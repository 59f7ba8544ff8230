// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tomtom215/leaguesync/internal/models"
)

// RecordRun appends one row to the sync_runs audit trail.
func (db *DB) RecordRun(ctx context.Context, run models.SyncRun) error {
	var errText any
	if run.Error != "" {
		errText = run.Error
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO sync_runs (run_id, game_key, trigger_kind, status, users_synced,
			elements_synced, error, started_at, duration_ms, estimated_cost)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.GameKey, string(run.Trigger), run.Status, run.UsersSynced,
		run.ElementsSynced, errText, run.StartedAt.UTC(), run.DurationMS, run.EstimatedCost)
	if err != nil {
		return fmt.Errorf("failed to record sync run for %s: %w", run.GameKey, err)
	}
	return nil
}

// RecentRuns returns the newest runs for a game, newest first.
func (db *DB) RecentRuns(ctx context.Context, gameKey string, limit int) ([]models.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT run_id, game_key, trigger_kind, status, users_synced, elements_synced,
			error, started_at, duration_ms, COALESCE(estimated_cost, 0)
		FROM sync_runs
		WHERE game_key = ?
		ORDER BY started_at DESC
		LIMIT ?`, gameKey, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	defer rows.Close()

	runs := []models.SyncRun{}
	for rows.Next() {
		var (
			r       models.SyncRun
			trigger string
			errText sql.NullString
		)
		if err := rows.Scan(&r.RunID, &r.GameKey, &trigger, &r.Status, &r.UsersSynced,
			&r.ElementsSynced, &errText, &r.StartedAt, &r.DurationMS, &r.EstimatedCost); err != nil {
			return nil, fmt.Errorf("failed to scan sync run: %w", err)
		}
		r.Trigger = models.TriggerKind(trigger)
		r.Error = errText.String
		r.StartedAt = r.StartedAt.UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
