// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/leaguesync/internal/logging"
)

func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// Timestamps are stored as naive UTC TIMESTAMP values.
var tableQueries = []string{
	`CREATE TABLE IF NOT EXISTS games (
		key TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		sport TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		last_synced_at TIMESTAMP,
		sync_interval_minutes INTEGER NOT NULL DEFAULT 60,
		current_round INTEGER NOT NULL DEFAULT 0,
		total_rounds INTEGER NOT NULL DEFAULT 0,
		round_state TEXT NOT NULL DEFAULT 'pending',
		round_start TIMESTAMP,
		round_end TIMESTAMP,
		trade_deadline TIMESTAMP,
		users_total INTEGER NOT NULL DEFAULT 0,
		updated_at TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS sync_runs (
		run_id TEXT NOT NULL,
		game_key TEXT NOT NULL,
		trigger_kind TEXT NOT NULL,
		status TEXT NOT NULL,
		users_synced INTEGER NOT NULL DEFAULT 0,
		elements_synced INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		started_at TIMESTAMP NOT NULL,
		duration_ms BIGINT NOT NULL DEFAULT 0
	);`,
}

var indexQueries = []string{
	`CREATE INDEX IF NOT EXISTS idx_games_active ON games(is_active);`,
	`CREATE INDEX IF NOT EXISTS idx_sync_runs_game_started ON sync_runs(game_key, started_at);`,
	`CREATE INDEX IF NOT EXISTS idx_sync_runs_run ON sync_runs(run_id);`,
}

func (db *DB) createTables(ctx context.Context) error {
	for _, q := range tableQueries {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

func (db *DB) createIndexes(ctx context.Context) error {
	for _, q := range indexQueries {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// Migration is one versioned schema change.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

const schemaMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// migrations lists post-release schema changes, oldest first. Versions are
// never reused.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "sync_runs_estimated_cost",
		SQL:     `ALTER TABLE sync_runs ADD COLUMN IF NOT EXISTS estimated_cost INTEGER DEFAULT 0;`,
	},
}

func (db *DB) runVersionedMigrations(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, schemaMigrationsTable); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied := make(map[int]bool)
	rows, err := db.conn.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("failed to query applied migrations: %w", err)
	}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[v] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if _, err := db.conn.ExecContext(ctx, m.SQL); err != nil {
			return fmt.Errorf("failed to execute migration v%d (%s): %w", m.Version, m.Name, err)
		}
		if _, err := db.conn.ExecContext(ctx,
			`INSERT INTO schema_migrations (version, name) VALUES (?, ?)`, m.Version, m.Name); err != nil {
			return fmt.Errorf("failed to record migration v%d: %w", m.Version, err)
		}
		logging.Info().Int("version", m.Version).Str("name", m.Name).Msg("Applied migration")
	}
	return nil
}
