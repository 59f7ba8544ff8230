// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/leaguesync/internal/models"
)

// ErrGameNotFound is returned when no game matches a key.
var ErrGameNotFound = models.ErrGameNotFound

const gameColumns = `g.key, g.name, g.sport, g.is_active, g.last_synced_at, g.sync_interval_minutes,
	g.current_round, g.total_rounds, g.round_state, g.round_start, g.round_end,
	g.trade_deadline, g.users_total`

// ListGames returns every game ordered by key.
func (db *DB) ListGames(ctx context.Context) ([]*models.Game, error) {
	return db.queryGames(ctx, `SELECT `+gameColumns+` FROM games g ORDER BY g.key`)
}

// ListSchedulable returns active games, minus those whose latest attempted
// run failed within the failure backoff.
func (db *DB) ListSchedulable(ctx context.Context) ([]*models.Game, error) {
	if db.failureBackoff <= 0 {
		return db.queryGames(ctx, `SELECT `+gameColumns+` FROM games g WHERE g.is_active ORDER BY g.key`)
	}

	cutoff := db.now().Add(-db.failureBackoff).UTC()
	query := `
		WITH latest AS (
			SELECT game_key,
				arg_max(status, started_at) AS status,
				max(started_at) AS started_at
			FROM sync_runs
			WHERE status <> 'skipped'
			GROUP BY game_key
		)
		SELECT ` + gameColumns + `
		FROM games g
		LEFT JOIN latest l ON l.game_key = g.key
		WHERE g.is_active
			AND NOT (l.status IS NOT NULL AND l.status = 'failed' AND l.started_at >= ?)
		ORDER BY g.key`
	return db.queryGames(ctx, query, cutoff)
}

// GetGame returns one game or an error wrapping ErrGameNotFound.
func (db *DB) GetGame(ctx context.Context, key string) (*models.Game, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games g WHERE g.key = ?`, key)
	g, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game %s: %w", key, err)
	}
	return g, nil
}

// UpsertGame inserts a game or replaces every column of an existing one.
func (db *DB) UpsertGame(ctx context.Context, g *models.Game) error {
	interval := g.SyncIntervalMinutes
	if interval <= 0 {
		interval = 60
	}
	state := g.RoundState
	if state == "" {
		state = models.RoundStatePending
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO games (key, name, sport, is_active, last_synced_at, sync_interval_minutes,
			current_round, total_rounds, round_state, round_start, round_end, trade_deadline,
			users_total, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			name = EXCLUDED.name,
			sport = EXCLUDED.sport,
			is_active = EXCLUDED.is_active,
			last_synced_at = EXCLUDED.last_synced_at,
			sync_interval_minutes = EXCLUDED.sync_interval_minutes,
			current_round = EXCLUDED.current_round,
			total_rounds = EXCLUDED.total_rounds,
			round_state = EXCLUDED.round_state,
			round_start = EXCLUDED.round_start,
			round_end = EXCLUDED.round_end,
			trade_deadline = EXCLUDED.trade_deadline,
			users_total = EXCLUDED.users_total,
			updated_at = EXCLUDED.updated_at`,
		g.Key, g.Name, g.Sport, g.IsActive, nullTime(g.LastSyncedAt), interval,
		g.CurrentRound, g.TotalRounds, string(state),
		nullTime(g.RoundStart), nullTime(g.RoundEnd), nullTime(g.TradeDeadline),
		g.UsersTotal, db.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert game %s: %w", g.Key, err)
	}
	return nil
}

// SetActive toggles scheduled syncing for a game.
func (db *DB) SetActive(ctx context.Context, key string, active bool) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE games SET is_active = ?, updated_at = ? WHERE key = ?`, active, db.now().UTC(), key)
	if err != nil {
		return fmt.Errorf("failed to update game %s: %w", key, err)
	}
	return requireRow(res, key)
}

// RecordSync stores the state returned by a successful sync.
func (db *DB) RecordSync(ctx context.Context, key string, u models.GameUpdate) error {
	state := u.RoundState
	if state == "" {
		state = models.RoundStatePending
	}
	res, err := db.conn.ExecContext(ctx, `
		UPDATE games SET
			last_synced_at = ?,
			current_round = ?,
			total_rounds = ?,
			round_state = ?,
			round_start = ?,
			round_end = ?,
			trade_deadline = ?,
			users_total = ?,
			updated_at = ?
		WHERE key = ?`,
		u.SyncedAt.UTC(), u.CurrentRound, u.TotalRounds, string(state),
		nullTime(u.RoundStart), nullTime(u.RoundEnd), nullTime(u.TradeDeadline),
		u.UsersTotal, db.now().UTC(), key)
	if err != nil {
		return fmt.Errorf("failed to record sync for %s: %w", key, err)
	}
	return requireRow(res, key)
}

func (db *DB) queryGames(ctx context.Context, query string, args ...any) ([]*models.Game, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGame(s scanner) (*models.Game, error) {
	var (
		g                                models.Game
		state                            string
		lastSynced, start, end, deadline sql.NullTime
	)
	err := s.Scan(&g.Key, &g.Name, &g.Sport, &g.IsActive, &lastSynced, &g.SyncIntervalMinutes,
		&g.CurrentRound, &g.TotalRounds, &state, &start, &end, &deadline, &g.UsersTotal)
	if err != nil {
		return nil, err
	}
	g.RoundState = models.ParseRoundState(state)
	g.LastSyncedAt = timePtr(lastSynced)
	g.RoundStart = timePtr(start)
	g.RoundEnd = timePtr(end)
	g.TradeDeadline = timePtr(deadline)
	return &g, nil
}

func requireRow(res sql.Result, key string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrGameNotFound, key)
	}
	return nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}
