// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/tomtom215/leaguesync/internal/models"
	"github.com/tomtom215/leaguesync/internal/validation"
)

// gameRegistry is the write side of database.DB used by import.
type gameRegistry interface {
	GetGame(ctx context.Context, key string) (*models.Game, error)
	UpsertGame(ctx context.Context, g *models.Game) error
}

func readGamesFile(path string) ([]*models.Game, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return decodeGames(f)
}

// decodeGames reads a JSON array of games and validates every entry before
// anything is written.
func decodeGames(r io.Reader) ([]*models.Game, error) {
	var games []*models.Game
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&games); err != nil {
		return nil, fmt.Errorf("decode games: %w", err)
	}

	seen := make(map[string]struct{}, len(games))
	for i, g := range games {
		if g == nil {
			return nil, fmt.Errorf("game %d: null entry", i)
		}
		g.RoundState = models.ParseRoundState(string(g.RoundState))
		if verr := validation.ValidateStruct(g); verr != nil {
			return nil, fmt.Errorf("game %d (%q): %w", i, g.Key, verr)
		}
		if _, dup := seen[g.Key]; dup {
			return nil, fmt.Errorf("game %d: duplicate key %q", i, g.Key)
		}
		seen[g.Key] = struct{}{}
	}
	return games, nil
}

// importGames upserts games. The sync timestamp of an existing row is kept,
// so re-importing a file does not make every game look overdue.
func importGames(ctx context.Context, store gameRegistry, games []*models.Game) (int, error) {
	for i, g := range games {
		existing, err := store.GetGame(ctx, g.Key)
		switch {
		case err == nil:
			g.LastSyncedAt = existing.LastSyncedAt
		case errors.Is(err, models.ErrGameNotFound):
			g.LastSyncedAt = nil
		default:
			return i, fmt.Errorf("look up %s: %w", g.Key, err)
		}
		if err := store.UpsertGame(ctx, g); err != nil {
			return i, fmt.Errorf("upsert %s: %w", g.Key, err)
		}
	}
	return len(games), nil
}
