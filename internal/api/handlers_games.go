// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/leaguesync/internal/models"
	"github.com/tomtom215/leaguesync/internal/validation"
)

// ListGames returns every registered game, active or not.
func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	games, err := h.games.ListGames(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list games", err)
		return
	}
	if games == nil {
		games = []*models.Game{}
	}
	respondSuccess(w, games, start)
}

// PutGame registers a game or replaces its operator-owned fields. The
// last sync time belongs to the sync path and is carried over from the
// stored row.
func (h *Handler) PutGame(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	key := chi.URLParam(r, "gameKey")

	var g models.Game
	if err := decodeJSON(w, r, &g); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be a game object", nil)
		return
	}
	if g.Key != "" && g.Key != key {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Body key does not match path", nil)
		return
	}
	g.Key = key
	g.RoundState = models.ParseRoundState(string(g.RoundState))
	if verr := validation.ValidateStruct(&g); verr != nil {
		respondValidation(w, verr)
		return
	}

	existing, err := h.games.GetGame(r.Context(), key)
	switch {
	case err == nil:
		g.LastSyncedAt = existing.LastSyncedAt
	case errors.Is(err, models.ErrGameNotFound):
		g.LastSyncedAt = nil
	default:
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load game", err)
		return
	}

	if err := h.games.UpsertGame(r.Context(), &g); err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save game", err)
		return
	}
	stored, err := h.games.GetGame(r.Context(), key)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to reload game", err)
		return
	}
	respondSuccess(w, stored, start)
}

type setActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// SetGameActive turns scheduled syncing on or off for a game.
func (h *Handler) SetGameActive(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	param := validation.GameKeyParam{GameKey: chi.URLParam(r, "gameKey")}
	if verr := validation.ValidateStruct(&param); verr != nil {
		respondValidation(w, verr)
		return
	}

	var req setActiveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", `Request body must be {"active": true|false}`, nil)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidation(w, verr)
		return
	}

	if err := h.games.SetActive(r.Context(), param.GameKey, *req.Active); err != nil {
		if errors.Is(err, models.ErrGameNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Game not found: "+param.GameKey, nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update game", err)
		return
	}
	respondSuccess(w, map[string]interface{}{"key": param.GameKey, "is_active": *req.Active}, start)
}

// GetGameRuns returns a game's recent sync attempts, newest first.
func (h *Handler) GetGameRuns(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	limit, ok := queryInt(r, "limit", 20)
	if !ok {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be an integer", nil)
		return
	}
	q := validation.RunsQuery{GameKey: chi.URLParam(r, "gameKey"), Limit: limit}
	if verr := validation.ValidateStruct(&q); verr != nil {
		respondValidation(w, verr)
		return
	}

	if _, err := h.games.GetGame(r.Context(), q.GameKey); err != nil {
		if errors.Is(err, models.ErrGameNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Game not found: "+q.GameKey, nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load game", err)
		return
	}

	runs, err := h.games.RecentRuns(r.Context(), q.GameKey, q.Limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load sync runs", err)
		return
	}
	if runs == nil {
		runs = []models.SyncRun{}
	}
	respondSuccess(w, runs, start)
}
