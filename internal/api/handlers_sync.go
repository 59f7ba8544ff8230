// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/leaguesync/internal/logging"
	"github.com/tomtom215/leaguesync/internal/models"
	lsync "github.com/tomtom215/leaguesync/internal/sync"
	"github.com/tomtom215/leaguesync/internal/validation"
)

// RunScheduledSync runs one batch for the external timer.
//
// Completed, budget-exhausted and timed-out batches return 200 with the
// report; its success flag and per-game results carry the detail. A crashed
// batch returns 500 with the report in data.
func (h *Handler) RunScheduledSync(w http.ResponseWriter, r *http.Request) {
	report, err := h.orchestrator.RunBatch(r.Context())
	switch {
	case errors.Is(err, lsync.ErrBatchInProgress):
		respondError(w, http.StatusConflict, "SYNC_IN_PROGRESS", "A sync run is already in progress", nil)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to start sync batch", err)
		return
	}

	if report.Status == models.BatchCrashed {
		respondErrorDetails(w, http.StatusInternalServerError, "BATCH_CRASHED", "Sync batch crashed: "+report.Error,
			map[string]interface{}{"run_id": report.RunID}, report, nil)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   report,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: report.DurationMS,
		},
	})
}

// TriggerGameSync forces one game outside its schedule, subject to the
// manual cooldown and the daily budget.
func (h *Handler) TriggerGameSync(w http.ResponseWriter, r *http.Request) {
	param := validation.GameKeyParam{GameKey: chi.URLParam(r, "gameKey")}
	if verr := validation.ValidateStruct(&param); verr != nil {
		respondValidation(w, verr)
		return
	}

	report, err := h.orchestrator.TriggerManual(r.Context(), param.GameKey)
	if errors.Is(err, lsync.ErrSyncCrashed) && report != nil {
		respondErrorDetails(w, http.StatusInternalServerError, "SYNC_CRASHED", "Manual sync crashed: "+report.Result.Error,
			map[string]interface{}{"run_id": report.RunID}, report, err)
		return
	}
	if err != nil {
		h.respondTriggerError(w, r, param.GameKey, err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   report,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: report.DurationMS,
		},
	})
}

func (h *Handler) respondTriggerError(w http.ResponseWriter, r *http.Request, gameKey string, err error) {
	var cooldown *lsync.CooldownError
	switch {
	case errors.As(err, &cooldown):
		minutes := cooldown.RemainingMinutes()
		w.Header().Set("Retry-After", strconv.Itoa(minutes*60))
		respondErrorDetails(w, http.StatusTooManyRequests, "COOLDOWN_ACTIVE", cooldown.Error(),
			map[string]interface{}{"retry_after_minutes": minutes}, nil, nil)
	case errors.Is(err, lsync.ErrGameNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Game not found: "+gameKey, nil)
	case errors.Is(err, lsync.ErrBatchInProgress):
		respondError(w, http.StatusConflict, "SYNC_IN_PROGRESS", "A sync run is already in progress", nil)
	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("game_key", gameKey).Msg("Manual sync failed")
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Manual sync failed", nil)
	}
}
