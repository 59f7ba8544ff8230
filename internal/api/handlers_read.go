// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/leaguesync/internal/models"
	"github.com/tomtom215/leaguesync/internal/validation"
)

// GetSchedule returns the full schedule view: every active game (and idle
// ones with include_idle=true) in selector order. limit=0 returns all.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	includeIdle, ok := queryBool(r, "include_idle")
	if !ok {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "include_idle must be a boolean", nil)
		return
	}
	limit, ok := queryInt(r, "limit", 0)
	if !ok {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be an integer", nil)
		return
	}
	q := validation.ScheduleQuery{IncludeIdle: includeIdle, Limit: limit}
	if verr := validation.ValidateStruct(&q); verr != nil {
		respondValidation(w, verr)
		return
	}

	schedules, err := h.orchestrator.Schedule(r.Context(), q.IncludeIdle)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to build schedule", err)
		return
	}
	if q.Limit > 0 && len(schedules) > q.Limit {
		schedules = schedules[:q.Limit]
	}
	if schedules == nil {
		schedules = []models.SyncSchedule{}
	}
	respondSuccess(w, schedules, start)
}

// GetBudget returns today's remaining allowance and when it resets.
func (h *Handler) GetBudget(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status, err := h.budget.Status(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "BUDGET_ERROR", "Failed to read budget", err)
		return
	}
	respondSuccess(w, status, start)
}

// Health reports liveness. The status is "degraded" when DuckDB does not
// answer a ping; the HTTP code stays 200 so liveness checks only fail when
// the process itself is down.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	dbConnected := h.games != nil && h.games.Ping(r.Context()) == nil

	status := models.HealthStatus{
		Status:            "healthy",
		Version:           h.version,
		DatabaseConnected: dbConnected,
		Uptime:            time.Since(h.startTime).Seconds(),
	}
	if !dbConnected {
		status.Status = "degraded"
	}
	if h.breaker != nil {
		status.BreakerState = h.breaker.State()
	}
	if h.scheduler != nil {
		if next, ok := h.scheduler.NextRun(); ok {
			next = next.UTC()
			status.NextScheduledBatch = &next
		}
	}
	respondSuccess(w, status, start)
}
