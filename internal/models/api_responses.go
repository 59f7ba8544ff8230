// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package models

import "time"

// APIResponse is the envelope for every HTTP response.
//
//	{"status":"success","data":{...},"metadata":{"timestamp":"...","query_time_ms":12}}
//	{"status":"error","error":{"code":"COOLDOWN_ACTIVE","message":"..."},"metadata":{...}}
//
// A crashed batch is reported with status "error" and the report in data,
// so callers always get the structured report.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data,omitempty"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response timing.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError is the error body.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is returned by GET /health.
type HealthStatus struct {
	Status             string     `json:"status"` // "healthy" or "degraded"
	Version            string     `json:"version"`
	DatabaseConnected  bool       `json:"database_connected"`
	BreakerState       string     `json:"breaker_state,omitempty"`
	NextScheduledBatch *time.Time `json:"next_scheduled_batch,omitempty"`
	Uptime             float64    `json:"uptime_seconds"`
}
