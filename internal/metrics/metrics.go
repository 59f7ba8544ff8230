// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Budget
	BudgetRemaining = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "leaguesync_budget_remaining",
			Help: "Upstream API calls left for the current budget day",
		},
	)

	BudgetSpent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leaguesync_budget_spent_total",
			Help: "Upstream API calls admitted by the budget tracker",
		},
	)

	BudgetRefunded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leaguesync_budget_refunded_total",
			Help: "Admitted calls returned to the allowance because no upstream request was made",
		},
	)

	BudgetDenied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leaguesync_budget_denied_total",
			Help: "Games skipped because the remaining budget could not cover their estimate",
		},
	)

	// Batches
	BatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "leaguesync_batch_duration_seconds",
			Help:    "Wall-clock duration of sync batches",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"status"},
	)

	BatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leaguesync_batch_total",
			Help: "Sync batches by terminal status",
		},
		[]string{"status"}, // completed, budget_exhausted, timed_out, crashed
	)

	BatchLastRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "leaguesync_batch_last_run_timestamp",
			Help: "Unix timestamp of the most recent batch completion",
		},
	)

	GameSyncTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leaguesync_game_sync_total",
			Help: "Per-game sync outcomes",
		},
		[]string{"trigger", "outcome"}, // outcome: success, failed, skipped, cooldown
	)

	UsersSynced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leaguesync_users_synced_total",
			Help: "Downstream users refreshed by successful syncs",
		},
	)

	// Upstream
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "leaguesync_upstream_request_duration_seconds",
			Help:    "Duration of requests to the sync worker",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"status_code"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "leaguesync_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leaguesync_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Events
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leaguesync_events_published_total",
			Help: "Report events published to the message bus",
		},
		[]string{"topic", "outcome"},
	)

	// HTTP
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "leaguesync_api_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status_code"},
	)

	AuthzDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leaguesync_authz_decisions_total",
			Help: "Authorization decisions by object, action and result",
		},
		[]string{"object", "action", "result"},
	)
)

// RecordBatch records a finished batch.
func RecordBatch(status string, duration time.Duration) {
	BatchDuration.WithLabelValues(status).Observe(duration.Seconds())
	BatchTotal.WithLabelValues(status).Inc()
	BatchLastRun.Set(float64(time.Now().Unix()))
}

// RecordGameSync records one per-game outcome.
func RecordGameSync(trigger, outcome string, users int) {
	GameSyncTotal.WithLabelValues(trigger, outcome).Inc()
	if outcome == "skipped" {
		BudgetDenied.Inc()
	}
	if users > 0 {
		UsersSynced.Add(float64(users))
	}
}

// RecordUpstreamRequest records a sync worker round trip. statusCode 0 means
// the request never got a response.
func RecordUpstreamRequest(statusCode int, duration time.Duration) {
	code := "error"
	if statusCode > 0 {
		code = strconv.Itoa(statusCode)
	}
	UpstreamRequestDuration.WithLabelValues(code).Observe(duration.Seconds())
}

// RecordBreakerTransition updates breaker gauges on a state change.
func RecordBreakerTransition(name, from, to string, toValue float64) {
	CircuitBreakerState.WithLabelValues(name).Set(toValue)
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}

// RecordPublish records a bus publish attempt.
func RecordPublish(topic string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	EventsPublished.WithLabelValues(topic, outcome).Inc()
}

// RecordAPIRequest records one HTTP request.
func RecordAPIRequest(method, route string, statusCode int, duration time.Duration) {
	APIRequestDuration.WithLabelValues(method, route, strconv.Itoa(statusCode)).Observe(duration.Seconds())
}

// RecordAuthzDecision counts one permission check.
func RecordAuthzDecision(object, action string, allowed bool) {
	result := "denied"
	if allowed {
		result = "allowed"
	}
	AuthzDecisions.WithLabelValues(object, action, result).Inc()
}
