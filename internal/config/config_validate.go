// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	minCronSecretLength = 16
	minJWTSecretLength  = 32
)

// Validate checks required values and cross-field constraints.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateBudget,
		c.validateSync,
		c.validateScheduler,
		c.validateUpstream,
		c.validateSecurity,
		c.validateNATS,
		c.validateLogging,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.WriteTimeout <= c.Sync.BatchTimeout {
		return fmt.Errorf("HTTP_WRITE_TIMEOUT (%v) must exceed SYNC_BATCH_TIMEOUT (%v)", c.Server.WriteTimeout, c.Sync.BatchTimeout)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative")
	}
	return nil
}

func (c *Config) validateBudget() error {
	if c.Budget.DailyLimit <= 0 {
		return fmt.Errorf("BUDGET_DAILY_LIMIT must be positive, got %d", c.Budget.DailyLimit)
	}
	if c.Budget.DefaultUserEstimate <= 0 {
		return fmt.Errorf("BUDGET_DEFAULT_USER_ESTIMATE must be positive, got %d", c.Budget.DefaultUserEstimate)
	}
	if _, err := time.LoadLocation(c.Budget.Timezone); err != nil {
		return fmt.Errorf("BUDGET_TIMEZONE %q is not a valid IANA zone: %w", c.Budget.Timezone, err)
	}
	return nil
}

func (c *Config) validateSync() error {
	s := c.Sync
	if s.PacingDelay < 0 {
		return fmt.Errorf("SYNC_PACING_DELAY must not be negative")
	}
	if s.BatchTimeout <= 0 {
		return fmt.Errorf("SYNC_BATCH_TIMEOUT must be positive")
	}
	if s.MaxGamesPerRun < 0 {
		return fmt.Errorf("SYNC_MAX_GAMES_PER_RUN must not be negative")
	}
	if s.ManualCooldown < 0 || s.FailureBackoff < 0 {
		return fmt.Errorf("SYNC_MANUAL_COOLDOWN and SYNC_FAILURE_BACKOFF must not be negative")
	}
	if s.RoundStartWindow <= 0 || s.TradeDeadlineWindow <= 0 || s.RoundEndedWindow <= 0 {
		return fmt.Errorf("critical windows must be positive")
	}
	return nil
}

func (c *Config) validateScheduler() error {
	if c.Scheduler.Enabled && c.Scheduler.Interval < time.Minute {
		return fmt.Errorf("SCHEDULER_INTERVAL must be at least 1m when SCHEDULER_ENABLED=true, got %v", c.Scheduler.Interval)
	}
	return nil
}

func (c *Config) validateUpstream() error {
	u := c.Upstream
	if u.BaseURL == "" {
		return fmt.Errorf("UPSTREAM_URL is required")
	}
	parsed, err := url.Parse(u.BaseURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("UPSTREAM_URL must be an absolute http(s) URL, got %q", u.BaseURL)
	}
	if u.RequestsPerSecond <= 0 || u.Burst < 1 {
		return fmt.Errorf("UPSTREAM_RPS must be positive and UPSTREAM_BURST at least 1")
	}
	if u.BreakerFailureRatio <= 0 || u.BreakerFailureRatio > 1 {
		return fmt.Errorf("UPSTREAM_BREAKER_FAILURE_RATIO must be in (0,1], got %v", u.BreakerFailureRatio)
	}
	// A pacing delay shorter than the limiter spacing would just block in the limiter.
	minSpacing := time.Duration(float64(time.Second) / u.RequestsPerSecond)
	if c.Sync.PacingDelay > 0 && c.Sync.PacingDelay < minSpacing {
		return fmt.Errorf("SYNC_PACING_DELAY (%v) must be at least the upstream request spacing (%v)", c.Sync.PacingDelay, minSpacing)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	s := c.Security
	if len(s.CronSecret) < minCronSecretLength {
		return fmt.Errorf("CRON_SECRET must be at least %d characters", minCronSecretLength)
	}
	if len(s.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}
	if !s.RateLimitDisabled && (s.RateLimitReqs <= 0 || s.RateLimitWindow <= 0) {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive unless DISABLE_RATE_LIMIT=true")
	}
	for _, origin := range s.CORSOrigins {
		if origin == "*" {
			return fmt.Errorf("CORS_ORIGINS must list explicit origins, wildcard is not allowed")
		}
	}
	return nil
}

func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}
	if !strings.HasPrefix(c.NATS.URL, "nats://") && !strings.HasPrefix(c.NATS.URL, "tls://") {
		return fmt.Errorf("NATS_URL must start with nats:// or tls:// when NATS_ENABLED=true")
	}
	if c.NATS.TopicPrefix == "" {
		return fmt.Errorf("NATS_TOPIC_PREFIX is required when NATS_ENABLED=true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}
