// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
// It is immutable after Load and safe for concurrent reads.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Budget    BudgetConfig    `koanf:"budget"`
	Sync      SyncConfig      `koanf:"sync"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	Upstream  UpstreamConfig  `koanf:"upstream"`
	Security  SecurityConfig  `koanf:"security"`
	NATS      NATSConfig      `koanf:"nats"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
//
// WriteTimeout must be longer than Sync.BatchTimeout because the timer-driven
// trigger holds the connection open until the batch report is ready.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DefaultShutdownTimeout is the HTTP drain window when none is configured.
const DefaultShutdownTimeout = 30 * time.Second

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig configures the DuckDB game store.
type DatabaseConfig struct {
	Path      string `koanf:"path"`       // ":memory:" is accepted for tests
	MaxMemory string `koanf:"max_memory"` // DuckDB memory limit, e.g. "512MB"
	Threads   int    `koanf:"threads"`    // 0 uses runtime.NumCPU()
}

// BudgetConfig configures the daily upstream call allowance.
type BudgetConfig struct {
	DailyLimit int `koanf:"daily_limit"`

	// Timezone is the IANA zone whose midnight resets the allowance.
	Timezone string `koanf:"timezone"`

	// StorePath is the BadgerDB directory. Empty keeps the counter in memory,
	// which loses the day's spend on restart.
	StorePath string `koanf:"store_path"`

	// DefaultUserEstimate is used for cost estimation when a game's user count is unknown.
	DefaultUserEstimate int `koanf:"default_user_estimate"`
}

// Location resolves Timezone. Validate has already rejected bad names.
func (b BudgetConfig) Location() *time.Location {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SyncConfig holds the orchestrator tunables.
type SyncConfig struct {
	PacingDelay         time.Duration `koanf:"pacing_delay"`
	BatchTimeout        time.Duration `koanf:"batch_timeout"`
	MaxGamesPerRun      int           `koanf:"max_games_per_run"` // 0 = unlimited
	ManualCooldown      time.Duration `koanf:"manual_cooldown"`
	RoundStartWindow    time.Duration `koanf:"round_start_window"`
	TradeDeadlineWindow time.Duration `koanf:"trade_deadline_window"`
	RoundEndedWindow    time.Duration `koanf:"round_ended_window"`

	// FailureBackoff hides games whose last run failed within this window
	// from the due-games query. 0 disables the filter.
	FailureBackoff time.Duration `koanf:"failure_backoff"`
}

// SchedulerConfig controls the optional in-process timer. Deployments driven by
// an external cron leave it disabled and call POST /api/v1/sync/run instead.
type SchedulerConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Interval time.Duration `koanf:"interval"`
}

// UpstreamConfig configures the sync worker client and its circuit breaker.
type UpstreamConfig struct {
	BaseURL           string        `koanf:"base_url"`
	Token             string        `koanf:"token"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`

	BreakerMaxRequests  uint32        `koanf:"breaker_max_requests"`
	BreakerInterval     time.Duration `koanf:"breaker_interval"`
	BreakerTimeout      time.Duration `koanf:"breaker_timeout"`
	BreakerFailureRatio float64       `koanf:"breaker_failure_ratio"`
	BreakerMinRequests  uint32        `koanf:"breaker_min_requests"`
}

// SecurityConfig configures both authentication paths and HTTP hardening.
type SecurityConfig struct {
	// CronSecret is the shared secret presented by the external timer.
	CronSecret string `koanf:"cron_secret"`

	// JWTSecret verifies operator bearer tokens on the manual path.
	JWTSecret string `koanf:"jwt_secret"`

	// TokenTTL is the lifetime of tokens minted with -issue-token.
	TokenTTL time.Duration `koanf:"token_ttl"`

	CasbinModelPath  string `koanf:"casbin_model_path"`
	CasbinPolicyPath string `koanf:"casbin_policy_path"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// NATSConfig configures report fan-out to the personalization service.
type NATSConfig struct {
	Enabled     bool   `koanf:"enabled"`
	URL         string `koanf:"url"`
	JetStream   bool   `koanf:"jetstream"`
	TopicPrefix string `koanf:"topic_prefix"`
}

// LoggingConfig maps onto logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
