// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/leaguesync/config.yaml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// sliceConfigPaths arrive from the environment as comma-separated strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// envMappings maps lowercased environment variable names to koanf paths.
var envMappings = map[string]string{
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	"budget_daily_limit":           "budget.daily_limit",
	"budget_timezone":              "budget.timezone",
	"budget_store_path":            "budget.store_path",
	"budget_default_user_estimate": "budget.default_user_estimate",

	"sync_pacing_delay":          "sync.pacing_delay",
	"sync_batch_timeout":         "sync.batch_timeout",
	"sync_max_games_per_run":     "sync.max_games_per_run",
	"sync_manual_cooldown":       "sync.manual_cooldown",
	"sync_round_start_window":    "sync.round_start_window",
	"sync_trade_deadline_window": "sync.trade_deadline_window",
	"sync_round_ended_window":    "sync.round_ended_window",
	"sync_failure_backoff":       "sync.failure_backoff",

	"scheduler_enabled":  "scheduler.enabled",
	"scheduler_interval": "scheduler.interval",

	"upstream_url":                   "upstream.base_url",
	"upstream_token":                 "upstream.token",
	"upstream_timeout":               "upstream.timeout",
	"upstream_rps":                   "upstream.requests_per_second",
	"upstream_burst":                 "upstream.burst",
	"upstream_breaker_max_requests":  "upstream.breaker_max_requests",
	"upstream_breaker_interval":      "upstream.breaker_interval",
	"upstream_breaker_timeout":       "upstream.breaker_timeout",
	"upstream_breaker_failure_ratio": "upstream.breaker_failure_ratio",
	"upstream_breaker_min_requests":  "upstream.breaker_min_requests",

	"cron_secret":         "security.cron_secret",
	"jwt_secret":          "security.jwt_secret",
	"token_ttl":           "security.token_ttl",
	"casbin_model_path":   "security.casbin_model_path",
	"casbin_policy_path":  "security.casbin_policy_path",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	"nats_enabled":      "nats.enabled",
	"nats_url":          "nats.url",
	"nats_jetstream":    "nats.jetstream",
	"nats_topic_prefix": "nats.topic_prefix",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3857,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    10 * time.Minute,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Database: DatabaseConfig{
			Path:      "./data/leaguesync.duckdb",
			MaxMemory: "512MB",
		},
		Budget: BudgetConfig{
			DailyLimit:          10000,
			Timezone:            "UTC",
			StorePath:           "./data/budget",
			DefaultUserEstimate: 1000,
		},
		Sync: SyncConfig{
			PacingDelay:         2 * time.Second,
			BatchTimeout:        5 * time.Minute,
			ManualCooldown:      5 * time.Minute,
			RoundStartWindow:    120 * time.Minute,
			TradeDeadlineWindow: 120 * time.Minute,
			RoundEndedWindow:    60 * time.Minute,
		},
		Scheduler: SchedulerConfig{
			Interval: 15 * time.Minute,
		},
		Upstream: UpstreamConfig{
			Timeout:             60 * time.Second,
			RequestsPerSecond:   1,
			Burst:               1,
			BreakerMaxRequests:  3,
			BreakerInterval:     time.Minute,
			BreakerTimeout:      2 * time.Minute,
			BreakerFailureRatio: 0.6,
			BreakerMinRequests:  10,
		},
		Security: SecurityConfig{
			TokenTTL:        time.Hour,
			RateLimitReqs:   60,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{},
		},
		NATS: NATSConfig{
			URL:         "nats://127.0.0.1:4222",
			TopicPrefix: "leaguesync",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file and the
// environment, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envTransformFunc returns "" for unmapped keys so koanf skips them.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw, ok := k.Get(path).(string)
		if !ok || raw == "" {
			continue
		}
		parts := strings.Split(raw, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}
