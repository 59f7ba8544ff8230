// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package upstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/leaguesync/internal/budget"
	"github.com/tomtom215/leaguesync/internal/config"
	"github.com/tomtom215/leaguesync/internal/logging"
	"github.com/tomtom215/leaguesync/internal/metrics"
	"github.com/tomtom215/leaguesync/internal/models"
	lsync "github.com/tomtom215/leaguesync/internal/sync"
)

const errCodeBudgetExhausted = "budget_exhausted"

// maxErrorBody caps how much of a failed response is read into the error.
const maxErrorBody = 4 << 10

// GameRecorder persists the game state returned by a successful sync.
type GameRecorder interface {
	RecordSync(ctx context.Context, key string, u models.GameUpdate) error
}

// Client calls the sync worker.
type Client struct {
	baseURL  string
	token    string
	http     *http.Client
	limiter  *rate.Limiter
	recorder GameRecorder
	now      func() time.Time
}

// NewClient builds a client from config. recorder may be nil when the worker
// writes game state itself.
func NewClient(cfg *config.UpstreamConfig, recorder GameRecorder) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("upstream: invalid base URL %q", cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		token:    cfg.Token,
		http:     &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
		recorder: recorder,
		now:      time.Now,
	}, nil
}

type syncRequest struct {
	Trigger   models.TriggerKind `json:"trigger"`
	PageSize  int                `json:"page_size"`
	UsersHint int                `json:"users_hint,omitempty"`
}

type gameState struct {
	CurrentRound  int        `json:"current_round"`
	TotalRounds   int        `json:"total_rounds"`
	RoundState    string     `json:"round_state"`
	RoundStart    *time.Time `json:"round_start"`
	RoundEnd      *time.Time `json:"round_end"`
	TradeDeadline *time.Time `json:"trade_deadline"`
	UsersTotal    int        `json:"users_total"`
}

type syncResponse struct {
	UsersSynced    int        `json:"users_synced"`
	ElementsSynced int        `json:"elements_synced"`
	Game           *gameState `json:"game,omitempty"`
	Error          *apiError  `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Sync asks the worker to refresh one game.
func (c *Client) Sync(ctx context.Context, g *models.Game, trigger models.TriggerKind) (models.SyncOutcome, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return models.SyncOutcome{}, fmt.Errorf("wait for upstream rate limit: %w", err)
	}

	body, err := json.Marshal(syncRequest{Trigger: trigger, PageSize: budget.UpstreamPageSize, UsersHint: g.UsersTotal})
	if err != nil {
		return models.SyncOutcome{}, fmt.Errorf("encode sync request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/v1/games/%s/sync", c.baseURL, url.PathEscape(g.Key))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return models.SyncOutcome{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest(0, time.Since(start))
		return models.SyncOutcome{}, fmt.Errorf("sync worker request for %s: %w", g.Key, err)
	}
	defer resp.Body.Close()
	metrics.RecordUpstreamRequest(resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.SyncOutcome{}, c.statusError(g.Key, resp)
	}

	var out syncResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.SyncOutcome{}, fmt.Errorf("decode sync response for %s: %w", g.Key, err)
	}
	if out.Error != nil && out.Error.Code == errCodeBudgetExhausted {
		return models.SyncOutcome{}, lsync.NewBudgetExhaustedError(out.Error.Message)
	}

	if c.recorder != nil {
		if err := c.recorder.RecordSync(ctx, g.Key, c.update(g, out.Game)); err != nil {
			return models.SyncOutcome{}, fmt.Errorf("persist sync result for %s: %w", g.Key, err)
		}
	}

	logging.Ctx(ctx).Debug().
		Str("game_key", g.Key).
		Int("status_code", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Sync worker call complete")

	return models.SyncOutcome{UsersSynced: out.UsersSynced, ElementsSynced: out.ElementsSynced}, nil
}

func (c *Client) statusError(key string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var parsed syncResponse
	msg := strings.TrimSpace(string(raw))
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Error != nil {
		msg = parsed.Error.Message
		if parsed.Error.Code == errCodeBudgetExhausted {
			return lsync.NewBudgetExhaustedError(msg)
		}
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return lsync.NewBudgetExhaustedError(fmt.Sprintf("sync worker returned 429 for %s: %s", key, msg))
	}
	return &StatusError{GameKey: key, StatusCode: resp.StatusCode, Message: msg}
}

// update merges the worker's view of the game over the current snapshot.
// Without a game payload only the sync timestamp moves.
func (c *Client) update(g *models.Game, st *gameState) models.GameUpdate {
	u := models.GameUpdate{
		SyncedAt:      c.now(),
		CurrentRound:  g.CurrentRound,
		TotalRounds:   g.TotalRounds,
		RoundState:    g.RoundState,
		RoundStart:    g.RoundStart,
		RoundEnd:      g.RoundEnd,
		TradeDeadline: g.TradeDeadline,
		UsersTotal:    g.UsersTotal,
	}
	if st == nil {
		return u
	}
	u.CurrentRound = st.CurrentRound
	u.TotalRounds = st.TotalRounds
	u.RoundState = models.ParseRoundState(st.RoundState)
	u.RoundStart = st.RoundStart
	u.RoundEnd = st.RoundEnd
	u.TradeDeadline = st.TradeDeadline
	if st.UsersTotal > 0 {
		u.UsersTotal = st.UsersTotal
	}
	return u
}

// StatusError is a non-2xx response other than budget exhaustion.
type StatusError struct {
	GameKey    string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("sync worker returned %d for %s", e.StatusCode, e.GameKey)
	}
	return fmt.Sprintf("sync worker returned %d for %s: %s", e.StatusCode, e.GameKey, e.Message)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
