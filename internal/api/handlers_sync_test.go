// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/leaguesync/internal/auth"
	"github.com/tomtom215/leaguesync/internal/authz"
	"github.com/tomtom215/leaguesync/internal/config"
	"github.com/tomtom215/leaguesync/internal/models"
	lsync "github.com/tomtom215/leaguesync/internal/sync"
)

const (
	testCronSecret = "cron-secret-0123456789"
	testJWTSecret  = "jwt-secret-0123456789-0123456789-0123456789"
)

type fakeOrchestrator struct {
	batchReport  *models.BatchReport
	batchErr     error
	manualReport *models.GameSyncReport
	manualErr    error
	schedule     []models.SyncSchedule
	scheduleErr  error

	mu           sync.Mutex
	batchCalls   int
	manualKeys   []string
	includedIdle bool
}

func (f *fakeOrchestrator) RunBatch(ctx context.Context) (*models.BatchReport, error) {
	f.mu.Lock()
	f.batchCalls++
	f.mu.Unlock()
	return f.batchReport, f.batchErr
}

func (f *fakeOrchestrator) TriggerManual(ctx context.Context, key string) (*models.GameSyncReport, error) {
	f.mu.Lock()
	f.manualKeys = append(f.manualKeys, key)
	f.mu.Unlock()
	return f.manualReport, f.manualErr
}

func (f *fakeOrchestrator) Schedule(ctx context.Context, includeIdle bool) ([]models.SyncSchedule, error) {
	f.includedIdle = includeIdle
	return f.schedule, f.scheduleErr
}

type fakeBudget struct {
	status models.BudgetStatus
	err    error
}

func (f *fakeBudget) Status(ctx context.Context) (models.BudgetStatus, error) { return f.status, f.err }

type fakeStore struct {
	mu      sync.Mutex
	games   map[string]*models.Game
	runs    map[string][]models.SyncRun
	pingErr error
	listErr error
}

func newFakeStore(games ...*models.Game) *fakeStore {
	s := &fakeStore{games: map[string]*models.Game{}, runs: map[string][]models.SyncRun{}}
	for _, g := range games {
		s.games[g.Key] = g
	}
	return s
}

func (s *fakeStore) ListGames(ctx context.Context) ([]*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]*models.Game, 0, len(s.games))
	for _, g := range s.games {
		out = append(out, g)
	}
	return out, nil
}

func (s *fakeStore) GetGame(ctx context.Context, key string) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[key]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", key, models.ErrGameNotFound)
	}
	cp := *g
	return &cp, nil
}

func (s *fakeStore) UpsertGame(ctx context.Context, g *models.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *g
	s.games[g.Key] = &cp
	return nil
}

func (s *fakeStore) SetActive(ctx context.Context, key string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[key]
	if !ok {
		return models.ErrGameNotFound
	}
	g.IsActive = active
	return nil
}

func (s *fakeStore) RecentRuns(ctx context.Context, key string, limit int) ([]models.SyncRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	runs := s.runs[key]
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (s *fakeStore) Ping(ctx context.Context) error { return s.pingErr }

type testEnv struct {
	orch   *fakeOrchestrator
	budget *fakeBudget
	store  *fakeStore
	jwt    *auth.JWTManager
	server http.Handler
}

func newTestEnv(t *testing.T, opts ...HandlerOption) *testEnv {
	t.Helper()
	jwtManager, err := auth.NewJWTManager(&config.SecurityConfig{JWTSecret: testJWTSecret})
	if err != nil {
		t.Fatal(err)
	}
	enforcer, err := authz.NewEnforcer(authz.EnforcerConfig{})
	if err != nil {
		t.Fatal(err)
	}

	env := &testEnv{
		orch:   &fakeOrchestrator{},
		budget: &fakeBudget{},
		store:  newFakeStore(),
		jwt:    jwtManager,
	}
	handler := NewHandler(env.orch, env.budget, env.store, opts...)
	mw := NewChiMiddleware(&ChiMiddlewareConfig{RateLimitDisabled: true})
	env.server = NewRouter(handler, mw, testCronSecret, jwtManager, enforcer).SetupChi()
	return env
}

func (e *testEnv) token(t *testing.T, role string) string {
	t.Helper()
	tok, err := e.jwt.GenerateToken("tester", role)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, bearer string, body io.Reader) (*httptest.ResponseRecorder, models.APIResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)

	var resp models.APIResponse
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v\n%s", err, rec.Body.String())
		}
	}
	return rec, resp
}

// decodeData re-decodes resp.Data into dst.
func decodeData(t *testing.T, resp models.APIResponse, dst interface{}) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		t.Fatal(err)
	}
}

func TestRunScheduledSyncCompleted(t *testing.T) {
	env := newTestEnv(t)
	env.orch.batchReport = &models.BatchReport{
		RunID:           "run-1",
		Status:          models.BatchCompleted,
		Success:         false,
		Succeeded:       1,
		Skipped:         1,
		Failed:          1,
		RemainingBudget: 3,
		Results: []models.GameSyncResult{
			{GameKey: "a", Success: true},
			{GameKey: "b", Skipped: true, Error: "insufficient budget (need 102, have 7)"},
			{GameKey: "c", Error: "upstream 502"},
		},
	}

	rec, resp := env.do(t, http.MethodPost, "/api/v1/sync/run", testCronSecret, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var report models.BatchReport
	decodeData(t, resp, &report)
	if report.RunID != "run-1" || len(report.Results) != 3 || report.RemainingBudget != 3 {
		t.Errorf("report = %+v", report)
	}
	if report.Success {
		t.Error("success flag should pass through as false")
	}
}

func TestRunScheduledSyncBudgetExhaustedIs200(t *testing.T) {
	env := newTestEnv(t)
	env.orch.batchReport = &models.BatchReport{RunID: "r", Status: models.BatchBudgetExhausted}
	rec, resp := env.do(t, http.MethodPost, "/api/v1/sync/run", testCronSecret, nil)
	if rec.Code != http.StatusOK || resp.Status != "success" {
		t.Errorf("status = %d envelope = %q", rec.Code, resp.Status)
	}
}

func TestRunScheduledSyncCrashed(t *testing.T) {
	env := newTestEnv(t)
	env.orch.batchReport = &models.BatchReport{RunID: "r9", Status: models.BatchCrashed, Error: "boom", DurationMS: 12}

	rec, resp := env.do(t, http.MethodPost, "/api/v1/sync/run", testCronSecret, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != "BATCH_CRASHED" {
		t.Fatalf("error = %+v", resp.Error)
	}
	var report models.BatchReport
	decodeData(t, resp, &report)
	if report.RunID != "r9" || report.DurationMS != 12 {
		t.Errorf("crashed report not returned: %+v", report)
	}
}

func TestRunScheduledSyncInProgress(t *testing.T) {
	env := newTestEnv(t)
	env.orch.batchErr = lsync.ErrBatchInProgress
	rec, resp := env.do(t, http.MethodPost, "/api/v1/sync/run", testCronSecret, nil)
	if rec.Code != http.StatusConflict || resp.Error == nil || resp.Error.Code != "SYNC_IN_PROGRESS" {
		t.Errorf("status = %d error = %+v", rec.Code, resp.Error)
	}
}

func TestRunScheduledSyncRejectsBadSecretBeforeScheduling(t *testing.T) {
	env := newTestEnv(t)
	rec, _ := env.do(t, http.MethodPost, "/api/v1/sync/run", "wrong-secret", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d", rec.Code)
	}

	// An operator JWT is not the shared secret.
	rec, _ = env.do(t, http.MethodPost, "/api/v1/sync/run", env.token(t, "admin"), nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("jwt status = %d", rec.Code)
	}
	if env.orch.batchCalls != 0 {
		t.Errorf("RunBatch called %d times", env.orch.batchCalls)
	}
}

func TestTriggerGameSync(t *testing.T) {
	env := newTestEnv(t)
	env.orch.manualReport = &models.GameSyncReport{
		RunID:           "m1",
		Trigger:         models.TriggerManual,
		Result:          models.GameSyncResult{GameKey: "nfl-2026", Success: true, UsersSynced: 5},
		Succeeded:       1,
		RemainingBudget: 95,
	}

	rec, resp := env.do(t, http.MethodPost, "/api/v1/games/nfl-2026/sync", env.token(t, "operator"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var report models.GameSyncReport
	decodeData(t, resp, &report)
	if report.RemainingBudget != 95 || !report.Result.Success {
		t.Errorf("report = %+v", report)
	}
	if len(env.orch.manualKeys) != 1 || env.orch.manualKeys[0] != "nfl-2026" {
		t.Errorf("manual keys = %v", env.orch.manualKeys)
	}
}

func TestTriggerGameSyncErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"not found", fmt.Errorf("load game x: %w", lsync.ErrGameNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"in progress", lsync.ErrBatchInProgress, http.StatusConflict, "SYNC_IN_PROGRESS"},
		{"cooldown", &lsync.CooldownError{GameKey: "g", Remaining: 150 * time.Second}, http.StatusTooManyRequests, "COOLDOWN_ACTIVE"},
		{"unexpected", errors.New("panic during manual sync"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.orch.manualErr = tt.err

			rec, resp := env.do(t, http.MethodPost, "/api/v1/games/g/sync", env.token(t, "admin"), nil)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if resp.Error == nil || resp.Error.Code != tt.wantErr {
				t.Fatalf("error = %+v", resp.Error)
			}
		})
	}
}

func TestTriggerGameSyncCooldownDetails(t *testing.T) {
	env := newTestEnv(t)
	env.orch.manualErr = &lsync.CooldownError{GameKey: "g", Remaining: 150 * time.Second}

	rec, resp := env.do(t, http.MethodPost, "/api/v1/games/g/sync", env.token(t, "operator"), nil)
	if got := rec.Header().Get("Retry-After"); got != "180" {
		t.Errorf("Retry-After = %q, want 180", got)
	}
	if v, ok := resp.Error.Details["retry_after_minutes"].(float64); !ok || v != 3 {
		t.Errorf("details = %v", resp.Error.Details)
	}
	if !strings.Contains(resp.Error.Message, "3 minutes") {
		t.Errorf("message = %q", resp.Error.Message)
	}
}

func TestTriggerGameSyncAuthorization(t *testing.T) {
	env := newTestEnv(t)
	env.orch.manualReport = &models.GameSyncReport{}

	rec, _ := env.do(t, http.MethodPost, "/api/v1/games/g/sync", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d", rec.Code)
	}
	rec, resp := env.do(t, http.MethodPost, "/api/v1/games/g/sync", env.token(t, "viewer"), nil)
	if rec.Code != http.StatusForbidden || resp.Error.Code != "FORBIDDEN" {
		t.Errorf("viewer status = %d", rec.Code)
	}
	rec, _ = env.do(t, http.MethodPost, "/api/v1/games/g/sync", testCronSecret, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("cron secret status = %d", rec.Code)
	}
	if len(env.orch.manualKeys) != 0 {
		t.Errorf("TriggerManual reached: %v", env.orch.manualKeys)
	}
}

func TestTriggerGameSyncRejectsBadKey(t *testing.T) {
	env := newTestEnv(t)
	rec, resp := env.do(t, http.MethodPost, "/api/v1/games/-bad/sync", env.token(t, "operator"), nil)
	if rec.Code != http.StatusBadRequest || resp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("status = %d error = %+v", rec.Code, resp.Error)
	}
}

func TestTriggerGameSyncCrashedReturnsReport(t *testing.T) {
	env := newTestEnv(t)
	env.orch.manualReport = &models.GameSyncReport{
		RunID:           "m7",
		Trigger:         models.TriggerManual,
		Result:          models.GameSyncResult{GameKey: "nfl-2026", Error: "worker decoder blew up"},
		Failed:          1,
		RemainingBudget: 80,
	}
	env.orch.manualErr = fmt.Errorf("%w: worker decoder blew up", lsync.ErrSyncCrashed)

	rec, resp := env.do(t, http.MethodPost, "/api/v1/games/nfl-2026/sync", env.token(t, "operator"), nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != "SYNC_CRASHED" {
		t.Fatalf("error = %+v", resp.Error)
	}
	var report models.GameSyncReport
	decodeData(t, resp, &report)
	if report.RunID != "m7" || report.Failed != 1 || report.RemainingBudget != 80 {
		t.Errorf("crashed report not returned: %+v", report)
	}
}
