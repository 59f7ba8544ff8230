// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/leaguesync/internal/logging"
	"github.com/tomtom215/leaguesync/internal/models"
)

type contextKey string

// ClaimsContextKey holds *Claims once RequireJWT has accepted a request.
const ClaimsContextKey contextKey = "claims"

// CronSecretHeader is the alternative to a bearer header for the timer path.
const CronSecretHeader = "X-Cron-Secret"

// ClaimsFromContext returns the authenticated operator, or nil.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(ClaimsContextKey).(*Claims)
	return claims
}

// WithClaims stores claims in ctx.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ClaimsContextKey, claims)
}

// RequireSharedSecret admits requests that present secret.
func RequireSharedSecret(secret string) func(http.Handler) http.Handler {
	expected := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := r.Header.Get(CronSecretHeader)
			if presented == "" {
				presented, _ = bearerToken(r)
			}
			if len(expected) == 0 || presented == "" ||
				subtle.ConstantTimeCompare([]byte(presented), expected) != 1 {
				logging.Ctx(r.Context()).Warn().Str("path", r.URL.Path).Msg("Rejected timer trigger: bad shared secret")
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or missing shared secret")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireJWT admits requests carrying a valid operator token.
func RequireJWT(m *JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
				return
			}
			claims, err := m.ValidateToken(token)
			if err != nil {
				logging.Ctx(r.Context()).Warn().Err(err).Msg("Token validation failed")
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// WriteError writes the standard error envelope. authz uses it too so that
// rejections look the same as handler errors.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	body, err := json.Marshal(&models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error:    &models.APIError{Code: code, Message: message},
	})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logging.Error().Err(err).Msg("Failed to write auth error response")
	}
}
