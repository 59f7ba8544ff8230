// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package authz

import (
	"net/http"

	"github.com/tomtom215/leaguesync/internal/auth"
	"github.com/tomtom215/leaguesync/internal/logging"
	"github.com/tomtom215/leaguesync/internal/metrics"
)

// RequirePermission lets the request through when the authenticated
// operator's role grants action on object. It must run after auth.RequireJWT.
func RequirePermission(e *Enforcer, object, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := auth.ClaimsFromContext(r.Context())
			if claims == nil {
				auth.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "no authentication context")
				return
			}

			allowed, err := e.Enforce(claims.Role, object, action)
			if err != nil {
				logging.Ctx(r.Context()).Error().Err(err).Str("role", claims.Role).Msg("Authorization error")
				auth.WriteError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
				return
			}
			metrics.RecordAuthzDecision(object, action, allowed)
			if !allowed {
				logging.Ctx(r.Context()).Warn().
					Str("user", claims.Username).
					Str("role", claims.Role).
					Str("object", object).
					Str("action", action).
					Msg("Permission denied")
				auth.WriteError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
