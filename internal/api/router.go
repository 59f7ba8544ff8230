// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/leaguesync/internal/auth"
	"github.com/tomtom215/leaguesync/internal/authz"
	"github.com/tomtom215/leaguesync/internal/middleware"
)

// Router wires handlers to routes with their auth and rate limits.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	cronSecret    string
	jwtManager    *auth.JWTManager
	enforcer      *authz.Enforcer
}

func NewRouter(handler *Handler, mw *ChiMiddleware, cronSecret string, jwtManager *auth.JWTManager, enforcer *authz.Enforcer) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: mw,
		cronSecret:    cronSecret,
		jwtManager:    jwtManager,
		enforcer:      enforcer,
	}
}

// SetupChi builds the route tree.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.AccessLog)
	r.Use(router.chiMiddleware.CORS())

	r.Get("/health", router.handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	h := router.handler
	perm := func(object, action string) func(http.Handler) http.Handler {
		return authz.RequirePermission(router.enforcer, object, action)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.APISecurityHeaders)
		r.Use(middleware.PrometheusMetrics)

		// Timer path: shared secret only.
		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitTrigger())
			r.Use(auth.RequireSharedSecret(router.cronSecret))
			r.Post("/sync/run", h.RunScheduledSync)
		})

		// Operator paths: bearer JWT, then a casbin permission per route.
		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Use(auth.RequireJWT(router.jwtManager))

			r.With(router.chiMiddleware.RateLimitTrigger(), perm(authz.ObjectGames, authz.ActionTrigger)).
				Post("/games/{gameKey}/sync", h.TriggerGameSync)

			r.With(perm(authz.ObjectGames, authz.ActionRead)).Get("/games", h.ListGames)
			r.With(perm(authz.ObjectGames, authz.ActionWrite)).Put("/games/{gameKey}", h.PutGame)
			r.With(perm(authz.ObjectGames, authz.ActionWrite)).Put("/games/{gameKey}/active", h.SetGameActive)
			r.With(perm(authz.ObjectRuns, authz.ActionRead)).Get("/games/{gameKey}/runs", h.GetGameRuns)
			r.With(perm(authz.ObjectSchedule, authz.ActionRead)).Get("/schedule", h.GetSchedule)
			r.With(perm(authz.ObjectBudget, authz.ActionRead)).Get("/budget", h.GetBudget)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	return r
}
