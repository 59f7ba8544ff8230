// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

// Package middleware holds chi-compatible HTTP middleware shared by every
// route: request IDs tied into the logging context, Prometheus request
// timing keyed by route pattern, access logging and API security headers.
package middleware
