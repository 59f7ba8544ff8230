// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

/*
Package auth guards the two trigger paths.

The timer-driven batch endpoint is called by an external cron with a shared
secret, sent either as "Authorization: Bearer <secret>" or in the
X-Cron-Secret header. Comparison is constant time.

The manual single-game endpoint and the read endpoints take an HS256 JWT
whose claims carry the operator's role. RequireJWT stores the claims in the
request context; authz then maps the role to a permission.

Both middlewares reject the request before any scheduling code runs.
*/
package auth
