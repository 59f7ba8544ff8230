// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package budget

// UpstreamPageSize is the page size of the upstream user listing call.
// The upstream client requests pages of exactly this size, so estimates and
// real spend stay in step.
const UpstreamPageSize = 50

// DefaultUserEstimate is used when neither the game nor the configuration
// gives a user count. It must never be zero, otherwise a game of unknown size
// would be admitted for the two fixed calls only.
const DefaultUserEstimate = 1000

// fixedCallsPerSync covers the game metadata call and the element/roster call.
const fixedCallsPerSync = 2

// EstimateCalls returns 2 + ceil(users / UpstreamPageSize).
// users <= 0 is treated as unknown and replaced by fallback (or
// DefaultUserEstimate when fallback is not positive either).
func EstimateCalls(users, fallback int) int {
	if users <= 0 {
		users = fallback
	}
	if users <= 0 {
		users = DefaultUserEstimate
	}
	pages := (users + UpstreamPageSize - 1) / UpstreamPageSize
	return fixedCallsPerSync + pages
}
