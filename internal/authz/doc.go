// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

// Package authz maps operator roles to permissions with Casbin RBAC.
//
// Objects are the resource groups exposed over HTTP (games, schedule,
// budget, runs) and actions are "read", "write" or "trigger". The embedded
// policy gives viewers read access and operators manual triggers. Admins
// additionally write game registrations.
// Role inheritance is expressed with g rules, so operator implies viewer.
package authz
