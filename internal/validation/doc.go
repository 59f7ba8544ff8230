// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

// Package validation validates HTTP request structs with go-playground/validator.
//
// A single validator instance is shared process-wide because validator caches
// struct metadata. Failures convert to the API's VALIDATION_ERROR body:
//
//	q := validation.ScheduleQuery{Limit: 20}
//	if verr := validation.ValidateStruct(&q); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    ...
//	}
package validation
