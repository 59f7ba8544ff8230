// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

// Package config loads LeagueSync configuration with Koanf v2.
//
// Sources are layered, later layers winning:
//
//  1. Built-in defaults (defaultConfig)
//  2. Optional YAML file ($CONFIG_PATH, ./config.yaml, ./config.yml, /etc/leaguesync/config.yaml)
//  3. Environment variables from an explicit mapping table
//
// Environment variables that are not in the table are ignored, so unrelated
// variables in the container environment never leak into the config tree.
//
// Components never read Config directly from globals. main passes the relevant
// section (or values derived from it) into each constructor.
package config
