// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

// Command leaguesyncctl is the operator CLI. It opens the same storage as the
// server, so run it while the server is stopped, or point it at its own
// DUCKDB_PATH and BUDGET_STORE_PATH.
//
//	leaguesyncctl token issue --user ops --role operator
//	leaguesyncctl batch run
//	leaguesyncctl games import games.json
//	leaguesyncctl games sync epl-2026
//	leaguesyncctl schedule --include-idle
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/tomtom215/leaguesync/internal/config"
	"github.com/tomtom215/leaguesync/internal/logging"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	env := &environment{out: os.Stdout}

	cliApp := &cli.App{
		Name:    "leaguesyncctl",
		Usage:   "operate a LeagueSync deployment",
		Version: Version,
		Before: func(_ *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			logging.Init(logging.Config{
				Level:     cfg.Logging.Level,
				Format:    cfg.Logging.Format,
				Caller:    cfg.Logging.Caller,
				Timestamp: true,
				Output:    os.Stderr,
			})
			env.cfg = cfg
			return nil
		},
		Commands: []*cli.Command{
			env.tokenCommand(),
			env.batchCommand(),
			env.gamesCommand(),
			env.scheduleCommand(),
			env.budgetCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "leaguesyncctl:", err)
		os.Exit(1)
	}
}
