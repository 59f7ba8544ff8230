// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v2"

	"github.com/tomtom215/leaguesync/internal/app"
	"github.com/tomtom215/leaguesync/internal/auth"
	"github.com/tomtom215/leaguesync/internal/config"
	"github.com/tomtom215/leaguesync/internal/models"
)

// environment carries the loaded config between the Before hook and actions.
type environment struct {
	cfg *config.Config
	out io.Writer
}

// withCore opens the sync core for the duration of fn.
func (e *environment) withCore(fn func(*app.App) error) error {
	core, err := app.New(e.cfg)
	if err != nil {
		return err
	}
	runErr := fn(core)
	if closeErr := core.Close(); closeErr != nil && runErr == nil {
		return fmt.Errorf("close storage: %w", closeErr)
	}
	return runErr
}

func (e *environment) print(v interface{}) error {
	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (e *environment) tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "API bearer tokens",
		Subcommands: []*cli.Command{
			{
				Name:  "issue",
				Usage: "sign a JWT for the HTTP API",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "user", Required: true, Usage: "token subject"},
					&cli.StringFlag{Name: "role", Value: "viewer", Usage: "viewer, operator or admin"},
					&cli.DurationFlag{Name: "ttl", Usage: "override TOKEN_TTL"},
				},
				Action: func(c *cli.Context) error {
					sec := e.cfg.Security
					if ttl := c.Duration("ttl"); ttl > 0 {
						sec.TokenTTL = ttl
					}
					return issueToken(e.out, &sec, c.String("user"), c.String("role"))
				},
			},
		},
	}
}

func issueToken(w io.Writer, sec *config.SecurityConfig, user, role string) error {
	switch role {
	case "viewer", "operator", "admin":
	default:
		return fmt.Errorf("unknown role %q", role)
	}
	m, err := auth.NewJWTManager(sec)
	if err != nil {
		return err
	}
	token, err := m.GenerateToken(user, role)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, token)
	return err
}

func (e *environment) batchCommand() *cli.Command {
	return &cli.Command{
		Name:  "batch",
		Usage: "scheduled batches",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run one scheduled batch and print its report",
				Action: func(c *cli.Context) error {
					return e.withCore(func(core *app.App) error {
						report, err := core.Orchestrator.RunBatch(c.Context)
						if report != nil {
							if printErr := e.print(report); printErr != nil {
								return printErr
							}
						}
						if err != nil {
							return err
						}
						if report.Status == models.BatchCrashed {
							return cli.Exit("batch crashed: "+report.Error, 2)
						}
						return nil
					})
				},
			},
		},
	}
}

func (e *environment) scheduleCommand() *cli.Command {
	return &cli.Command{
		Name:  "schedule",
		Usage: "print the prioritized sync schedule",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "include-idle", Usage: "include inactive games"},
		},
		Action: func(c *cli.Context) error {
			return e.withCore(func(core *app.App) error {
				items, err := core.Orchestrator.Schedule(c.Context, c.Bool("include-idle"))
				if err != nil {
					return err
				}
				return e.print(items)
			})
		},
	}
}

func (e *environment) budgetCommand() *cli.Command {
	return &cli.Command{
		Name:  "budget",
		Usage: "print today's remaining upstream allowance",
		Action: func(c *cli.Context) error {
			return e.withCore(func(core *app.App) error {
				status, err := core.Budget.Status(c.Context)
				if err != nil {
					return err
				}
				return e.print(status)
			})
		},
	}
}

func (e *environment) gamesCommand() *cli.Command {
	return &cli.Command{
		Name:  "games",
		Usage: "game registry",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "print every registered game",
				Action: func(c *cli.Context) error {
					return e.withCore(func(core *app.App) error {
						games, err := core.DB.ListGames(c.Context)
						if err != nil {
							return err
						}
						return e.print(games)
					})
				},
			},
			{
				Name:      "import",
				Usage:     "register or update games from a JSON array",
				ArgsUsage: "FILE",
				Action: func(c *cli.Context) error {
					path := c.Args().First()
					if path == "" {
						return cli.Exit("import needs a FILE argument", 2)
					}
					games, err := readGamesFile(path)
					if err != nil {
						return err
					}
					return e.withCore(func(core *app.App) error {
						n, err := importGames(c.Context, core.DB, games)
						if err != nil {
							return err
						}
						_, err = fmt.Fprintf(e.out, "imported %d games\n", n)
						return err
					})
				},
			},
			e.setActiveCommand("activate", true),
			e.setActiveCommand("deactivate", false),
			{
				Name:      "sync",
				Usage:     "sync one game now, bypassing priority (cooldown and budget still apply)",
				ArgsUsage: "GAME_KEY",
				Action: func(c *cli.Context) error {
					key := c.Args().First()
					if key == "" {
						return cli.Exit("sync needs a GAME_KEY argument", 2)
					}
					return e.withCore(func(core *app.App) error {
						report, err := core.Orchestrator.TriggerManual(c.Context, key)
						if err != nil {
							return err
						}
						return e.print(report)
					})
				},
			},
			{
				Name:      "runs",
				Usage:     "print recent sync attempts for a game",
				ArgsUsage: "GAME_KEY",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 20},
				},
				Action: func(c *cli.Context) error {
					key := c.Args().First()
					if key == "" {
						return cli.Exit("runs needs a GAME_KEY argument", 2)
					}
					return e.withCore(func(core *app.App) error {
						if _, err := core.DB.GetGame(c.Context, key); err != nil {
							return err
						}
						runs, err := core.DB.RecentRuns(c.Context, key, c.Int("limit"))
						if err != nil {
							return err
						}
						return e.print(runs)
					})
				},
			},
		},
	}
}

func (e *environment) setActiveCommand(name string, active bool) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     name + " a game",
		ArgsUsage: "GAME_KEY",
		Action: func(c *cli.Context) error {
			key := c.Args().First()
			if key == "" {
				return cli.Exit(name+" needs a GAME_KEY argument", 2)
			}
			return e.withCore(func(core *app.App) error {
				ctx, cancel := context.WithTimeout(c.Context, 30*time.Second)
				defer cancel()
				if err := core.DB.SetActive(ctx, key, active); err != nil {
					return err
				}
				_, err := fmt.Fprintf(e.out, "%s active=%t\n", key, active)
				return err
			})
		},
	}
}
