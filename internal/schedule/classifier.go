// LeagueSync - Budget-Aware Fantasy League Sync Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/leaguesync

package schedule

import (
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/leaguesync/internal/models"
)

// Windows holds the widths of the three critical windows.
type Windows struct {
	// RoundStart is how far ahead of a round start the game turns critical.
	RoundStart time.Duration
	// TradeDeadline is how far ahead of a trade deadline the game turns critical.
	TradeDeadline time.Duration
	// RoundEnded is how long after a round ends the game stays critical.
	RoundEnded time.Duration
}

// DefaultWindows returns 120/120/60 minutes.
func DefaultWindows() Windows {
	return Windows{
		RoundStart:    120 * time.Minute,
		TradeDeadline: 120 * time.Minute,
		RoundEnded:    60 * time.Minute,
	}
}

// Classification is the result of Classify.
type Classification struct {
	Priority       models.Priority
	Reason         string
	CriticalPeriod *models.CriticalPeriod
}

// Classify assigns a priority tier to g at instant now.
//
// Inactive games are always idle. Otherwise the first match wins: critical
// when a critical window is open, overdue when the next sync time has passed,
// routine otherwise.
func Classify(g *models.Game, now time.Time, w Windows) Classification {
	if !g.IsActive {
		return Classification{Priority: models.PriorityIdle, Reason: "Game is inactive"}
	}

	if cp := DetectCriticalPeriod(g, now, w); cp != nil {
		return Classification{Priority: models.PriorityCritical, Reason: cp.Label, CriticalPeriod: cp}
	}

	until := minutesUntilSync(g, now)
	if until <= 0 {
		return Classification{
			Priority: models.PriorityOverdue,
			Reason:   fmt.Sprintf("Overdue by %d min", roundMinutes(math.Abs(until))),
		}
	}
	return Classification{
		Priority: models.PriorityRoutine,
		Reason:   fmt.Sprintf("Next sync in %d min", roundMinutes(until)),
	}
}

// DetectCriticalPeriod checks the round-start, trade-deadline and
// round-ended windows in that order and returns the first match, or nil.
//
// A game in its terminal phase (last round played) never has a critical
// window. Its routine schedule still applies while it stays active.
func DetectCriticalPeriod(g *models.Game, now time.Time, w Windows) *models.CriticalPeriod {
	if g.IsTerminal() {
		return nil
	}

	if g.RoundStart != nil {
		m := g.RoundStart.Sub(now).Minutes()
		if m > 0 && m <= w.RoundStart.Minutes() {
			return &models.CriticalPeriod{
				Type:           models.CriticalRoundStarting,
				Label:          fmt.Sprintf("round %d starting in %d min", upcomingRound(g), roundMinutes(m)),
				EventTime:      *g.RoundStart,
				MinutesToEvent: m,
			}
		}
	}

	if g.TradeDeadline != nil {
		m := g.TradeDeadline.Sub(now).Minutes()
		if m > 0 && m <= w.TradeDeadline.Minutes() {
			return &models.CriticalPeriod{
				Type:           models.CriticalTradeDeadline,
				Label:          fmt.Sprintf("trade deadline in %d min", roundMinutes(m)),
				EventTime:      *g.TradeDeadline,
				MinutesToEvent: m,
			}
		}
	}

	if g.RoundEnd != nil && g.RoundState.IsEnded() {
		since := now.Sub(*g.RoundEnd).Minutes()
		if since >= 0 && since <= w.RoundEnded.Minutes() {
			return &models.CriticalPeriod{
				Type:           models.CriticalRoundEnded,
				Label:          fmt.Sprintf("round ended %d min ago", roundMinutes(since)),
				EventTime:      *g.RoundEnd,
				MinutesToEvent: -since,
			}
		}
	}

	return nil
}

// NextSyncAt is last sync plus interval, or now for a game that never synced.
func NextSyncAt(g *models.Game, now time.Time) time.Time {
	if g.LastSyncedAt == nil {
		return now
	}
	return g.LastSyncedAt.Add(g.SyncInterval())
}

func minutesUntilSync(g *models.Game, now time.Time) float64 {
	return NextSyncAt(g, now).Sub(now).Minutes()
}

// upcomingRound is the round a future RoundStart belongs to. Once the current
// round has ended the next start is for the following round.
func upcomingRound(g *models.Game) int {
	if g.RoundState.IsEnded() {
		return g.CurrentRound + 1
	}
	return g.CurrentRound
}

// roundMinutes is for display only; comparisons use the raw value.
func roundMinutes(m float64) int {
	return int(math.Round(m))
}
