package state

import (
	"slices"
	"time"

	"yaniv/internal/scoring"
)

// HistoryEntry records one confirmed round.
type HistoryEntry struct {
	Input   scoring.RoundInput   `json:"input"`
	Outcome scoring.RoundOutcome `json:"outcome"`
	// TotalsBefore holds each player's total before the round; undo restores it.
	TotalsBefore map[scoring.PlayerID]int `json:"totalsBefore,omitempty"`
	// TotalsAfter holds each player's total right after the round.
	TotalsAfter     map[scoring.PlayerID]int `json:"totalsAfter"`
	EliminatedAfter []scoring.PlayerID       `json:"eliminatedAfter"`
	Timestamp       time.Time                `json:"timestamp"`
}

// History is the append-only list of confirmed rounds.
type History []HistoryEntry

// Last returns the most recent round, if any.
func (h History) Last() (HistoryEntry, bool) {
	if len(h) == 0 {
		return HistoryEntry{}, false
	}
	return h[len(h)-1], true
}

// totalsBeforeLast returns the totals to restore when undoing the last round.
// Snapshots written without TotalsBefore fall back to the previous round's
// TotalsAfter, or zero for the first round.
func (h History) totalsBeforeLast() map[scoring.PlayerID]int {
	last, ok := h.Last()
	if !ok {
		return nil
	}
	if last.TotalsBefore != nil {
		return last.TotalsBefore
	}
	before := make(map[scoring.PlayerID]int, len(last.TotalsAfter))
	if len(h) > 1 {
		for id, total := range h[len(h)-2].TotalsAfter {
			before[id] = total
		}
	}
	for id := range last.TotalsAfter {
		if _, ok := before[id]; !ok {
			before[id] = 0
		}
	}
	return before
}

func (e HistoryEntry) clone() HistoryEntry {
	out := HistoryEntry{
		Input:           e.Input.Clone(),
		Outcome:         e.Outcome.Clone(),
		TotalsBefore:    cloneTotals(e.TotalsBefore),
		TotalsAfter:     cloneTotals(e.TotalsAfter),
		EliminatedAfter: slices.Clone(e.EliminatedAfter),
		Timestamp:       e.Timestamp,
	}
	return out
}

func (h History) clone() History {
	if h == nil {
		return nil
	}
	out := make(History, len(h))
	for i, e := range h {
		out[i] = e.clone()
	}
	return out
}

func cloneTotals(m map[scoring.PlayerID]int) map[scoring.PlayerID]int {
	if m == nil {
		return nil
	}
	out := make(map[scoring.PlayerID]int, len(m))
	for id, v := range m {
		out[id] = v
	}
	return out
}

func totalsOf(players []scoring.Player) map[scoring.PlayerID]int {
	totals := make(map[scoring.PlayerID]int, len(players))
	for _, p := range players {
		totals[p.ID] = p.Total
	}
	return totals
}
