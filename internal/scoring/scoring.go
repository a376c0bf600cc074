package scoring

import (
	"errors"
	"fmt"
	"sort"
)

const (
	// FailedCallPenalty is added to the caller's own sum when the call fails.
	FailedCallPenalty = 30
	// EliminationThreshold is the highest total a player can survive with.
	EliminationThreshold = 100
	// MaxPlayers caps the roster size.
	MaxPlayers = 16
)

// milestones reset a running total to zero when hit exactly.
var milestones = map[int]bool{50: true, 100: true}

// ErrInvalidInput is returned when a round cannot be scored as reported.
var ErrInvalidInput = errors.New("invalid round input")

// ScoreRound converts the reported hand sums of a round into penalties.
//
// The caller wins the round (penalty 0) only when holding the strictly lowest
// sum. When a non-caller holds a qualifying lower sum, the call is reversed
// ("Asaf"): the caller pays FailedCallPenalty plus their own sum and the
// lowest such player pays nothing. A sum equal to the caller's qualifies only
// when asafOnTie is set.
//
// When the caller shares the lowest sum with another player the call fails
// as well. With asafOnTie the first tied opponent is credited with the Asaf;
// without it AsafBy is the caller itself and nobody else is rewarded.
//
// asafOnTie only matters when the caller ties for the lowest sum: it moves
// the Asaf credit from the caller to the first tied opponent. Every other
// outcome is the same under both settings.
//
// Candidates are scanned in slice order, so the first of several equal
// candidates wins. Every sum must carry a non-empty player id.
func ScoreRound(sums []HandSum, callerID PlayerID, asafOnTie bool) (RoundOutcome, error) {
	if err := validateSums(sums, callerID); err != nil {
		return RoundOutcome{}, err
	}

	callerSum, _ := RoundInput{Sums: sums}.SumOf(callerID)
	lowest := callerSum
	for _, hs := range sums {
		if hs.Sum < lowest {
			lowest = hs.Sum
		}
	}

	qualifies := func(sum int) bool {
		if asafOnTie {
			return sum <= callerSum
		}
		return sum < callerSum
	}

	var asafBy PlayerID
	reversed := false
	best := 0
	for _, hs := range sums {
		if hs.PlayerID == callerID || !qualifies(hs.Sum) {
			continue
		}
		if !reversed || hs.Sum < best {
			asafBy = hs.PlayerID
			best = hs.Sum
			reversed = true
		}
	}

	if !reversed && callerSum == lowest && tiedAtLowest(sums, callerID, lowest) {
		asafBy = callerID
		reversed = true
	}

	penalties := make(map[PlayerID]int, len(sums))
	for _, hs := range sums {
		switch {
		case hs.PlayerID == callerID && reversed:
			penalties[hs.PlayerID] = FailedCallPenalty + hs.Sum
		case hs.PlayerID == callerID:
			penalties[hs.PlayerID] = 0
		case reversed && hs.PlayerID == asafBy:
			penalties[hs.PlayerID] = 0
		default:
			penalties[hs.PlayerID] = hs.Sum
		}
	}

	return RoundOutcome{
		Penalties: penalties,
		AsafBy:    asafBy,
		CallerID:  callerID,
	}, nil
}

func validateSums(sums []HandSum, callerID PlayerID) error {
	if len(sums) == 0 {
		return fmt.Errorf("%w: no hand sums reported", ErrInvalidInput)
	}
	seen := make(map[PlayerID]bool, len(sums))
	for _, hs := range sums {
		if hs.PlayerID == "" {
			return fmt.Errorf("%w: hand sum without a player id", ErrInvalidInput)
		}
		if seen[hs.PlayerID] {
			return fmt.Errorf("%w: duplicate sum for player %s", ErrInvalidInput, hs.PlayerID)
		}
		seen[hs.PlayerID] = true
		if hs.Sum < 0 {
			return fmt.Errorf("%w: negative sum %d for player %s", ErrInvalidInput, hs.Sum, hs.PlayerID)
		}
	}
	if !seen[callerID] {
		return fmt.Errorf("%w: caller %q has no reported sum", ErrInvalidInput, callerID)
	}
	return nil
}

func tiedAtLowest(sums []HandSum, callerID PlayerID, lowest int) bool {
	for _, hs := range sums {
		if hs.PlayerID != callerID && hs.Sum == lowest {
			return true
		}
	}
	return false
}

// ApplyOutcome adds penalties to every player still in the game.
// A total landing exactly on a milestone resets to zero; a total above
// EliminationThreshold eliminates the player and is kept as is.
// Eliminated players are returned unchanged. The input slice is not modified.
func ApplyOutcome(players []Player, penalties map[PlayerID]int) ([]Player, []PlayerID) {
	next := make([]Player, len(players))
	var eliminated []PlayerID

	for i, p := range players {
		next[i] = p
		if p.Eliminated {
			continue
		}

		total := p.Total + penalties[p.ID]
		if milestones[total] {
			total = 0
		}
		if total > EliminationThreshold {
			next[i].Eliminated = true
			eliminated = append(eliminated, p.ID)
		}
		next[i].Total = total
	}

	return next, eliminated
}

// ActivePlayers returns the players that are not eliminated, in roster order.
func ActivePlayers(players []Player) []Player {
	active := make([]Player, 0, len(players))
	for _, p := range players {
		if !p.Eliminated {
			active = append(active, p)
		}
	}
	return active
}

// IsGameOver reports whether at most one player is left.
func IsGameOver(players []Player) bool {
	return len(ActivePlayers(players)) <= 1
}

// Winner returns the last player standing. There is no winner when every
// player was eliminated, e.g. several in the same round.
func Winner(players []Player) (Player, bool) {
	active := ActivePlayers(players)
	if len(active) != 1 {
		return Player{}, false
	}
	return active[0], true
}

// Standings orders players for a final table: players still in the game
// first, then by ascending total. Equal entries keep roster order.
func Standings(players []Player) []Player {
	out := make([]Player, len(players))
	copy(out, players)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Eliminated != out[j].Eliminated {
			return !out[i].Eliminated
		}
		return out[i].Total < out[j].Total
	})
	return out
}
