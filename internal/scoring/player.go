package scoring

import (
	"strings"

	"github.com/google/uuid"
)

// PlayerID identifies a player for the lifetime of a session.
type PlayerID string

// NewPlayerID returns a fresh random player id.
func NewPlayerID() PlayerID {
	return PlayerID(uuid.NewString())
}

// Player is a roster entry and its running total.
type Player struct {
	ID         PlayerID `json:"id"`
	Name       string   `json:"name"`
	Total      int      `json:"total"`
	Eliminated bool     `json:"eliminated"`
}

// NewPlayer creates a player with a zero total. The name is trimmed.
func NewPlayer(name string) Player {
	return Player{
		ID:   NewPlayerID(),
		Name: strings.TrimSpace(name),
	}
}

// HandSum is one player's reported hand sum for a round.
type HandSum struct {
	PlayerID PlayerID `json:"playerId"`
	Sum      int      `json:"sum"`
}

// RoundInput is what the table reports at the end of a round.
// Sums are kept in roster order; tie-breaks depend on it.
type RoundInput struct {
	CallerID PlayerID  `json:"yanivCallerId"`
	Sums     []HandSum `json:"sums"`
}

// SumOf returns the reported sum for id.
func (in RoundInput) SumOf(id PlayerID) (int, bool) {
	for _, hs := range in.Sums {
		if hs.PlayerID == id {
			return hs.Sum, true
		}
	}
	return 0, false
}

// Clone returns a deep copy of the input.
func (in RoundInput) Clone() RoundInput {
	out := RoundInput{CallerID: in.CallerID}
	if in.Sums != nil {
		out.Sums = make([]HandSum, len(in.Sums))
		copy(out.Sums, in.Sums)
	}
	return out
}

// RoundOutcome is the scored result of a RoundInput.
type RoundOutcome struct {
	Penalties map[PlayerID]int `json:"penalties"`
	// AsafBy is empty when the call stood. It equals CallerID when the
	// caller tied for the lowest sum and lost the call on the tie.
	AsafBy   PlayerID `json:"asafBy,omitempty"`
	CallerID PlayerID `json:"callerId"`
}

// HasAsaf reports whether the call was reversed.
func (o RoundOutcome) HasAsaf() bool {
	return o.AsafBy != ""
}

// SelfTie reports whether the caller lost on a tie at the lowest sum.
func (o RoundOutcome) SelfTie() bool {
	return o.AsafBy != "" && o.AsafBy == o.CallerID
}

// Clone returns a deep copy of the outcome.
func (o RoundOutcome) Clone() RoundOutcome {
	out := RoundOutcome{AsafBy: o.AsafBy, CallerID: o.CallerID}
	if o.Penalties != nil {
		out.Penalties = make(map[PlayerID]int, len(o.Penalties))
		for id, p := range o.Penalties {
			out.Penalties[id] = p
		}
	}
	return out
}
