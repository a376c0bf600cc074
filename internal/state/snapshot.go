package state

import (
	"slices"

	"yaniv/internal/scoring"
)

// Snapshot is the persisted part of a session. The round being entered is
// never part of it.
type Snapshot struct {
	Players  []scoring.Player `json:"players"`
	History  History          `json:"history"`
	Settings Settings         `json:"settings"`
}

// Snapshot returns a deep copy of the persistent state.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Players:  slices.Clone(s.Players),
		History:  s.History.clone(),
		Settings: s.Settings,
	}
}

// Resume builds a session from a snapshot. The session starts with no round
// in progress, in the game-over state if the loaded game had already ended.
func Resume(snap Snapshot) *State {
	s := NewState(snap.Settings)
	s.Players = slices.Clone(snap.Players)
	s.History = snap.History.clone()

	if s.IsGameOver() {
		s.FSM.SetState(GameOver)
	}
	return s
}
