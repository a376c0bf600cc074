package state

import (
	"fmt"
	"strings"

	"yaniv/internal/scoring"
)

// ActivePlayers returns the players still in the game, in roster order.
func (s *State) ActivePlayers() []scoring.Player {
	return scoring.ActivePlayers(s.Players)
}

// FindPlayer returns the roster index of id, or -1.
func (s *State) FindPlayer(id scoring.PlayerID) int {
	for i, p := range s.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// AddPlayer appends a player to the roster. Roster changes during a round are
// the host's business; the state does not block them.
func (s *State) AddPlayer(name string) (scoring.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return scoring.Player{}, fmt.Errorf("%w: empty player name", ErrPreconditionNotMet)
	}
	if len(s.Players) >= scoring.MaxPlayers {
		return scoring.Player{}, fmt.Errorf("%w: roster is full (%d players)", ErrPreconditionNotMet, scoring.MaxPlayers)
	}

	p := scoring.NewPlayer(name)
	s.Players = append(s.Players, p)
	return p, nil
}

// RemovePlayer drops a player from the roster. History is left as recorded.
// When the removal leaves a started game with at most one active player, the
// game ends and any round in progress is dropped.
func (s *State) RemovePlayer(id scoring.PlayerID) error {
	i := s.FindPlayer(id)
	if i < 0 {
		return fmt.Errorf("%w: unknown player %s", ErrPreconditionNotMet, id)
	}
	s.Players = append(s.Players[:i:i], s.Players[i+1:]...)
	if s.IsGameOver() && s.Current() != GameOver {
		s.clearRound()
		s.FSM.SetState(GameOver)
	}
	return nil
}

// UpdatePlayerName renames a player.
func (s *State) UpdatePlayerName(id scoring.PlayerID, name string) error {
	name = strings.TrimSpace(name)
	i := s.FindPlayer(id)
	if i < 0 || name == "" {
		return fmt.Errorf("%w: cannot rename %s to %q", ErrPreconditionNotMet, id, name)
	}
	s.Players[i].Name = name
	return nil
}

// ReorderPlayers moves the player at index from to index to.
func (s *State) ReorderPlayers(from, to int) error {
	n := len(s.Players)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d to %d out of range", ErrPreconditionNotMet, from, to)
	}
	if from == to {
		return nil
	}

	moved := s.Players[from]
	rest := append(s.Players[:from:from], s.Players[from+1:]...)
	reordered := make([]scoring.Player, 0, n)
	reordered = append(reordered, rest[:to]...)
	reordered = append(reordered, moved)
	reordered = append(reordered, rest[to:]...)
	s.Players = reordered
	return nil
}

func (s *State) freshInput() scoring.RoundInput {
	active := s.ActivePlayers()
	input := scoring.RoundInput{Sums: make([]scoring.HandSum, len(active))}
	for i, p := range active {
		input.Sums[i] = scoring.HandSum{PlayerID: p.ID}
	}
	if len(active) > 0 {
		input.CallerID = active[0].ID
	}
	return input
}

// orderInput checks that input covers exactly the active players and returns
// it with sums in roster order.
func (s *State) orderInput(input scoring.RoundInput) (scoring.RoundInput, error) {
	reported := make(map[scoring.PlayerID]int, len(input.Sums))
	for _, hs := range input.Sums {
		if _, dup := reported[hs.PlayerID]; dup {
			return scoring.RoundInput{}, fmt.Errorf("%w: duplicate sum for player %s", scoring.ErrInvalidInput, hs.PlayerID)
		}
		reported[hs.PlayerID] = hs.Sum
	}

	active := s.ActivePlayers()
	ordered := scoring.RoundInput{
		CallerID: input.CallerID,
		Sums:     make([]scoring.HandSum, 0, len(active)),
	}
	callerActive := false
	for _, p := range active {
		sum, ok := reported[p.ID]
		if !ok {
			return scoring.RoundInput{}, fmt.Errorf("%w: no sum for %s", scoring.ErrInvalidInput, p.Name)
		}
		ordered.Sums = append(ordered.Sums, scoring.HandSum{PlayerID: p.ID, Sum: sum})
		delete(reported, p.ID)
		if p.ID == input.CallerID {
			callerActive = true
		}
	}
	if len(reported) > 0 {
		return scoring.RoundInput{}, fmt.Errorf("%w: %d sums reported for players not in the game", scoring.ErrInvalidInput, len(reported))
	}
	if !callerActive {
		return scoring.RoundInput{}, fmt.Errorf("%w: caller %q is not an active player", scoring.ErrInvalidInput, input.CallerID)
	}
	return ordered, nil
}
