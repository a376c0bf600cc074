package state

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"yaniv/internal/scoring"

	"github.com/looplab/fsm"
)

// States of a game session.
const (
	Lobby       = "lobby"
	RoundEntry  = "roundEntry"
	RoundReview = "roundReview"
	GameOver    = "gameOver"
)

// ErrPreconditionNotMet is returned by commands that do not apply in the
// current state. The state is left untouched.
var ErrPreconditionNotMet = errors.New("precondition not met")

// Settings are the session options. RTL and DarkMode belong to the host.
type Settings struct {
	AsafOnTie   bool `json:"asafOnTie"`
	Persistence bool `json:"persistence"`
	RTL         bool `json:"rtl"`
	DarkMode    bool `json:"darkMode"`
}

// DefaultSettings returns the settings of a fresh install.
func DefaultSettings() Settings {
	return Settings{Persistence: true}
}

// State is a game session: roster, history and the round being entered.
// It has a single writer; callers serialize access.
type State struct {
	Players  []scoring.Player
	History  History
	Settings Settings

	CurrentInput   *scoring.RoundInput
	CurrentOutcome *scoring.RoundOutcome

	FSM *fsm.FSM

	now func() time.Time
}

// NewState returns an empty session in the lobby.
func NewState(settings Settings) *State {
	s := &State{
		Settings: settings,
		now:      time.Now,
	}
	s.FSM = fsm.NewFSM(
		Lobby,
		getStateTransitions(),
		getStateCallbacks(s),
	)
	return s
}

func getStateTransitions() []fsm.EventDesc {
	return fsm.Events{
		{Name: "start", Src: []string{Lobby}, Dst: RoundEntry},
		{Name: "submit", Src: []string{RoundEntry}, Dst: RoundReview},
		{Name: "confirm", Src: []string{RoundReview}, Dst: Lobby},
		{Name: "finish", Src: []string{RoundReview}, Dst: GameOver},

		// Back navigation
		{Name: "edit", Src: []string{RoundReview}, Dst: RoundEntry},
		{Name: "cancel", Src: []string{RoundEntry}, Dst: Lobby},
		{Name: "dismiss", Src: []string{GameOver}, Dst: Lobby},

		{Name: "undo", Src: []string{Lobby, RoundEntry, RoundReview, GameOver}, Dst: Lobby},
		{Name: "reset", Src: []string{Lobby, RoundEntry, RoundReview, GameOver}, Dst: Lobby},
	}
}

func getStateCallbacks(s *State) map[string]fsm.Callback {
	return fsm.Callbacks{
		"before_start": func(_ context.Context, e *fsm.Event) {
			if len(s.ActivePlayers()) < 2 {
				e.Cancel(fmt.Errorf("%w: need at least 2 active players", ErrPreconditionNotMet))
			}
		},
		"before_submit": func(_ context.Context, e *fsm.Event) {
			if len(e.Args) == 0 {
				e.Cancel(fmt.Errorf("%w: no round input", scoring.ErrInvalidInput))
				return
			}
			input, ok := e.Args[0].(scoring.RoundInput)
			if !ok {
				e.Cancel(fmt.Errorf("%w: unexpected argument %T", scoring.ErrInvalidInput, e.Args[0]))
				return
			}
			ordered, err := s.orderInput(input)
			if err != nil {
				e.Cancel(err)
				return
			}
			outcome, err := scoring.ScoreRound(ordered.Sums, ordered.CallerID, s.Settings.AsafOnTie)
			if err != nil {
				e.Cancel(err)
				return
			}
			s.CurrentInput = &ordered
			s.CurrentOutcome = &outcome
		},
		"enter_" + RoundEntry: func(_ context.Context, e *fsm.Event) {
			if e.Event == "start" {
				input := s.freshInput()
				s.CurrentInput = &input
			}
			s.CurrentOutcome = nil
		},
		"enter_" + Lobby: func(_ context.Context, e *fsm.Event) {
			s.clearRound()
		},
		"enter_" + GameOver: func(_ context.Context, e *fsm.Event) {
			s.clearRound()
		},
	}
}

// fire triggers an event. Staying in the same state is not an error, and
// refused transitions are reported as ErrPreconditionNotMet.
func (s *State) fire(ctx context.Context, event string, args ...interface{}) error {
	err := s.FSM.Event(ctx, event, args...)
	if err == nil {
		return nil
	}

	var noTransition fsm.NoTransitionError
	if errors.As(err, &noTransition) && noTransition.Err == nil {
		return nil
	}
	var canceled fsm.CanceledError
	if errors.As(err, &canceled) && canceled.Err != nil {
		return canceled.Err
	}
	var invalid fsm.InvalidEventError
	if errors.As(err, &invalid) {
		return fmt.Errorf("%w: %s not allowed in %s", ErrPreconditionNotMet, event, s.Current())
	}
	return err
}

// Current returns the state tag.
func (s *State) Current() string {
	return s.FSM.Current()
}

// StartRound opens a round with the first active player as caller and every
// sum at zero.
func (s *State) StartRound(ctx context.Context) error {
	return s.fire(ctx, "start")
}

// SubmitRound scores the reported round and holds it for review.
func (s *State) SubmitRound(ctx context.Context, input scoring.RoundInput) error {
	return s.fire(ctx, "submit", input)
}

// ConfirmRound applies the reviewed round to the totals and records it.
func (s *State) ConfirmRound(ctx context.Context) error {
	if s.Current() != RoundReview || s.CurrentInput == nil || s.CurrentOutcome == nil {
		return fmt.Errorf("%w: no round awaiting confirmation", ErrPreconditionNotMet)
	}

	input, outcome := *s.CurrentInput, *s.CurrentOutcome
	before := totalsOf(s.Players)
	next, eliminated := scoring.ApplyOutcome(s.Players, outcome.Penalties)

	event := "confirm"
	if scoring.IsGameOver(next) {
		event = "finish"
	}
	if err := s.fire(ctx, event); err != nil {
		return err
	}

	s.Players = next
	s.History = append(s.History, HistoryEntry{
		Input:           input,
		Outcome:         outcome,
		TotalsBefore:    before,
		TotalsAfter:     totalsOf(next),
		EliminatedAfter: eliminated,
		Timestamp:       s.now(),
	})
	return nil
}

// UndoLastRound removes the last confirmed round and restores the totals
// and eliminations it changed. Any round being entered is dropped.
func (s *State) UndoLastRound(ctx context.Context) error {
	last, ok := s.History.Last()
	if !ok {
		return fmt.Errorf("%w: no rounds to undo", ErrPreconditionNotMet)
	}

	restore := s.History.totalsBeforeLast()
	for i := range s.Players {
		p := &s.Players[i]
		if total, ok := restore[p.ID]; ok {
			p.Total = total
		}
		if slices.Contains(last.EliminatedAfter, p.ID) {
			p.Eliminated = false
		}
	}
	s.History = s.History[:len(s.History)-1]

	return s.fire(ctx, "undo")
}

// NewGame starts over. A soft reset keeps the roster with zero totals; a
// hard reset also clears the roster and restores default settings.
func (s *State) NewGame(ctx context.Context, hardReset bool) error {
	if hardReset {
		s.Players = nil
		s.Settings = DefaultSettings()
	} else {
		for i := range s.Players {
			s.Players[i].Total = 0
			s.Players[i].Eliminated = false
		}
	}
	s.History = nil

	return s.fire(ctx, "reset")
}

// GoBack steps back one screen: review to entry, entry to lobby, game over
// to lobby.
func (s *State) GoBack(ctx context.Context) error {
	switch s.Current() {
	case RoundReview:
		return s.fire(ctx, "edit")
	case RoundEntry:
		return s.fire(ctx, "cancel")
	case GameOver:
		return s.fire(ctx, "dismiss")
	}
	return fmt.Errorf("%w: nothing to go back from", ErrPreconditionNotMet)
}

// UpdateSettings replaces the settings.
func (s *State) UpdateSettings(settings Settings) {
	s.Settings = settings
}

// IsGameOver reports whether at most one player is left in a started game.
func (s *State) IsGameOver() bool {
	return len(s.History) > 0 && scoring.IsGameOver(s.Players)
}

// Winner returns the last player standing once the game is over.
func (s *State) Winner() (scoring.Player, bool) {
	if len(s.History) == 0 {
		return scoring.Player{}, false
	}
	return scoring.Winner(s.Players)
}

func (s *State) clearRound() {
	s.CurrentInput = nil
	s.CurrentOutcome = nil
}
