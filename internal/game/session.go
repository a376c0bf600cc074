package game

import (
	"context"
	"errors"
	"fmt"

	"yaniv/internal/scoring"
	"yaniv/internal/state"

	"github.com/sirupsen/logrus"
)

// Command is one operation on the session state.
type Command func(ctx context.Context, s *state.State) error

// Session connects the state machine to storage and logging. The host calls
// every command through Apply.
type Session struct {
	State   *state.State
	Storage state.SnapshotStorage
	Log     logrus.FieldLogger
}

// NewSession resumes the stored game, or starts an empty one with settings.
func NewSession(storage state.SnapshotStorage, settings state.Settings, log logrus.FieldLogger) (*Session, error) {
	snap, err := storage.Load()
	if err != nil {
		return nil, fmt.Errorf("could not load saved game: %w", err)
	}

	s := &Session{Storage: storage, Log: log}
	if snap != nil {
		s.State = state.Resume(*snap)
		log.WithFields(logrus.Fields{
			"players": len(snap.Players),
			"rounds":  len(snap.History),
			"state":   s.State.Current(),
		}).Info("resumed saved game")
	} else {
		s.State = state.NewState(settings)
		log.Info("started new game")
	}

	return s, nil
}

// SeedRoster adds names to an empty roster.
func (s *Session) SeedRoster(ctx context.Context, names []string) error {
	if len(s.State.Players) > 0 || len(names) == 0 {
		return nil
	}
	return s.Apply(ctx, "seedRoster", func(_ context.Context, st *state.State) error {
		for _, name := range names {
			if _, err := st.AddPlayer(name); err != nil {
				return err
			}
		}
		return nil
	})
}

// Apply runs cmd and saves the result when persistence is on. Commands that
// do not apply in the current state are ignored.
func (s *Session) Apply(ctx context.Context, name string, cmd Command) error {
	fields := logrus.Fields{
		"command": name,
		"state":   s.State.Current(),
		"round":   len(s.State.History) + 1,
	}

	if err := cmd(ctx, s.State); err != nil {
		if errors.Is(err, state.ErrPreconditionNotMet) {
			s.Log.WithFields(fields).WithError(err).Debug("command ignored")
			return nil
		}
		s.Log.WithFields(fields).WithError(err).Warn("command rejected")
		return err
	}

	s.Log.WithFields(fields).WithField("next", s.State.Current()).Debug("command applied")
	s.logRoundResult(name)

	return s.save()
}

func (s *Session) logRoundResult(name string) {
	if name != "confirmRound" {
		return
	}
	last, ok := s.State.History.Last()
	if !ok {
		return
	}
	entry := s.Log.WithFields(logrus.Fields{
		"round":      len(s.State.History),
		"caller":     last.Outcome.CallerID,
		"asafBy":     last.Outcome.AsafBy,
		"eliminated": len(last.EliminatedAfter),
	})
	entry.Info("round confirmed")

	if s.State.IsGameOver() {
		if w, ok := s.State.Winner(); ok {
			s.Log.WithField("winner", w.Name).Info("game over")
		} else {
			s.Log.Info("game over without a winner")
		}
	}
}

func (s *Session) save() error {
	if !s.State.Settings.Persistence {
		return nil
	}
	if err := s.Storage.Save(s.State.Snapshot()); err != nil {
		s.Log.WithError(err).Error("could not save game")
		return fmt.Errorf("could not save game: %w", err)
	}
	return nil
}

// Forget removes the saved game. The in-memory session is kept.
func (s *Session) Forget() error {
	return s.Storage.Clear()
}

// Standings returns the final table for the current roster.
func (s *Session) Standings() []scoring.Player {
	return scoring.Standings(s.State.Players)
}

// RoundsPlayed returns the number of confirmed rounds.
func (s *Session) RoundsPlayed() int {
	return len(s.State.History)
}
