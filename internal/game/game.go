package game

import (
	"strconv"

	"yaniv/internal/scoring"
)

// maxSumDigits bounds a typed hand sum.
const maxSumDigits = 3

// RoundForm collects a round's hand sums, independent of the UI.
type RoundForm struct {
	Players []scoring.Player
	Sums    []int
	Caller  int
	Cursor  int
}

// NewRoundForm builds a form for the active players, prefilled from input.
func NewRoundForm(players []scoring.Player, input scoring.RoundInput) *RoundForm {
	f := &RoundForm{
		Players: players,
		Sums:    make([]int, len(players)),
	}
	for i, p := range players {
		if sum, ok := input.SumOf(p.ID); ok {
			f.Sums[i] = sum
		}
		if p.ID == input.CallerID {
			f.Caller = i
		}
	}
	return f
}

// HandleKeyPress processes a key press and updates the form.
func (f *RoundForm) HandleKeyPress(key string) {
	if len(f.Players) == 0 {
		return
	}

	switch key {
	case "up", "k", "shift+tab":
		f.Cursor = (f.Cursor + len(f.Players) - 1) % len(f.Players)
	case "down", "j", "tab":
		f.Cursor = (f.Cursor + 1) % len(f.Players)
	case " ", "y":
		f.Caller = f.Cursor
	case "backspace":
		f.Sums[f.Cursor] /= 10
	case "delete", "x":
		f.Sums[f.Cursor] = 0
	default:
		if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
			f.appendDigit(int(key[0] - '0'))
		}
	}
}

func (f *RoundForm) appendDigit(d int) {
	current := f.Sums[f.Cursor]
	if len(strconv.Itoa(current)) >= maxSumDigits && current != 0 {
		return
	}
	f.Sums[f.Cursor] = current*10 + d
}

// CallerID returns the selected caller.
func (f *RoundForm) CallerID() scoring.PlayerID {
	if f.Caller < 0 || f.Caller >= len(f.Players) {
		return ""
	}
	return f.Players[f.Caller].ID
}

// Input returns the round as entered, in roster order.
func (f *RoundForm) Input() scoring.RoundInput {
	in := scoring.RoundInput{
		CallerID: f.CallerID(),
		Sums:     make([]scoring.HandSum, len(f.Players)),
	}
	for i, p := range f.Players {
		in.Sums[i] = scoring.HandSum{PlayerID: p.ID, Sum: f.Sums[i]}
	}
	return in
}
