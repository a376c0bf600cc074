package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"yaniv/internal/config"
	"yaniv/internal/game"
	"yaniv/internal/scoring"
	"yaniv/internal/state"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
)

var (
	redStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // Eliminated players, failed calls
	greenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // Winners, zero penalties
	scoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // Status line
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	boldStyle   = lipgloss.NewStyle().Bold(true)
	cursorStyle = lipgloss.NewStyle().Reverse(true)
	boxStyle    = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.ThickBorder())
)

// nameMode says what the text input is used for.
type nameMode int

const (
	nameOff nameMode = iota
	nameAdd
	nameRename
)

type LocalState struct {
	Session *game.Session
	Form    *game.RoundForm
	Cursor  int
	Input   textinput.Model
	Mode    nameMode
	Message string
	ctx     context.Context
}

func initialModel(ctx context.Context, sess *game.Session) *LocalState {
	ti := textinput.New()
	ti.Placeholder = "player name"
	ti.CharLimit = 24
	ti.Prompt = "> "

	m := &LocalState{Session: sess, Input: ti, ctx: ctx}
	m.syncForm()
	return m
}

func (s *LocalState) Init() tea.Cmd {
	return nil
}

func (s *LocalState) apply(name string, cmd game.Command) {
	if err := s.Session.Apply(s.ctx, name, cmd); err != nil {
		s.Message = err.Error()
	} else {
		s.Message = ""
	}
	s.syncForm()
}

// syncForm keeps the round form in step with the state machine.
func (s *LocalState) syncForm() {
	st := s.Session.State
	if st.Current() != state.RoundEntry || st.CurrentInput == nil {
		s.Form = nil
		return
	}
	if s.Form == nil {
		s.Form = game.NewRoundForm(st.ActivePlayers(), *st.CurrentInput)
	}
}

func (s *LocalState) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	ch := key.String()
	if ch == "ctrl+c" {
		return s, tea.Quit
	}

	if s.Mode != nameOff {
		return s.updateName(key)
	}

	switch s.Session.State.Current() {
	case state.RoundEntry:
		s.updateEntry(ch)
	case state.RoundReview:
		s.updateReview(ch)
	case state.GameOver:
		if ch == "q" {
			return s, tea.Quit
		}
		s.updateGameOver(ch)
	default:
		if ch == "q" {
			return s, tea.Quit
		}
		return s.updateLobby(ch)
	}
	return s, nil
}

func (s *LocalState) updateName(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		s.Mode = nameOff
		s.Input.Blur()
		return s, nil
	case "enter":
		name := s.Input.Value()
		mode := s.Mode
		s.Mode = nameOff
		s.Input.Blur()
		s.Input.Reset()
		if mode == nameAdd {
			s.apply("addPlayer", func(_ context.Context, st *state.State) error {
				_, err := st.AddPlayer(name)
				return err
			})
		} else if p, ok := s.selected(); ok {
			s.apply("updatePlayerName", func(_ context.Context, st *state.State) error {
				return st.UpdatePlayerName(p.ID, name)
			})
		}
		return s, nil
	}

	var cmd tea.Cmd
	s.Input, cmd = s.Input.Update(key)
	return s, cmd
}

func (s *LocalState) selected() (scoring.Player, bool) {
	players := s.Session.State.Players
	if s.Cursor < 0 || s.Cursor >= len(players) {
		return scoring.Player{}, false
	}
	return players[s.Cursor], true
}

func (s *LocalState) updateLobby(ch string) (tea.Model, tea.Cmd) {
	st := s.Session.State
	n := len(st.Players)

	switch ch {
	case "up", "k":
		if s.Cursor > 0 {
			s.Cursor--
		}
	case "down", "j":
		if s.Cursor < n-1 {
			s.Cursor++
		}
	case "a":
		s.Mode = nameAdd
		s.Input.SetValue("")
		return s, s.Input.Focus()
	case "e":
		if p, ok := s.selected(); ok {
			s.Mode = nameRename
			s.Input.SetValue(p.Name)
			return s, s.Input.Focus()
		}
	case "d":
		if p, ok := s.selected(); ok {
			s.apply("removePlayer", func(_ context.Context, st *state.State) error {
				return st.RemovePlayer(p.ID)
			})
			if s.Cursor >= len(st.Players) && s.Cursor > 0 {
				s.Cursor--
			}
		}
	case "K", "shift+up":
		from := s.Cursor
		s.apply("reorderPlayers", func(_ context.Context, st *state.State) error {
			return st.ReorderPlayers(from, from-1)
		})
		if from > 0 {
			s.Cursor--
		}
	case "J", "shift+down":
		from := s.Cursor
		s.apply("reorderPlayers", func(_ context.Context, st *state.State) error {
			return st.ReorderPlayers(from, from+1)
		})
		if from < n-1 {
			s.Cursor++
		}
	case "enter", "s":
		s.apply("startRound", func(ctx context.Context, st *state.State) error {
			return st.StartRound(ctx)
		})
	default:
		s.updateCommon(ch)
	}
	return s, nil
}

func (s *LocalState) updateEntry(ch string) {
	switch ch {
	case "enter":
		input := s.Form.Input()
		s.apply("submitRound", func(ctx context.Context, st *state.State) error {
			return st.SubmitRound(ctx, input)
		})
	case "esc":
		s.apply("goBack", func(ctx context.Context, st *state.State) error {
			return st.GoBack(ctx)
		})
	default:
		s.Form.HandleKeyPress(ch)
	}
}

func (s *LocalState) updateReview(ch string) {
	switch ch {
	case "enter", "c":
		s.apply("confirmRound", func(ctx context.Context, st *state.State) error {
			return st.ConfirmRound(ctx)
		})
	case "esc":
		// the form is rebuilt from the submitted input
		s.apply("goBack", func(ctx context.Context, st *state.State) error {
			return st.GoBack(ctx)
		})
	}
}

func (s *LocalState) updateGameOver(ch string) {
	switch ch {
	case "esc":
		s.apply("goBack", func(ctx context.Context, st *state.State) error {
			return st.GoBack(ctx)
		})
	default:
		s.updateCommon(ch)
	}
}

// updateCommon handles keys shared by the lobby and game-over screens.
func (s *LocalState) updateCommon(ch string) {
	switch ch {
	case "u":
		s.apply("undoLastRound", func(ctx context.Context, st *state.State) error {
			return st.UndoLastRound(ctx)
		})
	case "n":
		s.apply("newGame", func(ctx context.Context, st *state.State) error {
			return st.NewGame(ctx, false)
		})
	case "N":
		s.Cursor = 0
		s.apply("newGame", func(ctx context.Context, st *state.State) error {
			return st.NewGame(ctx, true)
		})
	case "t":
		s.apply("updateSettings", func(_ context.Context, st *state.State) error {
			settings := st.Settings
			settings.AsafOnTie = !settings.AsafOnTie
			st.UpdateSettings(settings)
			return nil
		})
	case "p":
		s.apply("updateSettings", func(_ context.Context, st *state.State) error {
			settings := st.Settings
			settings.Persistence = !settings.Persistence
			st.UpdateSettings(settings)
			return nil
		})
		if !s.Session.State.Settings.Persistence {
			if err := s.Session.Forget(); err != nil {
				s.Message = err.Error()
			}
		}
	}
}

func (s *LocalState) View() string {
	var b strings.Builder
	st := s.Session.State

	b.WriteString(boldStyle.Render("YANIV") + dimStyle.Render(fmt.Sprintf("  round %d", len(st.History)+1)) + "\n\n")

	switch st.Current() {
	case state.RoundEntry:
		b.WriteString(s.viewEntry())
	case state.RoundReview:
		b.WriteString(s.viewReview())
	case state.GameOver:
		b.WriteString(s.viewGameOver())
	default:
		b.WriteString(s.viewLobby())
	}

	if s.Mode != nameOff {
		b.WriteString("\n" + s.Input.View() + "\n")
	}
	if s.Message != "" {
		b.WriteString("\n" + redStyle.Render(s.Message) + "\n")
	}

	settings := st.Settings
	status := fmt.Sprintf("ASAF ON TIE: %s | SAVE: %s", onOff(settings.AsafOnTie), onOff(settings.Persistence))
	b.WriteString("\n" + scoreStyle.Render(status) + "\n")
	return b.String()
}

func (s *LocalState) viewLobby() string {
	st := s.Session.State
	var rows strings.Builder
	if len(st.Players) == 0 {
		rows.WriteString(dimStyle.Render("No players yet. Press 'a' to add one."))
	}
	for i, p := range st.Players {
		line := fmt.Sprintf("%-24s %4d", p.Name, p.Total)
		if p.Eliminated {
			line = redStyle.Render(line + "  out")
		}
		if i == s.Cursor {
			line = cursorStyle.Render(line)
		}
		rows.WriteString(line + "\n")
	}

	help := "a add | e rename | d delete | J/K move | enter start round | u undo | n new game | N reset all | t tie rule | p save | q quit"
	return boxStyle.Render(strings.TrimRight(rows.String(), "\n")) + "\n" + dimStyle.Render(help) + "\n"
}

func (s *LocalState) viewEntry() string {
	f := s.Form
	if f == nil {
		return ""
	}
	var rows strings.Builder
	for i, p := range f.Players {
		marker := "  "
		if i == f.Caller {
			marker = "Y "
		}
		line := fmt.Sprintf("%s%-24s %3d", marker, p.Name, f.Sums[i])
		if i == f.Cursor {
			line = cursorStyle.Render(line)
		}
		rows.WriteString(line + "\n")
	}

	help := "digits enter sum | space mark Yaniv caller | up/down move | enter score round | esc back"
	return boldStyle.Render("Hand sums") + "\n" + boxStyle.Render(strings.TrimRight(rows.String(), "\n")) + "\n" + dimStyle.Render(help) + "\n"
}

func (s *LocalState) viewReview() string {
	st := s.Session.State
	out := st.CurrentOutcome
	if out == nil {
		return ""
	}

	var b strings.Builder
	caller := s.nameOf(out.CallerID)
	switch {
	case out.SelfTie():
		b.WriteString(redStyle.Render(fmt.Sprintf("%s tied for the lowest hand. The call fails.", caller)))
	case out.HasAsaf():
		b.WriteString(redStyle.Render(fmt.Sprintf("Asaf! %s beat %s's call.", s.nameOf(out.AsafBy), caller)))
	default:
		b.WriteString(greenStyle.Render(fmt.Sprintf("Yaniv! %s wins the round.", caller)))
	}
	b.WriteString("\n")

	var rows strings.Builder
	for _, p := range st.ActivePlayers() {
		penalty := out.Penalties[p.ID]
		line := fmt.Sprintf("%-24s +%-3d -> %4d", p.Name, penalty, previewTotal(p.Total+penalty))
		if penalty == 0 {
			line = greenStyle.Render(line)
		}
		rows.WriteString(line + "\n")
	}
	b.WriteString(boxStyle.Render(strings.TrimRight(rows.String(), "\n")) + "\n")
	b.WriteString(dimStyle.Render("enter confirm | esc edit sums") + "\n")
	return b.String()
}

func (s *LocalState) viewGameOver() string {
	var b strings.Builder
	st := s.Session.State

	if w, ok := st.Winner(); ok {
		b.WriteString(greenStyle.Render(fmt.Sprintf("%s wins after %d rounds!", w.Name, s.Session.RoundsPlayed())))
	} else {
		b.WriteString(redStyle.Render("Everyone is out. No winner this time."))
	}
	b.WriteString("\n")

	var rows strings.Builder
	for i, p := range s.Session.Standings() {
		line := fmt.Sprintf("%2d. %-24s %4d", i+1, p.Name, p.Total)
		if p.Eliminated {
			line = redStyle.Render(line)
		}
		rows.WriteString(line + "\n")
	}
	b.WriteString(boxStyle.Render(strings.TrimRight(rows.String(), "\n")) + "\n")
	b.WriteString(dimStyle.Render("n new game | u undo last round | esc roster | q quit") + "\n")
	return b.String()
}

func (s *LocalState) nameOf(id scoring.PlayerID) string {
	if i := s.Session.State.FindPlayer(id); i >= 0 {
		return s.Session.State.Players[i].Name
	}
	return string(id)
}

// previewTotal shows where a total lands once milestones apply.
func previewTotal(total int) int {
	next, _ := scoring.ApplyOutcome([]scoring.Player{{Total: total}}, nil)
	return next[0].Total
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// levelFlag parses a logrus level on the command line.
type levelFlag struct {
	level *logrus.Level
}

func (l levelFlag) String() string {
	if l.level == nil {
		return ""
	}
	return l.level.String()
}

func (l levelFlag) Set(s string) error {
	level, err := logrus.ParseLevel(s)
	if err != nil {
		return fmt.Errorf("invalid log level: %s", s)
	}
	*l.level = level
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	var noSave, reset bool
	flag.StringVar(&cfg.DataFile, "data", cfg.DataFile, "Path of the saved game (default ~/.config/yaniv/game.json)")
	flag.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Write logs to this file")
	flag.Var(levelFlag{&cfg.LogLevel}, "log-level", "Log level (debug, info, warn, error)")
	flag.BoolVar(&cfg.AsafOnTie, "asaf-on-tie", cfg.AsafOnTie, "A tie with the caller counts as Asaf for a new game")
	flag.BoolVar(&noSave, "no-save", false, "Do not save the game for a new game")
	flag.BoolVar(&reset, "reset", false, "Discard the saved game and start over")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] [roster files...]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nRoster files list one player name per line; they seed an empty roster.\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	logger, closer, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	storage, err := state.NewJSONFileStorage(cfg.DataFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game storage: %v\n", err)
		os.Exit(1)
	}
	if reset {
		if err := storage.Clear(); err != nil {
			fmt.Fprintf(os.Stderr, "Error discarding saved game: %v\n", err)
			os.Exit(1)
		}
	}

	settings := state.DefaultSettings()
	settings.AsafOnTie = cfg.AsafOnTie
	settings.Persistence = !noSave

	sess, err := game.NewSession(storage, settings, logger.WithField("file", storage.Path()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing game: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if args := flag.Args(); len(args) > 0 {
		names, err := game.LoadRoster(args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading roster: %v\n", err)
			os.Exit(1)
		}
		if err := sess.SeedRoster(ctx, names); err != nil {
			fmt.Fprintf(os.Stderr, "Error seeding roster: %v\n", err)
			os.Exit(1)
		}
	}

	p := tea.NewProgram(initialModel(ctx, sess))
	if _, err := p.Run(); err != nil {
		logger.WithError(err).Error("program failed")
		fmt.Printf("Error starting the program: %v\n", err)
		os.Exit(1)
	}
}
