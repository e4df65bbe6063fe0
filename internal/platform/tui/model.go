package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/flappy-chicken/internal/analytics"
	"github.com/vovakirdan/flappy-chicken/internal/config"
	"github.com/vovakirdan/flappy-chicken/internal/core"
	"github.com/vovakirdan/flappy-chicken/internal/games/flappy"
	"github.com/vovakirdan/flappy-chicken/internal/leaderboard"
	"github.com/vovakirdan/flappy-chicken/internal/session"
	"github.com/vovakirdan/flappy-chicken/internal/storage"
)

// storeTimeout bounds every leaderboard call made from the UI.
const storeTimeout = 5 * time.Second

// GameOptions wires a GameModel to its collaborators. Board and Reporter
// are optional; without a board the game runs without high scores.
// Context bounds every store call and leaderboard subscription made by
// the UI; it should end when the program hosting the models ends.
type GameOptions struct {
	Context  context.Context
	Tuning   config.Tuning
	Runtime  core.RuntimeConfig
	Board    *leaderboard.Service
	Reporter session.Reporter
	Client   analytics.Client
	Sprites  *Sprites
	Logger   *log.Logger
}

type entryState int

const (
	entryNone entryState = iota
	entryEditing
	entrySubmitting
	entryDone
)

type bestScoreMsg struct {
	score int
}

type highScoreCheckMsg struct {
	score int
	high  bool
}

type submitResultMsg struct {
	entry storage.HighScore
	err   error
}

// GameModel is the Bubble Tea model for one player's game.
type GameModel struct {
	ctx      context.Context
	ctrl     *session.Controller
	renderer *Renderer
	screen   *core.Screen
	keys     *KeyMapper
	board    *leaderboard.Service
	sub      *leaderboard.Submitter // This player's submission guard
	logger   *log.Logger
	tickRate int

	best   int
	input  textinput.Model
	entry  entryState
	notice string

	wantScoreboard bool
	quitting       bool
}

// NewGameModel creates a game model holding a fresh idle session.
func NewGameModel(opts GameOptions) GameModel {
	rc := opts.Runtime
	if rc.Seed == 0 {
		rc.Seed = time.Now().UnixNano()
	}
	if opts.Sprites == nil {
		opts.Sprites = MustDefaultSprites()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}

	sim := flappy.NewSim(opts.Tuning, flappy.NewGenerator(rc.Seed, opts.Tuning))
	ctrl := session.New(sim, session.Options{
		Width:    rc.ViewportW,
		Height:   rc.ViewportH,
		Client:   opts.Client,
		Reporter: opts.Reporter,
		Logger:   opts.Logger,
	})

	ti := textinput.New()
	ti.Placeholder = "your name"
	ti.CharLimit = leaderboard.MaxNameLen

	var sub *leaderboard.Submitter
	if opts.Board != nil {
		sub = opts.Board.NewSubmitter()
	}

	return GameModel{
		ctx:      opts.Context,
		ctrl:     ctrl,
		renderer: NewRenderer(opts.Sprites, opts.Tuning, rc.ViewportW, rc.ViewportH),
		screen:   core.NewScreen(rc.ScreenW, rc.ScreenH),
		keys:     NewKeyMapper(),
		board:    opts.Board,
		sub:      sub,
		logger:   opts.Logger,
		tickRate: rc.TickRate,
		input:    ti,
	}
}

// Init starts the tick loop and loads the current best score.
func (m GameModel) Init() tea.Cmd {
	return tea.Batch(tickCmd(m.tickRate), m.loadBest())
}

// Update handles messages.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.entry == entryEditing {
			return m.handleEntryKey(msg)
		}
		return m.handleAction(m.keys.MapKey(msg))

	case tea.MouseMsg:
		return m.handleAction(m.keys.MapMouse(msg))

	case tea.WindowSizeMsg:
		m.screen.Resize(msg.Width, msg.Height)
		return m, nil

	case TickMsg:
		return m.handleTick()

	case bestScoreMsg:
		m.best = max(m.best, msg.score)
		return m, nil

	case highScoreCheckMsg:
		s := m.ctrl.Snapshot()
		if !msg.high || !s.Ended || s.Score != msg.score || m.entry != entryNone {
			return m, nil
		}
		m.entry = entryEditing
		m.input.Reset()
		return m, m.input.Focus()

	case submitResultMsg:
		m.notice = leaderboard.Message(msg.err)
		m.entry = entryDone
		if msg.err == nil {
			m.best = max(m.best, msg.entry.Score)
		} else if errors.Is(msg.err, leaderboard.ErrInvalidName) {
			m.entry = entryEditing
			return m, m.input.Focus()
		}
		return m, nil
	}

	return m, nil
}

func (m GameModel) handleAction(a core.Action) (tea.Model, tea.Cmd) {
	switch a {
	case core.ActionQuit:
		m.quitting = true
		return m, tea.Quit

	case core.ActionActivate:
		if m.entry == entryEditing || m.entry == entrySubmitting {
			return m, nil
		}
		if _, tr := m.ctrl.Activate(); tr == flappy.TransitionRestart {
			m.entry = entryNone
			m.notice = ""
		}

	case core.ActionScoreboard:
		if m.ctrl.Snapshot().Phase() != flappy.PhaseRunning {
			m.wantScoreboard = true
		}
	}
	return m, nil
}

func (m GameModel) handleEntryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "esc":
		m.entry = entryDone
		m.notice = ""
		m.input.Blur()
		return m, nil
	case "enter":
		m.entry = entrySubmitting
		m.notice = "Submitting..."
		m.input.Blur()
		return m, m.submit(m.input.Value(), m.ctrl.Snapshot().Score)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m GameModel) handleTick() (tea.Model, tea.Cmd) {
	prev := m.ctrl.Snapshot()
	s := m.ctrl.Tick()

	cmd := tickCmd(m.tickRate)
	if !prev.Ended && s.Ended && s.Score > 0 {
		cmd = tea.Batch(cmd, m.checkHighScore(s.Score))
	}
	return m, cmd
}

func (m GameModel) loadBest() tea.Cmd {
	if m.board == nil {
		return nil
	}
	parent, board, logger := m.ctx, m.board, m.logger
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, storeTimeout)
		defer cancel()

		top, err := board.Top(ctx, 1)
		if err != nil {
			logger.Warn("cannot load best score", "error", err)
			return nil
		}
		if len(top) == 0 {
			return nil
		}
		return bestScoreMsg{score: top[0].Score}
	}
}

func (m GameModel) checkHighScore(score int) tea.Cmd {
	if m.board == nil {
		return nil
	}
	parent, board, logger := m.ctx, m.board, m.logger
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, storeTimeout)
		defer cancel()

		high, err := board.IsHighScore(ctx, score)
		if err != nil {
			logger.Warn("cannot check high score", "error", err)
			return nil
		}
		return highScoreCheckMsg{score: score, high: high}
	}
}

func (m GameModel) submit(name string, score int) tea.Cmd {
	parent, sub := m.ctx, m.sub
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, storeTimeout)
		defer cancel()

		entry, err := sub.Submit(ctx, name, score)
		return submitResultMsg{entry: entry, err: err}
	}
}

// View renders the game.
func (m GameModel) View() string {
	if m.quitting {
		return ""
	}

	s := m.ctrl.Snapshot()
	sp := m.renderer.sprites
	m.renderer.Render(m.screen, s, m.best)

	switch s.Phase() {
	case flappy.PhaseIdle:
		m.renderer.DrawPanel(m.screen, "FLAPPY CHICKEN", []string{
			"Space, Enter or click to flap",
			"",
			"Tab: high scores   Q: quit",
		}, sp.TitleColor)

	case flappy.PhaseEnded:
		m.renderer.DrawPanel(m.screen, "GAME OVER", m.endLines(s), sp.AlertColor)
	}

	return RenderScreen(m.screen)
}

func (m GameModel) endLines(s flappy.Session) []string {
	lines := []string{fmt.Sprintf("Score: %d", s.Score)}

	switch m.entry {
	case entryEditing:
		name := m.input.Value()
		pad := max(leaderboard.MaxNameLen-len([]rune(name)), 0)
		lines = append(lines,
			"",
			"New high score! Enter your name:",
			fmt.Sprintf("[ %s_%s ]", name, strings.Repeat(" ", pad)),
		)
		if m.notice != "" {
			lines = append(lines, m.notice)
		}
		return append(lines, "", "Enter: submit   Esc: skip")
	case entrySubmitting, entryDone:
		if m.notice != "" {
			lines = append(lines, "", m.notice)
		}
	}

	return append(lines, "", "Space: play again   Tab: high scores")
}

// Session returns the current session snapshot.
func (m GameModel) Session() flappy.Session {
	return m.ctrl.Snapshot()
}

// WantsScoreboard reports whether the player asked for the leaderboard.
func (m GameModel) WantsScoreboard() bool {
	return m.wantScoreboard
}

// IsQuitting returns true if user requested to quit entirely.
func (m GameModel) IsQuitting() bool {
	return m.quitting
}
