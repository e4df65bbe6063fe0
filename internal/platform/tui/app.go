package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// AppModel switches between the game and the scoreboard. It is the
// top-level model for both local play and SSH sessions.
type AppModel struct {
	game      GameModel
	board     ScoreboardModel
	opts      GameOptions
	showBoard bool
	width     int
	height    int
	quitting  bool
}

// NewAppModel creates the top-level model.
func NewAppModel(opts GameOptions) AppModel {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	return AppModel{
		game:   NewGameModel(opts),
		opts:   opts,
		width:  opts.Runtime.ScreenW,
		height: opts.Runtime.ScreenH,
	}
}

// Init initializes the game.
func (m AppModel) Init() tea.Cmd {
	return m.game.Init()
}

// Update routes messages. Game ticks and async results always reach the
// game so the session keeps running behind the scoreboard.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.updateGame(msg)
		if m.showBoard {
			return m, m.updateBoard(msg)
		}
		return m, nil

	case tea.KeyMsg, tea.MouseMsg:
		if m.showBoard {
			return m.afterBoard(m.updateBoard(msg))
		}
		return m.afterGame(m.updateGame(msg))

	case scoresMsg:
		if m.showBoard {
			return m, m.updateBoard(msg)
		}
		return m, nil
	}

	return m.afterGame(m.updateGame(msg))
}

func (m *AppModel) updateGame(msg tea.Msg) tea.Cmd {
	next, cmd := m.game.Update(msg)
	if g, ok := next.(GameModel); ok {
		m.game = g
	}
	return cmd
}

func (m *AppModel) updateBoard(msg tea.Msg) tea.Cmd {
	next, cmd := m.board.Update(msg)
	if b, ok := next.(ScoreboardModel); ok {
		m.board = b
	}
	return cmd
}

func (m AppModel) afterGame(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if m.game.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.game.WantsScoreboard() {
		m.game.wantScoreboard = false
		m.board = NewScoreboardModel(m.opts.Context, m.opts.Board, m.width, m.height)
		m.showBoard = true
		return m, tea.Batch(cmd, m.board.Init())
	}
	return m, cmd
}

func (m AppModel) afterBoard(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if m.board.IsQuitting() {
		m.board.Close()
		m.quitting = true
		return m, tea.Quit
	}
	if m.board.IsGoingBack() {
		m.board.Close()
		m.showBoard = false
		return m, nil
	}
	return m, cmd
}

// View renders the active screen.
func (m AppModel) View() string {
	if m.quitting {
		return ""
	}
	if m.showBoard {
		return m.board.View()
	}
	return m.game.View()
}

// Run starts a local Bubble Tea program. Leaderboard subscriptions end
// with the program.
func Run(opts GameOptions) error {
	parent := opts.Context
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	opts.Context = ctx

	p := tea.NewProgram(
		NewAppModel(opts),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := p.Run()
	return err
}
