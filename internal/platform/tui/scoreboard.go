package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/flappy-chicken/internal/leaderboard"
	"github.com/vovakirdan/flappy-chicken/internal/storage"
)

// Scoreboard layout constants
const (
	tableMinWidth = 50 // Minimum table width
	boardSize     = storage.DefaultLimit
)

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up   key.Binding
	Down key.Binding
	Back key.Binding
	Quit key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Back, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Back, k.Quit},
	}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b", "tab"),
			key.WithHelp("esc/tab", "back to game"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// scoresMsg carries a refreshed top list from the watch channel it came
// from, so a stale watcher cannot overwrite a newer board.
type scoresMsg struct {
	src    <-chan []storage.HighScore
	scores []storage.HighScore
	closed bool
}

// ScoreboardModel shows the live top ten.
type ScoreboardModel struct {
	board   *leaderboard.Service
	updates <-chan []storage.HighScore
	cancel  context.CancelFunc
	scores  []storage.HighScore
	loaded  bool
	live    bool
	table   table.Model
	help    help.Model
	keys    ScoreboardKeyMap
	width   int
	height  int

	quitting  bool
	goingBack bool
}

// NewScoreboardModel subscribes to the leaderboard until Close is called
// or ctx is done, whichever comes first.
func NewScoreboardModel(ctx context.Context, board *leaderboard.Service, width, height int) ScoreboardModel {
	h := help.New()
	h.ShowAll = false

	m := ScoreboardModel{
		board:  board,
		keys:   DefaultScoreboardKeyMap(),
		help:   h,
		width:  width,
		height: height,
		cancel: func() {},
	}
	m.table = m.createTable()

	if board != nil {
		watchCtx, cancel := context.WithCancel(ctx)
		m.updates = board.Watch(watchCtx, boardSize)
		m.cancel = cancel
		m.live = true
	}
	return m
}

// createTable creates a new table with appropriate columns.
func (m *ScoreboardModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Rank", Width: 6},
		{Title: "Player", Width: leaderboard.MaxNameLen},
		{Title: "Score", Width: 8},
		{Title: "Date", Width: 12},
	}

	if tableWidth := m.width - 8; tableWidth > tableMinWidth {
		columns[3].Width = min(tableWidth-36, 20)
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 3)), // Leave room for header, help, and margins
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// updateTableRows updates the table with current scores.
func (m *ScoreboardModel) updateTableRows() {
	rows := make([]table.Row, len(m.scores))
	for i, s := range m.scores {
		rows[i] = table.Row{
			fmt.Sprintf("#%d", i+1),
			s.PlayerName,
			fmt.Sprintf("%d", s.Score),
			s.CreatedAt.Local().Format("Jan 02 15:04"),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// waitForScores returns a command that waits for the next top list.
func (m ScoreboardModel) waitForScores() tea.Cmd {
	src := m.updates
	if src == nil {
		return nil
	}
	return func() tea.Msg {
		scores, ok := <-src
		if !ok {
			return scoresMsg{src: src, closed: true}
		}
		return scoresMsg{src: src, scores: scores}
	}
}

// Init starts listening for leaderboard updates.
func (m ScoreboardModel) Init() tea.Cmd {
	return m.waitForScores()
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case scoresMsg:
		if msg.src != m.updates {
			return m, nil
		}
		if msg.closed {
			m.live = false
			return m, nil
		}
		m.scores = msg.scores
		m.loaded = true
		m.updateTableRows()
		return m, m.waitForScores()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, nil

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	return m, nil
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)

	b.WriteString(titleStyle.Render(centerText("HIGH SCORES", m.width)))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, tableStyle.Render(m.renderTableContent())))
	b.WriteString("\n")

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderTableContent renders the table or a placeholder.
func (m ScoreboardModel) renderTableContent() string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)

	switch {
	case m.board == nil:
		return emptyStyle.Render("Leaderboard unavailable.")
	case !m.loaded && m.live:
		return emptyStyle.Render("Loading...")
	case len(m.scores) == 0:
		return emptyStyle.Render("No scores recorded yet.\nBe the first chicken on the board!")
	}
	return m.table.View()
}

// Scores returns the entries currently shown.
func (m ScoreboardModel) Scores() []storage.HighScore {
	return m.scores
}

// Close stops the leaderboard subscription.
func (m ScoreboardModel) Close() {
	m.cancel()
}

// IsGoingBack returns true if user wants to go back to the game.
func (m ScoreboardModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m ScoreboardModel) IsQuitting() bool {
	return m.quitting
}

func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	return strings.Repeat(" ", (width-w)/2) + text
}
