package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/flappy-chicken/internal/core"
)

// KeyMapper translates Bubble Tea input messages to game actions.
// Every device that can "tap" maps to the same Activate action.
type KeyMapper struct{}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{}
}

// MapKey translates a key message to an action.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) core.Action {
	switch msg.String() {
	case "ctrl+c", "q":
		return core.ActionQuit
	case " ", "enter", "up", "w":
		return core.ActionActivate
	case "tab":
		return core.ActionScoreboard
	case "esc", "b":
		return core.ActionBack
	}
	return core.ActionNone
}

// MapMouse turns a button press (a click, or a tap on touch terminals)
// into Activate. Motion, release and wheel events are ignored.
func (km *KeyMapper) MapMouse(msg tea.MouseMsg) core.Action {
	if msg.Action == tea.MouseActionPress && !tea.MouseEvent(msg).IsWheel() {
		return core.ActionActivate
	}
	return core.ActionNone
}
