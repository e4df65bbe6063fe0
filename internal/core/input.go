package core

// Action is a semantic input event, abstracted from physical keys, clicks
// and taps.
type Action int

const (
	ActionNone       Action = iota
	ActionActivate          // Space, Enter, Up, W, mouse press - start, jump, restart
	ActionBack              // B, Esc - leave the current screen
	ActionScoreboard        // Tab - open the leaderboard
	ActionQuit              // Q, Ctrl+C - exit
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionActivate:
		return "Activate"
	case ActionBack:
		return "Back"
	case ActionScoreboard:
		return "Scoreboard"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}
