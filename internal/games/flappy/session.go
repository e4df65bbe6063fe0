package flappy

import "time"

// RestingFrame is the flap frame shown while the player is not ascending.
const RestingFrame = 0

// Player is the controlled character, a circle in world coordinates.
type Player struct {
	X, Y     float64 // Center position
	Velocity float64 // Vertical velocity, positive = down
	Frame    int     // Flap animation frame, cosmetic only
}

// Variant selects which sprite an obstacle segment uses. Cosmetic only.
type Variant uint8

const (
	VariantTop Variant = iota
	VariantBottom
)

// Obstacle is a pair of vertical segments with a gap between them.
type Obstacle struct {
	X             float64 // Left edge
	TopHeight     float64 // Top segment spans [0, TopHeight)
	BottomY       float64 // Bottom segment spans [BottomY, viewport height)
	TopVariant    Variant
	BottomVariant Variant
	Passed        bool // Whether the player has already scored this obstacle
}

// Gap returns the vertical opening between the two segments.
func (o Obstacle) Gap() float64 {
	return o.BottomY - o.TopHeight
}

// Analytics is the per-session summary reported when the game ends.
type Analytics struct {
	StartedAt       time.Time
	Jumps           int
	ObstaclesPassed int
}

// Session is one playthrough. Values are treated as immutable snapshots:
// every operation returns a new Session and leaves its input untouched.
type Session struct {
	Player    Player
	Obstacles []Obstacle // Ascending x, oldest first
	Score     int
	Started   bool
	Ended     bool
	Tick      int // Ticks simulated since the session started running
	Analytics Analytics
}

// Phase is the coarse session state used to route input.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseEnded
)

// String returns a human-readable name for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Phase reports which state the session is in.
func (s Session) Phase() Phase {
	switch {
	case s.Ended:
		return PhaseEnded
	case s.Started:
		return PhaseRunning
	default:
		return PhaseIdle
	}
}

// clone returns a copy of s that shares no memory with it.
func (s Session) clone() Session {
	c := s
	c.Obstacles = append([]Obstacle(nil), s.Obstacles...)
	return c
}
