// Package flappy implements the Flappy Chicken simulation.
// The player falls under gravity, jumps on activation and must fly through
// the gaps of obstacles scrolling in from the right. The package is pure:
// it owns no clock, no input devices and no rendering.
package flappy

import (
	"math"
	"time"

	"github.com/vovakirdan/flappy-chicken/internal/config"
)

// Transition names what an activation did to the session.
type Transition int

const (
	TransitionNone Transition = iota
	TransitionStart
	TransitionJump
	TransitionRestart
)

// String returns a human-readable name for the transition.
func (t Transition) String() string {
	switch t {
	case TransitionStart:
		return "start"
	case TransitionJump:
		return "jump"
	case TransitionRestart:
		return "restart"
	default:
		return "none"
	}
}

// Sim advances sessions with a fixed tuning and obstacle source.
type Sim struct {
	tuning config.Tuning
	source ObstacleSource
}

// NewSim creates a simulator. A nil source falls back to a Generator seeded
// with zero.
func NewSim(t config.Tuning, source ObstacleSource) *Sim {
	if source == nil {
		source = NewGenerator(0, t)
	}
	return &Sim{tuning: t, source: source}
}

// Tuning returns the constants the simulator runs with.
func (sim *Sim) Tuning() config.Tuning {
	return sim.tuning
}

// NewSession creates an idle session sized to the viewport, with one obstacle
// already waiting at the right edge.
func (sim *Sim) NewSession(width, height float64) Session {
	p := sim.tuning.Player
	return Session{
		Player: Player{
			X:     width * p.AnchorX,
			Y:     height * p.AnchorY,
			Frame: RestingFrame,
		},
		Obstacles: []Obstacle{sim.source.Obstacle(width, height)},
	}
}

// Step advances a running session by one tick. Idle and ended sessions are
// returned unchanged.
func (sim *Sim) Step(s Session, width, height float64) Session {
	if !s.Started || s.Ended {
		return s
	}

	t := sim.tuning
	next := s
	next.Tick = s.Tick + 1
	next.Player.Frame = flapFrame(s.Player.Velocity, next.Tick, t.Animation)

	next.Player.Velocity = math.Min(s.Player.Velocity+t.Profile.Gravity, t.Player.TerminalVelocity)
	next.Player.Y = s.Player.Y + next.Player.Velocity

	next.Obstacles = advanceObstacles(s.Obstacles, t)
	if needsSpawn(next.Obstacles, width, t) {
		next.Obstacles = append(next.Obstacles, sim.source.Obstacle(width, height))
	}

	// At most one obstacle is scored per tick, the leftmost one not yet passed.
	for i := range next.Obstacles {
		o := &next.Obstacles[i]
		if o.Passed {
			continue
		}
		if o.X+t.Obstacles.Width < next.Player.X {
			o.Passed = true
			next.Score++
			next.Analytics.ObstaclesPassed++
		}
		break
	}

	if Collides(next.Player, next.Obstacles, height, t) {
		next.Ended = true
	}
	return next
}

// Activate applies the single user action. Idle sessions start, running
// sessions jump and ended sessions are replaced by a fresh idle one.
func (sim *Sim) Activate(s Session, width, height float64, now time.Time) (Session, Transition) {
	switch s.Phase() {
	case PhaseIdle:
		next := s.clone()
		next.Started = true
		next.Analytics.StartedAt = now
		return next, TransitionStart
	case PhaseRunning:
		return Jump(s, sim.tuning.Profile), TransitionJump
	default:
		return sim.NewSession(width, height), TransitionRestart
	}
}

// Jump sets the player's velocity to the profile's impulse. It is a no-op
// unless the session is running.
func Jump(s Session, p config.Profile) Session {
	if s.Phase() != PhaseRunning {
		return s
	}
	next := s.clone()
	next.Player.Velocity = p.JumpImpulse
	next.Analytics.Jumps++
	return next
}

func flapFrame(velocity float64, tick int, a config.AnimationTuning) int {
	if velocity >= 0 || a.TicksPerFrame <= 0 || a.Frames <= 0 {
		return RestingFrame
	}
	return (tick / a.TicksPerFrame) % a.Frames
}
