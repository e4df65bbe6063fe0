// Package session drives one flappy.Session: it serialises activations and
// ticks, and reports an analytics summary when a session ends.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/flappy-chicken/internal/analytics"
	"github.com/vovakirdan/flappy-chicken/internal/games/flappy"
)

// Reporter receives the summary of every ended session. Implementations
// must not block; analytics.Recorder is the usual one.
type Reporter interface {
	Report(s analytics.Summary) bool
}

// Options configures a Controller.
type Options struct {
	Width, Height float64 // World viewport
	Client        analytics.Client
	Reporter      Reporter // Optional
	Logger        *log.Logger
	Now           func() time.Time // Defaults to time.Now
}

// Controller owns the single mutable session. All methods are safe for
// concurrent use; the simulation itself only ever sees one writer.
type Controller struct {
	mu     sync.Mutex
	sim    *flappy.Sim
	state  flappy.Session
	width  float64
	height float64

	client   analytics.Client
	reporter Reporter
	logger   *log.Logger
	now      func() time.Time
}

// New creates a controller holding a fresh idle session.
func New(sim *flappy.Sim, opts Options) *Controller {
	c := &Controller{
		sim:      sim,
		width:    opts.Width,
		height:   opts.Height,
		client:   opts.Client,
		reporter: opts.Reporter,
		logger:   opts.Logger,
		now:      opts.Now,
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	if c.now == nil {
		c.now = time.Now
	}
	c.state = sim.NewSession(c.width, c.height)
	return c
}

// Activate applies the single user action to the session.
func (c *Controller) Activate() (flappy.Session, flappy.Transition) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, tr := c.sim.Activate(c.state, c.width, c.height, c.now())
	c.state = next
	if tr != flappy.TransitionJump {
		c.logger.Debug("session transition", "transition", tr)
	}
	return next, tr
}

// Flap jumps if the session is running and does nothing otherwise, so a
// late input can never restart an ended game.
func (c *Controller) Flap() flappy.Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = flappy.Jump(c.state, c.sim.Tuning().Profile)
	return c.state
}

// Tick advances the session by one step.
func (c *Controller) Tick() flappy.Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.state
	c.state = c.sim.Step(prev, c.width, c.height)

	if !prev.Ended && c.state.Ended {
		c.finish(c.state)
	}
	return c.state
}

// Snapshot returns the current session.
func (c *Controller) Snapshot() flappy.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Resize changes the world viewport used by later ticks and sessions.
func (c *Controller) Resize(width, height float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width, c.height = width, height
}

// Viewport returns the world size the controller simulates.
func (c *Controller) Viewport() (width, height float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

// Run ticks at a fixed interval until ctx is cancelled, offering every new
// state on frames. A full frames channel skips the frame, not the tick.
func (c *Controller) Run(ctx context.Context, interval time.Duration, frames chan<- flappy.Session) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s := c.Tick()
			if frames == nil {
				continue
			}
			select {
			case frames <- s:
			default:
			}
		}
	}
}

func (c *Controller) finish(s flappy.Session) {
	c.logger.Info("game over",
		"score", s.Score,
		"jumps", s.Analytics.Jumps,
		"ticks", s.Tick,
	)
	if c.reporter == nil {
		return
	}
	sum := analytics.Summarize(s, c.now(), c.client)
	c.reporter.Report(sum)
}
