package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/flappy-chicken/internal/analytics"
	"github.com/vovakirdan/flappy-chicken/internal/config"
	"github.com/vovakirdan/flappy-chicken/internal/games/flappy"
)

type captureReporter struct {
	mu        sync.Mutex
	summaries []analytics.Summary
}

func (r *captureReporter) Report(s analytics.Summary) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries = append(r.summaries, s)
	return true
}

func (r *captureReporter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.summaries)
}

// fakeClock advances by one frame every call.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(16 * time.Millisecond)
	return c.t
}

func newController(rep Reporter) (*Controller, *fakeClock) {
	tuning := config.DefaultTuning()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New(flappy.NewSim(tuning, flappy.NewGenerator(7, tuning)), Options{
		Width:    400,
		Height:   700,
		Client:   analytics.Client{DeviceID: "dev", Environment: config.EnvDesktop, Info: "xterm"},
		Reporter: rep,
		Now:      clock.Now,
	})
	return c, clock
}

func TestControllerLifecycle(t *testing.T) {
	rep := &captureReporter{}
	c, _ := newController(rep)

	if c.Snapshot().Phase() != flappy.PhaseIdle {
		t.Fatalf("new controller should be idle")
	}

	// Ticks while idle change nothing.
	before := c.Snapshot()
	c.Tick()
	if c.Snapshot().Player != before.Player {
		t.Error("idle tick moved the player")
	}

	if _, tr := c.Activate(); tr != flappy.TransitionStart {
		t.Fatalf("Activate() = %v, expected start", tr)
	}
	if _, tr := c.Activate(); tr != flappy.TransitionJump {
		t.Fatalf("Activate() = %v, expected jump", tr)
	}

	var s flappy.Session
	for i := 0; i < 500 && !s.Ended; i++ {
		s = c.Tick()
	}
	if !s.Ended {
		t.Fatal("session should end without further input")
	}

	// More ticks after the end must not report again.
	for i := 0; i < 10; i++ {
		c.Tick()
	}
	if rep.count() != 1 {
		t.Fatalf("reported %d summaries, expected 1", rep.count())
	}

	sum := rep.summaries[0]
	if sum.Jumps != 1 || sum.DeviceID != "dev" || sum.BrowserInfo != "xterm" {
		t.Errorf("summary = %+v", sum)
	}
	if sum.PlayTimeMs <= 0 {
		t.Errorf("PlayTimeMs = %d, expected positive", sum.PlayTimeMs)
	}

	if _, tr := c.Activate(); tr != flappy.TransitionRestart {
		t.Fatalf("Activate() after end = %v, expected restart", tr)
	}
	if c.Snapshot().Phase() != flappy.PhaseIdle {
		t.Error("restart should leave an idle session")
	}
}

func TestControllerWithoutReporter(t *testing.T) {
	c, _ := newController(nil)
	c.Activate()
	for i := 0; i < 500; i++ {
		c.Tick()
	}
	if !c.Snapshot().Ended {
		t.Error("session should have ended")
	}
}

func TestControllerResize(t *testing.T) {
	c, _ := newController(nil)
	c.Resize(800, 600)

	if w, h := c.Viewport(); w != 800 || h != 600 {
		t.Errorf("Viewport() = %v x %v, expected 800 x 600", w, h)
	}
}

func TestControllerRun(t *testing.T) {
	c, _ := newController(nil)
	c.Activate()

	ctx, cancel := context.WithCancel(context.Background())
	frames := make(chan flappy.Session, 1)
	errc := make(chan error, 1)
	go func() { errc <- c.Run(ctx, time.Millisecond, frames) }()

	select {
	case s := <-frames:
		if s.Tick < 1 {
			t.Errorf("frame Tick = %d, expected at least 1", s.Tick)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no frame produced")
	}

	cancel()
	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() = %v, expected context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestControllerConcurrentAccess(t *testing.T) {
	c, _ := newController(&captureReporter{})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if (i+j)%25 == 0 {
					c.Activate()
				}
				c.Tick()
				c.Snapshot()
			}
		}(i)
	}
	wg.Wait()
}

func TestControllerFlapOnlyWhileRunning(t *testing.T) {
	c, _ := newController(nil)

	if got := c.Flap(); got.Phase() != flappy.PhaseIdle || got.Analytics.Jumps != 0 {
		t.Errorf("Flap() on idle = %v with %d jumps, expected idle and 0", got.Phase(), got.Analytics.Jumps)
	}

	c.Activate()
	if got := c.Flap(); got.Analytics.Jumps != 1 {
		t.Errorf("Flap() while running: jumps = %d, expected 1", got.Analytics.Jumps)
	}

	var s flappy.Session
	for range 1000 {
		if s = c.Tick(); s.Ended {
			break
		}
	}
	if !s.Ended {
		t.Fatal("session never ended")
	}

	if got := c.Flap(); got.Phase() != flappy.PhaseEnded {
		t.Errorf("Flap() on ended = %v, expected ended", got.Phase())
	}
}
