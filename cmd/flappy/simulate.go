package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flappy-chicken/internal/analytics"
	"github.com/vovakirdan/flappy-chicken/internal/config"
	"github.com/vovakirdan/flappy-chicken/internal/core"
	"github.com/vovakirdan/flappy-chicken/internal/games/flappy"
	"github.com/vovakirdan/flappy-chicken/internal/platform/tui"
	"github.com/vovakirdan/flappy-chicken/internal/session"
	"github.com/vovakirdan/flappy-chicken/internal/storage"
)

var (
	flagTicks     int
	flagAutopilot bool
	flagRealtime  bool
	flagRecord    bool
	flagRender    bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a headless game and print the result",
	Long: `Run one game without a terminal UI.

With --autopilot the chicken flaps toward the middle of the next gap.
Without it the chicken never flaps and simply falls. The same --seed and
tuning always give the same run unless --realtime is set.

Examples:
  flappy simulate --seed 42
  flappy simulate --seed 42 --ticks 10000 --render
  flappy simulate --realtime --fps 60 --record`,
	Args: cobra.NoArgs,
	Run:  runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&flagTicks, "ticks", 3600, "Maximum number of ticks to run")
	simulateCmd.Flags().BoolVar(&flagAutopilot, "autopilot", true, "Flap automatically toward each gap")
	simulateCmd.Flags().BoolVar(&flagRealtime, "realtime", false, "Tick at --fps instead of as fast as possible")
	simulateCmd.Flags().BoolVar(&flagRecord, "record", false, "Store the game summary in the analytics table")
	simulateCmd.Flags().BoolVar(&flagRender, "render", false, "Print the final frame")
}

func runSimulate(_ *cobra.Command, _ []string) {
	logger := newLogger(os.Stderr, "flappy-sim")

	base, err := loadTuning()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	env := environment()
	tuning := base.WithEnvironment(env)

	rc := runtimeConfig()
	if rc.Seed == 0 {
		rc.Seed = time.Now().UnixNano()
	}

	opts := session.Options{
		Width:  rc.ViewportW,
		Height: rc.ViewportH,
		Client: analytics.Client{
			DeviceID:    "simulate",
			Environment: env,
			Info:        "flappy simulate",
		},
		Logger: logger,
	}

	var (
		store    storage.Store
		recorder *analytics.Recorder
	)
	if flagRecord {
		store, err = storage.Open(context.Background(), flagDB)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening scores database: %v\n", err)
			os.Exit(1)
		}
		recorder = analytics.NewRecorder(store, logger.WithPrefix("analytics"))
		recorder.Start()
		opts.Reporter = recorder
	}

	sim := flappy.NewSim(tuning, flappy.NewGenerator(rc.Seed, tuning))
	ctrl := session.New(sim, opts)
	ctrl.Activate()

	var final flappy.Session
	if flagRealtime {
		final = simulateRealtime(ctrl, tuning, rc.TickRate, flagTicks)
	} else {
		final = simulateFast(ctrl, tuning, flagTicks)
	}

	if recorder != nil {
		recorder.Stop()
		store.Close()
	}

	fmt.Printf("Seed:      %d\n", rc.Seed)
	fmt.Printf("Profile:   %s\n", env)
	fmt.Printf("Phase:     %s\n", final.Phase())
	fmt.Printf("Ticks:     %d\n", final.Tick)
	fmt.Printf("Score:     %d\n", final.Score)
	fmt.Printf("Jumps:     %d\n", final.Analytics.Jumps)
	fmt.Printf("Player:    y=%.1f v=%.2f\n", final.Player.Y, final.Player.Velocity)
	fmt.Printf("Obstacles: %d on screen\n", len(final.Obstacles))

	if flagRender {
		scr := core.NewScreen(core.DefaultConfig().ScreenW, core.DefaultConfig().ScreenH)
		tui.NewRenderer(tui.MustDefaultSprites(), tuning, rc.ViewportW, rc.ViewportH).Render(scr, final, 0)
		fmt.Println()
		fmt.Println(scr.String())
	}
}

// simulateFast ticks in a tight loop.
func simulateFast(ctrl *session.Controller, t config.Tuning, maxTicks int) flappy.Session {
	s := ctrl.Snapshot()
	for s.Tick < maxTicks && !s.Ended {
		if flagAutopilot && shouldFlap(s, t) {
			ctrl.Flap()
		}
		s = ctrl.Tick()
	}
	return s
}

// simulateRealtime drives the controller through its own ticker.
func simulateRealtime(ctrl *session.Controller, t config.Tuning, fps, maxTicks int) flappy.Session {
	if fps <= 0 {
		fps = 60
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	frames := make(chan flappy.Session, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = ctrl.Run(ctx, time.Second/time.Duration(fps), frames)
	}()

	for s := range frames {
		if s.Ended || s.Tick >= maxTicks {
			break
		}
		if flagAutopilot && shouldFlap(s, t) {
			ctrl.Flap()
		}
	}
	cancel()
	<-done
	return ctrl.Snapshot()
}

// shouldFlap aims for the middle of the next gap ahead of the chicken.
func shouldFlap(s flappy.Session, t config.Tuning) bool {
	if s.Player.Velocity < 0 {
		return false
	}
	target := s.Player.Y
	for _, o := range s.Obstacles {
		if o.X+t.Obstacles.Width >= s.Player.X-t.Player.Radius {
			target = o.TopHeight + o.Gap()/2 + t.Player.Radius/2
			break
		}
	}
	return s.Player.Y > target
}
