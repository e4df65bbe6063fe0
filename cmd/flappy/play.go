package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/flappy-chicken/internal/analytics"
	"github.com/vovakirdan/flappy-chicken/internal/leaderboard"
	"github.com/vovakirdan/flappy-chicken/internal/platform/tui"
	"github.com/vovakirdan/flappy-chicken/internal/storage"
)

var (
	flagSprites string
	flagLogFile string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play Flappy Chicken",
	Long: `Start playing in this terminal.

Controls:
  Space/Enter/Up/W/click  - Start, flap, and play again after a crash
  Tab                     - High scores (when not flying)
  Esc                     - Back / skip name entry
  Q/Ctrl+C                - Quit

Logs go to a file so they do not disturb the game screen.

Examples:
  flappy play
  flappy play --device mobile
  flappy play --seed 42 --config ./my-tuning.yaml`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagSprites, "sprites", "", "Path to a custom sprite sheet YAML")
	playCmd.Flags().StringVar(&flagLogFile, "log-file", "~/.flappy/flappy.log", "Where to write logs while playing")
}

func runPlay(_ *cobra.Command, _ []string) {
	logFile, err := openLogFile(flagLogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := newLogger(logFile, "flappy")

	tuning, err := loadTuning()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	env := environment()

	sprites, err := loadSprites(flagSprites)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	rc := runtimeConfig()
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		rc.ScreenW = w
		rc.ScreenH = h
	}

	deviceID, err := analytics.DeviceID(analytics.DefaultDevicePath)
	if err != nil {
		logger.Warn("device id not saved", "error", err)
	}

	opts := tui.GameOptions{
		Tuning:  tuning.WithEnvironment(env),
		Runtime: rc,
		Client: analytics.Client{
			DeviceID:    deviceID,
			Environment: env,
			Info:        terminalInfo(),
		},
		Sprites: sprites,
		Logger:  logger,
	}

	// Open score storage
	var recorder *analytics.Recorder
	store, err := storage.Open(context.Background(), flagDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		// Continue without storage - game still works
	} else {
		recorder = analytics.NewRecorder(store, logger.WithPrefix("analytics"))
		recorder.Start()

		opts.Board = leaderboard.New(store, logger.WithPrefix("leaderboard"))
		opts.Reporter = recorder
	}

	runErr := tui.Run(opts)

	// Flush analytics before the store goes away
	if recorder != nil {
		recorder.Stop()
	}
	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
}

// openLogFile opens path for appending, creating parent directories.
func openLogFile(path string) (*os.File, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("cannot create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("cannot open log file: %w", err)
	}
	return f, nil
}

// loadSprites reads a custom sprite sheet, or the built-in one for "".
func loadSprites(path string) (*tui.Sprites, error) {
	if path == "" {
		return tui.LoadSprites(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read sprite sheet %s: %w", path, err)
	}
	return tui.LoadSprites(data)
}

// terminalInfo describes the local terminal for analytics.
func terminalInfo() string {
	info := os.Getenv("TERM_PROGRAM")
	if t := os.Getenv("TERM"); t != "" {
		if info != "" {
			info += " "
		}
		info += t
	}
	return info
}
