// flappy is Flappy Chicken: a one-button side-scroller for the terminal,
// playable locally or over SSH, with a shared leaderboard.
//
// Usage:
//
//	flappy play              - Play in this terminal
//	flappy serve             - Start SSH server for remote play
//	flappy api               - Serve the leaderboard and analytics over HTTP
//	flappy scores            - Show the leaderboard and play statistics
//	flappy simulate          - Run a headless game and print the result
//
// Global flags:
//
//	--fps <rate>          - Set tick rate (default: 60)
//	--seed <value>        - Set RNG seed for reproducible obstacle layouts
//	--db <path|url>       - SQLite path or postgres:// URL (default: ~/.flappy/scores.db)
//	--config <path>       - Custom tuning YAML
//	--device <type>       - Physics profile: auto, desktop or mobile
//	--log-level <level>   - debug, info, warn or error
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/flappy-chicken/internal/config"
	"github.com/vovakirdan/flappy-chicken/internal/core"
	"github.com/vovakirdan/flappy-chicken/internal/storage"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDB       string
	flagConfig   string
	flagDevice   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "flappy",
	Short: "Flappy Chicken - flap through the pipes in your terminal",
	Long: `Flappy Chicken is a one-button side-scroller. Every key press or
click flaps; touch a pipe, the ceiling or the ground and the run is over.

Available commands:
  play      - Play in this terminal
  serve     - Start SSH server for remote play
  api       - Serve the leaderboard and analytics over HTTP
  scores    - View the leaderboard
  simulate  - Run a headless game

Examples:
  flappy play
  flappy play --device mobile
  flappy serve --ssh :2222
  flappy api --listen :8080 --db postgres://localhost/flappy
  flappy simulate --seed 42 --ticks 3000`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", storage.DefaultPath(), "SQLite path or postgres:// URL for scores")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom tuning YAML")
	rootCmd.PersistentFlags().StringVar(&flagDevice, "device", "auto", "Physics profile: auto, desktop or mobile")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(simulateCmd)
}

// newLogger creates a logger honouring --log-level.
func newLogger(w io.Writer, prefix string) *log.Logger {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           level,
	})
}

// environment resolves --device. "auto" looks at the terminal program.
func environment() config.Environment {
	if flagDevice == "" || flagDevice == "auto" {
		return config.DetectEnvironment(os.Getenv("TERM_PROGRAM"))
	}
	return config.ParseEnvironment(flagDevice)
}

// loadTuning loads the tuning file without choosing a profile.
func loadTuning() (config.Tuning, error) {
	t, err := config.Load(flagConfig)
	if err != nil {
		return t, fmt.Errorf("cannot load tuning: %w", err)
	}
	return t, nil
}

// runtimeConfig builds the runtime settings from the global flags.
func runtimeConfig() core.RuntimeConfig {
	rc := core.DefaultConfig()
	rc.TickRate = flagFPS
	rc.Seed = flagSeed
	return rc
}
