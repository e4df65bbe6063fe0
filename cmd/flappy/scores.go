package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flappy-chicken/internal/storage"
)

var (
	flagLimit int
	flagStats bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the leaderboard",
	Long: `Display the top high scores, and optionally the play statistics
collected from finished games.

Examples:
  flappy scores
  flappy scores --limit 25
  flappy scores --stats`,
	Args: cobra.NoArgs,
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVarP(&flagLimit, "limit", "n", storage.DefaultLimit, "Number of scores to show")
	scoresCmd.Flags().BoolVar(&flagStats, "stats", false, "Also show play statistics")
}

func runScores(_ *cobra.Command, _ []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := storage.Open(ctx, flagDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening scores database: %v\n", err)
		os.Exit(1)
	}

	scores, err := store.TopHighScores(ctx, flagLimit)
	if err != nil {
		store.Close()
		fmt.Fprintf(os.Stderr, "Error retrieving scores: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	fmt.Println("High Scores - Flappy Chicken")
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Println("Play 'flappy play' to set the first high score!")
	} else {
		fmt.Printf("  %-4s  %-20s  %-8s  %s\n", "Rank", "Player", "Score", "Date")
		fmt.Printf("  %-4s  %-20s  %-8s  %s\n", "----", "------", "-----", "----")

		for i, entry := range scores {
			dateStr := entry.CreatedAt.Local().Format("2006-01-02 15:04")
			fmt.Printf("  %-4d  %-20s  %-8d  %s\n", i+1, entry.PlayerName, entry.Score, dateStr)
		}
	}

	if !flagStats {
		return
	}

	stats, err := store.AnalyticsStats(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving statistics: %v\n", err)
		return
	}

	fmt.Println()
	fmt.Println("Statistics")
	fmt.Printf("  Games played:  %d\n", stats.Games)
	fmt.Printf("  Best score:    %d\n", stats.HighScore)
	fmt.Printf("  Average score: %.1f\n", stats.AvgScore)
	fmt.Printf("  Total jumps:   %d\n", stats.TotalJumps)
	fmt.Printf("  Time played:   %s\n", (time.Duration(stats.TotalPlayTimeMs) * time.Millisecond).Round(time.Second))
	if !stats.LastPlayed.IsZero() {
		fmt.Printf("  Last played:   %s\n", stats.LastPlayed.Local().Format("2006-01-02 15:04"))
	}
}
