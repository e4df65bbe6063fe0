// Package storage persists high scores and per-session analytics.
// SQLite (pure-Go modernc.org/sqlite) is the default backend; a PostgreSQL
// backend built on pgx lets several servers share one leaderboard.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultLimit is used when a caller asks for a non-positive number of rows.
const DefaultLimit = 10

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("storage: store is closed")

// HighScore is one leaderboard row.
type HighScore struct {
	ID         string
	PlayerName string
	Score      int
	CreatedAt  time.Time
}

// AnalyticsRecord is the summary of one finished session.
type AnalyticsRecord struct {
	ID              int64
	DeviceID        string
	Score           int
	PlayTimeMs      int64
	DeviceType      string
	BrowserInfo     string
	GameStartTime   time.Time
	GameEndTime     time.Time
	Jumps           int
	ObstaclesPassed int
	CreatedAt       time.Time
}

// AnalyticsStats aggregates every recorded session.
type AnalyticsStats struct {
	Games           int
	HighScore       int
	AvgScore        float64
	TotalJumps      int64
	TotalPlayTimeMs int64
	LastPlayed      time.Time
}

// Store is the persistence boundary used by the leaderboard and analytics.
type Store interface {
	// InsertHighScore adds a row and notifies subscribers.
	InsertHighScore(ctx context.Context, playerName string, score int) (HighScore, error)
	// TopHighScores returns up to limit rows, best first.
	TopHighScores(ctx context.Context, limit int) ([]HighScore, error)
	// MaxHighScore returns the best score and whether any row exists.
	MaxHighScore(ctx context.Context) (int, bool, error)
	InsertAnalytics(ctx context.Context, rec AnalyticsRecord) (int64, error)
	AnalyticsStats(ctx context.Context) (AnalyticsStats, error)
	// Subscribe delivers a signal after every high score insert. The channel
	// is closed when ctx is done or the store is closed. Signals coalesce.
	Subscribe(ctx context.Context) <-chan struct{}
	Close() error
}

// Open picks a backend from the DSN: postgres:// and postgresql:// URLs
// connect to PostgreSQL, anything else is treated as a SQLite file path.
func Open(ctx context.Context, dsn string) (Store, error) {
	if IsPostgresDSN(dsn) {
		pg, err := OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return pg, nil
	}
	lite, err := OpenSQLite(dsn)
	if err != nil {
		return nil, err
	}
	return lite, nil
}

// IsPostgresDSN reports whether dsn addresses a PostgreSQL server.
func IsPostgresDSN(dsn string) bool {
	lower := strings.ToLower(dsn)
	return strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://")
}

// DefaultPath returns the default SQLite location.
func DefaultPath() string {
	return "~/.flappy/scores.db"
}

// expandHome expands a leading ~ to the user's home directory.
func expandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("storage: cannot expand home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}
