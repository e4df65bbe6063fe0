package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// timeLayout is fixed-width so that text ordering matches time ordering.
const timeLayout = "2006-01-02 15:04:05.000000000"

// SQLiteStore is the file-backed Store. Change notifications only reach
// subscribers inside the same process.
type SQLiteStore struct {
	db     *sql.DB
	bc     *Broadcaster
	closed atomic.Bool
	now    func() time.Time
}

// OpenSQLite creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	dbPath, err := expandHome(dbPath)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// Serialise writers; SQLite allows one at a time anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &SQLiteStore{
		db:  db,
		bc:  NewBroadcaster(),
		now: time.Now,
	}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *SQLiteStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS high_scores (
			id TEXT PRIMARY KEY,
			player_name TEXT NOT NULL,
			score INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_high_scores_top ON high_scores(score DESC, created_at);

		CREATE TABLE IF NOT EXISTS game_analytics (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			device_id TEXT NOT NULL DEFAULT '',
			score INTEGER NOT NULL,
			play_time_ms INTEGER NOT NULL,
			device_type TEXT NOT NULL,
			browser_info TEXT NOT NULL DEFAULT '',
			game_start_time TEXT NOT NULL,
			game_end_time TEXT NOT NULL,
			jumps_count INTEGER NOT NULL DEFAULT 0,
			obstacles_passed INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_game_analytics_device ON game_analytics(device_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection and every subscription.
func (s *SQLiteStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.bc.Close()
	return s.db.Close()
}

// InsertHighScore records a new leaderboard row.
func (s *SQLiteStore) InsertHighScore(ctx context.Context, playerName string, score int) (HighScore, error) {
	if s.closed.Load() {
		return HighScore{}, ErrClosed
	}

	hs := HighScore{
		ID:         uuid.NewString(),
		PlayerName: playerName,
		Score:      score,
		CreatedAt:  s.now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO high_scores (id, player_name, score, created_at) VALUES (?, ?, ?, ?)",
		hs.ID, hs.PlayerName, hs.Score, hs.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return HighScore{}, fmt.Errorf("storage: cannot save high score: %w", err)
	}

	s.bc.Notify()
	return hs, nil
}

// TopHighScores retrieves the best scores, oldest first among ties.
func (s *SQLiteStore) TopHighScores(ctx context.Context, limit int) ([]HighScore, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, player_name, score, created_at
		 FROM high_scores
		 ORDER BY score DESC, created_at ASC
		 LIMIT ?`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query high scores: %w", err)
	}
	defer rows.Close()

	var entries []HighScore
	for rows.Next() {
		var e HighScore
		var createdAt any
		if err := rows.Scan(&e.ID, &e.PlayerName, &e.Score, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// MaxHighScore returns the highest recorded score.
func (s *SQLiteStore) MaxHighScore(ctx context.Context) (int, bool, error) {
	if s.closed.Load() {
		return 0, false, ErrClosed
	}

	var score sql.NullInt64
	err := s.db.QueryRowContext(ctx, "SELECT MAX(score) FROM high_scores").Scan(&score)
	if err != nil {
		return 0, false, fmt.Errorf("storage: cannot query high score: %w", err)
	}
	if !score.Valid {
		return 0, false, nil
	}
	return int(score.Int64), true, nil
}

// InsertAnalytics records one session summary and returns its row ID.
func (s *SQLiteStore) InsertAnalytics(ctx context.Context, rec AnalyticsRecord) (int64, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO game_analytics
		 (device_id, score, play_time_ms, device_type, browser_info, game_start_time, game_end_time, jumps_count, obstacles_passed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.DeviceID,
		rec.Score,
		rec.PlayTimeMs,
		rec.DeviceType,
		rec.BrowserInfo,
		rec.GameStartTime.UTC().Format(timeLayout),
		rec.GameEndTime.UTC().Format(timeLayout),
		rec.Jumps,
		rec.ObstaclesPassed,
		s.now().UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save analytics: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// AnalyticsStats aggregates the analytics table.
func (s *SQLiteStore) AnalyticsStats(ctx context.Context) (AnalyticsStats, error) {
	if s.closed.Load() {
		return AnalyticsStats{}, ErrClosed
	}

	var stats AnalyticsStats
	var lastPlayed sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(AVG(score), 0),
		        COALESCE(SUM(jumps_count), 0), COALESCE(SUM(play_time_ms), 0), MAX(game_end_time)
		 FROM game_analytics`,
	).Scan(&stats.Games, &stats.HighScore, &stats.AvgScore, &stats.TotalJumps, &stats.TotalPlayTimeMs, &lastPlayed)
	if err != nil {
		return AnalyticsStats{}, fmt.Errorf("storage: cannot get analytics stats: %w", err)
	}
	if lastPlayed.Valid {
		stats.LastPlayed = parseTime(lastPlayed.String)
	}
	return stats, nil
}

// Subscribe implements Store.
func (s *SQLiteStore) Subscribe(ctx context.Context) <-chan struct{} {
	return s.bc.Subscribe(ctx)
}

// Subscribers returns the number of live subscriptions.
func (s *SQLiteStore) Subscribers() int {
	return s.bc.Len()
}

// parseTime handles both driver-decoded times and stored text.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		for _, layout := range []string{timeLayout, time.RFC3339Nano, "2006-01-02 15:04:05"} {
			if parsed, err := time.Parse(layout, v); err == nil {
				return parsed
			}
		}
	case []byte:
		return parseTime(string(v))
	}
	return time.Time{}
}

var _ Store = (*SQLiteStore)(nil)
