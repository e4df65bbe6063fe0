package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// notifyChannel is the LISTEN/NOTIFY channel carrying new high score IDs.
const notifyChannel = "high_scores_changes"

// listenRetry is how long the listener waits before reconnecting.
const listenRetry = 2 * time.Second

// PostgresStore is the shared Store. Every process listening on the same
// database sees every insert.
type PostgresStore struct {
	db     *pgxpool.Pool
	bc     *Broadcaster
	closed atomic.Bool
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *log.Logger
}

// OpenPostgres connects, migrates and starts the notification listener.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("storage: cannot reach postgres: %w", err)
	}

	s := &PostgresStore{
		db:     pool,
		bc:     NewBroadcaster(),
		logger: log.WithPrefix("storage"),
	}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	listenCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)
	go s.listen(listenCtx)

	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS high_scores (
			id UUID PRIMARY KEY,
			player_name TEXT NOT NULL,
			score INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_high_scores_top ON high_scores(score DESC, created_at);

		CREATE TABLE IF NOT EXISTS game_analytics (
			id BIGSERIAL PRIMARY KEY,
			device_id TEXT NOT NULL DEFAULT '',
			score INTEGER NOT NULL,
			play_time_ms BIGINT NOT NULL,
			device_type TEXT NOT NULL,
			browser_info TEXT NOT NULL DEFAULT '',
			game_start_time TIMESTAMPTZ NOT NULL,
			game_end_time TIMESTAMPTZ NOT NULL,
			jumps_count INTEGER NOT NULL DEFAULT 0,
			obstacles_passed INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_game_analytics_device ON game_analytics(device_id);
	`)
	return err
}

// listen holds one pooled connection in LISTEN mode and turns every
// notification into a broadcast. It reconnects until ctx is cancelled.
func (s *PostgresStore) listen(ctx context.Context) {
	defer s.wg.Done()

	for ctx.Err() == nil {
		err := s.listenOnce(ctx)
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn("notification listener stopped, retrying", "error", err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(listenRetry):
		}
	}
}

func (s *PostgresStore) listenOnce(ctx context.Context) error {
	conn, err := s.db.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{notifyChannel}.Sanitize()); err != nil {
		return err
	}

	for {
		if _, err := conn.Conn().WaitForNotification(ctx); err != nil {
			return err
		}
		s.bc.Notify()
	}
}

// Close stops the listener and closes the pool.
func (s *PostgresStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.cancel()
	s.wg.Wait()
	s.bc.Close()
	s.db.Close()
	return nil
}

// InsertHighScore inserts the row and publishes its ID in one transaction.
func (s *PostgresStore) InsertHighScore(ctx context.Context, playerName string, score int) (HighScore, error) {
	if s.closed.Load() {
		return HighScore{}, ErrClosed
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return HighScore{}, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	hs := HighScore{ID: uuid.NewString(), PlayerName: playerName, Score: score}
	err = tx.QueryRow(ctx,
		`INSERT INTO high_scores (id, player_name, score) VALUES ($1, $2, $3) RETURNING created_at`,
		hs.ID, hs.PlayerName, hs.Score,
	).Scan(&hs.CreatedAt)
	if err != nil {
		return HighScore{}, fmt.Errorf("storage: cannot save high score: %w", err)
	}

	if _, err := tx.Exec(ctx, "SELECT pg_notify($1, $2)", notifyChannel, hs.ID); err != nil {
		return HighScore{}, fmt.Errorf("storage: cannot publish high score: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return HighScore{}, fmt.Errorf("storage: cannot commit high score: %w", err)
	}
	return hs, nil
}

// TopHighScores retrieves the best scores, oldest first among ties.
func (s *PostgresStore) TopHighScores(ctx context.Context, limit int) ([]HighScore, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	rows, err := s.db.Query(ctx,
		`SELECT id::text, player_name, score, created_at
		 FROM high_scores
		 ORDER BY score DESC, created_at ASC
		 LIMIT $1`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query high scores: %w", err)
	}
	defer rows.Close()

	var entries []HighScore
	for rows.Next() {
		var e HighScore
		if err := rows.Scan(&e.ID, &e.PlayerName, &e.Score, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return entries, nil
}

// MaxHighScore returns the highest recorded score.
func (s *PostgresStore) MaxHighScore(ctx context.Context) (int, bool, error) {
	if s.closed.Load() {
		return 0, false, ErrClosed
	}

	var score int
	err := s.db.QueryRow(ctx, "SELECT score FROM high_scores ORDER BY score DESC LIMIT 1").Scan(&score)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("storage: cannot query high score: %w", err)
	}
	return score, true, nil
}

// InsertAnalytics records one session summary and returns its row ID.
func (s *PostgresStore) InsertAnalytics(ctx context.Context, rec AnalyticsRecord) (int64, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}

	var id int64
	err := s.db.QueryRow(ctx,
		`INSERT INTO game_analytics
		 (device_id, score, play_time_ms, device_type, browser_info, game_start_time, game_end_time, jumps_count, obstacles_passed)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		rec.DeviceID,
		rec.Score,
		rec.PlayTimeMs,
		rec.DeviceType,
		rec.BrowserInfo,
		rec.GameStartTime,
		rec.GameEndTime,
		rec.Jumps,
		rec.ObstaclesPassed,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save analytics: %w", err)
	}
	return id, nil
}

// AnalyticsStats aggregates the analytics table.
func (s *PostgresStore) AnalyticsStats(ctx context.Context) (AnalyticsStats, error) {
	if s.closed.Load() {
		return AnalyticsStats{}, ErrClosed
	}

	var stats AnalyticsStats
	var lastPlayed *time.Time
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(AVG(score), 0)::float8,
		        COALESCE(SUM(jumps_count), 0)::bigint, COALESCE(SUM(play_time_ms), 0)::bigint, MAX(game_end_time)
		 FROM game_analytics`,
	).Scan(&stats.Games, &stats.HighScore, &stats.AvgScore, &stats.TotalJumps, &stats.TotalPlayTimeMs, &lastPlayed)
	if err != nil {
		return AnalyticsStats{}, fmt.Errorf("storage: cannot get analytics stats: %w", err)
	}
	if lastPlayed != nil {
		stats.LastPlayed = *lastPlayed
	}
	return stats, nil
}

// Subscribe implements Store.
func (s *PostgresStore) Subscribe(ctx context.Context) <-chan struct{} {
	return s.bc.Subscribe(ctx)
}

var _ Store = (*PostgresStore)(nil)
