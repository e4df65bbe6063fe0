// Package analytics builds per-session summaries and records them off the
// frame loop.
package analytics

import (
	"time"

	"github.com/vovakirdan/flappy-chicken/internal/config"
	"github.com/vovakirdan/flappy-chicken/internal/games/flappy"
	"github.com/vovakirdan/flappy-chicken/internal/storage"
)

// Summary describes one finished session.
type Summary struct {
	DeviceID        string             `json:"deviceId,omitempty"`
	Score           int                `json:"score"`
	PlayTimeMs      int64              `json:"playTime"`
	DeviceType      config.Environment `json:"deviceType"`
	BrowserInfo     string             `json:"browserInfo"`
	GameStartTime   time.Time          `json:"gameStartTime"`
	GameEndTime     time.Time          `json:"gameEndTime"`
	Jumps           int                `json:"jumps"`
	ObstaclesPassed int                `json:"obstacles"`
}

// Client identifies where a session was played.
type Client struct {
	DeviceID    string
	Environment config.Environment
	Info        string // SSH client version, terminal program or user agent
}

// Summarize builds the summary of an ended session.
func Summarize(s flappy.Session, end time.Time, c Client) Summary {
	start := s.Analytics.StartedAt
	playTime := end.Sub(start).Milliseconds()
	if start.IsZero() || playTime < 0 {
		playTime = 0
	}

	env := c.Environment
	if env == "" {
		env = config.EnvDesktop
	}

	return Summary{
		DeviceID:        c.DeviceID,
		Score:           s.Score,
		PlayTimeMs:      playTime,
		DeviceType:      env,
		BrowserInfo:     c.Info,
		GameStartTime:   start,
		GameEndTime:     end,
		Jumps:           s.Analytics.Jumps,
		ObstaclesPassed: s.Analytics.ObstaclesPassed,
	}
}

// Record converts the summary into a storage row.
func (s Summary) Record() storage.AnalyticsRecord {
	return storage.AnalyticsRecord{
		DeviceID:        s.DeviceID,
		Score:           s.Score,
		PlayTimeMs:      s.PlayTimeMs,
		DeviceType:      string(s.DeviceType),
		BrowserInfo:     s.BrowserInfo,
		GameStartTime:   s.GameStartTime,
		GameEndTime:     s.GameEndTime,
		Jumps:           s.Jumps,
		ObstaclesPassed: s.ObstaclesPassed,
	}
}
