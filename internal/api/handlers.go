package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/vovakirdan/flappy-chicken/internal/analytics"
	"github.com/vovakirdan/flappy-chicken/internal/config"
	"github.com/vovakirdan/flappy-chicken/internal/leaderboard"
	"github.com/vovakirdan/flappy-chicken/internal/storage"
)

// MaxLimit caps the limit query parameter.
const MaxLimit = 100

// HighScoreJSON is the wire form of a leaderboard row.
type HighScoreJSON struct {
	ID         string    `json:"id"`
	PlayerName string    `json:"playerName"`
	Score      int       `json:"score"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SubmitRequest is the body of POST /api/v1/highscores.
type SubmitRequest struct {
	PlayerName string `json:"playerName"`
	Score      int    `json:"score"`
}

// SubmitResponse mirrors the submission status shown to players.
type SubmitResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Entry   *HighScoreJSON `json:"entry,omitempty"`
}

func toJSON(entries []storage.HighScore) []HighScoreJSON {
	out := make([]HighScoreJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, HighScoreJSON{
			ID:         e.ID,
			PlayerName: e.PlayerName,
			Score:      e.Score,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.startTime).Round(time.Second).String(),
	})
}

func (s *Server) handleTopScores(w http.ResponseWriter, r *http.Request) {
	limit := storage.DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, MaxLimit)
	}

	top, err := s.board.Top(r.Context(), limit)
	if err != nil {
		s.logger.Error("error fetching high scores", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cannot load high scores"})
		return
	}
	s.writeJSON(w, http.StatusOK, toJSON(top))
}

func (s *Server) handleSubmitScore(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, SubmitResponse{Message: "invalid request body"})
		return
	}

	hs, err := s.board.Submit(r.Context(), req.PlayerName, req.Score)
	resp := SubmitResponse{Success: err == nil, Message: leaderboard.Message(err)}

	switch {
	case err == nil:
		entry := toJSON([]storage.HighScore{hs})[0]
		resp.Entry = &entry
		s.writeJSON(w, http.StatusCreated, resp)
	case errors.Is(err, leaderboard.ErrInvalidName), errors.Is(err, leaderboard.ErrInvalidScore):
		s.writeJSON(w, http.StatusUnprocessableEntity, resp)
	case errors.Is(err, leaderboard.ErrNotHighScore):
		s.writeJSON(w, http.StatusConflict, resp)
	default:
		s.writeJSON(w, http.StatusInternalServerError, resp)
	}
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	var sum analytics.Summary
	if err := json.NewDecoder(r.Body).Decode(&sum); err != nil {
		s.logger.Error("error recording analytics", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]bool{"success": false})
		return
	}
	sum.DeviceType = config.ParseEnvironment(string(sum.DeviceType))
	if sum.BrowserInfo == "" {
		sum.BrowserInfo = r.UserAgent()
	}

	if _, err := s.store.InsertAnalytics(r.Context(), sum.Record()); err != nil {
		s.logger.Error("error recording analytics", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]bool{"success": false})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleAnalyticsStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.AnalyticsStats(r.Context())
	if err != nil {
		s.logger.Error("error loading analytics stats", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cannot load stats"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"games":           stats.Games,
		"highScore":       stats.HighScore,
		"avgScore":        stats.AvgScore,
		"totalJumps":      stats.TotalJumps,
		"totalPlayTimeMs": stats.TotalPlayTimeMs,
		"lastPlayed":      stats.LastPlayed,
	})
}
