package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/vovakirdan/flappy-chicken/internal/storage"
)

// handleStream pushes the top scores as Server-Sent Events: once on connect
// and again after every insert.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	limit := storage.DefaultLimit
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		limit = min(n, MaxLimit)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	for top := range s.board.Watch(ctx, limit) {
		data, err := json.Marshal(toJSON(top))
		if err != nil {
			s.logger.Error("cannot encode stream event", "error", err)
			return
		}
		if _, err := fmt.Fprintf(w, "event: highscores\ndata: %s\n\n", data); err != nil {
			return
		}
		flusher.Flush()
	}
}
