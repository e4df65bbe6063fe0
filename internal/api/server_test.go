package api

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/flappy-chicken/internal/leaderboard"
	"github.com/vovakirdan/flappy-chicken/internal/storage"
)

func newTestServer(t *testing.T) (*Server, storage.Store) {
	t.Helper()
	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewServer(leaderboard.New(store, nil), store, nil), store
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv.Routes(), http.MethodGet, "/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /health = %d, expected 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestSubmitScoreStatusCodes(t *testing.T) {
	srv, store := newTestServer(t)
	h := srv.Routes()
	if _, err := store.InsertHighScore(context.Background(), "Champ", 40); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"beats best", `{"playerName":"Player 1","score":50}`, http.StatusCreated, leaderboard.MsgSubmitted},
		{"below best", `{"playerName":"Player 1","score":30}`, http.StatusConflict, leaderboard.MsgNotHigh},
		{"bad name", `{"playerName":"this-name-has-dashes","score":500}`, http.StatusUnprocessableEntity, leaderboard.MsgInvalidName},
		{"bad score", `{"playerName":"Player 1","score":1000000}`, http.StatusUnprocessableEntity, leaderboard.MsgFailed},
		{"bad json", `{"playerName":`, http.StatusBadRequest, "invalid request body"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/v1/highscores", tc.body)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, expected %d (body %s)", rec.Code, tc.status, rec.Body.String())
			}
			var resp SubmitResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("cannot decode response: %v", err)
			}
			if resp.Message != tc.message {
				t.Errorf("message = %q, expected %q", resp.Message, tc.message)
			}
		})
	}

	top, _ := store.TopHighScores(context.Background(), 10)
	if len(top) != 2 {
		t.Errorf("expected exactly one accepted insert, table has %d rows", len(top))
	}
}

func TestTopScores(t *testing.T) {
	srv, store := newTestServer(t)
	h := srv.Routes()
	ctx := context.Background()
	for i, name := range []string{"Ann", "Ben", "Cat"} {
		store.InsertHighScore(ctx, name, (i+1)*10)
	}

	rec := do(t, h, http.MethodGet, "/api/v1/highscores?limit=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}
	var top []HighScoreJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &top); err != nil {
		t.Fatalf("cannot decode: %v", err)
	}
	if len(top) != 2 || top[0].PlayerName != "Cat" || top[1].Score != 20 {
		t.Errorf("top = %+v", top)
	}

	if rec := do(t, h, http.MethodGet, "/api/v1/highscores?limit=zero", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit = %d, expected 400", rec.Code)
	}
}

func TestAnalytics(t *testing.T) {
	srv, store := newTestServer(t)
	h := srv.Routes()

	body := `{"score":5,"playTime":4200,"deviceType":"mobile","browserInfo":"Mozilla/5.0 (iPhone)",
		"gameStartTime":"2024-05-01T10:00:00Z","gameEndTime":"2024-05-01T10:00:04.2Z","jumps":14,"obstacles":5}`
	rec := do(t, h, http.MethodPost, "/api/v1/analytics", body)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"success":true`) {
		t.Fatalf("POST /analytics = %d %s", rec.Code, rec.Body.String())
	}

	stats, err := store.AnalyticsStats(context.Background())
	if err != nil {
		t.Fatalf("AnalyticsStats() failed: %v", err)
	}
	if stats.Games != 1 || stats.TotalJumps != 14 || stats.TotalPlayTimeMs != 4200 {
		t.Errorf("stats = %+v", stats)
	}

	rec = do(t, h, http.MethodPost, "/api/v1/analytics", `not json`)
	if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), `"success":false`) {
		t.Errorf("bad body = %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/api/v1/analytics/stats", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"games":1`) {
		t.Errorf("GET /analytics/stats = %d %s", rec.Code, rec.Body.String())
	}
}

func TestStreamPushesOnInsert(t *testing.T) {
	srv, store := newTestServer(t)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/v1/highscores/stream", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET stream failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	nextData := func() string {
		t.Helper()
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("stream read failed: %v", err)
			}
			if strings.HasPrefix(line, "data: ") {
				return strings.TrimSpace(strings.TrimPrefix(line, "data: "))
			}
		}
	}

	if first := nextData(); first != "[]" {
		t.Fatalf("first event = %s, expected empty list", first)
	}

	if _, err := store.InsertHighScore(context.Background(), "Streamer", 77); err != nil {
		t.Fatal(err)
	}

	second := nextData()
	var top []HighScoreJSON
	if err := json.Unmarshal([]byte(second), &top); err != nil {
		t.Fatalf("cannot decode event %q: %v", second, err)
	}
	if len(top) != 1 || top[0].Score != 77 {
		t.Errorf("event = %+v", top)
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	srv, _ := newTestServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("GET /health failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /health = %d, expected 200", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve() = %v, expected nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve() did not return after cancel")
	}
}
