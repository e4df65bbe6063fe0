package analytics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/flappy-chicken/internal/config"
	"github.com/vovakirdan/flappy-chicken/internal/games/flappy"
	"github.com/vovakirdan/flappy-chicken/internal/storage"
)

type sinkFunc func(storage.AnalyticsRecord) error

type recordingSink struct {
	mu   sync.Mutex
	recs []storage.AnalyticsRecord
	fail sinkFunc
}

func (s *recordingSink) InsertAnalytics(_ context.Context, rec storage.AnalyticsRecord) (int64, error) {
	if s.fail != nil {
		if err := s.fail(rec); err != nil {
			return 0, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
	return int64(len(s.recs)), nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recs)
}

func TestSummarize(t *testing.T) {
	start := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(12500 * time.Millisecond)

	s := flappy.Session{
		Score:   7,
		Started: true,
		Ended:   true,
		Analytics: flappy.Analytics{
			StartedAt:       start,
			Jumps:           31,
			ObstaclesPassed: 7,
		},
	}

	sum := Summarize(s, end, Client{DeviceID: "dev-1", Environment: config.EnvMobile, Info: "SSH-2.0-Termius Android"})

	if sum.PlayTimeMs != 12500 {
		t.Errorf("PlayTimeMs = %d, expected 12500", sum.PlayTimeMs)
	}
	if sum.Score != 7 || sum.Jumps != 31 || sum.ObstaclesPassed != 7 {
		t.Errorf("counters = %+v", sum)
	}
	if sum.DeviceType != config.EnvMobile {
		t.Errorf("DeviceType = %q, expected mobile", sum.DeviceType)
	}

	rec := sum.Record()
	if rec.DeviceType != "mobile" || rec.DeviceID != "dev-1" || rec.BrowserInfo != "SSH-2.0-Termius Android" {
		t.Errorf("Record() = %+v", rec)
	}
	if !rec.GameStartTime.Equal(start) || !rec.GameEndTime.Equal(end) {
		t.Errorf("Record() times = %v..%v", rec.GameStartTime, rec.GameEndTime)
	}
}

func TestSummarizeDefaults(t *testing.T) {
	sum := Summarize(flappy.Session{}, time.Now(), Client{})
	if sum.PlayTimeMs != 0 {
		t.Errorf("PlayTimeMs = %d for a session that never started", sum.PlayTimeMs)
	}
	if sum.DeviceType != config.EnvDesktop {
		t.Errorf("DeviceType = %q, expected desktop", sum.DeviceType)
	}
}

func TestRecorderWritesInBackground(t *testing.T) {
	sink := &recordingSink{}
	r := NewRecorder(sink, nil)
	r.Start()

	for i := 0; i < 5; i++ {
		if !r.Report(Summary{Score: i}) {
			t.Fatalf("Report(%d) dropped", i)
		}
	}
	r.Stop()

	if sink.count() != 5 {
		t.Errorf("recorded %d summaries, expected 5", sink.count())
	}
	recorded, dropped, failed := r.Stats()
	if recorded != 5 || dropped != 0 || failed != 0 {
		t.Errorf("Stats() = %d, %d, %d", recorded, dropped, failed)
	}

	if r.Report(Summary{}) {
		t.Error("Report after Stop should drop")
	}
	r.Stop() // Second stop is a no-op
}

func TestRecorderDropsWhenFull(t *testing.T) {
	sink := &recordingSink{}
	r := NewRecorder(sink, nil) // Not started, nothing drains the queue

	for i := 0; i < QueueSize; i++ {
		if !r.Report(Summary{Score: i}) {
			t.Fatalf("Report(%d) dropped before the queue was full", i)
		}
	}
	if r.Report(Summary{Score: -1}) {
		t.Error("Report on a full queue should drop")
	}

	r.Start()
	r.Stop()
	if sink.count() != QueueSize {
		t.Errorf("flushed %d summaries, expected %d", sink.count(), QueueSize)
	}
}

func TestRecorderAccountsForReportsRacingStop(t *testing.T) {
	const (
		reporters = 8
		perWorker = 200
	)

	sink := &recordingSink{}
	r := NewRecorder(sink, nil)
	r.Start()

	var wg sync.WaitGroup
	for w := 0; w < reporters; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				r.Report(Summary{Score: i})
			}
		}()
	}
	r.Stop()
	wg.Wait()

	recorded, dropped, failed := r.Stats()
	if total := recorded + dropped + failed; total != reporters*perWorker {
		t.Errorf("recorded+dropped+failed = %d, expected %d", total, reporters*perWorker)
	}
	if int64(sink.count()) != recorded {
		t.Errorf("sink holds %d rows, expected %d", sink.count(), recorded)
	}
}

func TestRecorderSwallowsFailures(t *testing.T) {
	sink := &recordingSink{fail: func(storage.AnalyticsRecord) error {
		return errors.New("database is locked")
	}}
	r := NewRecorder(sink, nil)
	r.Start()
	r.Report(Summary{Score: 3})
	r.Stop()

	if _, _, failed := r.Stats(); failed != 1 {
		t.Errorf("failed = %d, expected 1", failed)
	}
}

func TestDeviceIDPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "device_id")

	first, err := DeviceID(path)
	if err != nil {
		t.Fatalf("DeviceID() failed: %v", err)
	}
	if len(first) != 36 {
		t.Errorf("DeviceID() = %q, expected a UUID", first)
	}

	second, err := DeviceID(path)
	if err != nil {
		t.Fatalf("DeviceID() failed: %v", err)
	}
	if first != second {
		t.Errorf("DeviceID() changed between calls: %q vs %q", first, second)
	}
}

func TestDeviceIDReplacesGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device_id")
	if err := os.WriteFile(path, []byte("not-a-uuid"), 0o600); err != nil {
		t.Fatal(err)
	}

	id, err := DeviceID(path)
	if err != nil {
		t.Fatalf("DeviceID() failed: %v", err)
	}
	if id == "not-a-uuid" {
		t.Error("invalid stored id should be replaced")
	}
}
