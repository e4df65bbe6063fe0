package analytics

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/flappy-chicken/internal/storage"
)

// QueueSize bounds the number of summaries waiting to be written.
const QueueSize = 64

// writeTimeout caps a single insert.
const writeTimeout = 5 * time.Second

// Sink receives analytics rows. storage.Store satisfies it.
type Sink interface {
	InsertAnalytics(ctx context.Context, rec storage.AnalyticsRecord) (int64, error)
}

// Recorder writes summaries in the background. Reporting never blocks the
// caller and write failures never reach it.
type Recorder struct {
	sink   Sink
	logger *log.Logger

	queue    chan Summary
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	// mu orders Report sends before Stop closes done, so the final drain
	// sees every accepted summary.
	mu      sync.RWMutex
	stopped bool

	recorded atomic.Int64
	dropped  atomic.Int64
	failed   atomic.Int64
}

// NewRecorder creates a recorder writing to sink.
func NewRecorder(sink Sink, logger *log.Logger) *Recorder {
	if logger == nil {
		logger = log.Default()
	}
	return &Recorder{
		sink:   sink,
		logger: logger,
		queue:  make(chan Summary, QueueSize),
		done:   make(chan struct{}),
	}
}

// Start begins background processing.
func (r *Recorder) Start() {
	r.wg.Add(1)
	go r.process()
}

// Stop flushes queued summaries and waits for the worker to exit.
func (r *Recorder) Stop() {
	r.stopOnce.Do(func() {
		r.mu.Lock()
		r.stopped = true
		close(r.done)
		r.mu.Unlock()
	})
	r.wg.Wait()
}

// Report queues a summary. It returns false when the summary was dropped
// because the queue is full or the recorder is stopped.
func (r *Recorder) Report(s Summary) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.stopped {
		r.dropped.Add(1)
		return false
	}

	select {
	case r.queue <- s:
		return true
	default:
		r.dropped.Add(1)
		r.logger.Warn("analytics queue full, dropping summary", "score", s.Score)
		return false
	}
}

// Stats returns how many summaries were written, dropped and failed.
func (r *Recorder) Stats() (recorded, dropped, failed int64) {
	return r.recorded.Load(), r.dropped.Load(), r.failed.Load()
}

func (r *Recorder) process() {
	defer r.wg.Done()
	for {
		select {
		case s := <-r.queue:
			r.write(s)
		case <-r.done:
			r.drain()
			return
		}
	}
}

func (r *Recorder) drain() {
	for {
		select {
		case s := <-r.queue:
			r.write(s)
		default:
			return
		}
	}
}

func (r *Recorder) write(s Summary) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if _, err := r.sink.InsertAnalytics(ctx, s.Record()); err != nil {
		r.failed.Add(1)
		r.logger.Error("error recording game analytics", "error", err)
		return
	}
	r.recorded.Add(1)
	r.logger.Debug("recorded game analytics",
		"score", s.Score,
		"jumps", s.Jumps,
		"play_ms", s.PlayTimeMs,
	)
}
