// Package leaderboard implements high score submission rules on top of a
// storage.Store: name validation, the per-client submission guard and the
// "beat the current best" check.
package leaderboard

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/flappy-chicken/internal/storage"
)

// Name and score bounds.
const (
	MinNameLen = 2
	MaxNameLen = 20
	MaxScore   = 999999
)

// User-visible submission results.
const (
	MsgSubmitting  = "Already submitting a score"
	MsgInvalidName = "Name must be 2-20 characters long and contain only letters, numbers, and spaces"
	MsgSubmitted   = "New high score submitted!"
	MsgNotHigh     = "Not a high score"
	MsgFailed      = "Failed to submit score. Please try again."
)

var (
	ErrSubmitting   = errors.New("leaderboard: submission already in progress")
	ErrInvalidName  = errors.New("leaderboard: invalid player name")
	ErrInvalidScore = errors.New("leaderboard: score out of range")
	ErrNotHighScore = errors.New("leaderboard: not a high score")
)

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9\s]+$`)

// ValidatePlayerName reports whether name may appear on the leaderboard.
func ValidatePlayerName(name string) bool {
	n := len(name)
	return n >= MinNameLen && n <= MaxNameLen && namePattern.MatchString(name)
}

// Message maps a Submit result to the text shown to the player.
func Message(err error) string {
	switch {
	case err == nil:
		return MsgSubmitted
	case errors.Is(err, ErrSubmitting):
		return MsgSubmitting
	case errors.Is(err, ErrInvalidName):
		return MsgInvalidName
	case errors.Is(err, ErrNotHighScore):
		return MsgNotHigh
	default:
		return MsgFailed
	}
}

// Service is the shared leaderboard. It is safe for concurrent use; Submit
// calls from different clients run their check and insert one at a time.
type Service struct {
	store  storage.Store
	logger *log.Logger
	sem    chan struct{} // Held across the best-score check and the insert
}

// New creates a leaderboard over store.
func New(store storage.Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{store: store, logger: logger, sem: make(chan struct{}, 1)}
}

// Submitter is one client's handle on the leaderboard. A client may have
// only one submission in flight; other clients are not affected.
type Submitter struct {
	svc        *Service
	submitting atomic.Bool
}

// NewSubmitter creates a submission handle for one client.
func (s *Service) NewSubmitter() *Submitter {
	return &Submitter{svc: s}
}

// Submit is Service.Submit guarded against a second submission from the
// same client while the first is in flight.
func (c *Submitter) Submit(ctx context.Context, name string, score int) (storage.HighScore, error) {
	if !c.submitting.CompareAndSwap(false, true) {
		return storage.HighScore{}, ErrSubmitting
	}
	defer c.submitting.Store(false)
	return c.svc.Submit(ctx, name, score)
}

// Submitting reports whether this client has a submission in flight.
func (c *Submitter) Submitting() bool {
	return c.submitting.Load()
}

// Submit records score under name when it beats the current best.
func (s *Service) Submit(ctx context.Context, name string, score int) (storage.HighScore, error) {
	if !ValidatePlayerName(name) {
		return storage.HighScore{}, ErrInvalidName
	}
	if score < 0 || score > MaxScore {
		return storage.HighScore{}, ErrInvalidScore
	}

	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return storage.HighScore{}, ctx.Err()
	}
	defer func() { <-s.sem }()

	best, ok, err := s.store.MaxHighScore(ctx)
	if err != nil {
		s.logger.Error("cannot read current high score", "error", err)
		return storage.HighScore{}, err
	}
	if ok && score <= best {
		return storage.HighScore{}, ErrNotHighScore
	}

	hs, err := s.store.InsertHighScore(ctx, strings.TrimSpace(name), score)
	if err != nil {
		s.logger.Error("cannot submit score", "error", err)
		return storage.HighScore{}, err
	}
	s.logger.Info("new high score", "player", hs.PlayerName, "score", hs.Score)
	return hs, nil
}

// IsHighScore reports whether score would be accepted by Submit.
func (s *Service) IsHighScore(ctx context.Context, score int) (bool, error) {
	if score < 0 || score > MaxScore {
		return false, nil
	}
	best, ok, err := s.store.MaxHighScore(ctx)
	if err != nil {
		return false, err
	}
	return !ok || score > best, nil
}

// Top returns the best n entries; n <= 0 means the default of ten.
func (s *Service) Top(ctx context.Context, n int) ([]storage.HighScore, error) {
	return s.store.TopHighScores(ctx, n)
}

// Watch sends the current top n immediately and again after every insert.
// The channel is closed when ctx is done or the store closes.
func (s *Service) Watch(ctx context.Context, n int) <-chan []storage.HighScore {
	out := make(chan []storage.HighScore, 1)
	changes := s.store.Subscribe(ctx)

	go func() {
		defer close(out)

		send := func() bool {
			top, err := s.store.TopHighScores(ctx, n)
			if err != nil {
				if ctx.Err() == nil {
					s.logger.Warn("cannot refresh leaderboard", "error", err)
				}
				return !errors.Is(err, storage.ErrClosed)
			}
			select {
			case out <- top:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !send() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok || !send() {
					return
				}
			}
		}
	}()
	return out
}
