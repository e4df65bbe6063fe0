package tui

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/google/uuid"

	"github.com/vovakirdan/flappy-chicken/internal/analytics"
	"github.com/vovakirdan/flappy-chicken/internal/config"
	"github.com/vovakirdan/flappy-chicken/internal/core"
	"github.com/vovakirdan/flappy-chicken/internal/leaderboard"
	"github.com/vovakirdan/flappy-chicken/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.flappy/host_key.
	HostKeyPath string

	// DSN selects the score database (SQLite path or postgres:// URL).
	DSN string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	Tuning  config.Tuning
	Runtime core.RuntimeConfig
	Sprites *Sprites
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		DSN:         storage.DefaultPath(),
		IdleTimeout: 30 * time.Minute,
		Tuning:      config.DefaultTuning(),
		Runtime:     core.DefaultConfig(),
	}
}

// SSHServer serves one game per SSH connection. All connections share the
// store, the leaderboard and the analytics recorder.
type SSHServer struct {
	config   SSHServerConfig
	server   *ssh.Server
	store    storage.Store
	board    *leaderboard.Service
	recorder *analytics.Recorder
	logger   *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(ctx context.Context, cfg SSHServerConfig) (*SSHServer, error) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "flappy-ssh",
	})

	srv := &SSHServer{
		config: cfg,
		logger: logger,
	}

	store, err := storage.Open(ctx, cfg.DSN)
	if err != nil {
		logger.Warn("could not open scores database", "error", err)
		// Continue without high scores or analytics
	} else {
		srv.store = store
		srv.board = leaderboard.New(store, logger.WithPrefix("leaderboard"))
		srv.recorder = analytics.NewRecorder(store, logger.WithPrefix("analytics"))
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			srv.closeStore()
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".flappy", "host_key")
	}

	if mkdirErr := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); mkdirErr != nil {
		srv.closeStore()
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		srv.closeStore()
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	rc := s.config.Runtime
	rc.ScreenW = pty.Window.Width
	rc.ScreenH = pty.Window.Height
	if rc.Seed == 0 {
		rc.Seed = time.Now().UnixNano()
	}

	clientVersion := sshSession.Context().ClientVersion()
	env := config.DetectEnvironment(clientVersion + " " + pty.Term)

	opts := GameOptions{
		Context: sshSession.Context(),
		Tuning:  s.config.Tuning.WithEnvironment(env),
		Runtime: rc,
		Board:   s.board,
		Client: analytics.Client{
			DeviceID:    sessionDeviceID(sshSession),
			Environment: env,
			Info:        clientVersion,
		},
		Sprites: s.config.Sprites,
		Logger:  s.logger.With("user", sshSession.User()),
	}
	if s.recorder != nil {
		opts.Reporter = s.recorder
	}

	return NewAppModel(opts), []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	}
}

// sessionDeviceID gives a returning user on the same host a stable id.
func sessionDeviceID(sshSession ssh.Session) string {
	host := sshSession.RemoteAddr().String()
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("ssh://"+sshSession.User()+"@"+host)).String()
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
			"client", sshSession.Context().ClientVersion(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)
	if s.recorder != nil {
		s.recorder.Start()
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server, flushes pending analytics and
// closes the store.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.server.Shutdown(ctx)
	if s.recorder != nil {
		s.recorder.Stop()
	}
	s.closeStore()
	return err
}

func (s *SSHServer) closeStore() {
	if s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn("cannot close store", "error", err)
	}
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}
