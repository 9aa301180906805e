package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/enginehost/internal/assets"
	"github.com/vovakirdan/enginehost/internal/core"
	"github.com/vovakirdan/enginehost/internal/engine"
	"github.com/vovakirdan/enginehost/internal/host"
	"github.com/vovakirdan/enginehost/internal/surface"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23235").
	Address string

	// HostKeyPath is the path to the host key file. It is generated when
	// missing.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// MaxSessions caps concurrent sessions; 0 means unlimited.
	MaxSessions int

	// Engine names the registered engine each session runs.
	Engine string

	// Layout is the staged resource tree shared by all sessions.
	Layout assets.Layout

	Candidates []surface.CandidateSpec
	Selection  surface.Selection
	Timing     core.Timing
	Journal    host.Journal // optional
}

type hostContextKey struct{}

// SSHServer serves one engine host per SSH session.
type SSHServer struct {
	config   SSHServerConfig
	server   *ssh.Server
	logger   *log.Logger
	sessions atomic.Int64
}

// NewSSHServer creates a new SSH server with the given configuration.
// The resource tree must already be staged into cfg.Layout.
func NewSSHServer(cfg SSHServerConfig, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	}
	if !engine.Exists(cfg.Engine) {
		return nil, fmt.Errorf("%w: %q", engine.ErrUnknownEngine, cfg.Engine)
	}

	srv := &SSHServer{
		config: cfg,
		logger: logger.WithPrefix("ssh"),
	}

	if cfg.HostKeyPath == "" {
		return nil, errors.New("ssh: no host key path")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.HostKeyPath), 0o700); err != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", err)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(cfg.HostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.sessionMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// newHost builds and bootstraps a host for one session.
func (s *SSHServer) newHost(user string) (*host.Host, error) {
	logger := s.logger.With("user", user)

	eng, err := engine.Create(s.config.Engine, logger)
	if err != nil {
		return nil, err
	}
	h, err := host.New(host.Options{
		Layout:    s.config.Layout,
		Staged:    true,
		Display:   surface.NewSoftwareDisplay(s.config.Candidates),
		Selection: s.config.Selection,
		Engine:    eng,
		Journal:   s.config.Journal,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}
	if err := h.Bootstrap(); err != nil {
		h.Close() //nolint:errcheck // Bootstrap error wins
		return nil, err
	}
	return h, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	if _, _, ok := sshSession.Pty(); !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		wish.Fatalln(sshSession, "enginehost needs a terminal; connect with ssh -t")
		return nil, nil
	}

	h, err := s.newHost(sshSession.User())
	if err != nil {
		s.logger.Error("cannot start session host", "user", sshSession.User(), "error", err)
		wish.Fatalln(sshSession, "cannot start engine:", err)
		return nil, nil
	}
	sshSession.Context().SetValue(hostContextKey{}, h)

	return NewModel(h, s.config.Timing), []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
	}
}

// sessionMiddleware enforces MaxSessions, logs session events and
// releases the session's host once the program has exited.
func (s *SSHServer) sessionMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		n := s.sessions.Add(1)
		defer s.sessions.Add(-1)

		if limit := s.config.MaxSessions; limit > 0 && n > int64(limit) {
			s.logger.Warn("session rejected", "user", sshSession.User(), "active", n-1)
			wish.Fatalln(sshSession, "server is full, try again later")
			return
		}

		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)

		if h, ok := sshSession.Context().Value(hostContextKey{}).(*host.Host); ok {
			if err := h.Close(); err != nil {
				s.logger.Warn("session host close failed", "error", err)
			}
		}
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// Sessions returns the number of sessions currently connected.
func (s *SSHServer) Sessions() int {
	return int(s.sessions.Load())
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address, "engine", s.config.Engine)

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

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}
