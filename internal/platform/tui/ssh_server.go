package tui

import (
	"context"
	"errors"
	"fmt"
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

	"github.com/vovakirdan/collider/internal/physics"
	"github.com/vovakirdan/collider/internal/scene"
)

// SceneLoader builds a fresh scene for one session.
type SceneLoader func() (*scene.Scene, error)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.collider/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// Threaded selects the background detector for each session.
	Threaded bool

	Physics physics.Options
	Monitor MonitorConfig
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		IdleTimeout: 10 * time.Minute,
		Threaded:    true,
		Physics:     physics.DefaultOptions(),
		Monitor:     DefaultMonitorConfig(),
	}
}

// SSHServer serves the monitor over SSH. Every session gets its own scene
// and physics instance, so sessions never see each other's bodies.
type SSHServer struct {
	config SSHServerConfig
	load   SceneLoader
	server *ssh.Server
	logger *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig, load SceneLoader, logger *log.Logger) (*SSHServer, error) {
	if load == nil {
		return nil, errors.New("ssh: scene loader is required")
	}
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "collider-ssh",
		})
	}

	srv := &SSHServer{
		config: cfg,
		load:   load,
		logger: logger,
	}

	// Resolve host key path
	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".collider", "host_key")
	}

	hostKeyDir := filepath.Dir(hostKeyPath)
	if mkdirErr := os.MkdirAll(hostKeyDir, 0o700); mkdirErr != nil {
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
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a scene, a physics instance and a monitor for each
// SSH session. The physics instance is shut down when the session ends.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	sc, err := s.load()
	if err != nil {
		s.logger.Error("cannot load scene", "user", sshSession.User(), "error", err)
		return nil, nil
	}

	phys := physics.New(s.sessionOptions(sshSession))
	if err := phys.Init(sc, s.config.Threaded); err != nil {
		s.logger.Error("cannot start physics", "user", sshSession.User(), "error", err)
		return nil, nil
	}
	go func() {
		<-sshSession.Context().Done()
		phys.Shutdown()
	}()

	cfg := s.config.Monitor
	cfg.Width = pty.Window.Width
	cfg.Height = pty.Window.Height
	cfg.Title = fmt.Sprintf("%s - %s", cfg.Title, sshSession.User())

	return NewMonitorModel(sc, phys, cfg), []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// sessionOptions tags the worker log lines with the session user.
func (s *SSHServer) sessionOptions(sshSession ssh.Session) physics.Options {
	opts := s.config.Physics
	opts.Logger = s.logger.With("user", sshSession.User())
	return opts
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		start := time.Now()
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
			"duration", time.Since(start).Round(time.Second),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until an interrupt or
// SIGTERM arrives.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

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
