package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/cappuccinotm/slogx"

	"github.com/getmockd/faque/pkg/logging"
)

// Default server timeouts.
const (
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 30 * time.Second
)

// ServerConfig holds the listener settings.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server runs a Handler on a TCP listener.
type Server struct {
	cfg        ServerConfig
	handler    http.Handler
	httpServer *http.Server
	listener   net.Listener
	done       chan struct{}
	serveErr   error
	mu         sync.Mutex
	running    bool
	log        *slog.Logger
}

// NewServer creates a Server. Zero timeouts use the defaults.
func NewServer(cfg ServerConfig, handler http.Handler, log *slog.Logger) *Server {
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Server{cfg: cfg, handler: handler, log: log}
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("server is already running")
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}

	// Request contexts derive from base so streaming handlers end on shutdown.
	base, cancel := context.WithCancel(context.Background())

	s.listener = ln
	s.httpServer = &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(s.log.Handler(), slog.LevelWarn),
		BaseContext:  func(net.Listener) context.Context { return base },
	}
	s.httpServer.RegisterOnShutdown(cancel)
	s.done = make(chan struct{})
	s.serveErr = nil
	s.running = true

	s.log.Info("starting HTTP server", "addr", ln.Addr().String())
	go func(srv *http.Server, done chan struct{}) {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("HTTP server error", slogx.Error(err))
			s.mu.Lock()
			s.serveErr = err
			s.mu.Unlock()
		}
	}(s.httpServer, s.done)

	return nil
}

// Addr returns the bound address, or "" if the server is not running.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Done is closed when the serve loop exits. It is nil before Start.
func (s *Server) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Err returns the error that stopped the serve loop, if any.
func (s *Server) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serveErr
}

// Stop gracefully shuts the server down, waiting for in-flight requests
// until ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	srv, done := s.httpServer, s.done
	s.running = false
	s.listener = nil
	s.mu.Unlock()

	if err := srv.Shutdown(ctx); err != nil {
		_ = srv.Close()
		<-done
		return fmt.Errorf("HTTP shutdown: %w", err)
	}
	<-done
	s.log.Info("HTTP server stopped")
	return nil
}
