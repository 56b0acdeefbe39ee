// pkg/network/server.go
package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opd-ai/go-planet-protector/pkg/config"
	"github.com/opd-ai/go-planet-protector/pkg/logging"
)

// SpectatorPath is where the hub is mounted
const SpectatorPath = "/ws"

// SpectatorServer serves the spectator hub and any extra handlers, such
// as health probes, on one listener.
type SpectatorServer struct {
	env    *config.EnvironmentConfig
	hub    *SpectatorHub
	mux    *http.ServeMux
	logger *logging.Logger

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
	running  atomic.Bool
	done     chan struct{}
}

// NewSpectatorServer creates a server for hub listening on env's address
func NewSpectatorServer(env *config.EnvironmentConfig, hub *SpectatorHub, logger *logging.Logger) *SpectatorServer {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	mux := http.NewServeMux()
	mux.Handle(SpectatorPath, hub)
	return &SpectatorServer{
		env:    env,
		hub:    hub,
		mux:    mux,
		logger: logger,
	}
}

// Handle mounts an extra handler. Call it before Start.
func (s *SpectatorServer) Handle(pattern string, handler http.Handler) {
	s.mux.Handle(pattern, handler)
}

// Start listens on the configured address and serves in the background
func (s *SpectatorServer) Start() error {
	return s.StartOn(s.env.ListenAddress())
}

// StartOn listens on address; ":0" picks a free port
func (s *SpectatorServer) StartOn(address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return errors.New("spectator server already running")
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to start spectator server: %w", err)
	}

	s.listener = listener
	s.server = &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.done = make(chan struct{})
	s.running.Store(true)

	go func(srv *http.Server, done chan struct{}) {
		defer close(done)
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(context.Background(), "spectator server stopped", err)
		}
		s.running.Store(false)
	}(s.server, s.done)

	s.logger.Info(context.Background(), "spectator server started",
		"address", listener.Addr().String(),
		"path", SpectatorPath,
	)
	return nil
}

// Addr returns the bound address, or "" before Start
func (s *SpectatorServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Running reports whether the listener is accepting connections
func (s *SpectatorServer) Running() bool {
	return s.running.Load()
}

// Shutdown disconnects spectators and stops the server, waiting at most
// until ctx is done.
func (s *SpectatorServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv, done := s.server, s.done
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	s.hub.Close()
	err := srv.Shutdown(ctx)
	<-done
	s.running.Store(false)

	if err != nil {
		return fmt.Errorf("failed to stop spectator server: %w", err)
	}
	s.logger.Info(ctx, "spectator server stopped")
	return nil
}
