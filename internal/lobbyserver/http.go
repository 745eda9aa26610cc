package lobbyserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// HTTPConfig holds configuration for serving the lobby on a real listener
type HTTPConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DefaultHTTPConfig returns defaults matching the client's default server URL
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Host:            "",
		Port:            8080,
		ReadTimeout:     15 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// HTTPServer wraps the lobby handler with graceful shutdown support.
// There is no write timeout: websocket connections stay open indefinitely.
type HTTPServer struct {
	server *http.Server
	lobby  *Server
	logger *slog.Logger
	config HTTPConfig
}

// NewHTTPServer creates a server for lobby
func NewHTTPServer(lobby *Server, config HTTPConfig, logger *slog.Logger) *HTTPServer {
	return &HTTPServer{
		server: &http.Server{
			Addr:        fmt.Sprintf("%s:%d", config.Host, config.Port),
			Handler:     lobby.Handler(),
			ReadTimeout: config.ReadTimeout,
		},
		lobby:  lobby,
		logger: logger,
		config: config,
	}
}

// ListenAndServe blocks until the server stops
func (s *HTTPServer) ListenAndServe() error {
	s.logger.Info("starting lobby server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown drops open websockets and stops accepting requests
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down lobby server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	// Shutdown does not wait for hijacked connections
	s.lobby.DropConnections()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	s.logger.Info("lobby server stopped")
	return nil
}

// Addr returns the listen address
func (s *HTTPServer) Addr() string {
	return s.server.Addr
}
