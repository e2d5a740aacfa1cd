package http

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Server owns the listening socket for a docroot handler.
//
// Start returns once the listener is bound, so callers can read the resolved
// address (port 0 picks an ephemeral port) before any request arrives.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
}

// NewServer creates a server for the given bind address. There are no read or
// write deadlines: a transfer may stream for as long as the client keeps
// reading. Idle keep-alive connections are still reaped.
func NewServer(addr string, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:        addr,
			Handler:     handler,
			IdleTimeout: 120 * time.Second,
		},
	}
}

// Start binds the listener and begins serving in the background.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.httpServer.Addr, err)
	}
	s.listener = listener

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "addr", s.Addr(), "err", err)
		}
	}()

	return nil
}

// Addr returns the bound listener address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop closes the listener and shuts the server down. In-flight requests get
// until ctx expires to finish.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
