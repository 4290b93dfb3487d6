// Package api provides the HTTP REST API for HoopSight.
//
// Endpoints:
//
//	GET  /health                      liveness probe
//	GET  /ready                       readiness probe (odds feed reachability)
//	POST /api/chat                    stateless conversational turn
//	GET  /api/odds                    mapped odds and predictions
//	GET  /api/sportsbooks             supported sportsbook list
//	GET  /api/sessions                list sessions
//	POST /api/sessions                create session
//	GET  /api/sessions/active         currently selected session
//	POST /api/sessions/{id}/select    make a session active
//	POST /api/sessions/{id}/rename    rename a session
//	POST /api/sessions/{id}/messages  send a message into a session
//	GET  /api/current-odds            odds snapshot preloaded at startup
//
// File structure:
//   - server.go: HTTP server setup and lifecycle
//   - middleware.go: HTTP middleware (logging, recovery)
//   - health.go: health check endpoints (/health, /ready)
//   - chat.go: stateless chat endpoint
//   - odds.go: odds feed endpoints
//   - session.go: session endpoints
//   - response.go: JSON response helpers
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hoopsight/hoopsight/internal/log"
	"github.com/hoopsight/hoopsight/internal/session"
)

const (
	// DefaultAddr is the default address for the HTTP server.
	DefaultAddr = "127.0.0.1:3400"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout is the timeout for reading request headers.
	// This prevents Slowloris attacks (CWE-400).
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is the maximum duration for writing the response.
	// Model turns with tool rounds can take a while.
	WriteTimeout = 120 * time.Second

	// IdleTimeout is the maximum time to wait for the next request on keep-alive connections.
	IdleTimeout = 120 * time.Second
)

// Server is the HTTP server for HoopSight's REST API.
type Server struct {
	mux *http.ServeMux

	// Handlers
	health  *HealthHandler
	chat    *ChatHandler
	odds    *OddsHandler
	session *SessionHandler
}

// NewServer creates a new HTTP server with all routes registered.
func NewServer(engine ChatService, feed OddsService, store *session.Store, logger log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		mux:     mux,
		health:  NewHealthHandler(feed, logger),
		chat:    NewChatHandler(engine, logger),
		odds:    NewOddsHandler(feed, logger),
		session: NewSessionHandler(store, logger),
	}

	s.health.RegisterRoutes(mux)
	s.chat.RegisterRoutes(mux)
	s.odds.RegisterRoutes(mux)
	s.session.RegisterRoutes(mux)

	return s
}

// Handler returns the HTTP handler with middleware applied.
// Middleware order: recovery → logging → handler
func (s *Server) Handler() http.Handler {
	return chain(s.mux, recoveryMiddleware, loggingMiddleware)
}

// Run starts the HTTP server and blocks until the context is cancelled.
// It handles graceful shutdown when the context is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
