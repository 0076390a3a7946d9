// Package server exposes the checker over HTTP: rule metadata, single-file
// checks and, when watching, a stream of re-check reports.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/sqla2lint/internal/engine"
	"github.com/leapstack-labs/sqla2lint/internal/state"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = "127.0.0.1:8787"

// Config holds server configuration.
type Config struct {
	Addr    string
	Engine  *engine.Engine
	Store   *state.Store // optional, enables /v1/runs
	Version string
	// WatchPaths, when non-empty, are re-checked on change and the reports
	// streamed to /v1/events subscribers.
	WatchPaths []string
	Logger     *slog.Logger
}

// Server is the HTTP check API.
type Server struct {
	addr       string
	engine     *engine.Engine
	store      *state.Store
	version    string
	watchPaths []string
	notifier   *Notifier
	logger     *slog.Logger
}

// New creates a server.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	addr := cfg.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	return &Server{
		addr:       addr,
		engine:     cfg.Engine,
		store:      cfg.Store,
		version:    cfg.Version,
		watchPaths: cfg.WatchPaths,
		notifier:   NewNotifier(),
		logger:     logger,
	}
}

// Notifier returns the notifier feeding /v1/events.
func (s *Server) Notifier() *Notifier {
	return s.notifier
}

// Handler returns the router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/rules", s.handleRules)
		r.Get("/rules/{id}", s.handleRule)
		r.Post("/check", s.handleCheck)
		r.Get("/runs", s.handleRuns)
		r.Get("/events", s.handleEvents)
	})
	return r
}

// Serve listens on the configured address and blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	s.logger.Info("starting check server", "addr", "http://"+ln.Addr().String())

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if len(s.watchPaths) > 0 {
		eg.Go(func() error {
			return s.engine.Watch(egctx, s.watchPaths, s.notifier.Broadcast)
		})
	}

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down check server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
