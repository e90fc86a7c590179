// Package server provides the daemon's admin HTTP endpoint: health and
// readiness probes, Prometheus metrics, build history and a build trigger.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/history"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// BuildHistory is the read side of the history store.
type BuildHistory interface {
	Recent(ctx context.Context, limit int) ([]history.Record, error)
	ByBuildID(ctx context.Context, buildID string) (*history.Record, error)
}

// Options configures the admin server.
type Options struct {
	Addr string

	// MetricsPath serves Metrics when both are set.
	MetricsPath string
	Metrics     http.Handler

	// History enables /api/builds. Nil disables it.
	History BuildHistory

	// OutputDir is probed by /readyz: the server is ready once it exists.
	OutputDir string

	// Trigger requests an out-of-schedule build. Nil disables
	// /api/build/trigger.
	Trigger func() error

	Logger *slog.Logger
}

// Server is the admin HTTP server.
type Server struct {
	opts    Options
	started time.Time
	srv     *http.Server
	ln      net.Listener
}

// New creates a server; call Start to listen.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Server{opts: opts, started: time.Now()}
	s.srv = &http.Server{
		Handler:           chain(opts.Logger, s.routes()),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReadiness)
	if s.opts.Metrics != nil && s.opts.MetricsPath != "" {
		mux.Handle("GET "+s.opts.MetricsPath, s.opts.Metrics)
	}
	if s.opts.History != nil {
		mux.HandleFunc("GET /api/builds", s.handleBuilds)
		mux.HandleFunc("GET /api/builds/{id}", s.handleBuild)
	}
	if s.opts.Trigger != nil {
		mux.HandleFunc("POST /api/build/trigger", s.handleTrigger)
	}
	return mux
}

// Handler exposes the routed handler (for testing).
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start binds the listen address and serves in the background. Binding
// errors are returned immediately.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("admin server listen %s: %w", s.opts.Addr, err)
	}
	s.ln = ln
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.opts.Logger.Error("Admin server error", logfields.Error(err))
		}
	}()
	s.opts.Logger.Info("Admin server started", logfields.URL("http://"+ln.Addr().String()))
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("admin server shutdown: %w", err)
	}
	return nil
}
