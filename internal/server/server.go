// Package server exposes the windowing engine over HTTP so a browser page can
// render the virtual table: the page owns scrolling and asks for the window
// at its current offset, then absolutely positions the returned rows inside
// a container sized to totalExtent.
//
// # Routes
//
//	GET /healthz               liveness probe
//	GET /api/version           build information
//	GET /api/columns           column definitions
//	GET /api/window            window at ?scroll=&viewport=&overscan=[&cells=false]
//	GET /api/rows/{index}      formatted cells of one record
//	GET /api/reveal/{index}    scroll offset that brings a row into view (?scroll=&viewport=)
//
// Errors are JSON objects carrying the machine-readable code:
//
//	{"error": {"code": "INVALID_VIEWPORT", "message": "viewport size must be > 0, got 0"}}
package server

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/vtable/pkg/columns"
	"github.com/matzehuels/vtable/pkg/errors"
	"github.com/matzehuels/vtable/pkg/records"
	"github.com/matzehuels/vtable/pkg/window"
)

const shutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	Source    records.Source
	Sizer     window.Sizer
	Columns   []columns.Column  // defaults to columns.Default()
	Formatter columns.Formatter // defaults to columns.PlainFormatter

	// Viewport and Overscan are used when a request omits them.
	Viewport float64
	Overscan int

	Logger *log.Logger
}

// Server serves window snapshots for one record source.
type Server struct {
	opts   Options
	cache  *window.Cache
	router chi.Router
}

// New validates opts and builds the router.
func New(opts Options) (*Server, error) {
	if opts.Source == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "source cannot be nil")
	}
	if opts.Sizer == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "sizer cannot be nil")
	}
	if err := errors.ValidateViewport(opts.Viewport); err != nil {
		return nil, err
	}
	if err := errors.ValidateOverscan(opts.Overscan); err != nil {
		return nil, err
	}
	if opts.Columns == nil {
		opts.Columns = columns.Default()
	}
	if opts.Formatter == nil {
		opts.Formatter = columns.PlainFormatter{}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	s := &Server{opts: opts, cache: window.NewCache(opts.Sizer)}
	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Cache returns the offset-table cache backing every request. Callers that
// mutate the sizer (window.Overrides) do not need to touch it; callers that
// swap sizers must go through Cache().SetSizer.
func (s *Server) Cache() *window.Cache { return s.cache }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/version", s.handleVersion)
		r.Get("/columns", s.handleColumns)
		r.Get("/window", s.handleWindow)
		r.Get("/rows/{index}", s.handleRow)
		r.Get("/reveal/{index}", s.handleReveal)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errors.New(errors.ErrCodeNotFound, "no route for %s", r.URL.Path))
	})
	return r
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.opts.Logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
