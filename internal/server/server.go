// Package server wires the routes, middleware and listener of the web server.
package server

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"bluegreen-web/internal/config"
	"bluegreen-web/internal/health"
	"bluegreen-web/internal/info"
	"bluegreen-web/internal/static"
)

// Server is the blue/green web server: static assets plus the probe and info endpoints.
type Server struct {
	cfg        config.Config
	httpServer *http.Server
	listener   net.Listener
	closeFS    func() error
}

// New builds a server for cfg. The public directory is opened immediately;
// a missing directory disables static files instead of failing.
func New(cfg config.Config) *Server {
	fsys, closeFS := static.OpenOrEmpty(cfg.Server.PublicDir)
	return &Server{
		cfg: cfg,
		httpServer: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           NewRouter(cfg, fsys),
			ReadHeaderTimeout: 10 * time.Second,
		},
		closeFS: closeFS,
	}
}

// NewRouter returns the HTTP handler. Static files are consulted before the
// API routes, so a file in the public directory shadows a route of the same path.
func NewRouter(cfg config.Config, fsys fs.FS) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(AccessLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(FoldCase)
	r.Use(middleware.GetHead)
	r.Use(static.Middleware(fsys))

	probes := health.NewHandler(cfg.Server.Environment, nil)
	r.Get("/health", probes.Health)
	r.Get("/ready", probes.Ready)
	r.Method(http.MethodGet, "/api/info", info.NewHandler(cfg.Server.Environment, cfg.Server.Version))
	r.Method(http.MethodGet, "/", static.File(fsys, static.IndexFile, http.HandlerFunc(NotFound)))

	r.NotFound(NotFound)
	r.MethodNotAllowed(methodNotAllowed)
	return r
}

// routeMethods lists the methods every registered route answers.
const routeMethods = "GET,HEAD"

// methodNotAllowed answers OPTIONS with the allowed methods and treats any
// other method on a known path as not found.
func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodOptions {
		NotFound(w, r)
		return
	}
	w.Header().Set("Allow", routeMethods)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(routeMethods))
}

// NotFound answers unmatched requests with 404 "Cannot <METHOD> <path>".
func NotFound(w http.ResponseWriter, r *http.Request) {
	http.Error(w, fmt.Sprintf("Cannot %s %s", r.Method, r.URL.Path), http.StatusNotFound)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Listen binds the configured port. Binding is separate from Serve so that a
// port conflict is reported before the server is announced.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	s.listener = ln
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve accepts connections until the server is closed. Listen must be called first.
func (s *Server) Serve() error {
	if s.listener == nil {
		return errors.New("serve: not listening")
	}
	err := s.httpServer.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Close stops the listener, drops open connections and releases the public directory.
func (s *Server) Close() error {
	err := s.httpServer.Close()
	return errors.Join(err, s.closeFS())
}
