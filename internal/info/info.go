// Package info serves the environment info endpoint.
package info

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"bluegreen-web/internal/respond"
)

// Response is the /api/info payload.
type Response struct {
	Environment string `json:"environment"`
	Version     string `json:"version"`
	Timestamp   string `json:"timestamp"`
	Hostname    string `json:"hostname"`
}

// Handler reports which deployment answered the request.
type Handler struct {
	environment string
	version     string
	now         func() time.Time
	hostname    func() (string, error)
}

// Option customizes a Handler.
type Option func(*Handler)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// WithHostname overrides the hostname lookup.
func WithHostname(fn func() (string, error)) Option {
	return func(h *Handler) { h.hostname = fn }
}

// NewHandler returns an info handler for the given environment label and version.
func NewHandler(environment, version string, opts ...Option) *Handler {
	h := &Handler{
		environment: environment,
		version:     version,
		now:         time.Now,
		hostname:    os.Hostname,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP answers GET /api/info. The hostname is looked up on every request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	host, err := h.hostname()
	if err != nil {
		slog.Warn("Hostname lookup failed", "err", err, "path", r.URL.Path)
		host = "unknown"
	}
	respond.JSON(w, http.StatusOK, Response{
		Environment: h.environment,
		Version:     h.version,
		Timestamp:   respond.Timestamp(h.now()),
		Hostname:    host,
	})
}
