// Package health provides HTTP handlers for liveness and readiness probes.
package health

import (
	"net/http"
	"time"

	"bluegreen-web/internal/respond"
)

// Status is the liveness probe payload.
type Status struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
	Timestamp   string `json:"timestamp"`
}

// Readiness is the readiness probe payload.
type Readiness struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
}

// Handler answers probe requests for one deployment environment.
type Handler struct {
	environment string
	now         func() time.Time
}

// NewHandler returns probe handlers reporting the given environment label.
// A nil now defaults to time.Now.
func NewHandler(environment string, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{environment: environment, now: now}
}

// Health responds to liveness probe requests.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, Status{
		Status:      "healthy",
		Environment: h.environment,
		Timestamp:   respond.Timestamp(h.now()),
	})
}

// Ready responds to readiness probe requests.
func (h *Handler) Ready(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, Readiness{
		Status:      "ready",
		Environment: h.environment,
	})
}
