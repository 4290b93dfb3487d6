package api

import (
	"net/http"

	"github.com/hoopsight/hoopsight/internal/log"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	feed   OddsService
	logger log.Logger
}

// NewHealthHandler creates a new health handler.
// feed is the odds client used for readiness checks.
func NewHealthHandler(feed OddsService, logger log.Logger) *HealthHandler {
	return &HealthHandler{feed: feed, logger: logger}
}

// RegisterRoutes registers health routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.liveness)
	mux.HandleFunc("GET /ready", h.readiness)
}

// liveness is a liveness probe endpoint.
// Returns 200 OK if the process is alive.
func (h *HealthHandler) liveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// readiness is a readiness probe endpoint.
// Returns 200 OK if the odds feed is reachable. The chat can still operate
// in a degraded mode without it, but a not-ready signal lets orchestration
// hold traffic until the data path is up.
func (h *HealthHandler) readiness(w http.ResponseWriter, r *http.Request) {
	if h.feed == nil {
		http.Error(w, "odds feed not configured", http.StatusServiceUnavailable)
		return
	}
	if !h.feed.Health(r.Context()) {
		h.logger.Error("readiness check failed: odds feed unreachable")
		http.Error(w, "odds feed not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
