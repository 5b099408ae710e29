package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/listapp/internal/apperror"
	"github.com/vyrodovalexey/listapp/internal/store"
)

const readyTimeout = 1 * time.Second

// ProbeHandler serves liveness and readiness probes.
type ProbeHandler struct {
	store  store.Store
	logger *zap.Logger
}

// NewProbeHandler creates a new ProbeHandler.
func NewProbeHandler(s store.Store, logger *zap.Logger) *ProbeHandler {
	return &ProbeHandler{
		store:  s,
		logger: logger,
	}
}

// RegisterRoutes registers the probe routes with the router.
func (h *ProbeHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/ready", h.ReadyCheck).Methods(http.MethodGet)
}

// HealthCheck handles GET /health requests.
func (h *ProbeHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(h.logger, w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: Version,
	})
}

// ReadyCheck handles GET /ready requests. The service is ready once the
// store answers a listing within readyTimeout.
func (h *ProbeHandler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if _, err := h.store.List(ctx); err != nil {
		writeError(h.logger, w, r, apperror.Wrap(err, http.StatusServiceUnavailable, "not ready"))
		return
	}

	writeJSON(h.logger, w, http.StatusOK, ReadyResponse{Status: "ready"})
}
