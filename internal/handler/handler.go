// Package handler provides HTTP request handlers for the item API.
package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/listapp/internal/apperror"
	"github.com/vyrodovalexey/listapp/internal/middleware"
	"github.com/vyrodovalexey/listapp/internal/model"
)

// Version is the application version.
const Version = "1.0.0"

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Status string `json:"status"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(logger *zap.Logger, w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeError classifies err and writes the error envelope.
// Client errors are logged at Warn, everything else at Error.
func writeError(logger *zap.Logger, w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperror.From(err)

	fields := []zap.Field{
		zap.Int("status", appErr.Status),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
		zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
		zap.Error(err),
	}
	if appErr.Status >= http.StatusInternalServerError {
		logger.Error("request failed", fields...)
	} else {
		logger.Warn("request rejected", fields...)
	}

	writeJSON(logger, w, appErr.Status, model.NewErrorEnvelope(appErr.Status, appErr.Message))
}
