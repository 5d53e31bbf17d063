package handlers

import (
	"log/slog"
	"net/http"
)

// HealthHandler обрабатывает health check
type HealthHandler struct {
	logger *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(logger *slog.Logger) *HealthHandler {
	return &HealthHandler{logger: logger}
}

// Health обрабатывает GET /api/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	sendJSON(h.logger, w, map[string]string{"status": "ok"}, http.StatusOK)
}
