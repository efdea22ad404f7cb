package handler

import (
	"net/http"
	"os"
	"time"
)

// HealthHandler provides liveness and readiness endpoints.
type HealthHandler struct {
	backupRoot string
	startedAt  time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(backupRoot string) *HealthHandler {
	return &HealthHandler{
		backupRoot: backupRoot,
		startedAt:  time.Now(),
	}
}

// Live handles GET /health
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(h.startedAt).String(),
	})
}

// Ready handles GET /ready. The service is ready when the backup root is
// usable.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := os.MkdirAll(h.backupRoot, 0755); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ready",
		"backup_root": h.backupRoot,
	})
}
