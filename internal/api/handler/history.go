package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/iconidentify/agobackup/internal/repository"
)

// HistoryHandler serves the backup attempt history.
type HistoryHandler struct {
	history *repository.HistoryRepository // nil disables history
	logger  *slog.Logger
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(history *repository.HistoryRepository, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{history: history, logger: logger}
}

// AttemptResponse represents one recorded backup attempt.
type AttemptResponse struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"`
	RequestedIDs []string  `json:"requested_ids"`
	Destination  string    `json:"destination"`
	Outcome      string    `json:"outcome"`
	Detail       string    `json:"detail,omitempty"`
	OutputPath   string    `json:"output_path,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// List handles GET /api/v1/history
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"attempts": []AttemptResponse{},
			"counts":   map[string]int{},
		})
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	attempts, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("list history", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	// Totals span all attempts, not just the page returned above.
	byOutcome, err := h.history.CountByOutcome(r.Context())
	if err != nil {
		h.logger.Error("count history", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	counts := make(map[string]int, len(byOutcome))
	for outcome, n := range byOutcome {
		counts[string(outcome)] = n
	}

	out := make([]AttemptResponse, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, AttemptResponse{
			ID:           a.ID,
			Source:       a.Source,
			RequestedIDs: a.RequestedIDs,
			Destination:  a.Destination,
			Outcome:      string(a.Outcome),
			Detail:       a.Detail,
			OutputPath:   a.OutputPath,
			CreatedAt:    a.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"attempts": out,
		"counts":   counts,
	})
}
