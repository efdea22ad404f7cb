package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iconidentify/agobackup/internal/api/middleware"
	"github.com/iconidentify/agobackup/internal/backup"
	"github.com/iconidentify/agobackup/internal/domain"
	"github.com/iconidentify/agobackup/internal/repository"
)

// BackupHandler handles backup requests from the web form.
type BackupHandler struct {
	orchestrator *backup.Orchestrator
	history      *repository.HistoryRepository // nil disables history
	logger       *slog.Logger
}

// NewBackupHandler creates a new backup handler.
func NewBackupHandler(orchestrator *backup.Orchestrator, history *repository.HistoryRepository, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{
		orchestrator: orchestrator,
		history:      history,
		logger:       logger,
	}
}

// BackupRequest is the JSON request body for a backup.
type BackupRequest struct {
	ItemIDs    string `json:"item_ids"`
	BackupPath string `json:"backup_path"`
}

// BackupResponse is returned after a completed backup.
type BackupResponse struct {
	OutputPath string `json:"output_path"`
	ItemCount  int    `json:"item_count"`
	Message    string `json:"message"`
}

// Run handles POST /api/v1/backup
func (h *BackupHandler) Run(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFrom(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "please log in first")
		return
	}

	var req BackupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	now := time.Now()
	result, err := h.orchestrator.Execute(r.Context(), sess.Conn, req.ItemIDs, req.BackupPath, now)
	h.record(r, req, result, err, now)

	if err != nil {
		status, message := backupErrorResponse(err)
		writeError(w, status, message)
		return
	}

	writeJSON(w, http.StatusOK, BackupResponse{
		OutputPath: result.OutputPath,
		ItemCount:  len(result.Items),
		Message:    "Backup completed. Output saved in: " + result.OutputPath,
	})
}

// backupErrorResponse maps an orchestrator error to an HTTP status and a
// single human-readable status line.
func backupErrorResponse(err error) (int, string) {
	var unresolved *domain.UnresolvedError
	var dest *domain.DestinationError
	var export *domain.ExportError

	switch {
	case errors.Is(err, domain.ErrNoIdentifiers):
		return http.StatusBadRequest, "Enter at least one item ID to back up."
	case errors.Is(err, domain.ErrUnsafeDestination):
		return http.StatusBadRequest, "Invalid backup path: must be under the allowed base directory."
	case errors.As(err, &unresolved):
		return http.StatusBadRequest, "Invalid or inaccessible item IDs: " + strings.Join(unresolved.IDs, ", ")
	case errors.Is(err, domain.ErrNoValidItems):
		return http.StatusBadRequest, "No valid items to back up."
	case errors.As(err, &dest):
		return http.StatusInternalServerError, "Cannot create backup directory: " + dest.Err.Error()
	case errors.As(err, &export):
		return http.StatusBadGateway, "Export failed: " + export.Err.Error()
	}
	return http.StatusInternalServerError, "Backup failed: " + err.Error()
}

// record appends the attempt to history. History failures are logged, not
// surfaced; the operator's outcome line is the orchestrator's.
func (h *BackupHandler) record(r *http.Request, req BackupRequest, result *backup.Result, execErr error, now time.Time) {
	if h.history == nil {
		return
	}

	attempt := domain.Attempt{
		ID:           uuid.New().String(),
		Source:       "web",
		RequestedIDs: backup.NormalizeIdentifiers(req.ItemIDs),
		Destination:  req.BackupPath,
		Outcome:      domain.ClassifyOutcome(execErr),
		CreatedAt:    now,
	}
	if execErr != nil {
		attempt.Detail = execErr.Error()
	}
	if result != nil {
		attempt.Destination = result.Destination
		attempt.OutputPath = result.OutputPath
	}

	if err := h.history.Record(r.Context(), attempt); err != nil {
		h.logger.Error("record attempt", "error", err)
	}
}

// MergeRequest is the JSON request body for merging selected search
// results into the identifier text.
type MergeRequest struct {
	Existing string   `json:"existing"`
	Selected []string `json:"selected"`
}

// MergeResponse carries the merged, deduplicated identifier list.
type MergeResponse struct {
	ItemIDs []string `json:"item_ids"`
}

// MergeSelected handles POST /api/v1/backup/merge-ids
func (h *BackupHandler) MergeSelected(w http.ResponseWriter, r *http.Request) {
	var req MergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, MergeResponse{
		ItemIDs: backup.MergeIdentifiers(req.Existing, req.Selected),
	})
}

// DefaultPathRequest asks for the default destination subpath for a
// selection.
type DefaultPathRequest struct {
	FolderTitle string `json:"folder_title"`
	Items       []struct {
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"items"`
}

// DefaultPathResponse carries the computed subpath.
type DefaultPathResponse struct {
	Subpath string `json:"subpath"`
}

// DefaultPath handles POST /api/v1/backup/default-path
func (h *BackupHandler) DefaultPath(w http.ResponseWriter, r *http.Request) {
	var req DefaultPathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	refs := make([]backup.ItemRef, 0, len(req.Items))
	for _, item := range req.Items {
		refs = append(refs, backup.ItemRef{Name: item.Name, Type: item.Type})
	}
	writeJSON(w, http.StatusOK, DefaultPathResponse{
		Subpath: backup.DefaultSubpath(req.FolderTitle, refs, time.Now()),
	})
}
