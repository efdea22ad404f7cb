package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iconidentify/agobackup/internal/api/middleware"
	"github.com/iconidentify/agobackup/internal/portal"
)

// maxSearchResults caps how many items a search offers.
const maxSearchResults = 100

// SearchHandler lists folders and searches content items. These endpoints
// only narrow which items are offered; backup validation never depends on
// them.
type SearchHandler struct {
	logger *slog.Logger
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(logger *slog.Logger) *SearchHandler {
	return &SearchHandler{logger: logger}
}

// FolderResponse represents a content folder.
type FolderResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Folders handles GET /api/v1/folders
func (h *SearchHandler) Folders(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFrom(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "please log in first")
		return
	}

	folders, err := sess.Conn.Folders(r.Context())
	if err != nil {
		h.logger.Error("list folders", "error", err)
		writeError(w, http.StatusBadGateway, "failed to list folders")
		return
	}

	out := make([]FolderResponse, 0, len(folders))
	for _, f := range folders {
		out = append(out, FolderResponse{ID: f.ID, Title: f.Title})
	}
	writeJSON(w, http.StatusOK, map[string]any{"folders": out})
}

// SearchRequest is the JSON request body for an item search.
type SearchRequest struct {
	ItemType      string `json:"item_type"`
	ContentFolder string `json:"content_folder,omitempty"`
}

// ItemResponse represents one offered item.
type ItemResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

// SearchResponse carries offered items and a status line.
type SearchResponse struct {
	Items   []ItemResponse `json:"items"`
	Message string         `json:"message"`
}

// Search handles POST /api/v1/search
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFrom(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "please log in first")
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.ItemType = strings.TrimSpace(req.ItemType)
	if req.ItemType == "" {
		writeError(w, http.StatusBadRequest, "select an item type to search")
		return
	}

	var results []portal.Item
	var err error
	if folder := strings.TrimSpace(req.ContentFolder); folder != "" {
		// Folder-scoped: list the folder and filter by type.
		var items []portal.Item
		items, err = sess.Conn.FolderItems(r.Context(), folder)
		if err == nil {
			for _, item := range items {
				if portal.MatchesType(item, req.ItemType) {
					results = append(results, item)
					if len(results) == maxSearchResults {
						break
					}
				}
			}
		}
	} else {
		results, err = sess.Conn.Search(r.Context(), req.ItemType, maxSearchResults)
	}
	if err != nil {
		h.logger.Error("search", "item_type", req.ItemType, "error", err)
		writeError(w, http.StatusBadGateway, "search failed: "+err.Error())
		return
	}

	out := make([]ItemResponse, 0, len(results))
	for _, item := range results {
		out = append(out, ItemResponse{ID: item.ID, Title: item.Title, Type: item.Type})
	}
	writeJSON(w, http.StatusOK, SearchResponse{
		Items:   out,
		Message: fmt.Sprintf("Found %d item(s).", len(out)),
	})
}
