package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/iconidentify/agobackup/internal/domain"
	"github.com/iconidentify/agobackup/internal/repository"
)

func TestHistoryHandler_List_NoRepository(t *testing.T) {
	handler := NewHistoryHandler(nil, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/history", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp struct {
		Attempts []AttemptResponse `json:"attempts"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Attempts) != 0 {
		t.Errorf("attempts = %d, want 0", len(resp.Attempts))
	}
}

func TestHistoryHandler_List(t *testing.T) {
	history, err := repository.NewHistoryRepository(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("failed to open history: %v", err)
	}
	defer history.Close()

	base := time.Date(2026, 2, 11, 10, 0, 0, 0, time.UTC)
	for i, outcome := range []domain.OutcomeKind{domain.OutcomeCompleted, domain.OutcomeExportFailed} {
		attempt := domain.Attempt{
			ID:           "att-" + string(rune('a'+i)),
			Source:       "web",
			RequestedIDs: []string{"abc111"},
			Destination:  "/backups/daily",
			Outcome:      outcome,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}
		if err := history.Record(context.Background(), attempt); err != nil {
			t.Fatalf("failed to record attempt: %v", err)
		}
	}

	handler := NewHistoryHandler(history, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/history?limit=1", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp struct {
		Attempts []AttemptResponse `json:"attempts"`
		Counts   map[string]int    `json:"counts"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Attempts) != 1 {
		t.Fatalf("attempts = %d, want 1 (limit)", len(resp.Attempts))
	}
	// Most recent first
	if resp.Attempts[0].Outcome != string(domain.OutcomeExportFailed) {
		t.Errorf("outcome = %q, want %q", resp.Attempts[0].Outcome, domain.OutcomeExportFailed)
	}
	// Counts cover every attempt regardless of the page limit.
	if resp.Counts[string(domain.OutcomeCompleted)] != 1 || resp.Counts[string(domain.OutcomeExportFailed)] != 1 {
		t.Errorf("counts = %v, want one completed and one export_failed", resp.Counts)
	}
}
