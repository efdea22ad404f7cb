package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/iconidentify/agobackup/internal/domain"
)

func newTestRepo(t *testing.T) *HistoryRepository {
	t.Helper()
	repo, err := NewHistoryRepository(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewHistoryRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestHistoryRepository_RecordAndRecent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2026, time.February, 11, 10, 0, 0, 0, time.UTC)
	attempts := []domain.Attempt{
		{
			ID:           "att-1",
			Source:       "web",
			RequestedIDs: []string{"abc111", "def222"},
			Destination:  "/backups/2026FEB11",
			Outcome:      domain.OutcomeCompleted,
			OutputPath:   "/backups/2026FEB11",
			CreatedAt:    base,
		},
		{
			ID:           "att-2",
			Source:       "cli",
			RequestedIDs: []string{"bad999"},
			Destination:  "/backups/x",
			Outcome:      domain.OutcomeUnresolved,
			Detail:       "invalid or inaccessible item IDs: bad999",
			CreatedAt:    base.Add(time.Minute),
		},
	}
	for _, a := range attempts {
		if err := repo.Record(ctx, a); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	recent, err := repo.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("got %d attempts, want 2", len(recent))
	}
	// Newest first.
	if recent[0].ID != "att-2" || recent[1].ID != "att-1" {
		t.Errorf("order = [%s %s], want [att-2 att-1]", recent[0].ID, recent[1].ID)
	}
	if got := recent[1].RequestedIDs; len(got) != 2 || got[0] != "abc111" || got[1] != "def222" {
		t.Errorf("requested IDs round-trip = %v", got)
	}
	if recent[0].Outcome != domain.OutcomeUnresolved {
		t.Errorf("outcome = %q", recent[0].Outcome)
	}
	if !recent[1].CreatedAt.Equal(base) {
		t.Errorf("created_at round-trip = %v, want %v", recent[1].CreatedAt, base)
	}
}

func TestHistoryRepository_RecentLimit(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := repo.Record(ctx, domain.Attempt{
			ID:        string(rune('a' + i)),
			Source:    "cli",
			Outcome:   domain.OutcomeCompleted,
			CreatedAt: time.Now().Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	recent, err := repo.Recent(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 3 {
		t.Errorf("got %d attempts, want 3", len(recent))
	}
}

func TestHistoryRepository_CountByOutcome(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i, outcome := range []domain.OutcomeKind{
		domain.OutcomeCompleted,
		domain.OutcomeCompleted,
		domain.OutcomeExportFailed,
	} {
		err := repo.Record(ctx, domain.Attempt{
			ID:        string(rune('a' + i)),
			Source:    "web",
			Outcome:   outcome,
			CreatedAt: time.Now(),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	counts, err := repo.CountByOutcome(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts[domain.OutcomeCompleted] != 2 || counts[domain.OutcomeExportFailed] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestHistoryRepository_EmptyRequestedIDs(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	err := repo.Record(ctx, domain.Attempt{
		ID:        "att-empty",
		Source:    "web",
		Outcome:   domain.OutcomeNoIdentifiers,
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}

	recent, err := repo.Recent(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 || recent[0].RequestedIDs != nil {
		t.Errorf("empty ID list should round-trip as nil, got %v", recent[0].RequestedIDs)
	}
}
