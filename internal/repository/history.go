package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/iconidentify/agobackup/internal/domain"
)

// HistoryRepository records backup attempts in sqlite. It is written by the
// front ends after each attempt; the orchestration core never touches it.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository opens (and if needed initializes) the history
// database at path.
func NewHistoryRepository(path string) (*HistoryRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS attempts (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			requested_ids TEXT NOT NULL,
			destination TEXT NOT NULL,
			outcome TEXT NOT NULL,
			detail TEXT,
			output_path TEXT,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_attempts_created_at ON attempts(created_at);
		CREATE INDEX IF NOT EXISTS idx_attempts_outcome ON attempts(outcome);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create attempts table: %w", err)
	}

	return &HistoryRepository{db: db}, nil
}

// Close closes the underlying database.
func (r *HistoryRepository) Close() error {
	return r.db.Close()
}

// Record appends one attempt. Attempts are never updated or deleted.
func (r *HistoryRepository) Record(ctx context.Context, attempt domain.Attempt) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attempts (id, source, requested_ids, destination, outcome, detail, output_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		attempt.ID,
		attempt.Source,
		strings.Join(attempt.RequestedIDs, "\n"),
		attempt.Destination,
		string(attempt.Outcome),
		attempt.Detail,
		attempt.OutputPath,
		attempt.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return nil
}

// Recent returns the most recent attempts, newest first.
func (r *HistoryRepository) Recent(ctx context.Context, limit int) ([]domain.Attempt, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, source, requested_ids, destination, outcome, detail, output_path, created_at
		FROM attempts ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []domain.Attempt
	for rows.Next() {
		var a domain.Attempt
		var ids, outcome, createdAt string
		if err := rows.Scan(&a.ID, &a.Source, &ids, &a.Destination, &outcome, &a.Detail, &a.OutputPath, &createdAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		if ids != "" {
			a.RequestedIDs = strings.Split(ids, "\n")
		}
		a.Outcome = domain.OutcomeKind(outcome)
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			a.CreatedAt = ts
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return attempts, nil
}

// CountByOutcome returns attempt counts grouped by outcome kind.
func (r *HistoryRepository) CountByOutcome(ctx context.Context) (map[domain.OutcomeKind]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT outcome, COUNT(*) FROM attempts GROUP BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("count attempts: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.OutcomeKind]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[domain.OutcomeKind(outcome)] = n
	}
	return counts, rows.Err()
}
