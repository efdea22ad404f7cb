package backup

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/iconidentify/agobackup/internal/domain"
	"github.com/iconidentify/agobackup/internal/portal"
)

// Orchestrator turns free-form operator input into a validated export
// against a fixed backup root. It holds no per-request state; the portal
// connection is passed per call.
type Orchestrator struct {
	root   string
	logger *slog.Logger
}

// NewOrchestrator creates an orchestrator for the given backup root.
func NewOrchestrator(root string, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{root: root, logger: logger}
}

// Root returns the configured backup root.
func (o *Orchestrator) Root() string {
	return o.root
}

// Result describes a completed backup.
type Result struct {
	Items       []portal.Item
	Destination string
	OutputPath  string
	StartedAt   time.Time
}

// Execute validates the raw identifier text and destination subpath,
// resolves every identifier, creates the destination, and delegates to the
// portal export. Steps run strictly in order and the first failure ends the
// attempt; already-created directories are not rolled back. Resolution is
// all-or-nothing: a partial export is never attempted silently.
func (o *Orchestrator) Execute(ctx context.Context, conn portal.Connection, rawIDs, rawDest string, now time.Time) (*Result, error) {
	ids := NormalizeIdentifiers(rawIDs)
	if len(ids) == 0 {
		return nil, domain.ErrNoIdentifiers
	}

	dest, err := SafeDestination(o.root, rawDest)
	if err != nil {
		return nil, err
	}

	items, unresolved := ResolveItems(ctx, conn, ids)
	if len(unresolved) > 0 {
		return nil, &domain.UnresolvedError{IDs: unresolved}
	}
	if len(items) == 0 {
		return nil, domain.ErrNoValidItems
	}

	if err := os.MkdirAll(dest, 0755); err != nil {
		return nil, &domain.DestinationError{Path: dest, Err: err}
	}

	out, err := conn.Export(ctx, items, dest)
	if err != nil {
		return nil, &domain.ExportError{Err: err}
	}
	if out == "" {
		out = dest
	}

	o.logger.Info("backup completed",
		"user", conn.Username(),
		"items", len(items),
		"output_path", out,
	)

	return &Result{
		Items:       items,
		Destination: dest,
		OutputPath:  out,
		StartedAt:   now,
	}, nil
}
