package domain

import (
	"errors"
	"time"
)

// OutcomeKind classifies how a backup attempt ended.
type OutcomeKind string

const (
	OutcomeCompleted             OutcomeKind = "completed"
	OutcomeNoIdentifiers         OutcomeKind = "no_identifiers"
	OutcomeUnsafeDestination     OutcomeKind = "unsafe_destination"
	OutcomeUnresolved            OutcomeKind = "unresolved_identifiers"
	OutcomeNoValidItems          OutcomeKind = "no_valid_items"
	OutcomeDestinationUnwritable OutcomeKind = "destination_unwritable"
	OutcomeExportFailed          OutcomeKind = "export_failed"
)

// ClassifyOutcome maps an orchestrator error to its outcome kind.
// A nil error is a completed attempt.
func ClassifyOutcome(err error) OutcomeKind {
	if err == nil {
		return OutcomeCompleted
	}

	var unresolved *UnresolvedError
	var dest *DestinationError
	var export *ExportError

	switch {
	case errors.Is(err, ErrNoIdentifiers):
		return OutcomeNoIdentifiers
	case errors.Is(err, ErrUnsafeDestination):
		return OutcomeUnsafeDestination
	case errors.As(err, &unresolved):
		return OutcomeUnresolved
	case errors.Is(err, ErrNoValidItems):
		return OutcomeNoValidItems
	case errors.As(err, &dest):
		return OutcomeDestinationUnwritable
	case errors.As(err, &export):
		return OutcomeExportFailed
	}
	return OutcomeExportFailed
}

// Attempt is one backup attempt as recorded in history. Attempts are
// append-only; a failed attempt is never retried in place.
type Attempt struct {
	ID           string
	Source       string // "web" or "cli"
	RequestedIDs []string
	Destination  string
	Outcome      OutcomeKind
	Detail       string
	OutputPath   string
	CreatedAt    time.Time
}
