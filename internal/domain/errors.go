package domain

import (
	"errors"
	"strings"
)

// Domain errors.
var (
	// ErrNoIdentifiers is returned when the identifier text normalized to nothing.
	ErrNoIdentifiers = errors.New("no item identifiers supplied")

	// ErrUnsafeDestination is returned when the requested subpath resolves
	// outside the backup root.
	ErrUnsafeDestination = errors.New("destination escapes the backup root")

	// ErrNoValidItems is returned when resolution produced no items at all.
	ErrNoValidItems = errors.New("no valid items to back up")

	// ErrItemNotFound is returned when the portal has no item for an identifier.
	ErrItemNotFound = errors.New("item not found")

	// ErrFolderNotFound is returned when the portal has no such content folder.
	ErrFolderNotFound = errors.New("folder not found")

	// ErrNotAuthenticated is returned when a session token is missing or expired.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// UnresolvedError reports identifiers that did not resolve to portal items,
// in the order they were supplied.
type UnresolvedError struct {
	IDs []string
}

func (e *UnresolvedError) Error() string {
	return "invalid or inaccessible item IDs: " + strings.Join(e.IDs, ", ")
}

// DestinationError reports a failure to create the backup destination directory.
type DestinationError struct {
	Path string
	Err  error
}

func (e *DestinationError) Error() string {
	return "cannot create backup directory " + e.Path + ": " + e.Err.Error()
}

func (e *DestinationError) Unwrap() error {
	return e.Err
}

// ExportError wraps an error reported by the portal export mechanism. The
// underlying detail is passed through opaquely.
type ExportError struct {
	Err error
}

func (e *ExportError) Error() string {
	return "export failed: " + e.Err.Error()
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
