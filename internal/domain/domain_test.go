package domain

import (
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestClassifyOutcome(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want OutcomeKind
	}{
		{"nil is completed", nil, OutcomeCompleted},
		{"no identifiers", ErrNoIdentifiers, OutcomeNoIdentifiers},
		{"unsafe destination", ErrUnsafeDestination, OutcomeUnsafeDestination},
		{"unresolved", &UnresolvedError{IDs: []string{"a"}}, OutcomeUnresolved},
		{"no valid items", ErrNoValidItems, OutcomeNoValidItems},
		{"destination", &DestinationError{Path: "/x", Err: os.ErrPermission}, OutcomeDestinationUnwritable},
		{"export", &ExportError{Err: errors.New("boom")}, OutcomeExportFailed},
		{"wrapped sentinel", fmt.Errorf("context: %w", ErrUnsafeDestination), OutcomeUnsafeDestination},
		{"unknown error", errors.New("something else"), OutcomeExportFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyOutcome(tt.err); got != tt.want {
				t.Errorf("ClassifyOutcome() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnresolvedError_Message(t *testing.T) {
	err := &UnresolvedError{IDs: []string{"abc111", "def222"}}
	want := "invalid or inaccessible item IDs: abc111, def222"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestDestinationError_Unwrap(t *testing.T) {
	err := &DestinationError{Path: "/backups/x", Err: os.ErrPermission}
	if !errors.Is(err, os.ErrPermission) {
		t.Error("DestinationError should unwrap to the underlying error")
	}
}

func TestExportError_Unwrap(t *testing.T) {
	inner := errors.New("portal said no")
	err := &ExportError{Err: inner}
	if !errors.Is(err, inner) {
		t.Error("ExportError should unwrap to the underlying error")
	}
}
