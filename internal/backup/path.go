package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iconidentify/agobackup/internal/domain"
)

// SafeDestination resolves userPath against the backup root and confines
// the result to it. The returned path is the canonical root itself when
// userPath is blank, or a strict descendant of the root otherwise; every
// other outcome, including escapes via "..", symlinked segments, or an
// absolute userPath, is rejected with domain.ErrUnsafeDestination.
//
// The root is created (with parents) if it does not already exist. The
// destination itself is not created here.
func SafeDestination(root, userPath string) (string, error) {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve backup root: %w", err)
	}
	if err := os.MkdirAll(rootAbs, 0755); err != nil {
		return "", fmt.Errorf("create backup root: %w", err)
	}
	rootCanon, err := filepath.EvalSymlinks(rootAbs)
	if err != nil {
		return "", fmt.Errorf("resolve backup root: %w", err)
	}

	trimmed := strings.TrimSpace(userPath)
	if trimmed == "" {
		return rootCanon, nil
	}

	// An absolute or drive-prefixed input names a location of its own
	// rather than a subpath, so it can never be accepted.
	if filepath.IsAbs(trimmed) || filepath.VolumeName(trimmed) != "" {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsafeDestination, userPath)
	}

	candidate, err := canonicalize(filepath.Join(rootCanon, trimmed))
	if err != nil {
		return "", fmt.Errorf("resolve destination: %w", err)
	}

	rel, err := filepath.Rel(rootCanon, candidate)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsafeDestination, userPath)
	}
	return candidate, nil
}

// canonicalize fully resolves path even when it does not exist yet: the
// nearest existing ancestor is resolved through symlinks and the remaining
// segments are re-applied lexically. Segments that do not exist cannot be
// symlinks, so the result is canonical.
func canonicalize(path string) (string, error) {
	suffix := ""
	p := path
	for {
		resolved, err := filepath.EvalSymlinks(p)
		if err == nil {
			return filepath.Join(resolved, suffix), nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(p)
		if parent == p {
			return "", err
		}
		suffix = filepath.Join(filepath.Base(p), suffix)
		p = parent
	}
}
