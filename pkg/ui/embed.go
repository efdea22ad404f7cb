// Package ui provides the embedded web UI for agobackup.
package ui

import (
	_ "embed"
)

// IndexHTML is the single-page backup form: login, folder-scoped search,
// identifier entry, destination subpath, and history. All state beyond the
// session cookie lives client-side.
//
//go:embed index.html
var IndexHTML []byte
