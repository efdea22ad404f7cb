package backup

import (
	"regexp"
	"strings"
)

// Identifier text is split on any run of whitespace, commas, or newlines.
var identifierDelimiters = regexp.MustCompile(`[\s,]+`)

// NormalizeIdentifiers parses free-form, delimiter-mixed operator text into
// an ordered list of candidate item identifiers. Duplicates are kept; the
// all-or-nothing resolution step reports on exactly what was supplied.
func NormalizeIdentifiers(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	parts := identifierDelimiters.Split(trimmed, -1)
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}

// MergeIdentifiers merges selected identifiers into existing identifier
// text, deduplicating while preserving first-seen order. This backs the
// "add selected" action in the operator surfaces; core resolution never
// deduplicates.
func MergeIdentifiers(existing string, selected []string) []string {
	combined := append(NormalizeIdentifiers(existing), selected...)

	seen := make(map[string]struct{}, len(combined))
	out := make([]string, 0, len(combined))
	for _, id := range combined {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
