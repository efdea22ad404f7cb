package backup

import (
	"strings"
	"time"
)

// ItemRef names one selected item for destination naming.
type ItemRef struct {
	Name string
	Type string
}

// invalidPathChars are replaced with "_" in path segments.
var invalidPathChars = strings.NewReplacer(
	"/", "_", `\`, "_", ":", "_", "*", "_",
	"?", "_", `"`, "_", "<", "_", ">", "_", "|", "_",
)

// DefaultSubpath derives the default destination subpath for a backup:
// <YYYYMONDD>/<folder>/<type/name[_type/name...]>. The derivation is pure;
// the same inputs, capture time included, always yield the same string.
// The result uses forward slashes regardless of platform.
func DefaultSubpath(folderTitle string, items []ItemRef, now time.Time) string {
	date := now.Format("2006") + strings.ToUpper(now.Format("Jan")) + now.Format("02")

	segments := make([]string, 0, len(items))
	for _, item := range items {
		segments = append(segments, typeKey(item.Type)+"/"+sanitizeSegment(item.Name))
	}
	itemPart := "unnamed"
	if len(segments) > 0 {
		itemPart = strings.Join(segments, "_")
	}

	return date + "/" + sanitizeSegment(folderTitle) + "/" + itemPart
}

// sanitizeSegment strips surrounding whitespace and replaces characters
// that are invalid in file names. A segment that ends up empty becomes
// "unnamed".
func sanitizeSegment(s string) string {
	s = invalidPathChars.Replace(strings.TrimSpace(s))
	if s == "" {
		return "unnamed"
	}
	return s
}

// typeKey turns an item type tag into its path form by removing internal
// whitespace ("Web Map" -> "WebMap"). A blank tag becomes "Item".
func typeKey(tag string) string {
	key := strings.Join(strings.Fields(tag), "")
	if key == "" {
		return "Item"
	}
	return key
}
