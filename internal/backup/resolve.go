package backup

import (
	"context"

	"github.com/iconidentify/agobackup/internal/portal"
)

// ResolveItems resolves each identifier against the portal, in order,
// partitioning the input into resolved items and unresolved identifiers.
// A lookup failure never aborts the remaining lookups: one bad identifier
// must not block resolution of the rest, so the operator gets the full set
// of problems in one pass.
func ResolveItems(ctx context.Context, conn portal.Connection, ids []string) ([]portal.Item, []string) {
	var items []portal.Item
	var unresolved []string
	for _, id := range ids {
		item, err := conn.Item(ctx, id)
		if err != nil || item == nil {
			unresolved = append(unresolved, id)
			continue
		}
		items = append(items, *item)
	}
	return items, unresolved
}
