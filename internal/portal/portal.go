package portal

import (
	"context"
	"encoding/json"
)

// Item is a named, typed unit of remote content eligible for backup.
type Item struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

// Folder identifies a user content folder. Portal responses name the
// identity and title fields inconsistently (id/folderId, title/name/
// folderName), so decoding accepts any of the known variants and
// normalizes here, at the boundary.
type Folder struct {
	ID    string
	Title string
}

func (f *Folder) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f.ID = firstString(raw, "id", "folderId", "title", "name")
	f.Title = firstString(raw, "title", "name", "folderName")
	if f.Title == "" {
		f.Title = f.ID
	}
	return nil
}

func firstString(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := raw[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// Connection is the narrow interface over an authenticated portal session.
// Keep it small and focused on what the backup flows actually need so it
// stays mockable.
type Connection interface {
	// Username returns the authenticated user.
	Username() string

	// Item looks up a single content item by identifier. A missing or
	// inaccessible item yields domain.ErrItemNotFound.
	Item(ctx context.Context, id string) (*Item, error)

	// Folders lists the user's content folders.
	Folders(ctx context.Context) ([]Folder, error)

	// FolderItems lists the items in one content folder.
	FolderItems(ctx context.Context, folderID string) ([]Item, error)

	// Search finds items of the given type across the user's content.
	Search(ctx context.Context, itemType string, max int) ([]Item, error)

	// Export writes an offline copy of the given items under dest and
	// returns the output path the portal reports ("" if it reports none).
	Export(ctx context.Context, items []Item, dest string) (string, error)
}

// BackupTypes are the item types offered for backup, as (label, query) pairs.
// The "Map" selector covers both map flavors.
var BackupTypes = []struct {
	Label string
	Query string
}{
	{"Feature Service", "Feature Service"},
	{"Web Map", "Web Map"},
	{"Map", "Web Map and Web Mapping Application"},
}

// MatchesType reports whether an item satisfies the selected type filter.
func MatchesType(item Item, selected string) bool {
	if selected == "Map" {
		return item.Type == "Web Map" || item.Type == "Web Mapping Application"
	}
	return item.Type == selected
}

// Backuppable reports whether an item is of a type this tool can export.
func Backuppable(item Item) bool {
	switch item.Type {
	case "Feature Service", "Web Map", "Web Mapping Application":
		return true
	}
	return false
}
