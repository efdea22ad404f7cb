package portal

import (
	"context"
	"fmt"
	"sort"

	"github.com/iconidentify/agobackup/internal/domain"
)

// Fake is an in-memory Connection for unit tests.
type Fake struct {
	User          string
	ItemsByID     map[string]Item
	FolderList    []Folder
	ItemsByFolder map[string][]Item

	// LookupErr injects a per-identifier lookup failure.
	LookupErr map[string]error

	// ExportErr, when set, fails every export call.
	ExportErr error

	// ExportedPath overrides the path reported by Export ("" echoes dest).
	ExportedPath string

	// ExportCalls records every Export invocation.
	ExportCalls []ExportCall
}

// ExportCall is one recorded Export invocation.
type ExportCall struct {
	Items []Item
	Dest  string
}

// NewFake creates an empty fake connection for the given user.
func NewFake(user string) *Fake {
	return &Fake{
		User:          user,
		ItemsByID:     map[string]Item{},
		ItemsByFolder: map[string][]Item{},
		LookupErr:     map[string]error{},
	}
}

// AddItem registers an item for lookup and returns it.
func (f *Fake) AddItem(id, title, itemType string) Item {
	item := Item{ID: id, Title: title, Type: itemType}
	f.ItemsByID[id] = item
	return item
}

func (f *Fake) Username() string {
	return f.User
}

func (f *Fake) Item(ctx context.Context, id string) (*Item, error) {
	if err, ok := f.LookupErr[id]; ok {
		return nil, err
	}
	item, ok := f.ItemsByID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, id)
	}
	return &item, nil
}

func (f *Fake) Folders(ctx context.Context) ([]Folder, error) {
	return f.FolderList, nil
}

func (f *Fake) FolderItems(ctx context.Context, folderID string) ([]Item, error) {
	items, ok := f.ItemsByFolder[folderID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrFolderNotFound, folderID)
	}
	return items, nil
}

func (f *Fake) Search(ctx context.Context, itemType string, max int) ([]Item, error) {
	// Map iteration order would leak into results; keep them stable by ID.
	ids := make([]string, 0, len(f.ItemsByID))
	for id := range f.ItemsByID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []Item
	for _, id := range ids {
		if item := f.ItemsByID[id]; MatchesType(item, itemType) {
			out = append(out, item)
		}
		if max > 0 && len(out) == max {
			break
		}
	}
	return out, nil
}

func (f *Fake) Export(ctx context.Context, items []Item, dest string) (string, error) {
	f.ExportCalls = append(f.ExportCalls, ExportCall{Items: items, Dest: dest})
	if f.ExportErr != nil {
		return "", f.ExportErr
	}
	if f.ExportedPath != "" {
		return f.ExportedPath, nil
	}
	return dest, nil
}
