// Package sqlite exposes the saved-view store and the row loaders backed by
// SQLite and JSONL files.
//
// Example:
//
//	store := sqlite.NewStore(logger)
//	if err := store.Attach(".grid-db"); err != nil {
//	    return err
//	}
//	defer store.Detach()
//	id, err := store.SaveView(&types.SavedView{Name: "east", Query: "region=us-east"})
package sqlite

import (
	"go.uber.org/zap"

	"github.com/mesh-intelligence/grid/internal/sqlite"
)

// Store persists saved views. See NewStore.
type Store = sqlite.Store

// NewStore returns a detached store; call Attach with a data directory.
func NewStore(logger *zap.Logger) *Store {
	return sqlite.NewStore(logger)
}

// LoadRows reads a JSONL file of objects, skipping malformed lines.
func LoadRows(path string) ([]map[string]any, error) {
	return sqlite.LoadRows(path)
}

// ExportRows writes rows to path as JSONL, replacing it atomically.
func ExportRows(path string, rows []map[string]any) error {
	return sqlite.ExportRows(path, rows)
}

// LoadTable reads a table, or the result of query, from the SQLite database
// at path.
func LoadTable(path, table, query string) ([]map[string]any, error) {
	return sqlite.LoadTable(path, table, query)
}
