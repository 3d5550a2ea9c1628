package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/mesh-intelligence/grid/internal/schema"
	"github.com/mesh-intelligence/grid/pkg/sqlite"
)

// openStore resolves the data directory and attaches the saved-view store.
// The caller must Detach it.
func openStore() (*sqlite.Store, string, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, "", systemError(fmt.Errorf("resolve data dir: %w", err))
	}
	store := sqlite.NewStore(logger)
	if err := store.Attach(dataDir); err != nil {
		return nil, "", systemError(fmt.Errorf("attach store: %w", err))
	}
	return store, dataDir, nil
}

// loadRows reads rows from a JSONL file or a SQLite database, chosen by
// extension.
func loadRows(path, table, query string) ([]schema.Row, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson", ".json":
		return sqlite.LoadRows(path)
	case ".db", ".sqlite", ".sqlite3":
		if table == "" && query == "" {
			return nil, fmt.Errorf("%s is a database: --table or --sql is required", path)
		}
		return sqlite.LoadTable(path, table, query)
	}
	return nil, fmt.Errorf("unsupported row source %q (want .jsonl or .db)", path)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// splitAssignment parses key=value.
func splitAssignment(arg string) (string, string, error) {
	key, value, ok := strings.Cut(arg, "=")
	if !ok || key == "" {
		return "", "", fmt.Errorf("invalid assignment %q (expected key=value)", arg)
	}
	return key, value, nil
}
