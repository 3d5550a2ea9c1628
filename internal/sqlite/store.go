// Package sqlite persists saved views in a SQLite database and loads row
// data from JSONL files and SQLite tables.
package sqlite

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/grid/pkg/types"
)

//go:embed schema.sql
var schemaSQL string

// DatabaseFile is the saved-view database inside the data directory.
const DatabaseFile = "grid.db"

// Store owns the SQLite connection that backs saved views.
type Store struct {
	mu       sync.RWMutex
	attached bool
	db       *sql.DB
	logger   *zap.Logger
	now      func() time.Time
}

// NewStore returns a detached store. A nil logger discards output.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{logger: logger, now: time.Now}
}

// Attach opens (creating if needed) the database under dataDir and applies
// the schema. It returns ErrAlreadyOpen on a second call.
func (s *Store) Attach(dataDir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attached {
		return types.ErrAlreadyOpen
	}
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	path := filepath.Join(dataDir, DatabaseFile)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return fmt.Errorf("applying schema: %w", err)
	}

	s.db = db
	s.attached = true
	s.logger.Debug("store attached", zap.String("path", path))
	return nil
}

// Detach closes the database. It is idempotent.
func (s *Store) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.attached = false
	return err
}

// conn returns the open database or ErrStoreDetached. The caller must hold
// s.mu.
func (s *Store) conn() (*sql.DB, error) {
	if !s.attached {
		return nil, types.ErrStoreDetached
	}
	return s.db, nil
}
