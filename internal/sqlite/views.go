package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/grid/pkg/types"
)

const viewColumns = "view_id, name, query, created_at, updated_at"

// SaveView persists v. With an empty ViewID a view of the same name is
// overwritten in place, otherwise a new view is created with a UUID v7 id.
// With a ViewID the named row is updated and must exist. The stored id is
// written back to v and returned.
func (s *Store) SaveView(v *types.SavedView) (string, error) {
	if v == nil {
		return "", types.ErrInvalidName
	}
	if err := v.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	db, err := s.conn()
	if err != nil {
		return "", err
	}

	now := s.now().UTC()
	tx, err := db.Begin()
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var owner string
	err = tx.QueryRow("SELECT view_id FROM saved_views WHERE name = ?", v.Name).Scan(&owner)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("checking view name: %w", err)
	}
	named := err == nil

	switch {
	case v.ViewID == "" && named:
		v.ViewID = owner
		fallthrough
	case v.ViewID != "":
		if named && owner != v.ViewID {
			return "", types.ErrDuplicateName
		}
		res, err := tx.Exec(
			"UPDATE saved_views SET name = ?, query = ?, updated_at = ? WHERE view_id = ?",
			v.Name, v.Query, now.Format(time.RFC3339Nano), v.ViewID,
		)
		if err != nil {
			return "", fmt.Errorf("updating view: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return "", types.ErrNotFound
		}
	default:
		id, err := uuid.NewV7()
		if err != nil {
			return "", fmt.Errorf("generating UUID v7: %w", err)
		}
		v.ViewID = id.String()
		v.CreatedAt = now
		_, err = tx.Exec(
			"INSERT INTO saved_views ("+viewColumns+") VALUES (?, ?, ?, ?, ?)",
			v.ViewID, v.Name, v.Query, now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano),
		)
		if err != nil {
			return "", fmt.Errorf("inserting view: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing view: %w", err)
	}
	v.UpdatedAt = now
	s.logger.Debug("view saved", zap.String("id", v.ViewID), zap.String("name", v.Name))
	return v.ViewID, nil
}

// GetView returns the view with the given id.
func (s *Store) GetView(id string) (*types.SavedView, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	return s.getView("view_id", id)
}

// GetViewByName returns the view with the given name.
func (s *Store) GetViewByName(name string) (*types.SavedView, error) {
	if name == "" {
		return nil, types.ErrInvalidName
	}
	return s.getView("name", name)
}

func (s *Store) getView(column, key string) (*types.SavedView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	row := db.QueryRow("SELECT "+viewColumns+" FROM saved_views WHERE "+column+" = ?", key)
	v, err := hydrateView(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting view %s: %w", key, err)
	}
	return v, nil
}

// ListViews returns every saved view ordered by name.
func (s *Store) ListViews() ([]*types.SavedView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query("SELECT " + viewColumns + " FROM saved_views ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing views: %w", err)
	}
	defer rows.Close()

	var out []*types.SavedView
	for rows.Next() {
		v, err := hydrateView(rows)
		if err != nil {
			return nil, fmt.Errorf("reading view: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// DeleteView removes the view with the given id.
func (s *Store) DeleteView(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	db, err := s.conn()
	if err != nil {
		return err
	}

	res, err := db.Exec("DELETE FROM saved_views WHERE view_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting view %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.ErrNotFound
	}
	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func hydrateView(sc scanner) (*types.SavedView, error) {
	var v types.SavedView
	var created, updated string
	if err := sc.Scan(&v.ViewID, &v.Name, &v.Query, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	if v.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if v.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &v, nil
}
