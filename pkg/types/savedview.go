package types

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// SavedView is a named bookmark of a table's query string: filters, search,
// sort and page size as the URL codec encodes them.
type SavedView struct {
	ViewID    string    `json:"view_id"`
	Name      string    `json:"name"`
	Query     string    `json:"query"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Values parses the stored query string.
func (v SavedView) Values() (url.Values, error) {
	vals, err := url.ParseQuery(v.Query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedQuery, err)
	}
	return vals, nil
}

// Validate checks the name and that the query parses.
func (v SavedView) Validate() error {
	if strings.TrimSpace(v.Name) == "" || strings.TrimSpace(v.Name) != v.Name {
		return ErrInvalidName
	}
	_, err := v.Values()
	return err
}
