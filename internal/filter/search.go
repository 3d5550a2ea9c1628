package filter

import (
	"strings"

	"github.com/mesh-intelligence/grid/internal/fieldpath"
	"github.com/mesh-intelligence/grid/pkg/types"
)

// SearchConfig selects how the global search compares text.
type SearchConfig struct {
	// Mode is one of types.MatchContains (default), types.MatchStartsWith
	// or types.MatchExact.
	Mode          string
	CaseSensitive bool
	Separator     string
}

// Matcher is a compiled global search query over a fixed set of columns.
// It does not rank: a row matches as soon as one column matches.
type Matcher[T any] struct {
	columns []types.Column[T]
	query   string
	mode    string
	cfg     SearchConfig
}

// Compile prepares query for evaluation against columns. It returns nil for
// an empty (or whitespace-only) query; a nil Matcher matches every row.
func Compile[T any](columns []types.Column[T], query string, cfg SearchConfig) *Matcher[T] {
	m := &Matcher[T]{columns: columns, mode: cfg.Mode, cfg: cfg}
	if !types.IsValidMatchMode(m.mode) {
		m.mode = types.MatchContains
	}
	if m.cfg.Separator == "" {
		m.cfg.Separator = types.DefaultSearchSeparator
	}
	m.query = m.normalize(query)
	if m.query == "" {
		return nil
	}
	return m
}

// Query returns the normalized query.
func (m *Matcher[T]) Query() string {
	if m == nil {
		return ""
	}
	return m.query
}

func (m *Matcher[T]) normalize(s string) string {
	s = strings.TrimSpace(s)
	if !m.cfg.CaseSensitive {
		s = strings.ToLower(s)
	}
	return s
}

// Match reports whether any searchable column of row matches the query.
func (m *Matcher[T]) Match(row T) bool {
	if m == nil {
		return true
	}
	for _, c := range m.columns {
		if m.matchValue(SearchValue(c, row)) {
			return true
		}
	}
	return false
}

func (m *Matcher[T]) matchValue(v any) bool {
	if v == nil {
		return false
	}
	if m.test(fieldpath.String(v, m.cfg.Separator)) {
		return true
	}
	// Prefix and exact matching also consider array members one by one,
	// since the joined rendering only starts with the first member.
	if m.mode == types.MatchContains {
		return false
	}
	members, ok := fieldpath.Members(v)
	if !ok {
		return false
	}
	for _, member := range members {
		if m.matchValue(member) {
			return true
		}
	}
	return false
}

func (m *Matcher[T]) test(candidate string) bool {
	candidate = m.normalize(candidate)
	switch m.mode {
	case types.MatchStartsWith:
		return strings.HasPrefix(candidate, m.query)
	case types.MatchExact:
		return candidate == m.query
	default:
		return strings.Contains(candidate, m.query)
	}
}

// SearchValue extracts the value global search reads from a column. In
// priority order: the column's transform applied to its raw value, the
// values at its search paths read straight off the row, and its accessor.
func SearchValue[T any](c types.Column[T], row T) any {
	var raw any
	if c.Accessor != nil {
		raw = c.Accessor(row)
	}
	if c.SearchTransform != nil {
		return c.SearchTransform(raw)
	}
	if len(c.SearchPaths) > 0 {
		vals := fieldpath.GetAll(row, c.SearchPaths)
		if len(vals) == 0 {
			return nil
		}
		return vals
	}
	return raw
}
