// Package registry normalizes and validates the column descriptors of one
// table and answers the questions the other engine components ask about
// them: lookup by id, which columns are sortable or facetable, and which
// columns the global search reads under a given scope.
package registry

import (
	"fmt"
	"slices"

	"github.com/mesh-intelligence/grid/pkg/types"
)

// Registry is an immutable, validated set of columns.
type Registry[T any] struct {
	columns []types.Column[T]
	index   map[string]int
}

// New validates every column and builds the registry. Column order is
// preserved. Errors wrap types.ErrInvalidColumn or types.ErrDuplicateColumn.
func New[T any](columns []types.Column[T]) (*Registry[T], error) {
	r := &Registry[T]{
		columns: make([]types.Column[T], 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for _, c := range columns {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.index[c.ID]; dup {
			return nil, fmt.Errorf("%w: %q", types.ErrDuplicateColumn, c.ID)
		}
		c.SearchPaths = slices.Clone(c.SearchPaths)
		r.index[c.ID] = len(r.columns)
		r.columns = append(r.columns, c)
	}
	return r, nil
}

// Columns returns the columns in declaration order.
func (r *Registry[T]) Columns() []types.Column[T] {
	return slices.Clone(r.columns)
}

// Len returns the number of columns.
func (r *Registry[T]) Len() int { return len(r.columns) }

// Column returns the column with the given id.
func (r *Registry[T]) Column(id string) (types.Column[T], bool) {
	i, ok := r.index[id]
	if !ok {
		return types.Column[T]{}, false
	}
	return r.columns[i], true
}

// Facetable returns the ids of columns marked facetable.
func (r *Registry[T]) Facetable() []string {
	var ids []string
	for _, c := range r.columns {
		if c.Facetable {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// ResolveSearchable returns the columns the global search reads under scope.
// A non-empty allow list selects exactly the listed columns that exist and
// have a value source, in declaration order. Otherwise every column with a
// value source is searched unless it is denied or opts out with
// types.Off. Callers recompute this whenever the scope changes.
func (r *Registry[T]) ResolveSearchable(scope types.SearchScope) []types.Column[T] {
	var out []types.Column[T]
	if len(scope.Allow) > 0 {
		for _, c := range r.columns {
			if slices.Contains(scope.Allow, c.ID) && c.HasValueSource() {
				out = append(out, c)
			}
		}
		return out
	}
	for _, c := range r.columns {
		if !c.HasValueSource() || c.Searchable == types.Off {
			continue
		}
		if slices.Contains(scope.Deny, c.ID) {
			continue
		}
		out = append(out, c)
	}
	return out
}
