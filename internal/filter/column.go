// Package filter evaluates per-column filter values and the global search
// query against rows.
//
// Column filters use array-or semantics: a set filter matches an array cell
// when the two share at least one member, and a scalar cell when the cell is
// one of the set's members. A scalar filter is a substring test against the
// stringified cell. Both fold case; the table's case sensitivity setting
// applies to global search only. Inactive filter values pass every row.
package filter

import (
	"strings"
	"time"

	"github.com/mesh-intelligence/grid/internal/fieldpath"
	"github.com/mesh-intelligence/grid/internal/registry"
	"github.com/mesh-intelligence/grid/pkg/types"
)

// Options tune predicate evaluation.
type Options struct {
	// Now anchors date range presets. Defaults to time.Now.
	Now func() time.Time
	// Location decides calendar days for date filters. Defaults to UTC.
	Location *time.Location
	// Separator joins array members when a cell is stringified.
	Separator string
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o Options) location() *time.Location {
	if o.Location != nil {
		return o.Location
	}
	return time.UTC
}

func (o Options) separator() string {
	if o.Separator != "" {
		return o.Separator
	}
	return types.DefaultSearchSeparator
}

func fold(s string) string {
	return strings.ToLower(s)
}

// MatchColumn reports whether cell passes the filter value v.
func MatchColumn(cell any, v types.FilterValue, opts Options) bool {
	if !v.IsActive() {
		return true
	}
	switch v.Kind() {
	case types.KindScalar:
		needle := fold(strings.TrimSpace(v.ScalarValue()))
		return strings.Contains(fold(fieldpath.String(cell, opts.separator())), needle)
	case types.KindSet:
		return matchSet(cell, v.SetValues(), opts)
	case types.KindDate:
		t, ok := fieldpath.Time(cell)
		if !ok {
			return false
		}
		return sameDay(t, v.DateValue(), opts.location())
	case types.KindRange:
		t, ok := fieldpath.Time(cell)
		if !ok {
			return false
		}
		from, to, err := Bounds(v.RangeValue(), opts.now(), opts.location())
		if err != nil {
			// Unknown presets filter nothing rather than everything.
			return true
		}
		if from != nil && t.Before(*from) {
			return false
		}
		if to != nil && t.After(*to) {
			return false
		}
		return true
	}
	return true
}

func matchSet(cell any, set []string, opts Options) bool {
	want := make(map[string]struct{}, len(set))
	for _, s := range set {
		want[fold(s)] = struct{}{}
	}
	if members, ok := fieldpath.Members(cell); ok {
		for _, m := range members {
			if _, hit := want[fold(fieldpath.String(m, opts.separator()))]; hit {
				return true
			}
		}
		return false
	}
	_, hit := want[fold(fieldpath.String(cell, opts.separator()))]
	return hit
}

func sameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// Rows returns the rows that pass every active column filter in state and
// the search matcher. Filter keys that name no column are ignored so that
// state owned by an external store may carry keys the table does not know.
// except skips one column's filter, which facet counting uses to count a
// column against every filter but its own.
func Rows[T any](reg *registry.Registry[T], state types.FilterState, search *Matcher[T], rows []T, opts Options, except string) []T {
	type active struct {
		column types.Column[T]
		value  types.FilterValue
	}
	var filters []active
	for _, id := range state.Active() {
		if id == except {
			continue
		}
		c, ok := reg.Column(id)
		if !ok {
			continue
		}
		filters = append(filters, active{column: c, value: state[id]})
	}

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		keep := true
		for _, f := range filters {
			if !MatchColumn(CellValue(f.column, row), f.value, opts) {
				keep = false
				break
			}
		}
		if keep && search != nil && !search.Match(row) {
			keep = false
		}
		if keep {
			out = append(out, row)
		}
	}
	return out
}

// CellValue reads the filterable value of a column: its accessor, or the
// values at its search paths when it has none.
func CellValue[T any](c types.Column[T], row T) any {
	if c.Accessor != nil {
		return c.Accessor(row)
	}
	switch vals := fieldpath.GetAll(row, c.SearchPaths); len(vals) {
	case 0:
		return nil
	case 1:
		return vals[0]
	default:
		return vals
	}
}
