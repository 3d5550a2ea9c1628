// Package sorting maps a column's sort type to a comparator and orders rows
// by a multi-key sort state. Sorting is stable: rows with equal keys keep
// their relative order, so sorting by a secondary column and then a primary
// column leaves ties in secondary order.
package sorting

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mesh-intelligence/grid/internal/fieldpath"
	"github.com/mesh-intelligence/grid/internal/registry"
	"github.com/mesh-intelligence/grid/pkg/types"
)

// Comparator orders two cell values, returning -1, 0 or 1.
type Comparator func(a, b any) int

// builtin pairs a comparator with a presence test. Absent values (nil,
// NaN, unparseable dates) sort after present ones in both directions.
type builtin struct {
	present func(v any) bool
	compare Comparator
}

var builtins = map[string]builtin{
	types.SortString: {
		present: func(v any) bool { return v != nil },
		compare: func(a, b any) int {
			return sign(strings.Compare(fieldpath.String(a, " "), fieldpath.String(b, " ")))
		},
	},
	types.SortNumeric: {
		present: func(v any) bool {
			_, ok := fieldpath.Float(v)
			return ok
		},
		compare: func(a, b any) int {
			x, _ := fieldpath.Float(a)
			y, _ := fieldpath.Float(b)
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		},
	},
	types.SortDate: {
		present: func(v any) bool {
			_, ok := fieldpath.Time(v)
			return ok
		},
		compare: func(a, b any) int {
			x, _ := fieldpath.Time(a)
			y, _ := fieldpath.Time(b)
			return compareInt64(x.UnixMilli(), y.UnixMilli())
		},
	},
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

// Registry holds the custom comparators a table may reference by name.
type Registry struct {
	custom map[string]Comparator
}

// NewRegistry returns a registry with no custom comparators.
func NewRegistry() *Registry {
	return &Registry{custom: make(map[string]Comparator)}
}

// Register adds a named comparator. Names may not shadow built-in sort types.
func (r *Registry) Register(name string, cmp Comparator) error {
	if name == "" || cmp == nil || types.IsValidSortType(name) {
		return fmt.Errorf("%w: cannot register %q", types.ErrUnknownSortType, name)
	}
	r.custom[name] = cmp
	return nil
}

// Has reports whether a custom comparator is registered under name.
func (r *Registry) Has(name string) bool {
	_, ok := r.custom[name]
	return ok
}

// Compare orders a and b under sortType in ascending order. customName is
// consulted only for types.SortCustom. Array length sorting is handled by
// Rows because it needs the column's sub-field path.
func (r *Registry) Compare(sortType, customName string, a, b any) (int, error) {
	if sortType == "" {
		sortType = types.SortString
	}
	if sortType == types.SortCustom {
		cmp, ok := r.custom[customName]
		if !ok {
			return 0, fmt.Errorf("%w: custom comparator %q", types.ErrUnknownSortType, customName)
		}
		return sign(cmp(a, b)), nil
	}
	if sortType == types.SortArrayLength {
		return compareArrays(arrayKey(a, ""), arrayKey(b, "")), nil
	}
	bi, ok := builtins[sortType]
	if !ok {
		return 0, fmt.Errorf("%w: %q", types.ErrUnknownSortType, sortType)
	}
	return compareBuiltin(bi, a, b, false), nil
}

// compareBuiltin keeps absent values last regardless of direction.
func compareBuiltin(bi builtin, a, b any, desc bool) int {
	pa, pb := bi.present(a), bi.present(b)
	switch {
	case !pa && !pb:
		return 0
	case !pa:
		return 1
	case !pb:
		return -1
	}
	c := bi.compare(a, b)
	if desc {
		return -c
	}
	return c
}

// arrayValue is the precomputed key of an array-length sort.
type arrayValue struct {
	n    int
	subs []string
}

func arrayKey(v any, sub string) arrayValue {
	members, _ := fieldpath.Members(v)
	out := arrayValue{n: len(members), subs: make([]string, 0, len(members))}
	for _, m := range members {
		if sub != "" {
			m, _ = fieldpath.Get(m, sub)
		}
		out.subs = append(out.subs, fieldpath.String(m, " "))
	}
	return out
}

func compareArrays(a, b arrayValue) int {
	if a.n != b.n {
		return sign(a.n - b.n)
	}
	return slices.Compare(a.subs, b.subs)
}

// key is one resolved sort key of a Rows call.
type key[T any] struct {
	column types.Column[T]
	desc   bool
	cmp    func(a, b any, desc bool) int
}

// Rows returns a sorted copy of rows. Keys that reference unknown or
// unsortable columns are ignored, since sort state may be written by an
// external store at any time. An empty state returns rows in input order.
func Rows[T any](r *Registry, reg *registry.Registry[T], state types.SortState, rows []T) ([]T, error) {
	out := slices.Clone(rows)
	keys, err := resolve(r, reg, state)
	if err != nil || len(keys) == 0 {
		return out, err
	}

	type decorated struct {
		row  T
		vals []any
	}
	dec := make([]decorated, len(out))
	for i, row := range out {
		vals := make([]any, len(keys))
		for k, sk := range keys {
			vals[k] = extract(sk.column, row)
		}
		dec[i] = decorated{row: row, vals: vals}
	}

	slices.SortStableFunc(dec, func(a, b decorated) int {
		for k, sk := range keys {
			if c := sk.cmp(a.vals[k], b.vals[k], sk.desc); c != 0 {
				return c
			}
		}
		return 0
	})

	for i := range dec {
		out[i] = dec[i].row
	}
	return out, nil
}

func resolve[T any](r *Registry, reg *registry.Registry[T], state types.SortState) ([]key[T], error) {
	keys := make([]key[T], 0, len(state))
	for _, sk := range state {
		c, ok := reg.Column(sk.ColumnID)
		if !ok || !c.Sortable {
			continue
		}
		k := key[T]{column: c, desc: sk.Desc}
		switch st := c.EffectiveSortType(); st {
		case types.SortCustom:
			cmp, ok := r.custom[c.CustomSort]
			if !ok {
				return nil, fmt.Errorf("%w: column %q: custom comparator %q", types.ErrUnknownSortType, c.ID, c.CustomSort)
			}
			k.cmp = func(a, b any, desc bool) int {
				if desc {
					return -sign(cmp(a, b))
				}
				return sign(cmp(a, b))
			}
		case types.SortArrayLength:
			k.cmp = func(a, b any, desc bool) int {
				n := compareArrays(a.(arrayValue), b.(arrayValue))
				if desc {
					return -n
				}
				return n
			}
		default:
			bi, ok := builtins[st]
			if !ok {
				return nil, fmt.Errorf("%w: column %q: %q", types.ErrUnknownSortType, c.ID, st)
			}
			k.cmp = func(a, b any, desc bool) int { return compareBuiltin(bi, a, b, desc) }
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// extract reads the sort value of a row. Array length sorts read the
// accessor and precompute the sub-field key; other sorts prefer SortPath.
func extract[T any](c types.Column[T], row T) any {
	if c.EffectiveSortType() == types.SortArrayLength {
		return arrayKey(c.Accessor(row), c.SortPath)
	}
	if c.SortPath != "" {
		v, _ := fieldpath.Get(row, c.SortPath)
		return v
	}
	return c.Accessor(row)
}

// Toggle advances the sort of columnID through unsorted, ascending and
// descending. Without multi the result holds at most that one column;
// with multi other keys are kept and a newly sorted column is appended.
func Toggle(state types.SortState, columnID string, multi bool) types.SortState {
	current, pos := state.Find(columnID)

	var next *types.SortKey
	switch {
	case pos < 0:
		next = &types.SortKey{ColumnID: columnID}
	case !current.Desc:
		next = &types.SortKey{ColumnID: columnID, Desc: true}
	}

	if !multi {
		if next == nil {
			return types.SortState{}
		}
		return types.SortState{*next}
	}

	out := state.Clone()
	switch {
	case pos < 0:
		out = append(out, *next)
	case next == nil:
		out = slices.Delete(out, pos, pos+1)
	default:
		out[pos] = *next
	}
	return out
}
