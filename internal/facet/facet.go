// Package facet counts the distinct values of a column across a row set.
// Array-valued cells contribute each member once, so a row tagged
// [x, y] counts toward both x and y.
package facet

import (
	"cmp"
	"slices"

	"github.com/mesh-intelligence/grid/internal/fieldpath"
)

// Option is one distinct value and the number of rows carrying it.
type Option struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Facets maps a distinct stringified value to its count.
type Facets map[string]int

// Count tallies the value of every row. Nil and empty values are skipped.
// A row whose array holds the same member twice counts it once.
func Count[T any](rows []T, value func(T) any) Facets {
	out := Facets{}
	for _, row := range rows {
		v := value(row)
		members, ok := fieldpath.Members(v)
		if !ok {
			if key := fieldpath.String(v, ""); key != "" {
				out[key]++
			}
			continue
		}
		seen := make(map[string]struct{}, len(members))
		for _, m := range members {
			key := fieldpath.String(m, "")
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out[key]++
		}
	}
	return out
}

// Options returns the facets ordered by count descending, then value.
func (f Facets) Options() []Option {
	out := make([]Option, 0, len(f))
	for v, n := range f {
		out = append(out, Option{Value: v, Count: n})
	}
	slices.SortFunc(out, func(a, b Option) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Value, b.Value)
	})
	return out
}

// Values returns the distinct values in option order.
func (f Facets) Values() []string {
	opts := f.Options()
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Value
	}
	return out
}
