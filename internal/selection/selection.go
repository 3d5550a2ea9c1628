// Package selection tracks which rows of a table are selected, keyed by a
// caller-supplied row identity.
//
// In uncontrolled mode the controller owns the selected set. In controlled
// mode it reads the set from a types.SelectionSource on every call and
// reports each change through OnChange without applying it.
package selection

import "github.com/mesh-intelligence/grid/pkg/types"

// Controller is the selection state of one table.
type Controller[T any] struct {
	rowID  func(T) string
	source *types.SelectionSource
	owned  map[string]bool
}

// New returns a controller. Selection requires a row identity, so a nil
// rowID yields types.ErrSelectionUnavailable. A nil source selects
// uncontrolled mode.
func New[T any](rowID func(T) string, source *types.SelectionSource) (*Controller[T], error) {
	if rowID == nil {
		return nil, types.ErrSelectionUnavailable
	}
	c := &Controller[T]{rowID: rowID}
	if source != nil && source.Selected != nil {
		c.source = source
	} else {
		c.owned = map[string]bool{}
	}
	return c, nil
}

func (c *Controller[T]) current() map[string]bool {
	if c.source != nil {
		return c.source.Selected()
	}
	return c.owned
}

// Selected returns a copy of the selected ids.
func (c *Controller[T]) Selected() map[string]bool {
	out := make(map[string]bool)
	for id, on := range c.current() {
		if on {
			out[id] = true
		}
	}
	return out
}

// IsSelected reports whether id is selected.
func (c *Controller[T]) IsSelected(id string) bool {
	return c.current()[id]
}

// Count returns the number of selected ids, including ids whose rows are
// currently filtered out.
func (c *Controller[T]) Count() int {
	return len(c.Selected())
}

func (c *Controller[T]) commit(next map[string]bool) {
	if c.source != nil {
		if c.source.OnChange != nil {
			c.source.OnChange(next)
		}
		return
	}
	c.owned = next
}

// Set selects or deselects id. The id need not belong to a visible row.
func (c *Controller[T]) Set(id string, on bool) {
	next := c.Selected()
	if on {
		next[id] = true
	} else {
		delete(next, id)
	}
	c.commit(next)
}

// Toggle flips id.
func (c *Controller[T]) Toggle(id string) {
	c.Set(id, !c.IsSelected(id))
}

// AllSelected reports whether page is non-empty and every row on it is
// selected.
func (c *Controller[T]) AllSelected(page []T) bool {
	if len(page) == 0 {
		return false
	}
	cur := c.current()
	for _, row := range page {
		if !cur[c.rowID(row)] {
			return false
		}
	}
	return true
}

// SomeSelected reports whether some but not all rows of page are selected.
func (c *Controller[T]) SomeSelected(page []T) bool {
	cur := c.current()
	n := 0
	for _, row := range page {
		if cur[c.rowID(row)] {
			n++
		}
	}
	return n > 0 && n < len(page)
}

// ToggleAll selects every row of page, or deselects them when they are all
// selected already. Rows outside page are untouched, so select-all never
// reaches rows the user has not seen.
func (c *Controller[T]) ToggleAll(page []T) {
	on := !c.AllSelected(page)
	next := c.Selected()
	for _, row := range page {
		if on {
			next[c.rowID(row)] = true
		} else {
			delete(next, c.rowID(row))
		}
	}
	c.commit(next)
}

// Clear deselects everything.
func (c *Controller[T]) Clear() {
	c.commit(map[string]bool{})
}

// SelectedRows resolves the selection against rows, in row order. Selected
// ids with no matching row are skipped.
func (c *Controller[T]) SelectedRows(rows []T) []T {
	cur := c.current()
	var out []T
	for _, row := range rows {
		if cur[c.rowID(row)] {
			out = append(out, row)
		}
	}
	return out
}
