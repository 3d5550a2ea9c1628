package inline

import (
	"strconv"

	"github.com/mesh-intelligence/grid/pkg/types"
)

// Entry is one line of a rendered page: either a data row or the inline
// slot.
type Entry[T any] struct {
	// Slot is types.InlineCreate or types.InlineEdit for the inline slot
	// and empty for a plain row.
	Slot string
	// Key is stable across renders: the row id, or the create key.
	Key string
	// Row is the data row. It is the zero value in the create slot.
	Row T
}

// IsSlot reports whether the entry is the inline slot.
func (e Entry[T]) IsSlot() bool { return e.Slot != "" }

// Entries lays out page with the inline slot in place. A create slot is
// prepended; an edit slot replaces the row it edits. An edit slot whose row
// has left the page is not shown. rowID may be nil when the table has no
// row identity, in which case rows are keyed by position and edit never
// applies.
func Entries[T any](state types.InlineState, page []T, rowID func(T) string) []Entry[T] {
	out := make([]Entry[T], 0, len(page)+1)
	if state.Mode == types.InlineCreate {
		out = append(out, Entry[T]{Slot: types.InlineCreate, Key: state.CreateKey})
	}
	for i, row := range page {
		e := Entry[T]{Row: row}
		if rowID != nil {
			e.Key = rowID(row)
		} else {
			e.Key = positionKey(i)
		}
		if rowID != nil && state.Mode == types.InlineEdit && e.Key == state.EditingRowID {
			e.Slot = types.InlineEdit
		}
		out = append(out, e)
	}
	return out
}

func positionKey(i int) string {
	return "#" + strconv.Itoa(i)
}

// RenderFunc renders the inline slot. data is nil in create mode and points
// at the edited row in edit mode. onClose closes the slot.
type RenderFunc[T, R any] func(mode string, data *T, onClose func()) R

// Render maps entries to rendered output, calling slot for the inline slot
// and row for every other entry.
func Render[T, R any](entries []Entry[T], slot RenderFunc[T, R], row func(T) R, onClose func()) []R {
	out := make([]R, 0, len(entries))
	for _, e := range entries {
		switch e.Slot {
		case types.InlineCreate:
			out = append(out, slot(types.InlineCreate, nil, onClose))
		case types.InlineEdit:
			data := e.Row
			out = append(out, slot(types.InlineEdit, &data, onClose))
		default:
			out = append(out, row(e.Row))
		}
	}
	return out
}
