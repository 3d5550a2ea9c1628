package types

import "time"

// Inline content modes.
const (
	InlineClosed = "closed"
	InlineCreate = "create"
	InlineEdit   = "edit"
)

// DefaultInlineExitDelay is the presentation delay callers may wait before
// removing a closed inline slot from the screen. The engine never waits.
const DefaultInlineExitDelay = 300 * time.Millisecond

// InlineState is the single inline content slot of a table.
type InlineState struct {
	Mode string
	// EditingRowID is set only in edit mode.
	EditingRowID string
	// CreateKey identifies the ephemeral row in create mode so renderers
	// can key it. Empty otherwise.
	CreateKey string
}

// Valid reports whether the state respects the slot invariants.
func (s InlineState) Valid() bool {
	switch s.Mode {
	case InlineClosed, "":
		return s.EditingRowID == "" && s.CreateKey == ""
	case InlineCreate:
		return s.EditingRowID == "" && s.CreateKey != ""
	case InlineEdit:
		return s.EditingRowID != "" && s.CreateKey == ""
	default:
		return false
	}
}

// IsOpen reports whether a slot is open.
func (s InlineState) IsOpen() bool {
	return s.Mode == InlineCreate || s.Mode == InlineEdit
}
