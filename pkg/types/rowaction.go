package types

// DefaultMaxInlineActions caps how many row actions render inline before
// they all move to the overflow menu.
const DefaultMaxInlineActions = 3

// RowAction is a per-row command offered by the rendering layer.
type RowAction[T any] struct {
	ID    string
	Label string
	// Overflow forces the action into the overflow menu.
	Overflow bool
	// Hidden hides the action for a given row.
	Hidden func(row T) bool
	Run    func(row T) error
}
