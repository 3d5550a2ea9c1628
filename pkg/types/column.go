package types

import "fmt"

// Sort types select the comparator a sortable column uses.
const (
	SortString      = "string"
	SortNumeric     = "numeric"
	SortDate        = "date"
	SortArrayLength = "arrayLength"
	SortCustom      = "custom"
)

// validSortTypes is the set of recognized built-in sort types.
var validSortTypes = map[string]bool{
	SortString:      true,
	SortNumeric:     true,
	SortDate:        true,
	SortArrayLength: true,
	SortCustom:      true,
}

// IsValidSortType reports whether st names a built-in sort type.
func IsValidSortType(st string) bool {
	return validSortTypes[st]
}

// Tristate is a boolean that can defer to a table-wide default.
type Tristate int

const (
	Inherit Tristate = iota
	On
	Off
)

// Filter kinds declare which FilterValue shape a column's filter holds. The
// URL codec uses the kind to pick a decode path when a raw value is
// ambiguous (for example a text filter whose value is all digits).
const (
	FilterKindAuto  = ""
	FilterKindText  = "text"
	FilterKindSet   = "set"
	FilterKindDate  = "date"
	FilterKindRange = "range"
)

var validFilterKinds = map[string]bool{
	FilterKindAuto:  true,
	FilterKindText:  true,
	FilterKindSet:   true,
	FilterKindDate:  true,
	FilterKindRange: true,
}

// Column describes how the engine reads, sorts, searches and facets one
// column of rows of type T. A Column is immutable once handed to a table.
type Column[T any] struct {
	// ID is unique within a table.
	ID string
	// Header is a display label for the rendering layer.
	Header string
	// Accessor returns the cell value for a row. It must be pure.
	Accessor func(row T) any

	Sortable bool
	// SortType is one of the Sort* constants; empty means SortString.
	SortType string
	// SortPath reads a nested field off the row for sorting instead of
	// calling Accessor. For SortArrayLength it names the sub-field of each
	// element used to break length ties.
	SortPath string
	// CustomSort names a comparator registered with the sorting registry.
	// Required when SortType is SortCustom.
	CustomSort string

	Searchable Tristate
	// SearchPaths are read directly off the row for global search, which
	// lets a column search fields it does not display.
	SearchPaths []string
	// SearchTransform maps the raw cell value before it is stringified for
	// global search. It takes priority over SearchPaths.
	SearchTransform func(value any) any

	Facetable  bool
	FilterKind string
}

// EffectiveSortType returns the sort type, defaulting to SortString.
func (c Column[T]) EffectiveSortType() string {
	if c.SortType == "" {
		return SortString
	}
	return c.SortType
}

// HasValueSource reports whether the engine can read a value for the column
// at all, through its accessor or a search path.
func (c Column[T]) HasValueSource() bool {
	return c.Accessor != nil || len(c.SearchPaths) > 0
}

// Validate checks the descriptor's field combinations. It returns an error
// wrapping ErrInvalidColumn on failure.
func (c Column[T]) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidColumn)
	}
	if c.SortType != "" && !IsValidSortType(c.SortType) {
		return fmt.Errorf("%w: column %q: %w %q", ErrInvalidColumn, c.ID, ErrUnknownSortType, c.SortType)
	}
	if !c.Sortable {
		if c.SortPath != "" {
			return fmt.Errorf("%w: column %q: sort path requires sortable", ErrInvalidColumn, c.ID)
		}
		if c.SortType != "" {
			return fmt.Errorf("%w: column %q: sort type requires sortable", ErrInvalidColumn, c.ID)
		}
	}
	if c.Sortable && c.Accessor == nil && c.SortPath == "" {
		return fmt.Errorf("%w: column %q: sortable column needs an accessor or sort path", ErrInvalidColumn, c.ID)
	}
	if c.SortType == SortArrayLength && c.Accessor == nil {
		return fmt.Errorf("%w: column %q: array length sort reads the accessor", ErrInvalidColumn, c.ID)
	}
	if c.SortType == SortCustom && c.CustomSort == "" {
		return fmt.Errorf("%w: column %q: custom sort requires a comparator name", ErrInvalidColumn, c.ID)
	}
	if c.Searchable == On && !c.HasValueSource() {
		return fmt.Errorf("%w: column %q: searchable column needs an accessor or search path", ErrInvalidColumn, c.ID)
	}
	if !validFilterKinds[c.FilterKind] {
		return fmt.Errorf("%w: column %q: unknown filter kind %q", ErrInvalidColumn, c.ID, c.FilterKind)
	}
	return nil
}
