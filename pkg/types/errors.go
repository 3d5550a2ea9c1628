package types

import "errors"

// Column and table configuration errors.
var (
	ErrInvalidColumn   = errors.New("invalid column descriptor")
	ErrDuplicateColumn = errors.New("duplicate column id")
	ErrColumnNotFound  = errors.New("column not found")
	ErrUnknownSortType = errors.New("unknown sort type")
	ErrNotSortable     = errors.New("column is not sortable")
	ErrInvalidPaging   = errors.New("invalid paging configuration")
)

// Engine operation errors.
var (
	ErrSelectionUnavailable = errors.New("selection requires a row identity function")
	ErrRowNotOnPage         = errors.New("row is not on the current page")
	ErrInvalidTransition    = errors.New("invalid inline content transition")
	ErrServerPaging         = errors.New("operation not available in server paging mode")
	ErrInvalidPageSize      = errors.New("invalid page size")
)

// Filter value errors. Decoding never returns these to end users; malformed
// encodings resolve to FilterNone.
var (
	ErrInvalidFilter      = errors.New("invalid filter value")
	ErrFilterKindMismatch = errors.New("filter value does not fit the column filter kind")
	ErrUnknownPreset      = errors.New("unknown date range preset")
	ErrMalformedQuery     = errors.New("malformed query value")
)

// Storage errors for saved views.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrInvalidID     = errors.New("invalid entity ID")
	ErrInvalidName   = errors.New("invalid name")
	ErrDuplicateName = errors.New("name already in use")
	ErrStoreDetached = errors.New("store is detached")
	ErrAlreadyOpen   = errors.New("store is already attached")
)
