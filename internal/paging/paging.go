// Package paging implements the two pagination strategies of a table.
//
// A Client controller owns the page index and size and slices the filtered
// rows itself. A Server controller owns nothing: the caller reports the
// server's page position and every navigation request is relayed back to
// the caller's callbacks. Rows handed to a server controller are already
// one page and are never sliced.
package paging

import (
	"fmt"

	"github.com/mesh-intelligence/grid/pkg/types"
)

// Controller is the navigation contract shared by both strategies.
type Controller interface {
	// Window returns the half-open row range of the current page for total
	// filtered rows, and the page metadata.
	Window(total int) (lo, hi int, info types.PageInfo)
	// Next moves forward one page. It reports whether anything happened.
	Next(total int) bool
	// Prev moves back one page. It reports whether anything happened.
	Prev() bool
	// SetPage jumps to a page index.
	SetPage(index int) error
	// SetPageSize changes the page size. total is the current filtered row
	// count, used to keep the first visible row on screen.
	SetPageSize(size, total int) error
	// Reset returns to the first page.
	Reset()
	// Server reports whether the controller relays to a server.
	Server() bool
}

// New builds the controller for a paging configuration. A nil p selects
// client paging with types.DefaultPageSize.
func New(p types.Paging) (Controller, error) {
	switch cfg := p.(type) {
	case nil:
		return NewClient(types.ClientPaging{})
	case types.ClientPaging:
		return NewClient(cfg)
	case *types.ClientPaging:
		return NewClient(*cfg)
	case types.ServerPaging:
		return NewServer(cfg), nil
	case *types.ServerPaging:
		return NewServer(*cfg), nil
	default:
		return nil, fmt.Errorf("%w: %T", types.ErrInvalidPaging, p)
	}
}

// Apply slices rows to the controller's current page.
func Apply[T any](c Controller, rows []T) ([]T, types.PageInfo) {
	lo, hi, info := c.Window(len(rows))
	return rows[lo:hi], info
}

func validSize(size int) bool {
	return size > 0 || size == types.PageSizeAll
}
