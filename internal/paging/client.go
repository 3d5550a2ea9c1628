package paging

import (
	"fmt"
	"slices"

	"github.com/mesh-intelligence/grid/pkg/types"
)

// Client is the client-side controller.
type Client struct {
	defaultSize int
	options     []int
	pageIndex   int
	pageSize    int
}

// NewClient validates cfg and starts on page 0. A zero PageSize selects
// types.DefaultPageSize.
func NewClient(cfg types.ClientPaging) (*Client, error) {
	size := cfg.PageSize
	if size == 0 {
		size = types.DefaultPageSize
	}
	if !validSize(size) {
		return nil, fmt.Errorf("%w: page size %d", types.ErrInvalidPageSize, cfg.PageSize)
	}
	for _, o := range cfg.PageSizeOptions {
		if !validSize(o) {
			return nil, fmt.Errorf("%w: page size option %d", types.ErrInvalidPageSize, o)
		}
	}
	defaultSize := size
	if defaultSize == types.PageSizeAll {
		defaultSize = types.DefaultPageSize
	}
	return &Client{
		defaultSize: defaultSize,
		options:     slices.Clone(cfg.PageSizeOptions),
		pageSize:    size,
	}, nil
}

// Options returns the page sizes offered to the user.
func (c *Client) Options() []int { return slices.Clone(c.options) }

// PageIndex returns the stored page index. It may exceed the last page
// until the next Window call clamps it.
func (c *Client) PageIndex() int { return c.pageIndex }

// PageSize returns the current size, possibly types.PageSizeAll.
func (c *Client) PageSize() int { return c.pageSize }

// PageCount returns ceil(total/size). Showing every row is one page.
func (c *Client) PageCount(total int) int {
	if total <= 0 {
		return 0
	}
	if c.pageSize == types.PageSizeAll {
		return 1
	}
	return (total + c.pageSize - 1) / c.pageSize
}

func (c *Client) clamp(total int) {
	last := c.PageCount(total) - 1
	if c.pageIndex > last {
		c.pageIndex = max(last, 0)
	}
}

// Window clamps the page index to the rows that exist and returns the
// current page bounds.
func (c *Client) Window(total int) (lo, hi int, info types.PageInfo) {
	c.clamp(total)
	if c.pageSize == types.PageSizeAll {
		lo, hi = 0, total
	} else {
		lo = min(c.pageIndex*c.pageSize, total)
		hi = min(lo+c.pageSize, total)
	}
	count := c.PageCount(total)
	info = types.PageInfo{
		PageIndex: c.pageIndex,
		PageSize:  c.pageSize,
		PageCount: count,
		TotalRows: total,
		HasPrev:   c.pageIndex > 0,
		HasNext:   c.pageIndex < count-1,
	}
	return lo, hi, info
}

// Next implements Controller.
func (c *Client) Next(total int) bool {
	c.clamp(total)
	if c.pageIndex >= c.PageCount(total)-1 {
		return false
	}
	c.pageIndex++
	return true
}

// Prev implements Controller.
func (c *Client) Prev() bool {
	if c.pageIndex == 0 {
		return false
	}
	c.pageIndex--
	return true
}

// SetPage stores index. Out-of-range indexes are clamped on the next
// Window call.
func (c *Client) SetPage(index int) error {
	if index < 0 {
		return fmt.Errorf("%w: page index %d", types.ErrInvalidPaging, index)
	}
	c.pageIndex = index
	return nil
}

// SetPageSize changes the page size. Choosing types.PageSizeAll shows every
// row on page 0. Leaving "all" returns to page 0 and falls back to the
// configured default size when size is not usable. Moving between fixed
// sizes keeps the first row of the current page visible.
func (c *Client) SetPageSize(size, total int) error {
	if c.pageSize == types.PageSizeAll {
		if size == types.PageSizeAll {
			return nil
		}
		if size <= 0 {
			size = c.defaultSize
		}
		c.pageSize = size
		c.pageIndex = 0
		return nil
	}
	if !validSize(size) {
		return fmt.Errorf("%w: %d", types.ErrInvalidPageSize, size)
	}
	if size == types.PageSizeAll {
		c.pageSize = size
		c.pageIndex = 0
		return nil
	}
	c.clamp(total)
	first := c.pageIndex * c.pageSize
	c.pageSize = size
	c.pageIndex = first / size
	c.clamp(total)
	return nil
}

// Reset implements Controller.
func (c *Client) Reset() { c.pageIndex = 0 }

// Server implements Controller.
func (c *Client) Server() bool { return false }
