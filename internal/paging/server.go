package paging

import (
	"github.com/mesh-intelligence/grid/pkg/types"
)

// ServerController relays navigation to the caller. Its position is
// whatever the caller last reported through Update.
type ServerController struct {
	cfg types.ServerPaging
}

// NewServer wraps the caller's paging report.
func NewServer(cfg types.ServerPaging) *ServerController {
	return &ServerController{cfg: cfg}
}

// Update replaces the reported server position, typically after the caller
// has fetched a new page.
func (s *ServerController) Update(cfg types.ServerPaging) {
	s.cfg = cfg
}

// Window never slices: the rows are already the server's page.
func (s *ServerController) Window(total int) (lo, hi int, info types.PageInfo) {
	return 0, total, types.PageInfo{
		PageIndex: s.cfg.PageIndex,
		PageSize:  s.cfg.PageSize,
		PageCount: -1,
		TotalRows: total,
		HasNext:   s.cfg.HasNext,
		HasPrev:   s.cfg.HasPrev,
		Server:    true,
	}
}

// Next forwards to OnNext when the server reports a next page.
func (s *ServerController) Next(int) bool {
	if !s.cfg.HasNext || s.cfg.OnNext == nil {
		return false
	}
	s.cfg.OnNext()
	return true
}

// Prev forwards to OnPrev when the server reports a previous page.
func (s *ServerController) Prev() bool {
	if !s.cfg.HasPrev || s.cfg.OnPrev == nil {
		return false
	}
	s.cfg.OnPrev()
	return true
}

// SetPage is not supported; servers page by cursor.
func (s *ServerController) SetPage(int) error {
	return types.ErrServerPaging
}

// SetPageSize forwards to OnPageSize. The reported size does not change
// until the caller calls Update.
func (s *ServerController) SetPageSize(size, _ int) error {
	if size <= 0 {
		return types.ErrInvalidPageSize
	}
	if s.cfg.OnPageSize != nil {
		s.cfg.OnPageSize(size)
	}
	return nil
}

// Reset is a no-op; filter changes reach the server through its own intent.
func (s *ServerController) Reset() {}

// Server implements Controller.
func (s *ServerController) Server() bool { return true }
