package types

// PageSizeAll is the page size sentinel meaning "one page holding every
// filtered row".
const PageSizeAll = -1

// DefaultPageSize is used when a client paging configuration names none.
const DefaultPageSize = 10

// Paging selects the pagination strategy for a table. It is resolved once
// when the table is built; the two variants carry disjoint data.
type Paging interface {
	isPaging()
}

// ClientPaging slices the filtered rows locally.
type ClientPaging struct {
	// PageSize is the initial size. Zero means DefaultPageSize.
	PageSize int
	// PageSizeOptions lists the sizes a caller may offer.
	PageSizeOptions []int
}

// ServerPaging relays navigation to the caller, which supplies exactly one
// page of rows and the server's view of where that page sits.
type ServerPaging struct {
	PageIndex int
	PageSize  int
	HasNext   bool
	HasPrev   bool

	OnNext     func()
	OnPrev     func()
	OnPageSize func(size int)
}

func (ClientPaging) isPaging() {}
func (ServerPaging) isPaging() {}

// PageInfo describes the current page window.
type PageInfo struct {
	PageIndex int
	PageSize  int
	// PageCount is ceil(TotalRows/PageSize) in client mode and -1 in server
	// mode, where the engine does not know the total.
	PageCount int
	TotalRows int
	HasNext   bool
	HasPrev   bool
	Server    bool
}
