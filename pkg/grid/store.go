package grid

import (
	"net/url"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/grid/internal/urlcodec"
	"github.com/mesh-intelligence/grid/pkg/types"
)

// FilterStore owns the column filters of a table.
type FilterStore interface {
	Filters() types.FilterState
	SetFilters(types.FilterState)
}

// SortStore owns the sort order of a table.
type SortStore interface {
	Sort() types.SortState
	SetSort(types.SortState)
}

// SearchStore owns the committed global search query of a table.
type SearchStore interface {
	Search() string
	SetSearch(string)
}

// Navigator is the URL layer a URLStore reads and writes.
type Navigator = urlcodec.Navigator

// URLStore keeps filter, sort and search state in a query string. It
// implements FilterStore, SortStore and SearchStore.
type URLStore = urlcodec.URLStore

// MemoryNavigator is an in-memory Navigator.
type MemoryNavigator = urlcodec.MemoryNavigator

// NewURLStore returns a store over nav. kinds is usually FilterKinds of
// the table's columns.
func NewURLStore(nav Navigator, kinds map[string]string, logger *zap.Logger) *URLStore {
	return urlcodec.NewURLStore(nav, kinds, logger)
}

// NewMemoryNavigator returns a Navigator holding a copy of values.
func NewMemoryNavigator(values url.Values) *MemoryNavigator {
	return urlcodec.NewMemoryNavigator(values)
}

// FilterKinds maps each column id to its declared filter kind.
func FilterKinds[T any](columns []types.Column[T]) map[string]string {
	return urlcodec.Kinds(columns)
}

var (
	_ FilterStore = (*URLStore)(nil)
	_ SortStore   = (*URLStore)(nil)
	_ SearchStore = (*URLStore)(nil)
	_ FilterStore = (*memoryStore)(nil)
	_ SortStore   = (*memoryStore)(nil)
	_ SearchStore = (*memoryStore)(nil)
)

// memoryStore is the default owner of table state.
type memoryStore struct {
	filters types.FilterState
	sort    types.SortState
	search  string
}

func (s *memoryStore) Filters() types.FilterState     { return s.filters.Clone() }
func (s *memoryStore) SetFilters(f types.FilterState) { s.filters = f.Clone() }
func (s *memoryStore) Sort() types.SortState          { return s.sort.Clone() }
func (s *memoryStore) SetSort(st types.SortState)     { s.sort = st.Clone() }
func (s *memoryStore) Search() string                 { return s.search }
func (s *memoryStore) SetSearch(q string)             { s.search = q }
