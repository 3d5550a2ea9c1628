package urlcodec

import (
	"net/url"
	"sync"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/grid/pkg/types"
)

// Navigator is the caller's URL layer: it exposes the current query and
// replaces it without adding a history entry.
type Navigator interface {
	Query() url.Values
	Replace(url.Values)
}

// URLStore keeps filter, sort and search state in the query string of a
// Navigator. Every read decodes the current URL, so changes made by the
// navigation layer (back button, pasted link) are seen on the next read.
type URLStore struct {
	nav    Navigator
	kinds  map[string]string
	logger *zap.Logger
}

// NewURLStore returns a store over nav. kinds maps each filterable column
// id to its declared filter kind (see Kinds); only those keys are treated
// as filters, and every other query key is preserved on write. With nil
// kinds every non-reserved key is a filter. A nil logger disables logging.
func NewURLStore(nav Navigator, kinds map[string]string, logger *zap.Logger) *URLStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &URLStore{nav: nav, kinds: kinds, logger: logger}
}

// Filters decodes the filters in the current URL.
func (s *URLStore) Filters() types.FilterState {
	st, err := DecodeFilters(s.nav.Query(), s.kinds)
	if err != nil {
		s.logger.Debug("ignoring malformed filter values", zap.Error(err))
	}
	return st
}

// SetFilters rewrites the filter keys of the URL. Inactive filters are
// removed from the URL.
func (s *URLStore) SetFilters(state types.FilterState) {
	cur := s.nav.Query()
	var drop []string
	if s.kinds == nil {
		for k := range cur {
			if !IsReserved(k) {
				drop = append(drop, k)
			}
		}
	} else {
		for k := range s.kinds {
			drop = append(drop, k)
		}
	}
	patch := EncodeFilters(state)
	if s.kinds != nil {
		for k := range patch {
			if _, ok := s.kinds[k]; !ok {
				patch.Del(k)
			}
		}
	}
	s.nav.Replace(Merge(cur, patch, drop))
}

// Sort decodes the sort state in the current URL.
func (s *URLStore) Sort() types.SortState {
	st, err := DecodeSort(s.nav.Query().Get(SortParam))
	if err != nil {
		s.logger.Debug("ignoring malformed sort keys", zap.Error(err))
	}
	return st
}

// SetSort rewrites the sort key of the URL.
func (s *URLStore) SetSort(state types.SortState) {
	patch := url.Values{}
	if enc := EncodeSort(state); enc != "" {
		patch.Set(SortParam, enc)
	}
	s.nav.Replace(Merge(s.nav.Query(), patch, []string{SortParam}))
}

// Search returns the global search query in the URL.
func (s *URLStore) Search() string {
	return s.nav.Query().Get(SearchParam)
}

// SetSearch rewrites the global search key of the URL.
func (s *URLStore) SetSearch(q string) {
	patch := url.Values{}
	if q != "" {
		patch.Set(SearchParam, q)
	}
	s.nav.Replace(Merge(s.nav.Query(), patch, []string{SearchParam}))
}

// MemoryNavigator is a Navigator over an in-memory query, for callers
// without a real URL bar (tests, the CLI).
type MemoryNavigator struct {
	mu       sync.Mutex
	values   url.Values
	replaced int
}

// NewMemoryNavigator starts from values, which is copied.
func NewMemoryNavigator(values url.Values) *MemoryNavigator {
	return &MemoryNavigator{values: Merge(values, nil, nil)}
}

// ParseMemoryNavigator starts from a raw query string.
func ParseMemoryNavigator(rawQuery string) (*MemoryNavigator, error) {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return nil, err
	}
	return NewMemoryNavigator(values), nil
}

// Query implements Navigator.
func (n *MemoryNavigator) Query() url.Values {
	n.mu.Lock()
	defer n.mu.Unlock()
	return Merge(n.values, nil, nil)
}

// Replace implements Navigator.
func (n *MemoryNavigator) Replace(values url.Values) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.values = Merge(values, nil, nil)
	n.replaced++
}

// Replaced counts Replace calls.
func (n *MemoryNavigator) Replaced() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.replaced
}

// Encode returns the current query string.
func (n *MemoryNavigator) Encode() string {
	return n.Query().Encode()
}
