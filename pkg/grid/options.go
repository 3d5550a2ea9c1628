package grid

import (
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/grid/internal/debounce"
	"github.com/mesh-intelligence/grid/pkg/types"
)

// Clock schedules the search debounce and anchors date presets.
type Clock = debounce.Clock

// ManualClock is a Clock that only moves when advanced.
type ManualClock = debounce.ManualClock

// NewManualClock returns a ManualClock starting at start.
func NewManualClock(start time.Time) *ManualClock {
	return debounce.NewManualClock(start)
}

type options struct {
	logger       *zap.Logger
	clock        Clock
	config       types.Config
	filterStore  FilterStore
	sortStore    SortStore
	searchStore  SearchStore
	comparators  map[string]func(a, b any) int
	initialQuery url.Values
	location     *time.Location
	multiSort    bool
	facetScope   types.FacetScope
}

// Option configures a Table.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithClock replaces the wall clock, typically with a ManualClock in tests.
func WithClock(clock Clock) Option {
	return func(o *options) { o.clock = clock }
}

// WithConfig sets the table-wide defaults. It is validated by New.
func WithConfig(cfg types.Config) Option {
	return func(o *options) { o.config = cfg }
}

// WithFilterStore hands ownership of the column filters to store.
func WithFilterStore(store FilterStore) Option {
	return func(o *options) { o.filterStore = store }
}

// WithSortStore hands ownership of the sort order to store.
func WithSortStore(store SortStore) Option {
	return func(o *options) { o.sortStore = store }
}

// WithSearchStore hands ownership of the committed search query to store.
func WithSearchStore(store SearchStore) Option {
	return func(o *options) { o.searchStore = store }
}

// WithURLStore hands filters, sort and search to one URL-backed store.
func WithURLStore(store *URLStore) Option {
	return func(o *options) {
		o.filterStore = store
		o.sortStore = store
		o.searchStore = store
	}
}

// WithComparator registers a custom comparator that columns reference with
// SortType types.SortCustom and CustomSort name.
func WithComparator(name string, cmp func(a, b any) int) Option {
	return func(o *options) {
		if o.comparators == nil {
			o.comparators = map[string]func(a, b any) int{}
		}
		o.comparators[name] = cmp
	}
}

// WithInitialQuery applies an encoded table state when the table is built,
// as when a bookmarked link is opened.
func WithInitialQuery(values url.Values) Option {
	return func(o *options) { o.initialQuery = values }
}

// WithLocation sets the time zone that decides calendar days for date
// filters and presets. The default is UTC.
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.location = loc }
}

// WithMultiSort lets ToggleSort stack sort keys instead of replacing them.
func WithMultiSort(enabled bool) Option {
	return func(o *options) { o.multiSort = enabled }
}

// WithFacetScope selects which rows facets count. The default is
// types.FacetFiltered.
func WithFacetScope(scope types.FacetScope) Option {
	return func(o *options) { o.facetScope = scope }
}
