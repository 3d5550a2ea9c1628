package grid

import (
	"net/url"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/grid/internal/facet"
	"github.com/mesh-intelligence/grid/internal/filter"
	"github.com/mesh-intelligence/grid/internal/inline"
	"github.com/mesh-intelligence/grid/internal/urlcodec"
	"github.com/mesh-intelligence/grid/pkg/types"
)

// FacetOption is one distinct value of a facetable column and its count.
type FacetOption = facet.Option

// Entry is one line of the visible page: a row or the inline slot.
type Entry[T any] = inline.Entry[T]

// RenderFunc renders the inline slot; see Render.
type RenderFunc[T, R any] = inline.RenderFunc[T, R]

// View is a computed snapshot of a table. It shares no mutable state with
// the table and never changes after it is returned.
type View[T any] struct {
	// Rows is the visible page in display order.
	Rows []T
	// Entries is Rows with the inline slot laid in: prepended in create
	// mode, replacing the edited row in edit mode.
	Entries []Entry[T]
	Page    types.PageInfo
	// Facets holds the options of every facetable column.
	Facets map[string][]FacetOption
	// FilteredRows counts rows passing filters and search. In server mode
	// it is the number of supplied rows.
	FilteredRows int
	TotalRows    int

	Filters types.FilterState
	Sort    types.SortState
	Search  string
	// HasActiveFilters reports whether any column filter narrows the rows.
	HasActiveFilters bool
	// PendingSearch is input not yet committed by the debounce.
	PendingSearch string

	Inline types.InlineState
	// Selected is nil when the table has no row identity.
	Selected map[string]bool
	// SelectedCount includes selected rows that are filtered out.
	SelectedCount int
	AllSelected   bool
	SomeSelected  bool
}

// View computes the current snapshot.
func (t *Table[T]) View() (View[T], error) {
	var v View[T]
	err := t.update(func() error {
		var err error
		v, err = t.view()
		return err
	})
	return v, err
}

func (t *Table[T]) view() (View[T], error) {
	page, filtered, info, err := t.page()
	if err != nil {
		return View[T]{}, err
	}

	v := View[T]{
		Rows:         page,
		Entries:      inline.Entries(t.inline.State(), page, t.rowID),
		Page:         info,
		Facets:       t.facets(),
		FilteredRows: len(filtered),
		TotalRows:    len(t.rows),
		Filters:      t.filters.Filters(),
		Sort:         t.sorts.Sort(),
		Search:       t.search.Search(),
		Inline:       t.inline.State(),
	}
	v.HasActiveFilters = v.Filters.HasActive()
	if pending, ok := t.debouncer.Pending(); ok {
		v.PendingSearch = pending
	}
	if t.selection != nil {
		v.Selected = t.selection.Selected()
		v.SelectedCount = t.selection.Count()
		v.AllSelected = t.selection.AllSelected(page)
		v.SomeSelected = t.selection.SomeSelected(page)
	}
	return v, nil
}

func (t *Table[T]) facets() map[string][]FacetOption {
	ids := t.reg.Facetable()
	if len(ids) == 0 {
		return nil
	}
	out := make(map[string][]FacetOption, len(ids))
	state := t.filters.Filters()
	scoped := t.facetScope == types.FacetFiltered && !t.pager.Server()
	var m *filter.Matcher[T]
	if scoped {
		m = t.matcher()
	}
	for _, id := range ids {
		c, _ := t.reg.Column(id)
		rows := t.rows
		if scoped {
			rows = filter.Rows(t.reg, state, m, t.rows, t.filterOpts, id)
		}
		out[id] = facet.Count(rows, func(row T) any { return filter.CellValue(c, row) }).Options()
	}
	return out
}

// Handle pairs a snapshot with the dispatchers that change the table. It
// is the one value widgets need.
type Handle[T any] struct {
	View[T]
	Dispatch Dispatcher
}

// Dispatcher is the set of state transitions a widget may request.
type Dispatcher interface {
	SetFilter(columnID string, v types.FilterValue) error
	ClearFilters()
	InputSearch(q string)
	SetSearch(q string)
	CancelSearch()
	ToggleSort(columnID string) error
	NextPage() bool
	PrevPage() bool
	SetPage(index int) error
	SetPageSize(size int) error
	ToggleSelect(id string) error
	ToggleSelectAll() error
	ClearSelection() error
	OpenCreate() (types.InlineState, error)
	OpenEdit(rowID string) (types.InlineState, error)
	CloseInline() types.InlineState
}

var _ Dispatcher = (*Table[struct{}])(nil)

// Handle computes a snapshot and pairs it with the table's dispatchers.
func (t *Table[T]) Handle() (Handle[T], error) {
	v, err := t.View()
	if err != nil {
		return Handle[T]{}, err
	}
	return Handle[T]{View: v, Dispatch: t}, nil
}

// Render maps a view's entries to rendered output. slot renders the inline
// slot and is handed a func that closes it; row renders every other entry.
func Render[T, R any](t *Table[T], v View[T], slot RenderFunc[T, R], row func(T) R) []R {
	return inline.Render(v.Entries, slot, row, func() { t.CloseInline() })
}

// EncodeQuery encodes the table's filters, search, sort and page position
// as a shareable query.
func (t *Table[T]) EncodeQuery() url.Values {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := urlcodec.State{
		Filters: t.filters.Filters(),
		Sort:    t.sorts.Sort(),
		Query:   t.search.Search(),
	}
	if c, ok := t.pager.(interface {
		PageSize() int
		PageIndex() int
	}); ok {
		st.PageSize = c.PageSize()
		st.PageIndex = c.PageIndex()
	}
	return urlcodec.EncodeState(st)
}

// ApplyQuery restores state encoded by EncodeQuery. Malformed parts are
// skipped and logged at debug level; the rest is applied.
func (t *Table[T]) ApplyQuery(values url.Values) {
	_ = t.update(func() error {
		t.applyQuery(values)
		return nil
	})
}

func (t *Table[T]) applyQuery(values url.Values) {
	st, err := urlcodec.DecodeState(values, urlcodec.Kinds(t.reg.Columns()))
	if err != nil {
		t.logger.Debug("ignoring malformed query values", zap.Error(err))
	}

	filters := types.FilterState{}
	for id, v := range st.Filters {
		if _, ok := t.reg.Column(id); ok {
			filters[id] = v
		}
	}
	if !t.filters.Filters().Equal(filters) {
		t.filters.SetFilters(filters)
	}

	var sortState types.SortState
	for _, k := range st.Sort {
		if c, ok := t.reg.Column(k.ColumnID); ok && c.Sortable {
			sortState = append(sortState, k)
		}
	}
	t.sorts.SetSort(sortState)

	if t.search.Search() != st.Query {
		t.search.SetSearch(st.Query)
	}

	if t.pager.Server() {
		t.queryChanged()
		return
	}
	if st.PageSize != 0 {
		if err := t.pager.SetPageSize(st.PageSize, 0); err != nil {
			t.logger.Debug("ignoring page size", zap.Int("size", st.PageSize), zap.Error(err))
		}
	}
	if err := t.pager.SetPage(st.PageIndex); err != nil {
		t.logger.Debug("ignoring page", zap.Int("page", st.PageIndex), zap.Error(err))
	}
}
