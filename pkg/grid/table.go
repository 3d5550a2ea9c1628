package grid

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/grid/internal/debounce"
	"github.com/mesh-intelligence/grid/internal/filter"
	"github.com/mesh-intelligence/grid/internal/inline"
	"github.com/mesh-intelligence/grid/internal/paging"
	"github.com/mesh-intelligence/grid/internal/registry"
	"github.com/mesh-intelligence/grid/internal/rowactions"
	"github.com/mesh-intelligence/grid/internal/selection"
	"github.com/mesh-intelligence/grid/internal/sorting"
	"github.com/mesh-intelligence/grid/internal/urlcodec"
	"github.com/mesh-intelligence/grid/pkg/types"
)

// QueryChange is the intent a server-paged table emits when its filters,
// search query or sort order change. The caller fetches the matching rows
// and hands them over with SetRows.
type QueryChange struct {
	Filters types.FilterState
	Search  string
	Sort    types.SortState
}

// Definition describes one table.
type Definition[T any] struct {
	Columns []types.Column[T]
	// RowID identifies rows. Selection and inline editing need it.
	RowID func(T) string
	// Actions are offered on every row.
	Actions []types.RowAction[T]
	// Paging is types.ClientPaging, types.ServerPaging or nil for client
	// paging with the configured page size.
	Paging types.Paging
	// Selection makes selection controlled. Nil keeps it internal.
	Selection *types.SelectionSource
	// SearchScope restricts the columns global search reads.
	SearchScope types.SearchScope
	// OnQueryChange receives filter, search and sort changes in server
	// paging mode.
	OnQueryChange func(QueryChange)
}

// Table is the engine state of one table. It is safe for concurrent use.
// Callbacks supplied by the caller run after the table's lock is released,
// so they may call back into the table.
type Table[T any] struct {
	mu sync.Mutex

	reg        *registry.Registry[T]
	rowID      func(T) string
	sorters    *sorting.Registry
	filters    FilterStore
	sorts      SortStore
	search     SearchStore
	scope      types.SearchScope
	searchable []types.Column[T]
	pager      paging.Controller
	selection  *selection.Controller[T]
	inline     *inline.Machine
	actions    *rowactions.Planner[T]
	debouncer  *debounce.Debouncer
	clock      Clock
	logger     *zap.Logger

	filterOpts    filter.Options
	searchCfg     filter.SearchConfig
	multiSort     bool
	facetScope    types.FacetScope
	onQueryChange func(QueryChange)

	rows  []T
	after []func()
}

// New validates def and builds a table with no rows.
func New[T any](def Definition[T], opts ...Option) (*Table[T], error) {
	o := options{config: types.DefaultConfig(), facetScope: types.FacetFiltered}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if !types.IsValidFacetScope(o.facetScope) {
		return nil, fmt.Errorf("%w: facet scope %q", types.ErrInvalidColumn, o.facetScope)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.clock == nil {
		o.clock = debounce.Real()
	}

	reg, err := registry.New(def.Columns)
	if err != nil {
		return nil, err
	}

	sorters := sorting.NewRegistry()
	for name, cmp := range o.comparators {
		if err := sorters.Register(name, cmp); err != nil {
			return nil, err
		}
	}
	for _, c := range reg.Columns() {
		if c.Sortable && c.SortType == types.SortCustom && !sorters.Has(c.CustomSort) {
			return nil, fmt.Errorf("%w: column %q uses unregistered comparator %q",
				types.ErrUnknownSortType, c.ID, c.CustomSort)
		}
	}

	t := &Table[T]{
		reg:           reg,
		rowID:         def.RowID,
		sorters:       sorters,
		scope:         def.SearchScope,
		searchable:    reg.ResolveSearchable(def.SearchScope),
		inline:        inline.New(o.config.InlineExitDelay),
		actions:       rowactions.NewPlanner(def.Actions, o.config.MaxInlineActions, o.logger),
		clock:         o.clock,
		logger:        o.logger,
		multiSort:     o.multiSort,
		facetScope:    o.facetScope,
		onQueryChange: def.OnQueryChange,
		filterOpts: filter.Options{
			Now:      o.clock.Now,
			Location: o.location,
		},
		searchCfg: filter.SearchConfig{
			Mode:          o.config.SearchMode,
			CaseSensitive: o.config.CaseSensitive,
		},
	}

	mem := &memoryStore{}
	t.filters, t.sorts, t.search = mem, mem, mem
	if o.filterStore != nil {
		t.filters = o.filterStore
	}
	if o.sortStore != nil {
		t.sorts = o.sortStore
	}
	if o.searchStore != nil {
		t.search = o.searchStore
	}

	p := def.Paging
	if p == nil {
		p = types.ClientPaging{PageSize: o.config.PageSize, PageSizeOptions: o.config.PageSizeOptions}
	}
	if sp, ok := p.(types.ServerPaging); ok {
		p = t.relayServer(sp)
	}
	if t.pager, err = paging.New(p); err != nil {
		return nil, err
	}

	if def.RowID != nil {
		var src *types.SelectionSource
		if def.Selection != nil {
			src = t.relaySelection(*def.Selection)
		}
		if t.selection, err = selection.New(def.RowID, src); err != nil {
			return nil, err
		}
	} else if def.Selection != nil {
		return nil, types.ErrSelectionUnavailable
	}

	t.debouncer = debounce.New(o.config.SearchDebounce, o.clock, t.commitSearch)

	if o.initialQuery != nil {
		t.ApplyQuery(o.initialQuery)
	}
	t.logger.Debug("table ready",
		zap.Int("columns", reg.Len()),
		zap.Int("searchable", len(t.searchable)),
		zap.Bool("server_paging", t.pager.Server()))
	return t, nil
}

// relayServer defers the caller's paging callbacks until the lock is
// released.
func (t *Table[T]) relayServer(sp types.ServerPaging) types.ServerPaging {
	next, prev, size := sp.OnNext, sp.OnPrev, sp.OnPageSize
	if next != nil {
		sp.OnNext = func() { t.later(next) }
	}
	if prev != nil {
		sp.OnPrev = func() { t.later(prev) }
	}
	if size != nil {
		sp.OnPageSize = func(n int) { t.later(func() { size(n) }) }
	}
	return sp
}

func (t *Table[T]) relaySelection(src types.SelectionSource) *types.SelectionSource {
	onChange := src.OnChange
	if onChange != nil {
		src.OnChange = func(next map[string]bool) { t.later(func() { onChange(next) }) }
	}
	return &src
}

// later queues f to run once the current update releases the lock.
func (t *Table[T]) later(f func()) {
	t.after = append(t.after, f)
}

// update runs fn under the lock and then the callbacks it queued.
func (t *Table[T]) update(fn func() error) error {
	t.mu.Lock()
	err := fn()
	after := t.after
	t.after = nil
	t.mu.Unlock()
	for _, f := range after {
		f()
	}
	return err
}

// queryChanged resets to the first page, or in server mode tells the
// caller what to fetch.
func (t *Table[T]) queryChanged() {
	if !t.pager.Server() {
		t.pager.Reset()
		return
	}
	if t.onQueryChange == nil {
		return
	}
	change := QueryChange{
		Filters: t.filters.Filters(),
		Search:  t.search.Search(),
		Sort:    t.sorts.Sort(),
	}
	fn := t.onQueryChange
	t.later(func() { fn(change) })
}

// SetRows replaces the row set. The slice is not modified.
func (t *Table[T]) SetRows(rows []T) {
	_ = t.update(func() error {
		t.rows = rows
		return nil
	})
}

// Rows returns the current row set.
func (t *Table[T]) Rows() []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rows
}

// Columns returns the column descriptors in declaration order.
func (t *Table[T]) Columns() []types.Column[T] {
	return t.reg.Columns()
}

// FilterKinds maps each column id to its declared filter kind, for decoding
// query strings.
func (t *Table[T]) FilterKinds() map[string]string {
	return urlcodec.Kinds(t.reg.Columns())
}

// ExitDelay is how long a renderer may keep a closed inline slot on screen.
func (t *Table[T]) ExitDelay() time.Duration {
	return t.inline.ExitDelay()
}

// SearchDelay is the quiet period before search input is committed.
func (t *Table[T]) SearchDelay() time.Duration {
	return t.debouncer.Delay()
}

// Filters returns the current column filters.
func (t *Table[T]) Filters() types.FilterState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.filters.Filters()
}

// SetFilter sets the filter of one column. An inactive value clears it. A
// value that would read back differently from the URL under the column's
// filter kind, such as a scalar on a set column, is rejected with
// types.ErrFilterKindMismatch so every store filters the same rows.
func (t *Table[T]) SetFilter(columnID string, v types.FilterValue) error {
	return t.update(func() error {
		if err := t.checkFilter(columnID, v); err != nil {
			return err
		}
		cur := t.filters.Filters()
		if cur[columnID].Equal(v) {
			return nil
		}
		if cur == nil {
			cur = types.FilterState{}
		}
		if v.IsActive() {
			cur[columnID] = v
		} else {
			delete(cur, columnID)
		}
		t.filters.SetFilters(cur)
		t.queryChanged()
		return nil
	})
}

// SetFilters replaces every column filter. The state is applied only if
// every entry passes the checks of SetFilter.
func (t *Table[T]) SetFilters(state types.FilterState) error {
	return t.update(func() error {
		for id, v := range state {
			if err := t.checkFilter(id, v); err != nil {
				return err
			}
		}
		if t.filters.Filters().Equal(state) {
			return nil
		}
		next := types.FilterState{}
		for id, v := range state {
			if v.IsActive() {
				next[id] = v
			}
		}
		t.filters.SetFilters(next)
		t.queryChanged()
		return nil
	})
}

// checkFilter rejects unknown columns and values whose meaning would change
// when read back from the URL under the column's filter kind.
func (t *Table[T]) checkFilter(columnID string, v types.FilterValue) error {
	c, ok := t.reg.Column(columnID)
	if !ok {
		return fmt.Errorf("%w: %q", types.ErrColumnNotFound, columnID)
	}
	if !urlcodec.Fits(v, c.FilterKind) {
		return fmt.Errorf("%w: column %q takes %s filters", types.ErrFilterKindMismatch, columnID, kindLabel(c.FilterKind))
	}
	return nil
}

func kindLabel(kind string) string {
	if kind == types.FilterKindAuto {
		return "auto"
	}
	return kind
}

// ClearFilters removes every column filter.
func (t *Table[T]) ClearFilters() {
	_ = t.SetFilters(types.FilterState{})
}

// Search returns the committed search query.
func (t *Table[T]) Search() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.search.Search()
}

// InputSearch records keystrokes. The query is committed once input has
// been quiet for the configured delay.
func (t *Table[T]) InputSearch(q string) {
	t.debouncer.Input(q)
}

// SetSearch commits q immediately, cancelling pending input.
func (t *Table[T]) SetSearch(q string) {
	t.debouncer.Flush(q)
}

// CancelSearch drops search input that has not been committed yet. The
// committed query is unchanged.
func (t *Table[T]) CancelSearch() {
	t.debouncer.Cancel()
}

func (t *Table[T]) commitSearch(q string) {
	_ = t.update(func() error {
		if t.search.Search() == q {
			return nil
		}
		t.search.SetSearch(q)
		t.queryChanged()
		return nil
	})
}

// SearchScope returns the current search scope.
func (t *Table[T]) SearchScope() types.SearchScope {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.scope
}

// SetSearchScope changes which columns global search reads.
func (t *Table[T]) SetSearchScope(scope types.SearchScope) {
	_ = t.update(func() error {
		t.scope = scope
		t.searchable = t.reg.ResolveSearchable(scope)
		return nil
	})
}

// Sort returns the current sort order.
func (t *Table[T]) Sort() types.SortState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sorts.Sort()
}

// ToggleSort advances a column through unsorted, ascending and descending.
func (t *Table[T]) ToggleSort(columnID string) error {
	return t.update(func() error {
		c, ok := t.reg.Column(columnID)
		if !ok {
			return fmt.Errorf("%w: %q", types.ErrColumnNotFound, columnID)
		}
		if !c.Sortable {
			return fmt.Errorf("%w: %q", types.ErrNotSortable, columnID)
		}
		t.sorts.SetSort(sorting.Toggle(t.sorts.Sort(), columnID, t.multiSort))
		if t.pager.Server() {
			t.queryChanged()
		}
		return nil
	})
}

// SetSort replaces the sort order. Every key must name a sortable column.
func (t *Table[T]) SetSort(state types.SortState) error {
	return t.update(func() error {
		for _, k := range state {
			c, ok := t.reg.Column(k.ColumnID)
			if !ok {
				return fmt.Errorf("%w: %q", types.ErrColumnNotFound, k.ColumnID)
			}
			if !c.Sortable {
				return fmt.Errorf("%w: %q", types.ErrNotSortable, k.ColumnID)
			}
		}
		t.sorts.SetSort(state.Clone())
		if t.pager.Server() {
			t.queryChanged()
		}
		return nil
	})
}

// NextPage moves forward one page. In server mode it asks the caller to.
func (t *Table[T]) NextPage() bool {
	var moved bool
	_ = t.update(func() error {
		total := 0
		if !t.pager.Server() {
			total = len(t.filtered())
		}
		moved = t.pager.Next(total)
		return nil
	})
	return moved
}

// PrevPage moves back one page. In server mode it asks the caller to.
func (t *Table[T]) PrevPage() bool {
	var moved bool
	_ = t.update(func() error {
		moved = t.pager.Prev()
		return nil
	})
	return moved
}

// SetPage jumps to a page. It fails in server mode.
func (t *Table[T]) SetPage(index int) error {
	return t.update(func() error {
		return t.pager.SetPage(index)
	})
}

// SetPageSize changes the page size. types.PageSizeAll shows every row.
func (t *Table[T]) SetPageSize(size int) error {
	return t.update(func() error {
		total := 0
		if !t.pager.Server() {
			total = len(t.filtered())
		}
		return t.pager.SetPageSize(size, total)
	})
}

// UpdateServerPaging reports the server's current page position. It fails
// for client-paged tables.
func (t *Table[T]) UpdateServerPaging(sp types.ServerPaging) error {
	return t.update(func() error {
		s, ok := t.pager.(*paging.ServerController)
		if !ok {
			return fmt.Errorf("%w: table uses client paging", types.ErrInvalidPaging)
		}
		s.Update(t.relayServer(sp))
		return nil
	})
}

func (t *Table[T]) selectionOrErr() (*selection.Controller[T], error) {
	if t.selection == nil {
		return nil, types.ErrSelectionUnavailable
	}
	return t.selection, nil
}

// Selected returns the selected row ids, including rows currently filtered
// out.
func (t *Table[T]) Selected() (map[string]bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	sel, err := t.selectionOrErr()
	if err != nil {
		return nil, err
	}
	return sel.Selected(), nil
}

// SelectedRows resolves the selection against the current row set,
// skipping ids with no matching row.
func (t *Table[T]) SelectedRows() ([]T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	sel, err := t.selectionOrErr()
	if err != nil {
		return nil, err
	}
	return sel.SelectedRows(t.rows), nil
}

// Select sets the selection of one row id.
func (t *Table[T]) Select(id string, on bool) error {
	return t.update(func() error {
		sel, err := t.selectionOrErr()
		if err != nil {
			return err
		}
		sel.Set(id, on)
		return nil
	})
}

// ToggleSelect flips the selection of one row id.
func (t *Table[T]) ToggleSelect(id string) error {
	return t.update(func() error {
		sel, err := t.selectionOrErr()
		if err != nil {
			return err
		}
		sel.Toggle(id)
		return nil
	})
}

// ToggleSelectAll selects every row on the visible page, or deselects them
// when all are selected. Rows on other pages are untouched.
func (t *Table[T]) ToggleSelectAll() error {
	return t.update(func() error {
		sel, err := t.selectionOrErr()
		if err != nil {
			return err
		}
		page, _, _, err := t.page()
		if err != nil {
			return err
		}
		sel.ToggleAll(page)
		return nil
	})
}

// ClearSelection deselects everything.
func (t *Table[T]) ClearSelection() error {
	return t.update(func() error {
		sel, err := t.selectionOrErr()
		if err != nil {
			return err
		}
		sel.Clear()
		return nil
	})
}

// Inline returns the inline slot state.
func (t *Table[T]) Inline() types.InlineState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inline.State()
}

// OpenCreate opens the create slot above the current page.
func (t *Table[T]) OpenCreate() (types.InlineState, error) {
	var st types.InlineState
	err := t.update(func() error {
		var err error
		st, err = t.inline.OpenCreate()
		return err
	})
	return st, err
}

// OpenEdit opens the editor on a row of the visible page. Rows that are not
// on the page are rejected with types.ErrRowNotOnPage.
func (t *Table[T]) OpenEdit(rowID string) (types.InlineState, error) {
	var st types.InlineState
	err := t.update(func() error {
		if t.rowID == nil {
			st = t.inline.State()
			return fmt.Errorf("%w: table has no row identity", types.ErrInvalidTransition)
		}
		page, _, _, err := t.page()
		if err != nil {
			return err
		}
		visible := make([]string, len(page))
		for i, row := range page {
			visible[i] = t.rowID(row)
		}
		st, err = t.inline.OpenEdit(rowID, visible)
		if err != nil {
			t.logger.Debug("edit rejected", zap.String("row", rowID), zap.Error(err))
		}
		return err
	})
	return st, err
}

// CloseInline closes any open slot and returns the slot that was closed.
func (t *Table[T]) CloseInline() types.InlineState {
	var prev types.InlineState
	_ = t.update(func() error {
		prev = t.inline.Close()
		return nil
	})
	return prev
}

// RowActions lays out the actions visible for row.
func (t *Table[T]) RowActions(row T) rowactions.Layout[T] {
	return t.actions.Layout(row)
}

// filtered returns the rows that pass the current filters and search, in
// row order. Server-paged rows are returned as supplied.
func (t *Table[T]) filtered() []T {
	if t.pager.Server() {
		return t.rows
	}
	return filter.Rows(t.reg, t.filters.Filters(), t.matcher(), t.rows, t.filterOpts, "")
}

func (t *Table[T]) matcher() *filter.Matcher[T] {
	return filter.Compile(t.searchable, t.search.Search(), t.searchCfg)
}

// page computes the visible page and the filtered, sorted rows it is cut
// from.
func (t *Table[T]) page() (page, rows []T, info types.PageInfo, err error) {
	rows = t.filtered()
	if !t.pager.Server() {
		if rows, err = sorting.Rows(t.sorters, t.reg, t.sorts.Sort(), rows); err != nil {
			return nil, nil, types.PageInfo{}, err
		}
	}
	page, info = paging.Apply(t.pager, rows)
	return slices.Clip(page), rows, info, nil
}
