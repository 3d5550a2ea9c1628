// Package grid turns a slice of typed rows into a filterable, sortable,
// searchable, paginated and selectable table.
//
// A Table owns the row set and the engine state around it. Each call to
// View recomputes the visible page from the current rows, filters, search
// query and sort order; nothing is cached between calls. Widgets receive a
// Handle, an immutable snapshot paired with the dispatchers that change the
// table, rather than reaching into shared state.
//
// Filter, sort and search state may live outside the table (see
// FilterStore, SortStore and SearchStore). The table re-reads them on every
// computation, so a URL bar or any other owner can change them at any time.
//
// With server paging the table never slices, filters or sorts rows itself.
// It relays navigation to the caller's callbacks and reports filter, search
// and sort changes through Definition.OnQueryChange.
package grid
