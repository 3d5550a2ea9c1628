package urlcodec

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/grid/pkg/types"
)

// Reserved query keys. Filter keys share the namespace, so a column must
// not use one of these ids if its filter is to survive a round trip.
const (
	SearchParam   = "q"
	SortParam     = "sort"
	PageSizeParam = "size"
	PageParam     = "page"
)

// PageSizeAllValue encodes types.PageSizeAll.
const PageSizeAllValue = "all"

// IsReserved reports whether key is one of the reserved query keys.
func IsReserved(key string) bool {
	switch key {
	case SearchParam, SortParam, PageSizeParam, PageParam:
		return true
	}
	return false
}

// State is everything a table can restore from a query string.
type State struct {
	Filters types.FilterState
	Sort    types.SortState
	Query   string
	// PageSize is zero when absent.
	PageSize int
	// PageIndex is zero-based.
	PageIndex int
}

// EncodeFilters writes the active filters of state. Reserved keys are
// skipped.
func EncodeFilters(state types.FilterState) url.Values {
	out := url.Values{}
	for _, key := range state.Active() {
		if IsReserved(key) {
			continue
		}
		if s, ok := EncodeValue(state[key]); ok {
			out.Set(key, s)
		}
	}
	return out
}

// DecodeFilters reads every non-reserved key of values as a filter. When
// kinds is non-nil only the keys it names are read, and each key's kind
// guides decoding. Malformed values are left out of the state and reported
// together in the error.
func DecodeFilters(values url.Values, kinds map[string]string) (types.FilterState, error) {
	out := types.FilterState{}
	var errs []error
	for key, vals := range values {
		if IsReserved(key) || len(vals) == 0 {
			continue
		}
		kind, known := kinds[key]
		if kinds != nil && !known {
			continue
		}
		v, err := DecodeValue(vals[0], kind)
		if err != nil {
			errs = append(errs, fmt.Errorf("filter %q: %w", key, err))
			continue
		}
		if v.IsActive() {
			out[key] = v
		}
	}
	return out, errors.Join(errs...)
}

// EncodeSort renders a sort state as col:asc,col2:desc.
func EncodeSort(state types.SortState) string {
	parts := make([]string, 0, len(state))
	for _, k := range state {
		dir := "asc"
		if k.Desc {
			dir = "desc"
		}
		parts = append(parts, k.ColumnID+":"+dir)
	}
	return strings.Join(parts, ",")
}

// DecodeSort parses EncodeSort output. A key without a direction sorts
// ascending. Malformed keys and repeated columns are dropped.
func DecodeSort(s string) (types.SortState, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out types.SortState
	var errs []error
	for _, part := range strings.Split(s, ",") {
		id, dir, _ := strings.Cut(strings.TrimSpace(part), ":")
		if id == "" {
			errs = append(errs, fmt.Errorf("%w: sort key %q", types.ErrMalformedQuery, part))
			continue
		}
		var desc bool
		switch dir {
		case "", "asc":
		case "desc":
			desc = true
		default:
			errs = append(errs, fmt.Errorf("%w: sort direction %q", types.ErrMalformedQuery, dir))
			continue
		}
		if _, i := out.Find(id); i >= 0 {
			continue
		}
		out = append(out, types.SortKey{ColumnID: id, Desc: desc})
	}
	return out, errors.Join(errs...)
}

// EncodeState renders the full table state. Empty parts are omitted.
func EncodeState(st State) url.Values {
	out := EncodeFilters(st.Filters)
	if q := strings.TrimSpace(st.Query); q != "" {
		out.Set(SearchParam, q)
	}
	if s := EncodeSort(st.Sort); s != "" {
		out.Set(SortParam, s)
	}
	switch {
	case st.PageSize == types.PageSizeAll:
		out.Set(PageSizeParam, PageSizeAllValue)
	case st.PageSize > 0:
		out.Set(PageSizeParam, strconv.Itoa(st.PageSize))
	}
	if st.PageIndex > 0 {
		out.Set(PageParam, strconv.Itoa(st.PageIndex))
	}
	return out
}

// DecodeState parses EncodeState output. It always returns a usable state;
// the error joins every part that had to be dropped.
func DecodeState(values url.Values, kinds map[string]string) (State, error) {
	var st State
	var errs []error

	filters, err := DecodeFilters(values, kinds)
	st.Filters = filters
	errs = append(errs, err)

	st.Query = strings.TrimSpace(values.Get(SearchParam))

	st.Sort, err = DecodeSort(values.Get(SortParam))
	errs = append(errs, err)

	switch size := values.Get(PageSizeParam); size {
	case "":
	case PageSizeAllValue:
		st.PageSize = types.PageSizeAll
	default:
		n, err := strconv.Atoi(size)
		if err != nil || n <= 0 {
			errs = append(errs, fmt.Errorf("%w: page size %q", types.ErrMalformedQuery, size))
		} else {
			st.PageSize = n
		}
	}

	if page := values.Get(PageParam); page != "" {
		n, err := strconv.Atoi(page)
		if err != nil || n < 0 {
			errs = append(errs, fmt.Errorf("%w: page %q", types.ErrMalformedQuery, page))
		} else {
			st.PageIndex = n
		}
	}
	return st, errors.Join(errs...)
}

// Kinds collects the declared filter kind of every column, for use as the
// kinds argument of DecodeFilters and DecodeState.
func Kinds[T any](columns []types.Column[T]) map[string]string {
	out := make(map[string]string, len(columns))
	for _, c := range columns {
		out[c.ID] = c.FilterKind
	}
	return out
}

// Merge returns base with the keys of patch applied. Keys in drop that are
// absent from patch are removed. Other keys of base are kept.
func Merge(base, patch url.Values, drop []string) url.Values {
	out := url.Values{}
	for k, v := range base {
		if slices.Contains(drop, k) {
			if _, ok := patch[k]; !ok {
				continue
			}
		}
		out[k] = slices.Clone(v)
	}
	for k, v := range patch {
		out[k] = slices.Clone(v)
	}
	return out
}
