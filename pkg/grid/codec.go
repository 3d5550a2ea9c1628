package grid

import (
	"net/url"

	"github.com/mesh-intelligence/grid/internal/urlcodec"
	"github.com/mesh-intelligence/grid/pkg/types"
)

// Version is the release of the grid module and CLI.
const Version = "v0.3.0"

// QueryState is the decoded form of a table query string.
type QueryState = urlcodec.State

// EncodeState renders filters, search, sort and page position as query
// parameters. Inactive filters and empty parts are omitted.
func EncodeState(st QueryState) url.Values {
	return urlcodec.EncodeState(st)
}

// DecodeState parses a query produced by EncodeState. kinds maps column ids
// to their declared FilterKind; a nil map treats every non-reserved key as
// a filter of unknown kind. The returned state is always usable; the error
// joins whatever had to be dropped.
func DecodeState(values url.Values, kinds map[string]string) (QueryState, error) {
	return urlcodec.DecodeState(values, kinds)
}

// EncodeFilterValue renders one filter value. ok is false for inactive
// values, which are never written.
func EncodeFilterValue(v types.FilterValue) (string, bool) {
	return urlcodec.EncodeValue(v)
}

// DecodeFilterValue parses one encoded filter value using the column's
// FilterKind. Malformed input returns the inactive value and an error
// wrapping types.ErrMalformedQuery or types.ErrUnknownPreset.
func DecodeFilterValue(s, kind string) (types.FilterValue, error) {
	return urlcodec.DecodeValue(s, kind)
}

// IsReservedParam reports whether key is one of the search, sort or paging
// parameters rather than a column filter.
func IsReservedParam(key string) bool {
	return urlcodec.IsReserved(key)
}
