// Package urlcodec serializes table state to a flat string-keyed query and
// back, so filtered views can be shared and bookmarked.
//
// Each filter value shape has one canonical encoding:
//
//	scalar   as is                    us-east
//	set      JSON array of strings    ["web","db"]
//	date     epoch milliseconds       1775779200000
//	range    r:<from>_<to>            r:1775779200000_ (open end)
//	preset   p:<key>                  p:7d
//
// Presets store the key, not the bounds, so a bookmarked "last 7 days"
// still means the last seven days when it is opened. Decoding picks a path
// by the shape of the string and never fails: malformed input decodes to
// types.FilterNone, and the accompanying error only explains why.
package urlcodec

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mesh-intelligence/grid/pkg/types"
)

// Encoding prefixes.
const (
	RangePrefix  = "r:"
	PresetPrefix = "p:"
	rangeSep     = "_"
)

// EncodeValue returns the canonical encoding of v. Inactive values have no
// encoding and report false.
func EncodeValue(v types.FilterValue) (string, bool) {
	if !v.IsActive() {
		return "", false
	}
	switch v.Kind() {
	case types.KindScalar:
		return v.ScalarValue(), true
	case types.KindSet:
		members := v.SetValues()
		// A lone range sentinel is written bare so that it reads back as
		// the range it names.
		if len(members) == 1 && isSentinel(members[0]) {
			return members[0], true
		}
		b, err := json.Marshal(members)
		if err != nil {
			return "", false
		}
		return string(b), true
	case types.KindDate:
		return formatMillis(v.DateValue()), true
	case types.KindRange:
		r := v.RangeValue()
		if r.Preset != "" {
			return PresetPrefix + r.Preset, true
		}
		var from, to string
		if r.From != nil {
			from = formatMillis(*r.From)
		}
		if r.To != nil {
			to = formatMillis(*r.To)
		}
		return RangePrefix + from + rangeSep + to, true
	}
	return "", false
}

func isSentinel(s string) bool {
	if key, ok := strings.CutPrefix(s, PresetPrefix); ok {
		return types.IsValidPreset(key)
	}
	if _, ok := strings.CutPrefix(s, RangePrefix); ok {
		_, err := decodeRange(s)
		return err == nil
	}
	return false
}

// DecodeValue parses an encoded filter value. kind is the column's declared
// filter kind; it settles strings whose shape is ambiguous, such as a text
// filter holding digits. The returned value is always usable; a non-nil
// error wraps types.ErrMalformedQuery or types.ErrUnknownPreset and
// describes input that decoded to types.FilterNone.
func DecodeValue(s string, kind string) (types.FilterValue, error) {
	if s == "" {
		return types.FilterNone, nil
	}
	switch kind {
	case types.FilterKindText:
		return types.Scalar(s), nil
	case types.FilterKindSet:
		if strings.HasPrefix(s, "[") {
			return decodeSet(s)
		}
		return types.Set(s), nil
	}

	switch {
	case strings.HasPrefix(s, PresetPrefix):
		key := strings.TrimPrefix(s, PresetPrefix)
		if !types.IsValidPreset(key) {
			return types.FilterNone, fmt.Errorf("%w: %q", types.ErrUnknownPreset, key)
		}
		return types.PresetRange(key), nil
	case strings.HasPrefix(s, RangePrefix):
		return decodeRange(s)
	case isMillis(s):
		if kind == types.FilterKindRange {
			return types.FilterNone, fmt.Errorf("%w: %q is not a range", types.ErrMalformedQuery, s)
		}
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return types.FilterNone, fmt.Errorf("%w: %v", types.ErrMalformedQuery, err)
		}
		return types.Date(time.UnixMilli(ms).UTC()), nil
	case strings.HasPrefix(s, "[") && kind != types.FilterKindDate && kind != types.FilterKindRange:
		return decodeSet(s)
	}

	if kind == types.FilterKindDate || kind == types.FilterKindRange {
		return types.FilterNone, fmt.Errorf("%w: %q is not a %s", types.ErrMalformedQuery, s, kind)
	}
	return types.Scalar(s), nil
}

// Fits reports whether v survives a trip through the query string of a
// column with the given filter kind. A value that does not fit would filter
// differently once it is read back from a shared link.
func Fits(v types.FilterValue, kind string) bool {
	enc, ok := EncodeValue(v)
	if !ok {
		return true
	}
	back, err := DecodeValue(enc, kind)
	return err == nil && back.Equal(v)
}

func decodeSet(s string) (types.FilterValue, error) {
	var members []string
	if err := json.Unmarshal([]byte(s), &members); err != nil {
		return types.FilterNone, fmt.Errorf("%w: %v", types.ErrMalformedQuery, err)
	}
	return types.Set(members...), nil
}

func decodeRange(s string) (types.FilterValue, error) {
	body := strings.TrimPrefix(s, RangePrefix)
	fromStr, toStr, ok := strings.Cut(body, rangeSep)
	if !ok || (fromStr == "" && toStr == "") {
		return types.FilterNone, fmt.Errorf("%w: range %q", types.ErrMalformedQuery, s)
	}
	from, err := parseBound(fromStr)
	if err != nil {
		return types.FilterNone, err
	}
	to, err := parseBound(toStr)
	if err != nil {
		return types.FilterNone, err
	}
	if from != nil && to != nil && from.After(*to) {
		return types.FilterNone, fmt.Errorf("%w: range %q ends before it starts", types.ErrMalformedQuery, s)
	}
	return types.Range(from, to), nil
}

func parseBound(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if !isMillis(s) {
		return nil, fmt.Errorf("%w: range bound %q", types.ErrMalformedQuery, s)
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrMalformedQuery, err)
	}
	t := time.UnixMilli(ms).UTC()
	return &t, nil
}

func isMillis(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func formatMillis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
