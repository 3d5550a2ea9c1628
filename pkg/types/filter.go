package types

import (
	"slices"
	"strings"
	"time"
)

// FilterValue kinds. A FilterValue holds exactly one of these shapes.
type ValueKind int

const (
	KindNone ValueKind = iota
	KindScalar
	KindSet
	KindDate
	KindRange
)

// Date range presets are named relative windows. Their bounds are computed
// when the filter is evaluated, never when it is stored.
const (
	PresetLast24Hours = "24h"
	PresetLast7Days   = "7d"
	PresetLast30Days  = "30d"
	PresetLast90Days  = "90d"
	PresetToday       = "today"
	PresetThisMonth   = "month"
)

var validPresets = map[string]bool{
	PresetLast24Hours: true,
	PresetLast7Days:   true,
	PresetLast30Days:  true,
	PresetLast90Days:  true,
	PresetToday:       true,
	PresetThisMonth:   true,
}

// Presets lists the preset keys in display order.
var Presets = []string{
	PresetLast24Hours,
	PresetToday,
	PresetLast7Days,
	PresetLast30Days,
	PresetThisMonth,
	PresetLast90Days,
}

// IsValidPreset reports whether key names a known preset.
func IsValidPreset(key string) bool {
	return validPresets[key]
}

// DateRange bounds are inclusive. A nil bound is open. When Preset is set
// the bounds are ignored and resolved relative to the evaluation time.
type DateRange struct {
	From   *time.Time
	To     *time.Time
	Preset string
}

// FilterValue is the tagged union of values a column filter can hold.
// The zero value is FilterNone.
type FilterValue struct {
	kind   ValueKind
	scalar string
	set    []string
	date   time.Time
	rng    DateRange
}

// FilterNone is the absent filter.
var FilterNone = FilterValue{}

// Scalar returns a text filter value.
func Scalar(s string) FilterValue {
	return FilterValue{kind: KindScalar, scalar: s}
}

// Set returns a multi-value filter. The slice is copied.
func Set(values ...string) FilterValue {
	return FilterValue{kind: KindSet, set: slices.Clone(values)}
}

// Date returns a single-timestamp filter. Timestamps keep millisecond
// precision, the resolution of the query encoding.
func Date(t time.Time) FilterValue {
	return FilterValue{kind: KindDate, date: t.Truncate(time.Millisecond)}
}

// Range returns an absolute date range filter. Either bound may be nil.
// Bounds given in the wrong order are swapped.
func Range(from, to *time.Time) FilterValue {
	from, to = cloneTime(from), cloneTime(to)
	if from != nil && to != nil && from.After(*to) {
		from, to = to, from
	}
	return FilterValue{kind: KindRange, rng: DateRange{From: from, To: to}}
}

// PresetRange returns a relative date range filter for a preset key.
func PresetRange(key string) FilterValue {
	return FilterValue{kind: KindRange, rng: DateRange{Preset: key}}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := t.Truncate(time.Millisecond)
	return &c
}

// Kind reports which shape the value holds.
func (v FilterValue) Kind() ValueKind { return v.kind }

// ScalarValue returns the text of a scalar filter.
func (v FilterValue) ScalarValue() string { return v.scalar }

// SetValues returns a copy of the members of a set filter.
func (v FilterValue) SetValues() []string { return slices.Clone(v.set) }

// DateValue returns the timestamp of a date filter.
func (v FilterValue) DateValue() time.Time { return v.date }

// RangeValue returns the bounds of a range filter.
func (v FilterValue) RangeValue() DateRange {
	return DateRange{From: cloneTime(v.rng.From), To: cloneTime(v.rng.To), Preset: v.rng.Preset}
}

// IsActive reports whether the value filters anything. Absent values, empty
// strings, empty sets and unbounded ranges are all inactive.
func (v FilterValue) IsActive() bool {
	switch v.kind {
	case KindScalar:
		return strings.TrimSpace(v.scalar) != ""
	case KindSet:
		return len(v.set) > 0
	case KindDate:
		return !v.date.IsZero()
	case KindRange:
		return v.rng.Preset != "" || v.rng.From != nil || v.rng.To != nil
	default:
		return false
	}
}

// Equal reports whether two values hold the same shape and content.
// Inactive values are all equal to each other.
func (v FilterValue) Equal(o FilterValue) bool {
	if !v.IsActive() || !o.IsActive() {
		return v.IsActive() == o.IsActive()
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindScalar:
		return v.scalar == o.scalar
	case KindSet:
		return slices.Equal(v.set, o.set)
	case KindDate:
		return v.date.Equal(o.date)
	case KindRange:
		if v.rng.Preset != "" || o.rng.Preset != "" {
			return v.rng.Preset == o.rng.Preset
		}
		return timePtrEqual(v.rng.From, o.rng.From) && timePtrEqual(v.rng.To, o.rng.To)
	}
	return false
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// FilterState maps a filter key (usually a column id) to its value.
type FilterState map[string]FilterValue

// Clone returns a shallow copy of the state.
func (s FilterState) Clone() FilterState {
	out := make(FilterState, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Active returns the keys with active values, sorted.
func (s FilterState) Active() []string {
	keys := make([]string, 0, len(s))
	for k, v := range s {
		if v.IsActive() {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// HasActive reports whether any value in the state filters rows.
func (s FilterState) HasActive() bool {
	for _, v := range s {
		if v.IsActive() {
			return true
		}
	}
	return false
}

// Equal compares two states ignoring inactive entries.
func (s FilterState) Equal(o FilterState) bool {
	a, b := s.Active(), o.Active()
	if !slices.Equal(a, b) {
		return false
	}
	for _, k := range a {
		if !s[k].Equal(o[k]) {
			return false
		}
	}
	return true
}
