package urlcodec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/grid/pkg/types"
)

func ms(v int64) *time.Time {
	t := time.UnixMilli(v).UTC()
	return &t
}

func TestEncodeValue(t *testing.T) {
	tests := []struct {
		name string
		in   types.FilterValue
		want string
	}{
		{name: "scalar", in: types.Scalar("us-east"), want: "us-east"},
		{name: "set", in: types.Set("web", "db"), want: `["web","db"]`},
		{name: "set with quotes", in: types.Set(`a"b`), want: `["a\"b"]`},
		{name: "date", in: types.Date(*ms(1775779200000)), want: "1775779200000"},
		{name: "range", in: types.Range(ms(1000), ms(2000)), want: "r:1000_2000"},
		{name: "range open end", in: types.Range(ms(1000), nil), want: "r:1000_"},
		{name: "range open start", in: types.Range(nil, ms(2000)), want: "r:_2000"},
		{name: "preset", in: types.PresetRange(types.PresetLast7Days), want: "p:7d"},
		{name: "set holding a preset collapses", in: types.Set("p:30d"), want: "p:30d"},
		{name: "set holding a range collapses", in: types.Set("r:1_2"), want: "r:1_2"},
		{name: "set holding text stays an array", in: types.Set("p:nope"), want: `["p:nope"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := EncodeValue(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, v := range []types.FilterValue{types.FilterNone, types.Scalar(" "), types.Set(), types.Range(nil, nil)} {
		_, ok := EncodeValue(v)
		assert.False(t, ok)
	}
}

func TestDecodeValueShapes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		kind string
		want types.FilterValue
	}{
		{name: "empty", in: "", want: types.FilterNone},
		{name: "scalar", in: "us-east", want: types.Scalar("us-east")},
		{name: "set", in: `["a","b"]`, want: types.Set("a", "b")},
		{name: "date", in: "1000", want: types.Date(*ms(1000))},
		{name: "range", in: "r:1000_2000", want: types.Range(ms(1000), ms(2000))},
		{name: "preset", in: "p:today", want: types.PresetRange(types.PresetToday)},
		{name: "digits as text", in: "8080", kind: types.FilterKindText, want: types.Scalar("8080")},
		{name: "prefix as text", in: "p:7d", kind: types.FilterKindText, want: types.Scalar("p:7d")},
		{name: "bare value as set", in: "web", kind: types.FilterKindSet, want: types.Set("web")},
		{name: "array as set", in: `["web"]`, kind: types.FilterKindSet, want: types.Set("web")},
		{name: "date kind", in: "1000", kind: types.FilterKindDate, want: types.Date(*ms(1000))},
		{name: "range kind", in: "p:90d", kind: types.FilterKindRange, want: types.PresetRange(types.PresetLast90Days)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeValue(tt.in, tt.kind)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %+v", got)
			assert.Equal(t, tt.want.Kind(), got.Kind())
		})
	}
}

func TestDecodeValueMalformedDegradesToNone(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		kind    string
		wantErr error
	}{
		{name: "broken array", in: `["a",`, wantErr: types.ErrMalformedQuery},
		{name: "array of numbers", in: `[1,2]`, wantErr: types.ErrMalformedQuery},
		{name: "range without separator", in: "r:1000", wantErr: types.ErrMalformedQuery},
		{name: "range both open", in: "r:_", wantErr: types.ErrMalformedQuery},
		{name: "range bad bound", in: "r:abc_1", wantErr: types.ErrMalformedQuery},
		{name: "range reversed", in: "r:2000_1000", wantErr: types.ErrMalformedQuery},
		{name: "unknown preset", in: "p:fortnight", wantErr: types.ErrUnknownPreset},
		{name: "huge number", in: "99999999999999999999999", wantErr: types.ErrMalformedQuery},
		{name: "text under date kind", in: "yesterday", kind: types.FilterKindDate, wantErr: types.ErrMalformedQuery},
		{name: "date under range kind", in: "1000", kind: types.FilterKindRange, wantErr: types.ErrMalformedQuery},
		{name: "array under date kind", in: `["1000"]`, kind: types.FilterKindDate, wantErr: types.ErrMalformedQuery},
		{name: "array under range kind", in: `["p:7d"]`, kind: types.FilterKindRange, wantErr: types.ErrMalformedQuery},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeValue(tt.in, tt.kind)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, types.KindNone, got.Kind())
			assert.False(t, got.IsActive())
		})
	}
}

// decode(encode(v)) == v for every shape; presets come back as the same key.
func TestValueRoundTrip(t *testing.T) {
	values := []struct {
		v    types.FilterValue
		kind string
	}{
		{v: types.Scalar("hello world")},
		{v: types.Scalar("[not json"), kind: types.FilterKindText},
		{v: types.Scalar("12345"), kind: types.FilterKindText},
		{v: types.Set("a")},
		{v: types.Set("a", "b,c", `"q"`)},
		{v: types.Date(*ms(1775779200123))},
		{v: types.Range(ms(0), ms(86_400_000))},
		{v: types.Range(nil, ms(5))},
		{v: types.Range(ms(-5), nil)},
		{v: types.Range(ms(2000), ms(1000))},
		{v: types.Date(time.UnixMilli(1775779200123).Add(456 * time.Microsecond))},
	}
	for _, p := range types.Presets {
		values = append(values, struct {
			v    types.FilterValue
			kind string
		}{v: types.PresetRange(p)})
	}
	for _, tt := range values {
		enc, ok := EncodeValue(tt.v)
		require.True(t, ok)
		dec, err := DecodeValue(enc, tt.kind)
		require.NoError(t, err, enc)
		assert.True(t, tt.v.Equal(dec), "%q decoded to %+v", enc, dec)
		assert.Equal(t, tt.v.Kind(), dec.Kind(), enc)
	}
}

func TestInvertedRangeEncodesInOrder(t *testing.T) {
	enc, ok := EncodeValue(types.Range(ms(2000), ms(1000)))
	require.True(t, ok)
	assert.Equal(t, "r:1000_2000", enc)
}

func TestFits(t *testing.T) {
	tests := []struct {
		name string
		v    types.FilterValue
		kind string
		want bool
	}{
		{name: "inactive", v: types.Scalar(""), kind: types.FilterKindSet, want: true},
		{name: "scalar on text", v: types.Scalar("2026"), kind: types.FilterKindText, want: true},
		{name: "set on text", v: types.Set("a"), kind: types.FilterKindText, want: false},
		{name: "scalar on auto", v: types.Scalar("east"), want: true},
		{name: "digits on auto read back as a date", v: types.Scalar("2026"), want: false},
		{name: "prefix on auto reads back as a preset", v: types.Scalar("p:7d"), want: false},
		{name: "scalar on set", v: types.Scalar("east"), kind: types.FilterKindSet, want: false},
		{name: "set on set", v: types.Set("us-east", "eu-west"), kind: types.FilterKindSet, want: true},
		{name: "set on auto", v: types.Set("db"), want: true},
		{name: "set on date", v: types.Set("1000"), kind: types.FilterKindDate, want: false},
		{name: "date on date", v: types.Date(*ms(1000)), kind: types.FilterKindDate, want: true},
		{name: "date on range", v: types.Date(*ms(1000)), kind: types.FilterKindRange, want: false},
		{name: "date on text", v: types.Date(*ms(1000)), kind: types.FilterKindText, want: false},
		{name: "range on range", v: types.Range(ms(1000), nil), kind: types.FilterKindRange, want: true},
		{name: "preset on range", v: types.PresetRange(types.PresetLast7Days), kind: types.FilterKindRange, want: true},
		{name: "unknown preset", v: types.PresetRange("fortnight"), kind: types.FilterKindRange, want: false},
		{name: "scalar on range", v: types.Scalar("soon"), kind: types.FilterKindRange, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fits(tt.v, tt.kind))
		})
	}
}

func TestPresetKeepsKeyNotBounds(t *testing.T) {
	enc, _ := EncodeValue(types.PresetRange(types.PresetLast30Days))
	dec, err := DecodeValue(enc, "")
	require.NoError(t, err)
	r := dec.RangeValue()
	assert.Equal(t, types.PresetLast30Days, r.Preset)
	assert.Nil(t, r.From)
	assert.Nil(t, r.To)
}

var fuzzKinds = []string{
	types.FilterKindAuto,
	types.FilterKindText,
	types.FilterKindSet,
	types.FilterKindDate,
	types.FilterKindRange,
}

// calendarTimes reports whether every timestamp in v falls in years 1 to
// 9999, where millisecond arithmetic cannot overflow.
func calendarTimes(v types.FilterValue) bool {
	ok := func(t *time.Time) bool { return t == nil || (t.Year() >= 1 && t.Year() <= 9999) }
	switch v.Kind() {
	case types.KindDate:
		d := v.DateValue()
		return ok(&d)
	case types.KindRange:
		r := v.RangeValue()
		return ok(r.From) && ok(r.To)
	}
	return true
}

// Decoding never panics, a failed decode filters nothing, and a decoded
// value re-encodes to a canonical string that decodes to itself.
func FuzzDecodeValue(f *testing.F) {
	seeds := []string{
		"", "us-east", `["web","db"]`, `["p:7d"]`, "1775779200000", "-5",
		"r:1000_2000", "r:_5", "r:2000_1000", "p:7d", "p:fortnight", "[", "-",
	}
	for _, s := range seeds {
		for k := range fuzzKinds {
			f.Add(s, uint8(k))
		}
	}
	f.Fuzz(func(t *testing.T, s string, k uint8) {
		kind := fuzzKinds[int(k)%len(fuzzKinds)]
		got, err := DecodeValue(s, kind)
		if err != nil {
			if got.IsActive() {
				t.Fatalf("%q under %q failed with %v but decoded to %+v", s, kind, err, got)
			}
			return
		}
		enc, ok := EncodeValue(got)
		if !ok || !calendarTimes(got) {
			return
		}
		again, err := DecodeValue(enc, kind)
		if err != nil {
			t.Fatalf("%q under %q re-encoded to %q, which fails: %v", s, kind, enc, err)
		}
		if enc2, _ := EncodeValue(again); enc2 != enc {
			t.Fatalf("%q under %q is not canonical: %q then %q", s, kind, enc, enc2)
		}
	})
}
