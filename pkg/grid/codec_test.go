package grid

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/grid/pkg/types"
)

func TestEncodeDecodeState(t *testing.T) {
	from := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	st := QueryState{
		Filters: types.FilterState{
			"region":  types.Set("us-east", "eu-west"),
			"created": types.Range(&from, nil),
			"name":    types.Scalar(""),
		},
		Query:     "web",
		Sort:      types.SortState{{ColumnID: "cpu", Desc: true}},
		PageSize:  types.PageSizeAll,
		PageIndex: 0,
	}

	values := EncodeState(st)
	assert.Equal(t, `["us-east","eu-west"]`, values.Get("region"))
	assert.Equal(t, "r:1775779200000_", values.Get("created"))
	assert.NotContains(t, values, "name", "inactive filters are not written")
	assert.NotContains(t, values, "page")

	got, err := DecodeState(values, nil)
	require.NoError(t, err)
	assert.True(t, got.Filters.Equal(types.FilterState{
		"region":  types.Set("us-east", "eu-west"),
		"created": types.Range(&from, nil),
	}))
	assert.Equal(t, "web", got.Query)
	assert.Equal(t, st.Sort, got.Sort)
	assert.Equal(t, types.PageSizeAll, got.PageSize)
}

func TestDecodeStateKeepsUsableParts(t *testing.T) {
	values := url.Values{
		"region": {`["us-east"`},
		"name":   {"web"},
		"size":   {"ten"},
	}
	got, err := DecodeState(values, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMalformedQuery)
	assert.Equal(t, types.FilterState{"name": types.Scalar("web")}, got.Filters)
	assert.Zero(t, got.PageSize)
}

func TestFilterValueCodec(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
		kind    string
		want    types.FilterValue
		wantErr error
	}{
		{name: "text kind keeps digits", encoded: "2026", kind: types.FilterKindText, want: types.Scalar("2026")},
		{name: "digits are a date", encoded: "1775779200000", want: types.Date(time.UnixMilli(1775779200000).UTC())},
		{name: "preset", encoded: "p:30d", want: types.PresetRange(types.PresetLast30Days)},
		{name: "unknown preset", encoded: "p:fortnight", want: types.FilterNone, wantErr: types.ErrUnknownPreset},
		{name: "bad range", encoded: "r:x_y", want: types.FilterNone, wantErr: types.ErrMalformedQuery},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeFilterValue(tt.encoded, tt.kind)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.True(t, got.Equal(tt.want), "got %v", got)

			if enc, ok := EncodeFilterValue(got); ok {
				assert.Equal(t, tt.encoded, enc)
			}
		})
	}
}

func TestIsReservedParam(t *testing.T) {
	for _, k := range []string{"q", "sort", "size", "page"} {
		assert.True(t, IsReservedParam(k), k)
	}
	assert.False(t, IsReservedParam("region"))
}
