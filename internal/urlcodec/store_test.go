package urlcodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/grid/pkg/types"
)

func TestURLStoreReadsNavigator(t *testing.T) {
	nav, err := ParseMemoryNavigator("region=east&sort=name:desc&q=prod&tab=3&bogus=%5B")
	require.NoError(t, err)
	s := NewURLStore(nav, map[string]string{"region": "", "bogus": ""}, nil)

	assert.Equal(t, types.FilterState{"region": types.Scalar("east")}, s.Filters())
	assert.Equal(t, types.SortState{{ColumnID: "name", Desc: true}}, s.Sort())
	assert.Equal(t, "prod", s.Search())

	// Changes made by the navigation layer are visible on the next read.
	q := nav.Query()
	q.Set("region", "west")
	nav.Replace(q)
	assert.Equal(t, types.Scalar("west"), s.Filters()["region"])
}

func TestURLStoreWritesPreserveOtherKeys(t *testing.T) {
	nav, err := ParseMemoryNavigator("region=east&tab=3&q=prod")
	require.NoError(t, err)
	s := NewURLStore(nav, map[string]string{"region": "", "tags": types.FilterKindSet}, nil)

	s.SetFilters(types.FilterState{"tags": types.Set("web"), "region": types.FilterNone, "other": types.Scalar("x")})
	assert.Equal(t, "q=prod&tab=3&tags=%5B%22web%22%5D", nav.Encode())

	s.SetSort(types.SortState{{ColumnID: "tags"}})
	assert.Equal(t, "tags:asc", nav.Query().Get(SortParam))

	s.SetSort(nil)
	s.SetSearch("")
	assert.Equal(t, "tab=3&tags=%5B%22web%22%5D", nav.Encode())
	assert.Equal(t, 4, nav.Replaced())
}

func TestURLStoreWithoutKinds(t *testing.T) {
	nav := NewMemoryNavigator(nil)
	s := NewURLStore(nav, nil, nil)
	s.SetFilters(types.FilterState{"a": types.Scalar("1x")})
	assert.Equal(t, types.FilterState{"a": types.Scalar("1x")}, s.Filters())

	s.SetFilters(types.FilterState{})
	assert.Empty(t, nav.Query())
}
