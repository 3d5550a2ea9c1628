package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/grid/pkg/types"
)

const fleetTOML = `
row_id = "id"
page_size = 25
search_deny = ["cpu"]

[[columns]]
id = "name"
header = "Name"
sortable = true

[[columns]]
id = "owner"
path = "owner.team"
search_paths = ["owner.email"]

[[columns]]
id = "cpu"
sortable = true
sort_type = "numeric"
searchable = false

[[columns]]
id = "region"
facetable = true
filter_kind = "set"
`

const fleetYAML = `
row_id: id
page_size: 25
search_deny: [cpu]
columns:
  - id: name
    header: Name
    sortable: true
  - id: owner
    path: owner.team
    search_paths: [owner.email]
  - id: cpu
    sortable: true
    sort_type: numeric
    searchable: false
  - id: region
    facetable: true
    filter_kind: set
`

func TestParseFormatsAgree(t *testing.T) {
	fromTOML, err := Parse([]byte(fleetTOML), FormatTOML)
	require.NoError(t, err)
	fromYAML, err := Parse([]byte(fleetYAML), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, fromTOML, fromYAML)
}

func TestCompile(t *testing.T) {
	def, err := Parse([]byte(fleetTOML), FormatTOML)
	require.NoError(t, err)
	cols, err := def.Compile()
	require.NoError(t, err)
	require.Len(t, cols, 4)

	row := Row{
		"id":     "m1",
		"name":   "web-1",
		"owner":  map[string]any{"team": "infra", "email": "ops@example.com"},
		"cpu":    4,
		"region": "us-east",
	}

	tests := []struct {
		idx        int
		id         string
		header     string
		value      any
		sortType   string
		searchable types.Tristate
	}{
		{idx: 0, id: "name", header: "Name", value: "web-1", sortType: types.SortString, searchable: types.Inherit},
		{idx: 1, id: "owner", header: "owner", value: "infra", sortType: types.SortString, searchable: types.Inherit},
		{idx: 2, id: "cpu", header: "cpu", value: 4, sortType: types.SortNumeric, searchable: types.Off},
		{idx: 3, id: "region", header: "region", value: "us-east", sortType: types.SortString, searchable: types.Inherit},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			c := cols[tt.idx]
			assert.Equal(t, tt.id, c.ID)
			assert.Equal(t, tt.header, c.Header)
			assert.Equal(t, tt.value, c.Accessor(row))
			assert.Equal(t, tt.sortType, c.EffectiveSortType())
			assert.Equal(t, tt.searchable, c.Searchable)
		})
	}
	assert.Equal(t, []string{"owner.email"}, cols[1].SearchPaths)
	assert.True(t, cols[3].Facetable)
	assert.Equal(t, types.FilterKindSet, cols[3].FilterKind)

	assert.Nil(t, cols[0].Accessor(Row{}), "missing fields read as nil")
	assert.Equal(t, 25, def.PageSize)
	assert.Equal(t, types.SearchScope{Deny: []string{"cpu"}}, def.SearchScope())
}

func TestRowIDFunc(t *testing.T) {
	def := &Definition{RowID: "meta.id"}
	id := def.RowIDFunc()
	require.NotNil(t, id)
	assert.Equal(t, "42", id(Row{"meta": map[string]any{"id": 42}}))
	assert.Equal(t, "", id(Row{}))

	assert.Nil(t, (&Definition{}).RowIDFunc())
}

func TestCompileRejects(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
		want error
	}{
		{name: "no columns", def: Definition{}, want: types.ErrInvalidColumn},
		{name: "empty id", def: Definition{Columns: []ColumnDef{{Header: "x"}}}, want: types.ErrInvalidColumn},
		{
			name: "duplicate id",
			def:  Definition{Columns: []ColumnDef{{ID: "a"}, {ID: "a"}}},
			want: types.ErrDuplicateColumn,
		},
		{
			name: "unknown sort type",
			def:  Definition{Columns: []ColumnDef{{ID: "a", Sortable: true, SortType: "alphabetic"}}},
			want: types.ErrInvalidColumn,
		},
		{
			name: "unknown filter kind",
			def:  Definition{Columns: []ColumnDef{{ID: "a", FilterKind: "fuzzy"}}},
			want: types.ErrInvalidColumn,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.def.Compile()
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("[[columns]]\nid = \"a\"\nsortabel = true\n"), FormatTOML)
	assert.Error(t, err)

	_, err = Parse([]byte("columns:\n  - id: a\n    sortabel: true\n"), FormatYAML)
	assert.Error(t, err)

	_, err = Parse([]byte("{}"), "json")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "fleet.toml")
	ymlPath := filepath.Join(dir, "fleet.yml")
	require.NoError(t, os.WriteFile(tomlPath, []byte(fleetTOML), 0o644))
	require.NoError(t, os.WriteFile(ymlPath, []byte(fleetYAML), 0o644))

	a, err := Load(tomlPath)
	require.NoError(t, err)
	b, err := Load(ymlPath)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	_, err = Load(filepath.Join(dir, "fleet.json"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
