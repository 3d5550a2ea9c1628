package integration

import (
	"bufio"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

type facetOption struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

type queryOutput struct {
	Rows []map[string]any `json:"rows"`
	Page struct {
		Index   int  `json:"index"`
		Size    int  `json:"size"`
		Count   int  `json:"count"`
		HasNext bool `json:"has_next"`
		HasPrev bool `json:"has_prev"`
	} `json:"page"`
	Matches  int                      `json:"matches"`
	Total    int                      `json:"total"`
	Filtered bool                     `json:"filtered"`
	Facets   map[string][]facetOption `json:"facets"`
	Query    string                   `json:"query"`
}

func (q queryOutput) ids() []string {
	out := make([]string, len(q.Rows))
	for i, r := range q.Rows {
		out[i], _ = r["id"].(string)
	}
	return out
}

// fleetEnv returns an environment holding twelve fixture machines and their
// definition, plus the flags that point query at them.
func fleetEnv(t *testing.T) (*TestEnv, []string) {
	t.Helper()
	env := NewTestEnv(t)
	rows := env.WriteFleet(12)
	def := env.WriteFleetDef()
	return env, []string{"--json", "query", "--rows", rows, "--def", def}
}

func TestQueryDefaultPage(t *testing.T) {
	env, base := fleetEnv(t)
	out := ParseJSON[queryOutput](t, env.MustRun(base...).Stdout)

	assert.Equal(t, 12, out.Total)
	assert.Equal(t, 12, out.Matches)
	assert.Equal(t, 5, out.Page.Size)
	assert.Equal(t, 3, out.Page.Count)
	assert.True(t, out.Page.HasNext)
	assert.False(t, out.Page.HasPrev)
	assert.Equal(t, []string{"m00", "m01", "m02", "m03", "m04"}, out.ids())

	assert.Equal(t, []facetOption{{"eu-west", 6}, {"us-east", 6}}, out.Facets["region"])
	assert.Equal(t, []facetOption{{"backup", 6}, {"db", 6}, {"web", 6}}, out.Facets["tags"])
	assert.NotContains(t, out.Facets, "name", "only facetable columns are counted")
}

func TestQueryFilterSortAll(t *testing.T) {
	env, base := fleetEnv(t)
	args := append(base, "--filter", `region=["us-east"]`, "--sort", "cpu:desc", "--size", "all")
	out := ParseJSON[queryOutput](t, env.MustRun(args...).Stdout)

	assert.Equal(t, 6, out.Matches)
	assert.Equal(t, 12, out.Total)
	assert.True(t, out.Filtered)
	assert.Equal(t, 1, out.Page.Count)
	assert.Equal(t, []string{"m02", "m06", "m10", "m00", "m04", "m08"}, out.ids(),
		"ties keep input order")

	assert.Equal(t, []facetOption{{"eu-west", 6}, {"us-east", 6}}, out.Facets["region"],
		"a column's own filter does not narrow its facet")
	assert.Equal(t, []facetOption{{"web", 6}}, out.Facets["tags"])
	assert.Contains(t, out.Query, "size=all")
	assert.Contains(t, out.Query, "sort=cpu%3Adesc")
}

func TestQueryArrayFilterMatchesAnyMember(t *testing.T) {
	env, base := fleetEnv(t)
	args := append(base, "--filter", `tags=["backup","web"]`, "--size", "all")
	out := ParseJSON[queryOutput](t, env.MustRun(args...).Stdout)
	assert.Equal(t, 12, out.Matches)

	args = append(base, "--filter", `tags=["backup"]`, "--size", "all")
	out = ParseJSON[queryOutput](t, env.MustRun(args...).Stdout)
	assert.Equal(t, 6, out.Matches)
	assert.Equal(t, "m01", out.ids()[0])
}

func TestQuerySearch(t *testing.T) {
	tests := []struct {
		name   string
		search string
		want   []string
	}{
		{name: "name substring", search: "web-1", want: []string{"m10"}},
		{name: "case insensitive", search: "DB-0", want: []string{"m01", "m03", "m05", "m07", "m09"}},
		{name: "array member", search: "backup", want: []string{"m01", "m03", "m05", "m07", "m09", "m11"}},
		{name: "excluded column", search: "2026-03", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, base := fleetEnv(t)
			args := append(base, "--search", tt.search, "--size", "all")
			out := ParseJSON[queryOutput](t, env.MustRun(args...).Stdout)
			assert.Equal(t, len(tt.want), out.Matches)
			assert.Equal(t, tt.want, out.ids())
		})
	}
}

func TestQueryFromURL(t *testing.T) {
	env, base := fleetEnv(t)
	out := ParseJSON[queryOutput](t, env.MustRun(append(base, "--url", "page=2")...).Stdout)
	assert.Equal(t, 2, out.Page.Index)
	assert.Equal(t, []string{"m10", "m11"}, out.ids())
	assert.True(t, out.Page.HasPrev)
	assert.False(t, out.Page.HasNext)
}

func TestQueryFlagsOverrideURL(t *testing.T) {
	env, base := fleetEnv(t)
	args := append(base, "--url", "?sort=id:asc&size=3", "--sort", "id:desc")
	out := ParseJSON[queryOutput](t, env.MustRun(args...).Stdout)
	assert.Equal(t, []string{"m11", "m10", "m09"}, out.ids())
	assert.Equal(t, 3, out.Page.Size)
}

func TestQueryPageBeyondEndClamps(t *testing.T) {
	env, base := fleetEnv(t)
	out := ParseJSON[queryOutput](t, env.MustRun(append(base, "--page", "9")...).Stdout)
	assert.Equal(t, 2, out.Page.Index)
	assert.Equal(t, []string{"m10", "m11"}, out.ids())
}

func TestQueryMalformedFilterIgnored(t *testing.T) {
	env, base := fleetEnv(t)
	args := append(base, "--filter", "created=r:abc", "--size", "all")
	out := ParseJSON[queryOutput](t, env.MustRun(args...).Stdout)
	assert.Equal(t, 12, out.Matches)
	assert.NotContains(t, out.Query, "created")
}

func TestQueryDateRange(t *testing.T) {
	env, base := fleetEnv(t)
	encoded := env.MustRun("encode", "--range", "created=2026-03-10..", "--sort", "created:asc")
	query := trimLine(encoded.Stdout)

	args := append(base, "--url", query, "--size", "all")
	out := ParseJSON[queryOutput](t, env.MustRun(args...).Stdout)
	assert.Equal(t, []string{"m05", "m04", "m03", "m02", "m01", "m00"}, out.ids())
}

func TestQueryEmptyResult(t *testing.T) {
	env, base := fleetEnv(t)
	out := ParseJSON[queryOutput](t, env.MustRun(append(base, "--search", "nothing-like-this")...).Stdout)
	assert.Equal(t, 0, out.Matches)
	assert.Equal(t, 0, out.Page.Count)
	assert.False(t, out.Filtered, "search alone is not a column filter")
	assert.Empty(t, out.Rows)
	assert.NotNil(t, out.Rows, "rows encode as an empty array")
}

func TestQueryRejectsReservedFilter(t *testing.T) {
	env, base := fleetEnv(t)
	res := env.Run(append(base, "--filter", "sort=name")...)
	assert.Equal(t, 1, res.ExitCode)
	assert.Contains(t, res.Stderr, "reserved")
}

func TestQueryTableOutput(t *testing.T) {
	env := NewTestEnv(t)
	rows := env.WriteFleet(12)
	def := env.WriteFleetDef()

	res := env.MustRun("query", "--rows", rows, "--def", def, "--sort", "name:asc")
	assert.Contains(t, res.Stdout, "Name ↑")
	assert.Contains(t, res.Stdout, "db-01")
	assert.Contains(t, res.Stdout, "page 1 of 3, 12 of 12 rows match")
	assert.Contains(t, res.Stdout, "eu-west (6)")
	assert.Contains(t, res.Stdout, "db, backup")
	assert.NotContains(t, res.Stdout, "column filters on")

	res = env.MustRun("query", "--rows", rows, "--def", def, "--filter", `region=["us-east"]`)
	assert.Contains(t, res.Stdout, "page 1 of 2, 6 of 12 rows match, column filters on")
}

func TestQueryPageSizeFromConfig(t *testing.T) {
	env, base := fleetEnv(t)
	env.WriteConfig("page_size: 4\nlog_level: error\n")
	out := ParseJSON[queryOutput](t, env.MustRun(base...).Stdout)
	assert.Equal(t, 4, out.Page.Size)
	assert.Equal(t, 3, out.Page.Count)
}

func TestQueryPageSizeFromDefinition(t *testing.T) {
	env := NewTestEnv(t)
	rows := env.WriteFleet(12)
	def := env.WriteFile("fleet.toml", "page_size = 6\n"+FleetTOML)

	out := ParseJSON[queryOutput](t, env.MustRun("--json", "query", "--rows", rows, "--def", def).Stdout)
	assert.Equal(t, 6, out.Page.Size)
	assert.Equal(t, 2, out.Page.Count)
}

func TestQueryYAMLDefinition(t *testing.T) {
	env := NewTestEnv(t)
	rows := env.WriteFleet(4)
	def := env.WriteFile("fleet.yaml", `
row_id: id
columns:
  - id: id
    sortable: true
  - id: region
    facetable: true
`)
	out := ParseJSON[queryOutput](t, env.MustRun("--json", "query", "--rows", rows, "--def", def, "--sort", "id:desc").Stdout)
	assert.Equal(t, []string{"m03", "m02", "m01", "m00"}, out.ids())
	assert.Equal(t, []facetOption{{"eu-west", 2}, {"us-east", 2}}, out.Facets["region"])
}

func TestQuerySQLiteSource(t *testing.T) {
	env := NewTestEnv(t)
	dbPath := filepath.Join(env.Dir, "fleet.db")
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE machines (id TEXT, name TEXT, region TEXT, tags TEXT, cpu INTEGER, created TEXT)`)
	require.NoError(t, err)
	for i := range 6 {
		r := FleetRow(i)
		tags := "web"
		if i%2 == 1 {
			tags = "db"
		}
		_, err = db.Exec(`INSERT INTO machines VALUES (?, ?, ?, ?, ?, ?)`,
			r["id"], r["name"], r["region"], tags, r["cpu"], r["created"])
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())
	def := env.WriteFleetDef()

	base := []string{"--json", "query", "--rows", dbPath, "--def", def, "--size", "all"}
	out := ParseJSON[queryOutput](t, env.MustRun(append(base, "--table", "machines", "--sort", "cpu:desc")...).Stdout)
	assert.Equal(t, 6, out.Total)
	assert.Equal(t, []string{"m03", "m02", "m01", "m05", "m00", "m04"}, out.ids())

	out = ParseJSON[queryOutput](t, env.MustRun(append(base, "--sql", "SELECT * FROM machines WHERE region = 'eu-west'")...).Stdout)
	assert.Equal(t, []string{"m01", "m03", "m05"}, out.ids())

	res := env.Run(base[:len(base)-2]...)
	assert.Equal(t, 1, res.ExitCode)
	assert.Contains(t, res.Stderr, "--table or --sql")
}

func TestQueryUnsupportedSource(t *testing.T) {
	env := NewTestEnv(t)
	rows := env.WriteFile("fleet.csv", "id\nm00\n")
	def := env.WriteFleetDef()
	res := env.Run("query", "--rows", rows, "--def", def)
	assert.Equal(t, 1, res.ExitCode)
	assert.Contains(t, res.Stderr, "unsupported row source")
}

func TestQueryExport(t *testing.T) {
	env := NewTestEnv(t)
	rows := env.WriteFleet(12)
	def := env.WriteFleetDef()
	dest := filepath.Join(env.Dir, "east.jsonl")

	res := env.MustRun("query", "--rows", rows, "--def", def, "--filter", `region=["us-east"]`, "--export", dest)
	assert.Equal(t, "exported 6 rows to "+dest+"\n", res.Stdout)

	f, err := os.Open(dest)
	require.NoError(t, err)
	defer f.Close()
	var lines int
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines++
	}
	require.NoError(t, sc.Err())
	assert.Equal(t, 6, lines, "export ignores the page size")
}
