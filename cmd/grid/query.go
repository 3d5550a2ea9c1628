package main

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/grid/internal/schema"
	"github.com/mesh-intelligence/grid/pkg/grid"
	"github.com/mesh-intelligence/grid/pkg/sqlite"
	"github.com/mesh-intelligence/grid/pkg/types"
)

var queryFlags struct {
	rows    string
	table   string
	sql     string
	def     string
	filters []string
	search  string
	sort    string
	size    string
	page    int
	url     string
	view    string
	export  string
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Render one page of rows after filters, search and sort",
	Long: `Query loads rows from a JSONL file or a SQLite table, applies the
filters, global search and sort order, and prints the requested page along
with the facet counts of every facetable column.

State comes from a saved view (--view), a query string (--url) and the
individual flags, in that order; later sources override earlier ones key by
key. Filter values use the query string encoding: a JSON array for sets,
r:<from>_<to> for date ranges in epoch milliseconds, p:<preset> for presets.

Example:
  grid query --rows fleet.jsonl --def fleet.toml --filter 'region=["us-east"]' --sort cpu:desc
  grid query --rows fleet.db --table machines --def fleet.yaml --url 'q=web&size=25'`,
	Args: cobra.NoArgs,
	RunE: runQuery,
}

func init() {
	f := queryCmd.Flags()
	f.StringVar(&queryFlags.rows, "rows", "", "row source: .jsonl file or SQLite database (required)")
	f.StringVar(&queryFlags.table, "table", "", "table to read from a SQLite row source")
	f.StringVar(&queryFlags.sql, "sql", "", "query to run against a SQLite row source")
	f.StringVar(&queryFlags.def, "def", "", "table definition, .toml or .yaml (required)")
	f.StringArrayVar(&queryFlags.filters, "filter", nil, "column filter as column=value (repeatable)")
	f.StringVar(&queryFlags.search, "search", "", "global search query")
	f.StringVar(&queryFlags.sort, "sort", "", "sort order as col:asc,col2:desc")
	f.StringVar(&queryFlags.size, "size", "", "page size, or \"all\"")
	f.IntVar(&queryFlags.page, "page", 0, "zero-based page index")
	f.StringVar(&queryFlags.url, "url", "", "query string to start from")
	f.StringVar(&queryFlags.view, "view", "", "saved view to start from")
	f.StringVar(&queryFlags.export, "export", "", "write every matching row to this JSONL file instead of printing a page")
	_ = queryCmd.MarkFlagRequired("rows")
	_ = queryCmd.MarkFlagRequired("def")
}

func runQuery(cmd *cobra.Command, args []string) error {
	def, err := schema.Load(queryFlags.def)
	if err != nil {
		return err
	}
	cols, err := def.Compile()
	if err != nil {
		return err
	}
	rows, err := loadRows(queryFlags.rows, queryFlags.table, queryFlags.sql)
	if err != nil {
		return err
	}
	values, err := queryValues(cmd)
	if err != nil {
		return err
	}

	cfg := appConfig
	if def.PageSize != 0 {
		cfg.PageSize = def.PageSize
	}
	tbl, err := grid.New(grid.Definition[schema.Row]{
		Columns:     cols,
		RowID:       def.RowIDFunc(),
		SearchScope: def.SearchScope(),
	}, grid.WithConfig(cfg), grid.WithLogger(logger), grid.WithInitialQuery(values))
	if err != nil {
		return err
	}
	tbl.SetRows(rows)

	if queryFlags.export != "" {
		return exportMatches(cmd, tbl)
	}

	v, err := tbl.View()
	if err != nil {
		return err
	}
	logger.Debug("query rendered",
		zap.Int("rows", v.TotalRows),
		zap.Int("matches", v.FilteredRows),
		zap.Int("page", v.Page.PageIndex))

	out := cmd.OutOrStdout()
	if flagJSON {
		return printJSON(out, newQueryResult(tbl.Columns(), v, tbl.EncodeQuery()))
	}
	fmt.Fprintln(out, renderView(tbl.Columns(), v))
	return nil
}

// queryValues layers the saved view, --url and the individual flags.
func queryValues(cmd *cobra.Command) (url.Values, error) {
	values := url.Values{}
	if queryFlags.view != "" {
		store, _, err := openStore()
		if err != nil {
			return nil, err
		}
		defer store.Detach()
		sv, err := store.GetViewByName(queryFlags.view)
		if err != nil {
			return nil, fmt.Errorf("view %q: %w", queryFlags.view, err)
		}
		if values, err = sv.Values(); err != nil {
			return nil, err
		}
	}
	if queryFlags.url != "" {
		parsed, err := url.ParseQuery(strings.TrimPrefix(queryFlags.url, "?"))
		if err != nil {
			return nil, fmt.Errorf("parse --url: %w", err)
		}
		overlay(values, parsed)
	}

	patch := url.Values{}
	for _, arg := range queryFlags.filters {
		key, value, err := splitAssignment(arg)
		if err != nil {
			return nil, err
		}
		if grid.IsReservedParam(key) {
			return nil, fmt.Errorf("%q is reserved; use --search, --sort, --size or --page", key)
		}
		patch.Set(key, value)
	}
	flags := cmd.Flags()
	if flags.Changed("search") {
		patch.Set("q", queryFlags.search)
	}
	if flags.Changed("sort") {
		patch.Set("sort", queryFlags.sort)
	}
	if flags.Changed("size") {
		patch.Set("size", queryFlags.size)
	}
	if flags.Changed("page") {
		patch.Set("page", strconv.Itoa(queryFlags.page))
	}
	overlay(values, patch)
	return values, nil
}

func overlay(dst, src url.Values) {
	for k, v := range src {
		dst[k] = v
	}
}

func exportMatches(cmd *cobra.Command, tbl *grid.Table[schema.Row]) error {
	if err := tbl.SetPageSize(types.PageSizeAll); err != nil {
		return err
	}
	v, err := tbl.View()
	if err != nil {
		return err
	}
	if err := sqlite.ExportRows(queryFlags.export, v.Rows); err != nil {
		return systemError(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %d rows to %s\n", len(v.Rows), queryFlags.export)
	return nil
}

// queryResult is the --json form of a rendered page.
type queryResult struct {
	Rows     []schema.Row                  `json:"rows"`
	Page     pageResult                    `json:"page"`
	Matches  int                           `json:"matches"`
	Total    int                           `json:"total"`
	Filtered bool                          `json:"filtered"`
	Facets   map[string][]grid.FacetOption `json:"facets,omitempty"`
	Query    string                        `json:"query"`
}

type pageResult struct {
	Index   int  `json:"index"`
	Size    int  `json:"size"`
	Count   int  `json:"count"`
	HasNext bool `json:"has_next"`
	HasPrev bool `json:"has_prev"`
}

func newQueryResult(cols []types.Column[schema.Row], v grid.View[schema.Row], q url.Values) queryResult {
	rows := make([]schema.Row, 0, len(v.Rows))
	for _, r := range v.Rows {
		out := make(schema.Row, len(cols))
		for _, c := range cols {
			out[c.ID] = c.Accessor(r)
		}
		rows = append(rows, out)
	}
	return queryResult{
		Rows: rows,
		Page: pageResult{
			Index:   v.Page.PageIndex,
			Size:    v.Page.PageSize,
			Count:   v.Page.PageCount,
			HasNext: v.Page.HasNext,
			HasPrev: v.Page.HasPrev,
		},
		Matches:  v.FilteredRows,
		Total:    v.TotalRows,
		Filtered: v.HasActiveFilters,
		Facets:   v.Facets,
		Query:    q.Encode(),
	}
}
