package main

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/grid/internal/schema"
	"github.com/mesh-intelligence/grid/pkg/grid"
	"github.com/mesh-intelligence/grid/pkg/types"
)

var encodeFlags struct {
	text    []string
	set     []string
	date    []string
	ranges  []string
	presets []string
	search  string
	sort    string
	size    string
	page    int
}

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Build a query string from typed filter values",
	Long: `Encode prints the query string for the given filters, search, sort
and page position, using the same encoding the query command reads.

Dates are YYYY-MM-DD or RFC 3339. A range is FROM..TO where either side may
be empty. Presets are 24h, 7d, 30d, 90d, today and month.

Example:
  grid encode --set region=us-east,eu-west --range created=2026-01-01.. --sort name:asc`,
	Args: cobra.NoArgs,
	RunE: runEncode,
}

var decodeFlags struct {
	def string
}

var decodeCmd = &cobra.Command{
	Use:   "decode <query>",
	Short: "Show the typed state held in a query string",
	Long: `Decode parses a query string and prints each filter with its kind
and value, then the search, sort and page parameters. Malformed values are
reported and dropped. With --def the column filter kinds from the table
definition settle ambiguous values.`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

func init() {
	f := encodeCmd.Flags()
	f.StringArrayVar(&encodeFlags.text, "text", nil, "text filter as column=value (repeatable)")
	f.StringArrayVar(&encodeFlags.set, "set", nil, "set filter as column=a,b,c (repeatable)")
	f.StringArrayVar(&encodeFlags.date, "date", nil, "date filter as column=YYYY-MM-DD (repeatable)")
	f.StringArrayVar(&encodeFlags.ranges, "range", nil, "date range filter as column=FROM..TO (repeatable)")
	f.StringArrayVar(&encodeFlags.presets, "preset", nil, "preset range filter as column=7d (repeatable)")
	f.StringVar(&encodeFlags.search, "search", "", "global search query")
	f.StringVar(&encodeFlags.sort, "sort", "", "sort order as col:asc,col2:desc")
	f.StringVar(&encodeFlags.size, "size", "", "page size, or \"all\"")
	f.IntVar(&encodeFlags.page, "page", 0, "zero-based page index")

	decodeCmd.Flags().StringVar(&decodeFlags.def, "def", "", "table definition supplying filter kinds")
}

func runEncode(cmd *cobra.Command, args []string) error {
	st := grid.QueryState{Filters: types.FilterState{}, Query: encodeFlags.search, PageIndex: encodeFlags.page}

	parsers := []struct {
		args  []string
		parse func(string) (types.FilterValue, error)
	}{
		{encodeFlags.text, func(s string) (types.FilterValue, error) { return types.Scalar(s), nil }},
		{encodeFlags.set, func(s string) (types.FilterValue, error) { return types.Set(strings.Split(s, ",")...), nil }},
		{encodeFlags.date, func(s string) (types.FilterValue, error) {
			t, err := parseDate(s)
			return types.Date(t), err
		}},
		{encodeFlags.ranges, parseRange},
		{encodeFlags.presets, func(s string) (types.FilterValue, error) {
			if !types.IsValidPreset(s) {
				return types.FilterNone, fmt.Errorf("%w: %q", types.ErrUnknownPreset, s)
			}
			return types.PresetRange(s), nil
		}},
	}
	for _, p := range parsers {
		for _, arg := range p.args {
			key, raw, err := splitAssignment(arg)
			if err != nil {
				return err
			}
			if grid.IsReservedParam(key) {
				return fmt.Errorf("%q is reserved for search, sort and paging", key)
			}
			v, err := p.parse(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			st.Filters[key] = v
		}
	}

	if encodeFlags.sort != "" {
		state, err := grid.DecodeState(url.Values{"sort": {encodeFlags.sort}}, map[string]string{})
		if err != nil {
			return err
		}
		st.Sort = state.Sort
	}
	switch encodeFlags.size {
	case "":
	case "all":
		st.PageSize = types.PageSizeAll
	default:
		n, err := strconv.Atoi(encodeFlags.size)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: %q", types.ErrInvalidPageSize, encodeFlags.size)
		}
		st.PageSize = n
	}

	fmt.Fprintln(cmd.OutOrStdout(), grid.EncodeState(st).Encode())
	return nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", types.ErrInvalidFilter, s)
	}
	return t, nil
}

func parseRange(s string) (types.FilterValue, error) {
	from, to, ok := strings.Cut(s, "..")
	if !ok || (from == "" && to == "") {
		return types.FilterNone, fmt.Errorf("%w: range %q (want FROM..TO)", types.ErrInvalidFilter, s)
	}
	var bounds [2]*time.Time
	for i, part := range []string{from, to} {
		if part == "" {
			continue
		}
		t, err := parseDate(part)
		if err != nil {
			return types.FilterNone, err
		}
		bounds[i] = &t
	}
	return types.Range(bounds[0], bounds[1]), nil
}

// decodedFilter is one line of decode output.
type decodedFilter struct {
	Column string `json:"column"`
	Kind   string `json:"kind"`
	Value  any    `json:"value"`
}

type decodeResult struct {
	Filters  []decodedFilter `json:"filters"`
	Search   string          `json:"search,omitempty"`
	Sort     string          `json:"sort,omitempty"`
	PageSize int             `json:"page_size,omitempty"`
	Page     int             `json:"page,omitempty"`
	Dropped  []string        `json:"dropped,omitempty"`
}

func runDecode(cmd *cobra.Command, args []string) error {
	values, err := url.ParseQuery(strings.TrimPrefix(args[0], "?"))
	if err != nil {
		return fmt.Errorf("parse query: %w", err)
	}
	var kinds map[string]string
	if decodeFlags.def != "" {
		def, err := schema.Load(decodeFlags.def)
		if err != nil {
			return err
		}
		cols, err := def.Compile()
		if err != nil {
			return err
		}
		kinds = grid.FilterKinds(cols)
	}

	st, derr := grid.DecodeState(values, kinds)
	res := decodeResult{
		Search:   st.Query,
		Sort:     grid.EncodeState(grid.QueryState{Sort: st.Sort}).Get("sort"),
		PageSize: st.PageSize,
		Page:     st.PageIndex,
	}
	ids := make([]string, 0, len(st.Filters))
	for id := range st.Filters {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		res.Filters = append(res.Filters, describe(id, st.Filters[id]))
	}
	if derr != nil {
		res.Dropped = strings.Split(derr.Error(), "\n")
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		return printJSON(out, res)
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, f := range res.Filters {
		fmt.Fprintf(w, "%s\t%s\t%v\n", f.Column, f.Kind, f.Value)
	}
	if res.Search != "" {
		fmt.Fprintf(w, "q\tsearch\t%s\n", res.Search)
	}
	if res.Sort != "" {
		fmt.Fprintf(w, "sort\tsort\t%s\n", res.Sort)
	}
	if res.PageSize != 0 {
		fmt.Fprintf(w, "size\tpaging\t%s\n", sizeLabel(res.PageSize))
	}
	if res.Page != 0 {
		fmt.Fprintf(w, "page\tpaging\t%d\n", res.Page)
	}
	for _, d := range res.Dropped {
		fmt.Fprintf(w, "!\tdropped\t%s\n", d)
	}
	return w.Flush()
}

func describe(id string, v types.FilterValue) decodedFilter {
	d := decodedFilter{Column: id}
	switch v.Kind() {
	case types.KindScalar:
		d.Kind, d.Value = "text", v.ScalarValue()
	case types.KindSet:
		d.Kind, d.Value = "set", v.SetValues()
	case types.KindDate:
		d.Kind, d.Value = "date", v.DateValue().UTC().Format(time.RFC3339)
	case types.KindRange:
		r := v.RangeValue()
		if r.Preset != "" {
			d.Kind, d.Value = "preset", r.Preset
			break
		}
		d.Kind, d.Value = "range", formatBound(r.From)+".."+formatBound(r.To)
	}
	return d
}

func formatBound(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func sizeLabel(n int) string {
	if n == types.PageSizeAll {
		return "all"
	}
	return strconv.Itoa(n)
}
