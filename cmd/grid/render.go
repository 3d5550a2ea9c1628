package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/mesh-intelligence/grid/internal/fieldpath"
	"github.com/mesh-intelligence/grid/internal/schema"
	"github.com/mesh-intelligence/grid/pkg/grid"
	"github.com/mesh-intelligence/grid/pkg/types"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	facetStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

// renderView draws the page as a bordered table followed by the page
// position and the facet counts.
func renderView(cols []types.Column[schema.Row], v grid.View[schema.Row]) string {
	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.Header + sortMarker(v.Sort, c.ID)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, r := range v.Rows {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = fieldpath.String(c.Accessor(r), ", ")
		}
		t.Row(cells...)
	}

	var b strings.Builder
	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(pageLine(v)))
	for _, c := range cols {
		opts, ok := v.Facets[c.ID]
		if !ok || len(opts) == 0 {
			continue
		}
		parts := make([]string, len(opts))
		for i, o := range opts {
			parts[i] = fmt.Sprintf("%s (%d)", o.Value, o.Count)
		}
		b.WriteString("\n")
		b.WriteString(facetStyle.Render(c.Header+":") + " " + strings.Join(parts, ", "))
	}
	return b.String()
}

func sortMarker(state types.SortState, id string) string {
	k, pos := state.Find(id)
	switch {
	case pos < 0:
		return ""
	case k.Desc:
		return " ↓"
	}
	return " ↑"
}

func pageLine(v grid.View[schema.Row]) string {
	var line string
	if v.Page.PageCount == 0 {
		line = fmt.Sprintf("no matches (%d rows)", v.TotalRows)
	} else {
		line = fmt.Sprintf("page %d of %d, %d of %d rows match",
			v.Page.PageIndex+1, v.Page.PageCount, v.FilteredRows, v.TotalRows)
	}
	if v.HasActiveFilters {
		line += ", column filters on"
	}
	return line
}
