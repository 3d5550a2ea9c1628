// Package schema compiles a declarative table definition, written in TOML or
// YAML, into column descriptors over generic map rows.
//
// A TOML definition looks like:
//
//	row_id = "id"
//	page_size = 25
//
//	[[columns]]
//	id = "region"
//	sortable = true
//	facetable = true
//	filter_kind = "set"
//
//	[[columns]]
//	id = "owner"
//	path = "owner.team"
//	search_paths = ["owner.email"]
package schema

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/grid/internal/fieldpath"
	"github.com/mesh-intelligence/grid/pkg/types"
)

// Row is the row type every compiled definition reads.
type Row = map[string]any

// Supported definition formats.
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
)

// ErrUnknownFormat is returned for a file extension or format name that is
// neither TOML nor YAML.
var ErrUnknownFormat = errors.New("unknown definition format")

// ColumnDef is one [[columns]] entry.
type ColumnDef struct {
	ID     string `toml:"id" yaml:"id"`
	Header string `toml:"header" yaml:"header"`
	// Path is the dotted field path of the cell value; empty means ID.
	Path        string   `toml:"path" yaml:"path"`
	Sortable    bool     `toml:"sortable" yaml:"sortable"`
	SortType    string   `toml:"sort_type" yaml:"sort_type"`
	SortPath    string   `toml:"sort_path" yaml:"sort_path"`
	Searchable  *bool    `toml:"searchable" yaml:"searchable"`
	SearchPaths []string `toml:"search_paths" yaml:"search_paths"`
	Facetable   bool     `toml:"facetable" yaml:"facetable"`
	FilterKind  string   `toml:"filter_kind" yaml:"filter_kind"`
}

// Definition is a whole table definition document.
type Definition struct {
	RowID       string      `toml:"row_id" yaml:"row_id"`
	PageSize    int         `toml:"page_size" yaml:"page_size"`
	SearchAllow []string    `toml:"search_allow" yaml:"search_allow"`
	SearchDeny  []string    `toml:"search_deny" yaml:"search_deny"`
	Columns     []ColumnDef `toml:"columns" yaml:"columns"`
}

// FormatOf maps a file name to its definition format.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
}

// Load reads and parses the definition at path, choosing the format by
// extension.
func Load(path string) (*Definition, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definition: %w", err)
	}
	def, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Parse decodes a definition. Unknown keys are rejected so a misspelled
// option does not silently fall back to a default.
func Parse(data []byte, format string) (*Definition, error) {
	var def Definition
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parse toml: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return &def, nil
}

// Compile turns the definition into validated column descriptors.
func (d *Definition) Compile() ([]types.Column[Row], error) {
	if len(d.Columns) == 0 {
		return nil, fmt.Errorf("%w: definition has no columns", types.ErrInvalidColumn)
	}
	seen := make(map[string]bool, len(d.Columns))
	cols := make([]types.Column[Row], 0, len(d.Columns))
	for _, cd := range d.Columns {
		if seen[cd.ID] {
			return nil, fmt.Errorf("%w: %q", types.ErrDuplicateColumn, cd.ID)
		}
		seen[cd.ID] = true

		c := cd.column()
		if err := c.Validate(); err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, nil
}

func (cd ColumnDef) column() types.Column[Row] {
	path := cd.Path
	if path == "" {
		path = cd.ID
	}
	header := cd.Header
	if header == "" {
		header = cd.ID
	}
	c := types.Column[Row]{
		ID:          cd.ID,
		Header:      header,
		Accessor:    accessor(path),
		Sortable:    cd.Sortable,
		SortType:    cd.SortType,
		SortPath:    cd.SortPath,
		SearchPaths: cd.SearchPaths,
		Facetable:   cd.Facetable,
		FilterKind:  cd.FilterKind,
	}
	if cd.Searchable != nil {
		c.Searchable = types.Off
		if *cd.Searchable {
			c.Searchable = types.On
		}
	}
	return c
}

func accessor(path string) func(Row) any {
	return func(row Row) any {
		v, _ := fieldpath.Get(row, path)
		return v
	}
}

// RowIDFunc returns the row identity function, or nil when no row_id is
// declared. Rows missing the field get an empty id.
func (d *Definition) RowIDFunc() func(Row) string {
	if d.RowID == "" {
		return nil
	}
	path := d.RowID
	return func(row Row) string {
		v, _ := fieldpath.Get(row, path)
		return fieldpath.String(v, ",")
	}
}

// SearchScope returns the declared global search scope.
func (d *Definition) SearchScope() types.SearchScope {
	return types.SearchScope{Allow: d.SearchAllow, Deny: d.SearchDeny}
}
