package sqlite

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"
)

// identPattern limits table names to plain SQL identifiers so they can be
// quoted into a statement.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// QueryRows runs a read query and returns each result row keyed by column
// name. TEXT and BLOB cells become strings; other cells keep the driver's
// type.
func QueryRows(db *sql.DB, query string, args ...any) ([]map[string]any, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying rows: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	var out []map[string]any
	for rows.Next() {
		cells := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			if b, ok := cells[i].([]byte); ok {
				row[c] = string(b)
				continue
			}
			row[c] = cells[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return out, nil
}

// LoadTable reads every row of table from the SQLite database at path. When
// query is non-empty it is run instead and table is ignored.
func LoadTable(path, table, query string) ([]map[string]any, error) {
	if query == "" {
		if !identPattern.MatchString(table) {
			return nil, fmt.Errorf("invalid table name %q", table)
		}
		query = fmt.Sprintf(`SELECT * FROM "%s"`, table)
	}
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path + "?mode=ro"
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer db.Close()
	return QueryRows(db, query)
}
