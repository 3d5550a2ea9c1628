// Command grid filters, searches, sorts, facets and pages tabular data read
// from JSONL files or SQLite tables, and keeps named views of those queries.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "grid:", err)
		os.Exit(exitCode(err))
	}
}
