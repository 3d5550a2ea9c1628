package sqlite

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// maxLineSize bounds a single JSONL record.
const maxLineSize = 4 << 20

// readJSONL reads a JSONL stream and returns each non-empty, parseable line.
// Malformed lines are skipped.
func readJSONL(r io.Reader) ([]json.RawMessage, error) {
	var records []json.RawMessage
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || !json.Valid(line) {
			continue
		}
		records = append(records, json.RawMessage(bytes.Clone(line)))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning records: %w", err)
	}
	return records, nil
}

// DecodeRows parses JSONL into rows. Lines that are not JSON objects are
// skipped. Numbers decode as json.Number so integers keep their text form.
func DecodeRows(r io.Reader) ([]map[string]any, error) {
	records, err := readJSONL(r)
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		dec := json.NewDecoder(bytes.NewReader(rec))
		dec.UseNumber()
		var row map[string]any
		if err := dec.Decode(&row); err != nil || row == nil {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadRows reads a JSONL file of rows.
func LoadRows(path string) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rows, err := DecodeRows(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return rows, nil
}

// ExportRows writes rows to path as JSONL.
func ExportRows(path string, rows []map[string]any) error {
	records := make([]json.RawMessage, 0, len(rows))
	for i, row := range rows {
		b, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("encoding row %d: %w", i, err)
		}
		records = append(records, b)
	}
	return writeJSONL(path, records)
}

// writeJSONL replaces path atomically using the temp-file, fsync, rename
// sequence.
func writeJSONL(path string, records []json.RawMessage) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	fail := func(step string, err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%s: %w", step, err)
	}

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			return fail("writing record", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fail("writing newline", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fail("flushing buffer", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("syncing temp file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
