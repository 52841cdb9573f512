// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

package ingest

import (
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"
)

// Delimiter used by the IBAMA extracts.
const csvDelimiter = ';'

// notAvailable is the literal some extracts use for absent values.
const notAvailable = "nan"

// Table is a parsed CSV file: a header-to-position index plus the data rows.
// Quoting and delimiter handling follow encoding/csv; every field is text.
type Table struct {
	columns map[string]int
	rows    [][]string
}

// ParseTable reads a semicolon-delimited CSV stream. It returns a FileError
// when the stream is empty or malformed, so callers can reject the upload
// without touching storage.
func ParseTable(r io.Reader) (*Table, error) {
	return ParseTableWith(r, csvDelimiter)
}

// ParseTableWith reads a CSV stream with an explicit delimiter. The
// building extract is comma-delimited, unlike the other IBAMA files.
func ParseTableWith(r io.Reader, delimiter rune) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	// Extracts occasionally carry ragged rows; tolerate them and let the
	// per-cell accessor return empty for missing positions.
	cr.FieldsPerRecord = -1
	// DMS coordinate fields carry bare seconds quotes (47°52'58"W).
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, NewFileError("file is empty")
	}
	if err != nil {
		return nil, NewFileError("malformed CSV header: %v", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF"))] = i
	}

	var rows [][]string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, NewFileError("malformed CSV record: %v", err)
		}
		rows = append(rows, record)
	}

	return &Table{columns: columns, rows: rows}, nil
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// MissingColumns reports which of the given column names are absent from
// the header.
func (t *Table) MissingColumns(required []string) []string {
	var missing []string
	for _, name := range required {
		if _, ok := t.columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Cell returns the trimmed value of the named column in row i. A column
// absent from the header, a position beyond the row's width, or the
// not-available literal all yield the empty string.
func (t *Table) Cell(i int, column string) string {
	pos, ok := t.columns[column]
	if !ok || pos >= len(t.rows[i]) {
		return ""
	}
	v := strings.TrimSpace(t.rows[i][pos])
	if strings.EqualFold(v, notAvailable) {
		return ""
	}
	return v
}

// RequireCSV rejects uploads whose filename does not end in .csv.
func RequireCSV(filename string) error {
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return NewFileError("only .csv files are accepted, got %q", filepath.Base(filename))
	}
	return nil
}

// RequireColumns rejects a table missing any of the named columns.
func RequireColumns(t *Table, required []string) error {
	if missing := t.MissingColumns(required); len(missing) > 0 {
		return NewFileError("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}
