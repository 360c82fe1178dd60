// Package fetcher downloads and parses registry data from HTTP, CSV and
// XLSX sources.
package fetcher

import (
	"context"
	"io"
	"strings"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// Table is a parsed tabular dataset with header-keyed column access.
type Table struct {
	Header []string
	Rows   [][]string

	cols map[string]int
}

// NewTable builds a Table from a header row and data rows. Header names are
// matched case-insensitively with surrounding whitespace ignored.
func NewTable(header []string, rows [][]string) *Table {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[normalizeHeader(h)] = i
	}
	return &Table{Header: header, Rows: rows, cols: cols}
}

// Get returns the named column of a row, or "" when the column is missing
// or the row is short.
func (t *Table) Get(row []string, column string) string {
	i, ok := t.cols[normalizeHeader(column)]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// HasColumn reports whether the table carries the named column.
func (t *Table) HasColumn(column string) bool {
	_, ok := t.cols[normalizeHeader(column)]
	return ok
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}
