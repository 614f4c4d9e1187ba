package output

import (
	"fmt"
	"io"
	"strings"
)

// Formatter defines the interface for output formatters.
//
// Rows are positional: row[i] belongs to columns[i]. Implementers write
// columns in the order given.
type Formatter interface {
	// Format writes rows in the formatter's specific format
	Format(columns []string, rows [][]interface{}) error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)
}

// Format names accepted by New.
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
)

// New returns the formatter for a format name.
func New(format string, w io.Writer) (Formatter, error) {
	switch strings.ToLower(format) {
	case FormatTable, "":
		return NewTableFormatter(w), nil
	case FormatCSV:
		return NewCSVFormatter(w), nil
	case FormatJSON:
		return NewJSONArrayFormatter(w), nil
	case FormatJSONL:
		return NewJSONFormatter(w), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: table, csv, json, jsonl)", format)
	}
}
