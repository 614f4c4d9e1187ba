package reader

import (
	"fmt"
	"strings"
)

// ColumnType is the storage type a column is loaded with.
type ColumnType int

const (
	TypeText ColumnType = iota
	TypeNumber
	TypeInteger
	TypeBoolean
	TypeTimestamp
)

// String returns the column type name.
func (t ColumnType) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeNumber:
		return "number"
	case TypeInteger:
		return "integer"
	case TypeBoolean:
		return "boolean"
	case TypeTimestamp:
		return "timestamp"
	default:
		return fmt.Sprintf("ColumnType(%d)", int(t))
	}
}

// Column describes one table column.
type Column struct {
	Name string
	Type ColumnType
}

// Table is one loaded sheet: ordered columns and rows of values.
//
// Each row has exactly len(Columns) values. A value is nil, string, float64,
// int64, bool or time.Time according to its column type. A Table is not
// modified after loading.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]interface{}
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Head returns the first n rows, or all rows if there are fewer.
func (t *Table) Head(n int) [][]interface{} {
	if n < 0 || n > len(t.Rows) {
		n = len(t.Rows)
	}
	return t.Rows[:n]
}

// newTextTable builds a table from a header row and string records,
// normalising headers, padding short records and inferring column types.
func newTextTable(name string, header []string, records [][]string) *Table {
	return newSheetTable(name, header, records, nil)
}

// newSheetTable is newTextTable for records whose cells may be marked as
// stored text. A column holding any non-blank text cell stays text, so
// values such as "007" keep their leading zeros.
func newSheetTable(name string, header []string, records [][]string, text [][]bool) *Table {
	width := len(header)
	for _, rec := range records {
		if len(rec) > width {
			width = len(rec)
		}
	}
	// Cells beyond the header get generated names too
	padded := make([]string, width)
	copy(padded, header)
	names := DedupeHeaders(NormalizeHeaders(padded))

	textColumn := make([]bool, width)
	cells := make([][]string, 0, len(records))
	for r, rec := range records {
		if isBlankRecord(rec) {
			continue
		}
		row := make([]string, width)
		copy(row, rec)
		cells = append(cells, row)
		if r >= len(text) {
			continue
		}
		for c, isText := range text[r] {
			if isText && c < width && strings.TrimSpace(row[c]) != "" {
				textColumn[c] = true
			}
		}
	}

	table := &Table{
		Name:    name,
		Columns: make([]Column, width),
		Rows:    make([][]interface{}, len(cells)),
	}
	for i := range table.Rows {
		table.Rows[i] = make([]interface{}, width)
	}

	column := make([]string, len(cells))
	for c := 0; c < width; c++ {
		for r, row := range cells {
			column[r] = row[c]
		}
		typ := TypeText
		if !textColumn[c] {
			typ = InferType(column)
		}
		table.Columns[c] = Column{Name: names[c], Type: typ}
		for r := range cells {
			table.Rows[r][c] = Coerce(column[r], typ)
		}
	}

	return table
}

func isBlankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
