package output

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// TableFormatter renders rows as an aligned terminal table
type TableFormatter struct {
	writer io.Writer
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w}
}

// SetOutput sets the output writer
func (t *TableFormatter) SetOutput(w io.Writer) {
	t.writer = w
}

// Format writes the header and rows as a table
func (t *TableFormatter) Format(columns []string, rows [][]interface{}) error {
	table := tablewriter.NewWriter(t.writer)
	table.SetHeader(columns)
	// Column names are shown as loaded
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	for _, row := range rows {
		record := make([]string, len(columns))
		for i := range columns {
			if i < len(row) {
				record[i] = FormatValue(row[i])
			}
		}
		table.Append(record)
	}

	table.Render()
	return nil
}
