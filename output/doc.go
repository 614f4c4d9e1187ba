// Package output provides formatters for query results.
//
// All formatters take a result as ordered column names plus positional
// rows, and write columns in that order.
//
// # Supported Formats
//
//   - table: aligned terminal table (tablewriter)
//   - csv: comma-separated values with header row, used for export
//   - json: one indented JSON array
//   - jsonl: one JSON object per line
//
// # Basic Usage
//
//	formatter, err := output.New("csv", os.Stdout)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := formatter.Format(result.Columns, result.Rows); err != nil {
//	    log.Fatal(err)
//	}
//
// # Type Handling
//
// FormatValue is shared by the text formats: floats print without
// exponent or trailing zeros, timestamps at midnight print as a date, nil
// is empty. The JSON formats keep numbers and booleans as JSON values and
// null for nil.
package output
