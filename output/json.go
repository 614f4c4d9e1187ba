package output

import (
	"bytes"
	"encoding/json"
	"io"
	"time"
)

// JSONFormatter outputs rows as JSON Lines format
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON Lines formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// SetOutput sets the output writer
func (j *JSONFormatter) SetOutput(w io.Writer) {
	j.writer = w
}

// Format writes rows as JSON Lines (one JSON object per line)
func (j *JSONFormatter) Format(columns []string, rows [][]interface{}) error {
	for _, row := range rows {
		b, err := encodeRow(columns, row)
		if err != nil {
			return err
		}
		b = append(b, '\n')
		if _, err := j.writer.Write(b); err != nil {
			return err
		}
	}
	return nil
}

// JSONArrayFormatter outputs all rows as one indented JSON array
type JSONArrayFormatter struct {
	writer io.Writer
}

// NewJSONArrayFormatter creates a new JSON array formatter
func NewJSONArrayFormatter(w io.Writer) *JSONArrayFormatter {
	return &JSONArrayFormatter{writer: w}
}

// SetOutput sets the output writer
func (j *JSONArrayFormatter) SetOutput(w io.Writer) {
	j.writer = w
}

// Format writes rows as a JSON array of objects
func (j *JSONArrayFormatter) Format(columns []string, rows [][]interface{}) error {
	objects := make([]json.RawMessage, len(rows))
	for i, row := range rows {
		b, err := encodeRow(columns, row)
		if err != nil {
			return err
		}
		objects[i] = b
	}

	data, err := json.MarshalIndent(objects, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = j.writer.Write(data)
	return err
}

// encodeRow marshals a row as an object whose keys keep column order
func encodeRow(columns []string, row []interface{}) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		var v interface{}
		if i < len(row) {
			v = row[i]
		}
		if ts, ok := v.(time.Time); ok {
			v = FormatValue(ts)
		}
		val, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
