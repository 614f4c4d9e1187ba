package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestTableFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	columns := []string{"To Domain", "failures"}
	rows := [][]interface{}{{"a.com", int64(3)}, {"b.com", nil}}

	if err := NewTableFormatter(&buf).Format(columns, rows); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{"To Domain", "failures", "a.com", "b.com", "3"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		format  string
		want    string
		wantErr bool
	}{
		{format: "", want: "*output.TableFormatter"},
		{format: "table", want: "*output.TableFormatter"},
		{format: "CSV", want: "*output.CSVFormatter"},
		{format: "json", want: "*output.JSONArrayFormatter"},
		{format: "jsonl", want: "*output.JSONFormatter"},
		{format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			f, err := New(tt.format, &bytes.Buffer{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := typeName(f); got != tt.want {
				t.Errorf("New(%q) = %s, want %s", tt.format, got, tt.want)
			}
		})
	}
}

func typeName(f Formatter) string {
	switch f.(type) {
	case *TableFormatter:
		return "*output.TableFormatter"
	case *CSVFormatter:
		return "*output.CSVFormatter"
	case *JSONArrayFormatter:
		return "*output.JSONArrayFormatter"
	case *JSONFormatter:
		return "*output.JSONFormatter"
	default:
		return "unknown"
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{int64(-7), "-7"},
		{float64(0.1), "0.1"},
		{float64(1e21), "1000000000000000000000"},
		{float32(2.5), "2.5"},
		{false, "false"},
		{[]byte("raw"), "raw"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
