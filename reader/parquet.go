package reader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/sheetql/internal/compress"
)

// Reader reads a parquet file as a single-sheet source.
//
// The file is held in memory, decompressed if it was stored gzip, bzip2 or
// xz compressed. The one sheet is named after the file without extensions.
type Reader struct {
	name   string
	pqFile *parquet.File
}

// NewReader creates a new parquet reader for the specified file path.
//
// Returns an error if the file doesn't exist or is not a valid parquet file.
//
// Example:
//
//	reader, err := NewReader("data.parquet")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer reader.Close()
func NewReader(path string) (*Reader, error) {
	data, _, err := compress.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	pqFile, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	base := filepath.Base(compress.TrimExtension(path))
	return &Reader{
		name:   strings.TrimSuffix(base, filepath.Ext(base)),
		pqFile: pqFile,
	}, nil
}

// ReadAll reads all rows from the parquet file into memory.
//
// Each row is returned as a map where keys are column names and values are
// the column values.
func (r *Reader) ReadAll() ([]map[string]interface{}, error) {
	rows := make([]map[string]interface{}, 0)

	reader := parquet.NewReader(r.pqFile)
	defer func() { _ = reader.Close() }()

	for {
		row := make(map[string]interface{})
		err := reader.Read(&row)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// Schema returns the parquet file schema.
func (r *Reader) Schema() *parquet.Schema {
	return r.pqFile.Schema()
}

// SheetNames returns the single sheet name.
func (r *Reader) SheetNames() []string {
	return []string{r.name}
}

// ReadSheet loads every row as a table. Columns follow the schema's
// top-level field order; column types come from the decoded Go values.
func (r *Reader) ReadSheet(name string) (*Table, error) {
	if name != r.name {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	fields := r.Schema().Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name()
	}

	table := &Table{
		Name:    name,
		Columns: make([]Column, len(names)),
		Rows:    make([][]interface{}, len(rows)),
	}
	for i := range table.Rows {
		table.Rows[i] = make([]interface{}, len(names))
	}

	for c, col := range names {
		typ := TypeText
		first := true
		for _, row := range rows {
			v := row[col]
			if v == nil {
				continue
			}
			t := valueType(v)
			if first {
				typ, first = t, false
			} else if t != typ {
				typ = TypeText
				break
			}
		}

		table.Columns[c] = Column{Name: col, Type: typ}
		for i, row := range rows {
			table.Rows[i][c] = normalizeValue(row[col], typ)
		}
	}

	return table, nil
}

// Close releases the reader. The file is already in memory, so this only
// exists to satisfy Source.
func (r *Reader) Close() error {
	return nil
}

func valueType(v interface{}) ColumnType {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return TypeInteger
	case float32, float64:
		return TypeNumber
	case bool:
		return TypeBoolean
	case time.Time:
		return TypeTimestamp
	default:
		return TypeText
	}
}

// normalizeValue converts a decoded parquet value to the representation
// Table uses for typ.
func normalizeValue(v interface{}, typ ColumnType) interface{} {
	if v == nil {
		return nil
	}
	switch typ {
	case TypeInteger:
		switch n := v.(type) {
		case int:
			return int64(n)
		case int8:
			return int64(n)
		case int16:
			return int64(n)
		case int32:
			return int64(n)
		case int64:
			return n
		case uint:
			return int64(n)
		case uint8:
			return int64(n)
		case uint16:
			return int64(n)
		case uint32:
			return int64(n)
		case uint64:
			return int64(n)
		}
	case TypeNumber:
		switch n := v.(type) {
		case float32:
			return float64(n)
		case float64:
			return n
		}
	case TypeBoolean, TypeTimestamp:
		return v
	}

	if b, ok := v.([]byte); ok {
		return string(b)
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
