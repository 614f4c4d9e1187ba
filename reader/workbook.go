package reader

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/vegasq/sheetql/internal/compress"
)

var (
	// ErrNoSheets is returned when a workbook has no worksheets
	ErrNoSheets = errors.New("no sheets found")

	// ErrSheetNotFound is returned when the selected sheet does not exist
	ErrSheetNotFound = errors.New("sheet not found")

	// ErrUnsupportedFormat is returned for file types the reader cannot load
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrNoColumns is returned when a sheet has no header row
	ErrNoColumns = errors.New("sheet has no columns")
)

// Source is a loaded file holding one or more named sheets.
type Source interface {
	// SheetNames lists the sheets in file order
	SheetNames() []string

	// ReadSheet loads one sheet as a table with a header row
	ReadSheet(name string) (*Table, error)

	// Close releases the underlying file
	Close() error
}

// Open loads a workbook or parquet file. Compressed files (gzip, bzip2,
// xz) are detected by their magic bytes and decompressed in memory; the
// format is taken from the extension left once any compression suffix is
// removed, e.g. "report.xlsx.gz" is an xlsx workbook.
func Open(path string) (Source, error) {
	if path == "" {
		return nil, fmt.Errorf("file path is empty")
	}

	switch ext := strings.ToLower(filepath.Ext(compress.TrimExtension(path))); ext {
	case ".xlsx", ".xlsm":
		return OpenWorkbook(path)
	case ".parquet":
		return NewReader(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Workbook is an opened Excel workbook.
type Workbook struct {
	file   *excelize.File
	sheets []string
}

// OpenWorkbook opens an xlsx file, decompressing it first when needed.
func OpenWorkbook(path string) (*Workbook, error) {
	data, _, err := compress.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	return OpenWorkbookBytes(data)
}

// OpenWorkbookBytes opens an xlsx workbook held in memory.
func OpenWorkbookBytes(data []byte) (*Workbook, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("data is empty")
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		_ = f.Close()
		return nil, ErrNoSheets
	}

	return &Workbook{file: f, sheets: sheets}, nil
}

// SheetNames returns the worksheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, len(w.sheets))
	copy(names, w.sheets)
	return names
}

// ReadSheet loads the named sheet. The first row is the header; empty
// headers are named Unnamed_A, Unnamed_B, ...
//
// Cells are read unformatted so numbers keep full precision. A number whose
// cell style has a date or time number format is converted from its Excel
// serial to a timestamp. Cells stored as strings stay text.
func (w *Workbook) ReadSheet(name string) (*Table, error) {
	if !w.hasSheet(name) {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}

	raw, err := w.file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
	}
	if len(raw) == 0 {
		return &Table{Name: name}, nil
	}

	header := make([]string, len(raw[0]))
	for i := range raw[0] {
		ref, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if header[i], err = w.file.GetCellValue(name, ref); err != nil {
			return nil, fmt.Errorf("failed to read header %s: %w", ref, err)
		}
	}

	date1904 := false
	if props, err := w.file.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	dates := make(map[int]bool)
	records := make([][]string, 0, len(raw)-1)
	text := make([][]bool, 0, len(raw)-1)
	for r := 1; r < len(raw); r++ {
		cells, isText, err := w.readRow(name, r+1, raw[r], date1904, dates)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		records = append(records, cells)
		text = append(text, isText)
	}

	return newSheetTable(name, header, records, text), nil
}

// Close closes the workbook.
func (w *Workbook) Close() error {
	return w.file.Close()
}

func (w *Workbook) hasSheet(name string) bool {
	for _, s := range w.sheets {
		if s == name {
			return true
		}
	}
	return false
}

// readRow resolves the raw values of sheet row number row and reports which
// cells are stored as strings. dates caches date detection per style id.
func (w *Workbook) readRow(sheet string, row int, raw []string, date1904 bool, dates map[int]bool) ([]string, []bool, error) {
	cells := make([]string, len(raw))
	text := make([]bool, len(raw))
	for i, v := range raw {
		cells[i] = v
		if strings.TrimSpace(v) == "" {
			continue
		}
		ref, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return nil, nil, err
		}
		typ, err := w.file.GetCellType(sheet, ref)
		if err != nil {
			return nil, nil, fmt.Errorf("cell %s: %w", ref, err)
		}

		switch typ {
		case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
			text[i] = true
			continue
		case excelize.CellTypeBool:
			cells[i] = strings.ToUpper(strconv.FormatBool(v == "1"))
			continue
		case excelize.CellTypeError, excelize.CellTypeDate:
			continue
		}

		serial, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			continue
		}
		isDate, err := w.isDateCell(sheet, ref, dates)
		if err != nil {
			return nil, nil, err
		}
		if !isDate {
			continue
		}
		if ts, err := excelize.ExcelDateToTime(serial, date1904); err == nil {
			cells[i] = ts.Format(timestampLayout)
		}
	}
	return cells, text, nil
}

func (w *Workbook) isDateCell(sheet, ref string, dates map[int]bool) (bool, error) {
	id, err := w.file.GetCellStyle(sheet, ref)
	if err != nil {
		return false, fmt.Errorf("cell %s style: %w", ref, err)
	}
	if isDate, ok := dates[id]; ok {
		return isDate, nil
	}

	isDate := false
	// Workbooks without a style sheet have no style records at all
	if style, err := w.file.GetStyle(id); err == nil {
		isDate = isDateFormat(style.NumFmt, style.CustomNumFmt)
	}
	dates[id] = isDate
	return isDate, nil
}

// isDateFormat reports whether a number format renders dates or times:
// one of the built-in date formats, or a custom code with a y, m, d, h or s
// token outside quoted text, escapes and bracketed sections.
func isDateFormat(id int, custom *string) bool {
	switch {
	case id >= 14 && id <= 22, id >= 27 && id <= 36, id >= 45 && id <= 47, id >= 50 && id <= 58:
		return true
	case custom == nil:
		return false
	}

	code := *custom
	for i := 0; i < len(code); i++ {
		switch code[i] {
		case '"':
			end := strings.IndexByte(code[i+1:], '"')
			if end < 0 {
				return false
			}
			i += end + 1
		case '\\', '_', '*':
			i++
		case '[':
			end := strings.IndexByte(code[i:], ']')
			if end < 0 {
				return false
			}
			// Elapsed time: [h], [mm], [ss]
			if inner := strings.ToLower(code[i+1 : i+end]); inner != "" && strings.Trim(inner, "hms") == "" {
				return true
			}
			i += end
		case 'y', 'Y', 'm', 'M', 'd', 'D', 'h', 'H', 's', 'S':
			return true
		}
	}
	return false
}
