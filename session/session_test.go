package session

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/vegasq/sheetql/internal/config"
	"github.com/vegasq/sheetql/preset"
	"github.com/vegasq/sheetql/query"
	"github.com/vegasq/sheetql/reader"
)

func textTable(name string, columns []string, rows ...[]interface{}) *reader.Table {
	t := &reader.Table{Name: name, Rows: rows}
	for _, c := range columns {
		t.Columns = append(t.Columns, reader.Column{Name: c, Type: reader.TypeText})
	}
	return t
}

func load(t *testing.T, sheet string, table *reader.Table, opts Options) *Session {
	t.Helper()
	s, err := Load(context.Background(), sheet, table, opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestTopFailingDomains(t *testing.T) {
	table := textTable("Failure Details", []string{"User", "To Domain"},
		[]interface{}{"u1", "a.com"},
		[]interface{}{"u2", "a.com"},
		[]interface{}{"u3", "b.com"},
	)
	s := load(t, "Failure Details", table, Options{})

	if s.Kind != preset.FailureDetails {
		t.Fatalf("Kind = %s", s.Kind)
	}
	out, err := s.RunPreset(context.Background(), "Top 10 failing domains")
	if err != nil {
		t.Fatalf("RunPreset() error = %v", err)
	}

	if out.RowCount() != 2 {
		t.Fatalf("RowCount() = %d, want 2", out.RowCount())
	}
	if out.Result.Columns[0] != "to_domain" || out.Result.Columns[1] != "failures" {
		t.Errorf("columns = %v", out.Result.Columns)
	}
	want := [][]interface{}{{"a.com", int64(2)}, {"b.com", int64(1)}}
	for i, row := range want {
		if out.Result.Rows[i][0] != row[0] || out.Result.Rows[i][1] != row[1] {
			t.Errorf("row %d = %v, want %v", i, out.Result.Rows[i], row)
		}
	}
}

func TestCustomNumericEquality(t *testing.T) {
	table := textTable("Sheet1", []string{"Status"},
		[]interface{}{"5"},
		[]interface{}{"5.0"},
		[]interface{}{"6"},
	)
	s := load(t, "Sheet1", table, Options{})

	out, err := s.RunCustom(context.Background(), Custom{
		Filters:    []query.Filter{{Column: "Status", Op: query.OpEqual, Value: "5"}},
		Projection: query.AllColumns,
	})
	if err != nil {
		t.Fatalf("RunCustom() error = %v", err)
	}
	if out.RowCount() != 2 {
		t.Errorf("RowCount() = %d, want 2 (numeric comparison)", out.RowCount())
	}
	if out.Statement.Text != "SELECT *\nFROM data\nWHERE CAST(\"Status\" AS DOUBLE) = 5\nLIMIT 1000;" {
		t.Errorf("Text = %q", out.Statement.Text)
	}
}

func TestCustomMembership(t *testing.T) {
	table := textTable("Sheet1", []string{"Name"},
		[]interface{}{"x"},
		[]interface{}{"y"},
		[]interface{}{"z"},
		[]interface{}{""},
	)
	s := load(t, "Sheet1", table, Options{})

	out, err := s.RunCustom(context.Background(), Custom{
		Filters:    []query.Filter{{Column: "Name", Op: query.OpIn, Value: " x, ,y"}},
		Projection: query.AllColumns,
	})
	if err != nil {
		t.Fatalf("RunCustom() error = %v", err)
	}
	if out.RowCount() != 2 {
		t.Fatalf("RowCount() = %d, want 2", out.RowCount())
	}
	for _, row := range out.Result.Rows {
		if row[0] != "x" && row[0] != "y" {
			t.Errorf("unexpected row %v", row)
		}
	}

	out, err = s.RunCustom(context.Background(), Custom{
		Filters:    []query.Filter{{Column: "Name", Op: query.OpIn, Value: ", ,"}},
		Projection: query.RowCount,
	})
	if err != nil {
		t.Fatalf("RunCustom() error = %v", err)
	}
	if out.Result.Rows[0][0] != int64(0) {
		t.Errorf("empty list count = %v, want 0", out.Result.Rows[0][0])
	}
}

func TestPresetFallsBackToFirstColumn(t *testing.T) {
	table := textTable("Failure Details", []string{"Recipient", "Reason"},
		[]interface{}{"a.com", "spam"},
		[]interface{}{"a.com", "full"},
	)
	s := load(t, "Failure Details", table, Options{})

	b, _ := s.Mapping.Binding(preset.RoleDomain)
	if b.Column != "Recipient" || !b.Fallback {
		t.Fatalf("domain binding = %+v", b)
	}

	out, err := s.RunPreset(context.Background(), "Top 10 failing domains")
	if err != nil {
		t.Fatalf("RunPreset() error = %v", err)
	}
	if out.RowCount() != 1 || out.Result.Rows[0][1] != int64(2) {
		t.Errorf("rows = %v", out.Result.Rows)
	}
}

func TestRunPresetUnknown(t *testing.T) {
	s := load(t, "Sheet1", textTable("Sheet1", []string{"a"}), Options{})
	if _, err := s.RunPreset(context.Background(), "Top 10 failing domains"); !errors.Is(err, preset.ErrUnknownPreset) {
		t.Errorf("error = %v, want ErrUnknownPreset", err)
	}
	if len(s.Presets()) != 0 {
		t.Errorf("generic sheet has presets: %v", s.Presets())
	}
}

func TestQueryErrorKeepsSessionUsable(t *testing.T) {
	table := textTable("Sheet1", []string{"A", "B"}, []interface{}{"1", "2"})
	s := load(t, "Sheet1", table, Options{})
	ctx := context.Background()

	// SELECT * with GROUP BY on a subset of columns fails in the engine
	stmt, err := s.ComposeCustom(Custom{GroupBy: []string{"A"}, Projection: query.AllColumns})
	if err != nil {
		t.Fatalf("ComposeCustom() error = %v", err)
	}
	_, err = s.Run(ctx, stmt)
	var qe *QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("error = %v, want *QueryError", err)
	}
	if qe.Text != stmt.Text || !IsQueryError(err) {
		t.Errorf("QueryError.Text = %q, want %q", qe.Text, stmt.Text)
	}

	out, err := s.RunCustom(ctx, Custom{GroupBy: []string{"A"}, Projection: query.RowCount})
	if err != nil {
		t.Fatalf("RunCustom() after failure error = %v", err)
	}
	if out.RowCount() != 1 {
		t.Errorf("RowCount() = %d", out.RowCount())
	}
}

func TestGroupedRowCounts(t *testing.T) {
	table := textTable("Sheet1", []string{"To Domain"},
		[]interface{}{"a.com"},
		[]interface{}{"b.com"},
		[]interface{}{"a.com"},
		[]interface{}{"c.com"},
		[]interface{}{"b.com"},
		[]interface{}{"a.com"},
	)
	s := load(t, "Sheet1", table, Options{})

	out, err := s.RunCustom(context.Background(), Custom{GroupBy: []string{"To Domain"}, Projection: query.RowCount})
	if err != nil {
		t.Fatalf("RunCustom() error = %v", err)
	}
	if out.RowCount() != 3 {
		t.Fatalf("RowCount() = %d, want one row per domain", out.RowCount())
	}

	var counts []int
	for _, row := range out.Result.Rows {
		n, ok := row[0].(int64)
		if !ok {
			t.Fatalf("row_count = %#v (%T)", row[0], row[0])
		}
		counts = append(counts, int(n))
	}
	sort.Ints(counts)
	if counts[0] != 1 || counts[1] != 2 || counts[2] != 3 {
		t.Errorf("row counts = %v, want [1 2 3]", counts)
	}
}

func TestComposeErrors(t *testing.T) {
	s := load(t, "Sheet1", textTable("Sheet1", []string{"A"}), Options{})

	tests := []struct {
		name   string
		custom Custom
		is     error
	}{
		{name: "unknown column", custom: Custom{Filters: []query.Filter{{Column: "B", Op: query.OpEqual, Value: "1"}}}, is: query.ErrUnknownColumn},
		{name: "unknown group column", custom: Custom{GroupBy: []string{"B"}}, is: query.ErrUnknownColumn},
		{name: "limit too large", custom: Custom{Limit: query.MaxLimit + 1}, is: query.ErrLimitOutOfRange},
		{name: "negative limit", custom: Custom{Limit: -1}, is: query.ErrLimitOutOfRange},
		{name: "select list", custom: Custom{Projection: query.SelectColumns}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.ComposeCustom(tt.custom)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("error = %v, want %v", err, tt.is)
			}
			if IsQueryError(err) {
				t.Error("compose error reported as a query error")
			}
		})
	}
}

func TestConfigAndOverrides(t *testing.T) {
	cfg := config.Default()
	cfg.DefaultLimit = 5
	cfg.PreviewRows = 1
	cfg.Roles = map[string]map[string]string{"failure_details": {"domain": "Recipient"}}

	table := textTable("Failure Details", []string{"Server", "Recipient"},
		[]interface{}{"mx1", "a.com"},
		[]interface{}{"mx2", "b.com"},
	)
	s := load(t, "Failure Details", table, Options{Config: &cfg, Overrides: map[preset.Role]string{preset.RoleServer: "Server"}})

	if b, _ := s.Mapping.Binding(preset.RoleDomain); b.Column != "Recipient" || b.Fallback {
		t.Errorf("domain binding = %+v", b)
	}
	if len(s.Preview()) != 1 {
		t.Errorf("Preview() = %d rows, want 1", len(s.Preview()))
	}

	stmt, err := s.ComposeCustom(Custom{})
	if err != nil {
		t.Fatalf("ComposeCustom() error = %v", err)
	}
	if stmt.SQL != "SELECT *\nFROM data\nLIMIT 5" {
		t.Errorf("SQL = %q", stmt.SQL)
	}

	if _, err := Load(context.Background(), "Failure Details", table, Options{Overrides: map[preset.Role]string{preset.RoleServer: "Nope"}}); err == nil {
		t.Error("expected error for override naming a missing column")
	}
}

func TestLoadEmptySheet(t *testing.T) {
	if _, err := Load(context.Background(), "Sheet1", &reader.Table{}, Options{}); !errors.Is(err, reader.ErrNoColumns) {
		t.Errorf("error = %v, want ErrNoColumns", err)
	}
}

func TestOpenWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", "Failure Details"); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	if _, err := f.NewSheet("Failure Reasons"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	rows := [][]interface{}{
		{"Date Sent", "User", "To Domain", "SMTP Code"},
		{"2024-03-01", "u1", "a.com", 550},
		{"2024-03-01", "u2", "b.com", 550},
		{"2024-03-02", "u1", "a.com", 421},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Failure Details", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	_ = f.Close()

	ctx := context.Background()
	s, err := Open(ctx, path, "", Options{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	if s.Sheet != "Failure Details" {
		t.Errorf("Sheet = %q, want first sheet", s.Sheet)
	}

	out, err := s.RunPreset(ctx, "Top SMTP codes")
	if err != nil {
		t.Fatalf("RunPreset() error = %v", err)
	}
	if out.RowCount() != 2 || out.Result.Rows[0][0] != int64(550) || out.Result.Rows[0][1] != int64(2) {
		t.Errorf("rows = %v", out.Result.Rows)
	}

	out, err = s.RunPreset(ctx, "Failures by day")
	if err != nil {
		t.Fatalf("RunPreset() error = %v", err)
	}
	if out.RowCount() != 2 || out.Result.Rows[0][1] != int64(1) {
		t.Errorf("rows = %v", out.Result.Rows)
	}

	if _, err := Open(ctx, path, "Missing", Options{}); !errors.Is(err, reader.ErrSheetNotFound) {
		t.Errorf("error = %v, want ErrSheetNotFound", err)
	}

	pivot, err := Open(ctx, path, "Failure Reasons", Options{})
	if err == nil {
		defer pivot.Close()
		t.Fatal("expected empty sheet to fail")
	}
}

func TestWorkbookCodesFilterAsText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codes.xlsx")
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"SMTP Code", "Zip"},
		{550, "02134"},
		{550, "007"},
		{421, "10001"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	_ = f.Close()

	ctx := context.Background()
	s, err := Open(ctx, path, "Sheet1", Options{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	if s.Table.Columns[0].Type != reader.TypeInteger || s.Table.Columns[1].Type != reader.TypeText {
		t.Fatalf("Columns = %v", s.Table.Columns)
	}

	tests := []struct {
		name   string
		filter query.Filter
		want   int64
	}{
		{"code list", query.Filter{Column: "SMTP Code", Op: query.OpIn, Value: "550, 421"}, 3},
		{"code suffix", query.Filter{Column: "SMTP Code", Op: query.OpEndsWith, Value: "50"}, 2},
		{"code equality", query.Filter{Column: "SMTP Code", Op: query.OpEqual, Value: "550"}, 2},
		{"zip list", query.Filter{Column: "Zip", Op: query.OpIn, Value: "02134, 007"}, 2},
		{"zip prefix", query.Filter{Column: "Zip", Op: query.OpStartsWith, Value: "0"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := s.RunCustom(ctx, Custom{Filters: []query.Filter{tt.filter}, Projection: query.RowCount})
			if err != nil {
				t.Fatalf("RunCustom() error = %v", err)
			}
			if out.Result.Rows[0][0] != tt.want {
				t.Errorf("count = %v, want %d", out.Result.Rows[0][0], tt.want)
			}
		})
	}

	out, err := s.Run(ctx, query.Statement{SQL: `SELECT CAST("SMTP Code" AS VARCHAR), "Zip" FROM data WHERE "Zip" = '02134'`})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.Result.Rows[0][0] != "550" || out.Result.Rows[0][1] != "02134" {
		t.Errorf("row = %v, want [550 02134]", out.Result.Rows[0])
	}
}
