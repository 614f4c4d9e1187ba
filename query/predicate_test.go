package query

import (
	"errors"
	"reflect"
	"testing"
)

var testSchema = NewSchema([]string{"Status", "Name", "To Domain", "Details"})

func TestCompile(t *testing.T) {
	tests := []struct {
		name     string
		filters  []Filter
		wantSQL  string
		wantArgs []interface{}
	}{
		{
			name:    "no filters",
			filters: nil,
			wantSQL: "",
		},
		{
			name: "numeric equality",
			filters: []Filter{
				{Column: "Status", Op: OpEqual, Value: "5"},
			},
			wantSQL:  `CAST("Status" AS DOUBLE) = ?`,
			wantArgs: []interface{}{5.0},
		},
		{
			name: "contains",
			filters: []Filter{
				{Column: "Details", Op: OpContains, Value: "mailbox"},
			},
			wantSQL:  `CAST("Details" AS VARCHAR) ILIKE ?`,
			wantArgs: []interface{}{"%mailbox%"},
		},
		{
			name: "starts with",
			filters: []Filter{
				{Column: "Name", Op: OpStartsWith, Value: "al"},
			},
			wantSQL:  `CAST("Name" AS VARCHAR) ILIKE ?`,
			wantArgs: []interface{}{"al%"},
		},
		{
			name: "ends with",
			filters: []Filter{
				{Column: "To Domain", Op: OpEndsWith, Value: ".com"},
			},
			wantSQL:  `CAST("To Domain" AS VARCHAR) ILIKE ?`,
			wantArgs: []interface{}{"%.com"},
		},
		{
			name: "membership trims items",
			filters: []Filter{
				{Column: "Name", Op: OpIn, Value: "a, b ,c"},
			},
			wantSQL:  `CAST("Name" AS VARCHAR) IN (?, ?, ?)`,
			wantArgs: []interface{}{"a", "b", "c"},
		},
		{
			name: "membership drops empty items",
			filters: []Filter{
				{Column: "Name", Op: OpIn, Value: " x, ,y"},
			},
			wantSQL:  `CAST("Name" AS VARCHAR) IN (?, ?)`,
			wantArgs: []interface{}{"x", "y"},
		},
		{
			name: "membership with only separators matches nothing",
			filters: []Filter{
				{Column: "Name", Op: OpIn, Value: " , ,"},
			},
			wantSQL: "FALSE",
		},
		{
			name: "fragments joined in input order",
			filters: []Filter{
				{Column: "Name", Op: OpNotEqual, Value: "bob"},
				{Column: "Status", Op: OpLess, Value: "10"},
			},
			wantSQL:  `CAST("Name" AS VARCHAR) != ? AND CAST("Status" AS DOUBLE) < ?`,
			wantArgs: []interface{}{"bob", 10.0},
		},
		{
			name: "wildcards pass through",
			filters: []Filter{
				{Column: "Details", Op: OpContains, Value: "50%_off"},
			},
			wantSQL:  `CAST("Details" AS VARCHAR) ILIKE ?`,
			wantArgs: []interface{}{"%50%_off%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred, err := Compile(testSchema, tt.filters)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			if got := pred.SQL(); got != tt.wantSQL {
				t.Errorf("SQL() = %q, want %q", got, tt.wantSQL)
			}
			if got := pred.Args(); !reflect.DeepEqual(got, tt.wantArgs) {
				t.Errorf("Args() = %#v, want %#v", got, tt.wantArgs)
			}
			if pred.Empty() != (tt.wantSQL == "") {
				t.Errorf("Empty() = %v", pred.Empty())
			}
		})
	}
}

func TestCompileEmptyValuesAreNoOps(t *testing.T) {
	base := []Filter{
		{Column: "Status", Op: OpGreater, Value: "1"},
		{Column: "Name", Op: OpContains, Value: "x"},
	}
	want, err := Compile(testSchema, base)
	if err != nil {
		t.Fatalf("Compile(base) error = %v", err)
	}

	empties := []string{"", " ", "\t", "  \n "}
	for _, v := range empties {
		for pos := 0; pos <= len(base); pos++ {
			filters := make([]Filter, 0, len(base)+1)
			filters = append(filters, base[:pos]...)
			filters = append(filters, Filter{Column: "Details", Op: OpEqual, Value: v})
			filters = append(filters, base[pos:]...)

			got, err := Compile(testSchema, filters)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			if got.SQL() != want.SQL() || !reflect.DeepEqual(got.Args(), want.Args()) {
				t.Errorf("empty value %q at %d changed predicate: %q", v, pos, got.SQL())
			}
		}
	}
}

func TestCompileEmptyFilterSkipsValidation(t *testing.T) {
	pred, err := Compile(testSchema, []Filter{{Column: "gone", Op: OpEqual, Value: " "}})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if !pred.Empty() {
		t.Errorf("expected empty predicate, got %q", pred.SQL())
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		filters []Filter
		wantErr error
	}{
		{
			name:    "unknown column",
			filters: []Filter{{Column: "Missing", Op: OpEqual, Value: "1"}},
			wantErr: ErrUnknownColumn,
		},
		{
			name:    "unknown operator",
			filters: []Filter{{Column: "Name", Op: Operator(99), Value: "1"}},
			wantErr: ErrUnknownOperator,
		},
		{
			name:    "too many filters",
			filters: make([]Filter, MaxFilters+1),
			wantErr: ErrTooManyFilters,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(testSchema, tt.filters)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Compile() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCompileQuoteStaysInArgs(t *testing.T) {
	value := "x' OR '1'='1"
	pred, err := Compile(testSchema, []Filter{{Column: "Name", Op: OpEqual, Value: value}})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if got := pred.SQL(); got != `CAST("Name" AS VARCHAR) = ?` {
		t.Errorf("SQL() = %q", got)
	}
	if args := pred.Args(); len(args) != 1 || args[0] != value {
		t.Errorf("Args() = %#v", args)
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a, b ,c", []string{"a", "b", "c"}},
		{" x, ,y", []string{"x", "y"}},
		{"single", []string{"single"}},
		{",,", nil},
		{"", nil},
	}
	for _, tt := range tests {
		if got := SplitList(tt.input); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitList(%q) = %#v, want %#v", tt.input, got, tt.want)
		}
	}
}
