package query

import (
	"fmt"
	"strings"
)

// Operator is one of the comparison operators a filter can use.
type Operator int

const (
	OpEqual        Operator = iota // =
	OpNotEqual                     // !=
	OpGreater                      // >
	OpGreaterEqual                 // >=
	OpLess                         // <
	OpLessEqual                    // <=
	OpContains                     // contains
	OpStartsWith                   // starts_with
	OpEndsWith                     // ends_with
	OpIn                           // in (comma separated)
)

// Operators lists every operator in display order.
var Operators = []Operator{
	OpEqual, OpNotEqual, OpGreater, OpGreaterEqual, OpLess, OpLessEqual,
	OpContains, OpStartsWith, OpEndsWith, OpIn,
}

var operatorNames = map[Operator]string{
	OpEqual:        "=",
	OpNotEqual:     "!=",
	OpGreater:      ">",
	OpGreaterEqual: ">=",
	OpLess:         "<",
	OpLessEqual:    "<=",
	OpContains:     "contains",
	OpStartsWith:   "starts_with",
	OpEndsWith:     "ends_with",
	OpIn:           "in (comma separated)",
}

// String returns the operator as the user selects it.
func (o Operator) String() string {
	if name, ok := operatorNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Operator(%d)", int(o))
}

// IsComparison reports whether o is an equality or ordering operator.
func (o Operator) IsComparison() bool {
	return o >= OpEqual && o <= OpLessEqual
}

// ParseOperator converts a user supplied operator name to an Operator.
// Matching ignores case and surrounding whitespace; "in" is accepted as a
// short form of "in (comma separated)".
func ParseOperator(s string) (Operator, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "in":
		return OpIn, nil
	case "==":
		return OpEqual, nil
	case "<>":
		return OpNotEqual, nil
	}
	for _, op := range Operators {
		if operatorNames[op] == name {
			return op, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOperator, s)
}

// Filter is a single (column, operator, value) triple selected by the user.
// A filter whose value is empty or only whitespace is a no-op.
type Filter struct {
	Column string
	Op     Operator
	Value  string
}

// Empty reports whether the filter is skipped during compilation.
func (f Filter) Empty() bool {
	return strings.TrimSpace(f.Value) == ""
}

// Schema is the set of column names a query may reference.
type Schema struct {
	columns []string
	index   map[string]bool
}

// NewSchema builds a Schema from ordered column names.
func NewSchema(columns []string) Schema {
	index := make(map[string]bool, len(columns))
	for _, c := range columns {
		index[c] = true
	}
	cols := make([]string, len(columns))
	copy(cols, columns)
	return Schema{columns: cols, index: index}
}

// Has reports whether the column exists.
func (s Schema) Has(column string) bool {
	return s.index[column]
}

// Columns returns the column names in table order.
func (s Schema) Columns() []string {
	cols := make([]string, len(s.columns))
	copy(cols, s.columns)
	return cols
}

// Check returns ErrUnknownColumn if any column is not in the schema.
func (s Schema) Check(columns ...string) error {
	for _, c := range columns {
		if err := ValidateColumnName(c); err != nil {
			return err
		}
		if !s.Has(c) {
			return fmt.Errorf("%w: %q", ErrUnknownColumn, c)
		}
	}
	return nil
}

// Fragment is one compiled boolean condition.
//
// SQL uses ? placeholders bound to Args in order. Numeric is set when a
// comparison was emitted against a DOUBLE cast of the column.
type Fragment struct {
	SQL     string
	Args    []interface{}
	Numeric bool
}

// Predicate is a conjunction of fragments. The zero value is the empty
// predicate, meaning no restriction.
type Predicate struct {
	Fragments []Fragment
}

// Empty reports whether the predicate restricts nothing.
func (p Predicate) Empty() bool {
	return len(p.Fragments) == 0
}

// SQL joins the fragments with AND in compile order.
func (p Predicate) SQL() string {
	parts := make([]string, len(p.Fragments))
	for i, f := range p.Fragments {
		parts[i] = f.SQL
	}
	return strings.Join(parts, " AND ")
}

// Args returns the bound values of every fragment in placeholder order.
func (p Predicate) Args() []interface{} {
	var args []interface{}
	for _, f := range p.Fragments {
		args = append(args, f.Args...)
	}
	return args
}

// Projection selects what a plan returns.
type Projection int

const (
	AllColumns    Projection = iota // SELECT *
	RowCount                        // SELECT COUNT(*) AS row_count
	SelectColumns                   // explicit select list
)

// String returns the metric name shown to users.
func (p Projection) String() string {
	switch p {
	case AllColumns:
		return "rows"
	case RowCount:
		return "count"
	case SelectColumns:
		return "select"
	default:
		return fmt.Sprintf("Projection(%d)", int(p))
	}
}

// ParseMetric maps the user metric choice to a projection.
func ParseMetric(s string) (Projection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rows", "show rows":
		return AllColumns, nil
	case "count", "count rows":
		return RowCount, nil
	default:
		return 0, fmt.Errorf("unknown metric %q (want rows or count)", s)
	}
}

type exprKind int

const (
	exprColumn exprKind = iota
	exprCount
	exprDate
	exprAlias
)

// Expr is a select, group or order expression.
type Expr struct {
	kind   exprKind
	column string
}

// Col references a table column.
func Col(name string) Expr { return Expr{kind: exprColumn, column: name} }

// CountAll is COUNT(*).
func CountAll() Expr { return Expr{kind: exprCount} }

// DateOf truncates a column to its calendar date.
func DateOf(name string) Expr { return Expr{kind: exprDate, column: name} }

// Alias references an output column by its alias, e.g. in ORDER BY.
func Alias(name string) Expr { return Expr{kind: exprAlias, column: name} }

// Column returns the referenced table column, or "" for COUNT(*) and aliases.
func (e Expr) Column() string {
	if e.kind == exprColumn || e.kind == exprDate {
		return e.column
	}
	return ""
}

// SQL renders the expression.
func (e Expr) SQL() string {
	switch e.kind {
	case exprCount:
		return "COUNT(*)"
	case exprDate:
		return "CAST(" + QuoteIdent(e.column) + " AS DATE)"
	default:
		return QuoteIdent(e.column)
	}
}

// SelectItem is one entry of an explicit select list.
type SelectItem struct {
	Expr  Expr
	Alias string
}

// OrderKey is one ORDER BY entry.
type OrderKey struct {
	Expr Expr
	Desc bool
}

// Plan is everything the assembler needs to produce a statement.
type Plan struct {
	Projection Projection
	Select     []SelectItem // only for SelectColumns
	Predicate  Predicate
	GroupBy    []Expr
	OrderBy    []OrderKey
	Limit      int
}

// Ambiguous reports whether the plan groups rows while projecting every
// column. DuckDB rejects ungrouped columns in that shape, so the result is
// an execution error rather than a meaningful answer.
func (p Plan) Ambiguous() bool {
	return p.Projection == AllColumns && len(p.GroupBy) > 0
}

// Columns returns every table column the plan references.
func (p Plan) Columns() []string {
	var cols []string
	add := func(e Expr) {
		if c := e.Column(); c != "" {
			cols = append(cols, c)
		}
	}
	for _, s := range p.Select {
		add(s.Expr)
	}
	for _, g := range p.GroupBy {
		add(g)
	}
	for _, o := range p.OrderBy {
		add(o.Expr)
	}
	return cols
}

// Statement is an assembled query ready for execution.
//
// SQL carries ? placeholders for Args. Text is the same query with literals
// inlined for display; it is never executed.
type Statement struct {
	SQL  string
	Args []interface{}
	Text string
}

// QuoteIdent double-quotes an identifier, doubling embedded quotes.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
