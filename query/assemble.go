package query

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// TableName is the name the loaded sheet is registered under.
const TableName = "data"

// Assembler turns plans into statements against one table schema.
type Assembler struct {
	Schema   Schema
	Table    string // defaults to TableName
	MaxLimit int    // defaults to MaxLimit
}

// NewAssembler creates an assembler for the given schema.
func NewAssembler(schema Schema) *Assembler {
	return &Assembler{Schema: schema, Table: TableName, MaxLimit: MaxLimit}
}

// Assemble renders a plan in a fixed layout:
//
//	SELECT <projection>
//	FROM <table>
//	WHERE <predicate>
//	GROUP BY <exprs>
//	ORDER BY <keys>
//	LIMIT <n>
//
// Clauses with nothing to say are omitted. Every column the plan names must
// exist in the schema; the predicate is expected to come from Compile with
// the same schema.
func (a *Assembler) Assemble(plan Plan) (Statement, error) {
	if err := ValidateLimit(plan.Limit, a.MaxLimit); err != nil {
		return Statement{}, err
	}
	if err := a.Schema.Check(plan.Columns()...); err != nil {
		return Statement{}, err
	}

	selectSQL, err := renderProjection(plan)
	if err != nil {
		return Statement{}, err
	}

	table := a.Table
	if table == "" {
		table = TableName
	}

	lines := []string{
		"SELECT " + selectSQL,
		"FROM " + ident(table),
	}
	if !plan.Predicate.Empty() {
		lines = append(lines, "WHERE "+plan.Predicate.SQL())
	}
	if len(plan.GroupBy) > 0 {
		exprs := make([]string, len(plan.GroupBy))
		for i, g := range plan.GroupBy {
			exprs[i] = renderExpr(g)
		}
		lines = append(lines, "GROUP BY "+strings.Join(exprs, ", "))
	}
	if len(plan.OrderBy) > 0 {
		keys := make([]string, len(plan.OrderBy))
		for i, o := range plan.OrderBy {
			dir := "ASC"
			if o.Desc {
				dir = "DESC"
			}
			keys[i] = renderExpr(o.Expr) + " " + dir
		}
		lines = append(lines, "ORDER BY "+strings.Join(keys, ", "))
	}
	lines = append(lines, "LIMIT "+strconv.Itoa(plan.Limit))

	sql := strings.Join(lines, "\n")
	args := plan.Predicate.Args()

	return Statement{
		SQL:  sql,
		Args: args,
		Text: Inline(sql, args) + ";",
	}, nil
}

// Custom assembles the shape produced by the generic filter builder: all
// columns or a row count, an optional predicate, optional grouping columns
// and a limit.
func (a *Assembler) Custom(projection Projection, pred Predicate, groupBy []string, limit int) (Statement, error) {
	if projection != AllColumns && projection != RowCount {
		return Statement{}, fmt.Errorf("custom queries project rows or count, got %s", projection)
	}
	plan := Plan{
		Projection: projection,
		Predicate:  pred,
		Limit:      limit,
	}
	for _, c := range groupBy {
		plan.GroupBy = append(plan.GroupBy, Col(c))
	}
	return a.Assemble(plan)
}

func renderProjection(plan Plan) (string, error) {
	switch plan.Projection {
	case AllColumns:
		return "*", nil
	case RowCount:
		return "COUNT(*) AS row_count", nil
	case SelectColumns:
		if len(plan.Select) == 0 {
			return "", ErrEmptyProjection
		}
		items := make([]string, len(plan.Select))
		for i, s := range plan.Select {
			items[i] = renderExpr(s.Expr)
			if s.Alias != "" {
				items[i] += " AS " + ident(s.Alias)
			}
		}
		return strings.Join(items, ", "), nil
	default:
		return "", fmt.Errorf("unknown projection %s", plan.Projection)
	}
}

func renderExpr(e Expr) string {
	if e.kind == exprAlias {
		return ident(e.column)
	}
	return e.SQL()
}

// reserved holds words that cannot appear as bare aliases.
var reserved = map[string]bool{
	"select": true, "from": true, "where": true, "group": true, "order": true,
	"by": true, "limit": true, "table": true, "user": true, "as": true,
	"and": true, "or": true, "in": true, "not": true, "null": true,
}

// ident leaves plain lowercase identifiers bare and quotes everything else.
func ident(name string) string {
	if name == "" || reserved[name] {
		return QuoteIdent(name)
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r == '_':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return QuoteIdent(name)
		}
	}
	return name
}

// Inline substitutes each ? placeholder outside quoted identifiers with the
// SQL literal for the matching argument. The result is for display only.
func Inline(sql string, args []interface{}) string {
	var b strings.Builder
	inIdent := false
	next := 0
	for _, r := range sql {
		switch {
		case r == '"':
			inIdent = !inIdent
			b.WriteRune(r)
		case r == '?' && !inIdent && next < len(args):
			b.WriteString(Literal(args[next]))
			next++
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Literal renders a value as a SQL literal, doubling single quotes in strings.
func Literal(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'"
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return "CAST('" + strconv.FormatFloat(val, 'g', -1, 64) + "' AS DOUBLE)"
		}
		return strconv.FormatFloat(val, 'g', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case time.Time:
		return "TIMESTAMP '" + val.Format("2006-01-02 15:04:05") + "'"
	default:
		return Literal(fmt.Sprintf("%v", val))
	}
}
