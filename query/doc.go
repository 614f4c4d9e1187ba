// Package query compiles user selected filters into DuckDB SQL.
//
// It covers the three steps between a UI selection and an executable
// statement:
//   - Compare emits a typed comparison, numeric when the value parses as a
//     float and textual otherwise
//   - Compile turns an ordered list of filters into an AND predicate,
//     dropping filters with empty values
//   - Assembler renders a Plan (projection, predicate, grouping, ordering,
//     limit) in a stable layout
//
// # Basic Usage
//
//	schema := query.NewSchema([]string{"Status", "Name"})
//	pred, err := query.Compile(schema, []query.Filter{
//	    {Column: "Status", Op: query.OpEqual, Value: "5"},
//	    {Column: "Name", Op: query.OpIn, Value: "x, y"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	stmt, err := query.NewAssembler(schema).Custom(query.RowCount, pred, []string{"Name"}, 1000)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(stmt.Text)
//
// # Literals
//
// Values never become part of the SQL string. Each literal is a ?
// placeholder bound through Statement.Args, so a quote character in a value
// cannot change the query structure. Statement.Text inlines the literals,
// with single quotes doubled, for display next to the results.
//
// LIKE metacharacters are not escaped: a value of "50%" passed to contains
// matches "50", "500" and "50 percent" alike.
//
// # Empty Values
//
// A filter whose value is empty or whitespace is skipped. Compiling only
// empty filters gives an empty Predicate, which the assembler renders with
// no WHERE clause. A membership list with no non-empty items compiles to
// FALSE and matches nothing.
package query
