// Package session ties a loaded sheet to a query engine.
//
// A Session holds one immutable table registered as "data" in a private
// in-memory DuckDB database, the role mapping for the sheet's kind, and the
// assembler used to build statements. Preset and custom queries are
// composed into a query.Statement, which can be shown before it runs; a
// failed execution is a *QueryError carrying the SQL text.
//
//	s, err := session.Open(ctx, "report.xlsx", "Failure Details", session.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	out, err := s.RunPreset(ctx, "Top 10 failing domains")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(out.Statement.Text)
//	fmt.Printf("Returned %d rows\n", out.RowCount())
package session
