// Package engine executes assembled statements with DuckDB.
//
// An Engine wraps one in-memory database. Register creates a typed table
// from a reader.Table (text columns as VARCHAR, numbers as DOUBLE, integers
// as BIGINT, booleans as BOOLEAN, timestamps as TIMESTAMP) and Query runs a
// query.Statement with its bound arguments, returning every row. Values come
// back as DuckDB's driver types: string, float64, int64, bool, time.Time or
// nil.
package engine
