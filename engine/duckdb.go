package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/vegasq/sheetql/query"
	"github.com/vegasq/sheetql/reader"
)

// ErrClosed is returned by calls on a closed engine.
var ErrClosed = errors.New("engine is closed")

// Engine runs statements against tables held in an in-memory DuckDB database.
type Engine struct {
	db     *sql.DB
	logger *slog.Logger
}

// Result is the outcome of one query.
type Result struct {
	Columns []string
	Rows    [][]interface{}
}

// Len returns the number of rows.
func (r *Result) Len() int {
	return len(r.Rows)
}

// Open starts an empty in-memory database. A nil logger uses slog.Default.
func Open(ctx context.Context, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	// An in-memory database lives in its connection
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	return &Engine{db: db, logger: logger}, nil
}

// Close releases the database.
func (e *Engine) Close() error {
	if e.db == nil {
		return nil
	}
	err := e.db.Close()
	e.db = nil
	return err
}

// Register loads t into a table called name, replacing any previous table of
// that name.
func (e *Engine) Register(ctx context.Context, name string, t *reader.Table) error {
	if e.db == nil {
		return ErrClosed
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("register %s: %w", name, reader.ErrNoColumns)
	}

	table := query.QuoteIdent(name)
	defs := make([]string, len(t.Columns))
	marks := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		defs[i] = query.QuoteIdent(c.Name) + " " + sqlType(c.Type)
		marks[i] = "?"
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return fmt.Errorf("register %s: drop: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, "CREATE TABLE "+table+" ("+strings.Join(defs, ", ")+")"); err != nil {
		return fmt.Errorf("register %s: create: %w", name, err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO "+table+" VALUES ("+strings.Join(marks, ", ")+")")
	if err != nil {
		return fmt.Errorf("register %s: prepare: %w", name, err)
	}
	defer stmt.Close()

	args := make([]interface{}, len(t.Columns))
	for n, row := range t.Rows {
		for i, c := range t.Columns {
			args[i] = bindValue(row[i], c.Type)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("register %s: row %d: %w", name, n+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}

	e.logger.Debug("registered table", "table", name, "columns", len(t.Columns), "rows", len(t.Rows))
	return nil
}

// Query executes stmt with its bound arguments and collects every row.
func (e *Engine) Query(ctx context.Context, stmt query.Statement) (*Result, error) {
	if e.db == nil {
		return nil, ErrClosed
	}

	e.logger.Debug("executing query", "sql", stmt.SQL, "args", len(stmt.Args))

	rows, err := e.db.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("query: columns: %w", err)
	}

	result := &Result{Columns: cols}
	for rows.Next() {
		raw := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("query: scan: %w", err)
		}
		for i, v := range raw {
			if b, ok := v.([]byte); ok {
				raw[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	return result, nil
}

func sqlType(t reader.ColumnType) string {
	switch t {
	case reader.TypeNumber:
		return "DOUBLE"
	case reader.TypeInteger:
		return "BIGINT"
	case reader.TypeBoolean:
		return "BOOLEAN"
	case reader.TypeTimestamp:
		return "TIMESTAMP"
	default:
		return "VARCHAR"
	}
}

// bindValue makes text columns hold strings whatever the source value was.
func bindValue(v interface{}, t reader.ColumnType) interface{} {
	if v == nil || t != reader.TypeText {
		return v
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
