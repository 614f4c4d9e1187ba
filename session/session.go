package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/vegasq/sheetql/engine"
	"github.com/vegasq/sheetql/internal/config"
	"github.com/vegasq/sheetql/preset"
	"github.com/vegasq/sheetql/query"
	"github.com/vegasq/sheetql/reader"
)

// QueryError is returned when a statement fails to execute. Text is the
// displayed SQL so the caller can show what was run.
type QueryError struct {
	Text string
	Err  error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %v", e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Options configure a session.
type Options struct {
	// Logger defaults to slog.Default
	Logger *slog.Logger

	// Config supplies limits and role defaults; the zero value means config.Default
	Config *config.Config

	// Overrides bind roles to columns explicitly
	Overrides map[preset.Role]string
}

// Session is one loaded sheet registered as the table "data".
type Session struct {
	ID      uuid.UUID
	Sheet   string
	Kind    preset.SheetKind
	Table   *reader.Table
	Mapping preset.Mapping

	cfg       config.Config
	engine    *engine.Engine
	assembler *query.Assembler
	logger    *slog.Logger
}

// Outcome is an executed statement and its rows.
type Outcome struct {
	Statement query.Statement
	Result    *engine.Result
}

// RowCount returns the number of rows returned.
func (o *Outcome) RowCount() int {
	if o.Result == nil {
		return 0
	}
	return o.Result.Len()
}

// Open reads one sheet of the file at path and loads it. An empty sheet
// name selects the first sheet.
func Open(ctx context.Context, path, sheet string, opts Options) (*Session, error) {
	src, err := reader.Open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	if sheet == "" {
		names := src.SheetNames()
		if len(names) == 0 {
			return nil, reader.ErrNoSheets
		}
		sheet = names[0]
	}

	table, err := src.ReadSheet(sheet)
	if err != nil {
		return nil, err
	}
	return Load(ctx, sheet, table, opts)
}

// Load registers table in a fresh engine and resolves the role mapping for
// the sheet's kind.
func Load(ctx context.Context, sheet string, table *reader.Table, opts Options) (*Session, error) {
	cfg := config.Default()
	if opts.Config != nil {
		cfg = *opts.Config
	}

	s := &Session{
		ID:    uuid.New(),
		Sheet: sheet,
		Kind:  preset.KindOf(sheet),
		Table: table,
		cfg:   cfg,
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s.logger = logger.With("session", s.ID.String(), "sheet", sheet)

	if len(table.Columns) == 0 {
		return nil, fmt.Errorf("sheet %q: %w", sheet, reader.ErrNoColumns)
	}

	mapping, err := preset.Resolve(table.ColumnNames(), cfg.RoleDefaults(s.Kind), opts.Overrides)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet, err)
	}
	s.Mapping = mapping

	eng, err := engine.Open(ctx, s.logger)
	if err != nil {
		return nil, err
	}
	if err := eng.Register(ctx, query.TableName, table); err != nil {
		_ = eng.Close()
		return nil, err
	}
	s.engine = eng

	s.assembler = query.NewAssembler(query.NewSchema(table.ColumnNames()))
	s.assembler.MaxLimit = cfg.MaxLimit

	s.logger.Info("sheet loaded", "kind", s.Kind.String(), "columns", len(table.Columns), "rows", len(table.Rows))
	return s, nil
}

// Close releases the engine.
func (s *Session) Close() error {
	if s.engine == nil {
		return nil
	}
	err := s.engine.Close()
	s.engine = nil
	return err
}

// Preview returns the first rows of the sheet as loaded.
func (s *Session) Preview() [][]interface{} {
	return s.Table.Head(s.cfg.PreviewRows)
}

// Schema describes each column of the sheet.
func (s *Session) Schema() []reader.SchemaInfo {
	return reader.ExtractSchemaInfo(s.Table)
}

// Presets lists the canned queries for the sheet's kind.
func (s *Session) Presets() []preset.Preset {
	return preset.ForKind(s.Kind)
}

// Note returns guidance for the sheet's kind, if any.
func (s *Session) Note() string {
	return s.Kind.Note()
}

// ComposePreset builds the statement for a named preset. Roles that fell
// back to the first column are logged as warnings.
func (s *Session) ComposePreset(name string) (query.Statement, error) {
	p, err := preset.Lookup(s.Kind, name)
	if err != nil {
		return query.Statement{}, err
	}

	for _, b := range p.Bindings(s.Mapping) {
		if b.Fallback {
			s.logger.Warn("preferred column missing, using first column",
				"preset", p.Name, "role", string(b.Role), "preferred", b.Preferred, "column", b.Column)
		}
	}

	plan, err := p.Plan(s.Mapping)
	if err != nil {
		return query.Statement{}, err
	}
	return s.assembler.Assemble(plan)
}

// Custom is an ad-hoc query built from filters.
type Custom struct {
	Filters    []query.Filter
	GroupBy    []string
	Projection query.Projection // AllColumns or RowCount
	Limit      int              // 0 uses the configured default
}

// ComposeCustom compiles filters and assembles the custom query.
func (s *Session) ComposeCustom(c Custom) (query.Statement, error) {
	if c.Projection != query.AllColumns && c.Projection != query.RowCount {
		return query.Statement{}, fmt.Errorf("custom queries project rows or count, got %s", c.Projection)
	}

	pred, err := query.Compile(s.assembler.Schema, c.Filters)
	if err != nil {
		return query.Statement{}, err
	}

	limit := c.Limit
	if limit == 0 {
		limit = s.cfg.DefaultLimit
	}

	plan := query.Plan{Projection: c.Projection, Predicate: pred, Limit: limit}
	for _, col := range c.GroupBy {
		plan.GroupBy = append(plan.GroupBy, query.Col(col))
	}
	if plan.Ambiguous() {
		s.logger.Warn("selecting all columns with GROUP BY is rejected by the engine unless every column is grouped",
			"group_by", c.GroupBy)
	}

	return s.assembler.Assemble(plan)
}

// Run executes stmt. Execution errors are returned as *QueryError and leave
// the session usable.
func (s *Session) Run(ctx context.Context, stmt query.Statement) (*Outcome, error) {
	if s.engine == nil {
		return nil, &QueryError{Text: stmt.Text, Err: engine.ErrClosed}
	}

	res, err := s.engine.Query(ctx, stmt)
	if err != nil {
		s.logger.Debug("query failed", "sql", stmt.Text, "error", err)
		return nil, &QueryError{Text: stmt.Text, Err: err}
	}

	s.logger.Debug("query done", "rows", res.Len())
	return &Outcome{Statement: stmt, Result: res}, nil
}

// RunPreset composes and runs a preset.
func (s *Session) RunPreset(ctx context.Context, name string) (*Outcome, error) {
	stmt, err := s.ComposePreset(name)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, stmt)
}

// RunCustom composes and runs a custom query.
func (s *Session) RunCustom(ctx context.Context, c Custom) (*Outcome, error) {
	stmt, err := s.ComposeCustom(c)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, stmt)
}

// IsQueryError reports whether err came from executing a statement rather
// than from composing it.
func IsQueryError(err error) bool {
	var qe *QueryError
	return errors.As(err, &qe)
}
