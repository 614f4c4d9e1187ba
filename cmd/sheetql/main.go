package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/vegasq/sheetql/internal/compress"
	"github.com/vegasq/sheetql/internal/config"
	"github.com/vegasq/sheetql/output"
	"github.com/vegasq/sheetql/preset"
	"github.com/vegasq/sheetql/query"
	"github.com/vegasq/sheetql/reader"
	"github.com/vegasq/sheetql/session"
)

// stringList collects a repeatable flag
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ", ")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

var (
	sheetFlag      = flag.String("sheet", "", "Sheet to load (default: first sheet)")
	presetFlag     = flag.String("preset", "", "Run a preset query by name (see -presets)")
	metricFlag     = flag.String("metric", "rows", "Custom query metric: rows, count")
	limitFlag      = flag.Int("limit", 0, "Row limit for custom queries, 1-100000 (default 1000)")
	formatFlag     = flag.String("f", "table", "Output format: table, csv, json, jsonl")
	outFlag        = flag.String("o", "", "Export the result as CSV to this file (.gz or .xz compresses)")
	configFlag     = flag.String("config", "", "YAML config file")
	listSheetsFlag = flag.Bool("list-sheets", false, "List the sheets in the file")
	schemaFlag     = flag.Bool("schema", false, "Show the columns of the sheet")
	previewFlag    = flag.Int("preview", 0, "Show the first N rows of the sheet")
	presetsFlag    = flag.Bool("presets", false, "List the presets for the sheet")
	dryRunFlag     = flag.Bool("dry-run", false, "Print the generated SQL without running it")
	verboseFlag    = flag.Bool("v", false, "Verbose logging")

	filterFlags  stringList
	groupByFlags stringList
	mapFlags     stringList
)

func init() {
	registerListFlags()
}

func registerListFlags() {
	flag.Var(&filterFlags, "filter", "Filter as column|operator|value (repeatable, up to 10)")
	flag.Var(&groupByFlags, "group-by", "Group by column (repeatable)")
	flag.Var(&mapFlags, "map", "Bind a preset role to a column as role=column (repeatable)")
}

// options is everything the command line selects
type options struct {
	file       string
	sheet      string
	preset     string
	filters    []string
	groupBy    []string
	mappings   []string
	metric     string
	limit      int
	format     string
	out        string
	configPath string
	listSheets bool
	schema     bool
	preview    int
	presets    bool
	dryRun     bool
	verbose    bool
}

func optionsFromFlags() options {
	opts := options{
		sheet:      *sheetFlag,
		preset:     *presetFlag,
		filters:    filterFlags,
		groupBy:    groupByFlags,
		mappings:   mapFlags,
		metric:     *metricFlag,
		limit:      *limitFlag,
		format:     *formatFlag,
		out:        *outFlag,
		configPath: *configFlag,
		listSheets: *listSheetsFlag,
		schema:     *schemaFlag,
		preview:    *previewFlag,
		presets:    *presetsFlag,
		dryRun:     *dryRunFlag,
		verbose:    *verboseFlag,
	}
	if flag.NArg() >= 1 {
		opts.file = flag.Arg(0)
	}
	return opts
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <workbook.xlsx|file.parquet>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Load one sheet into an in-memory table named data and query it.\n\n")
		fmt.Fprintf(os.Stderr, "IMPORTANT: All flags must come BEFORE file arguments.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nOperators: %s\n", operatorNames())
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -list-sheets report.xlsx\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -sheet \"Failure Details\" -presets report.xlsx\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -sheet \"Failure Details\" -preset \"Top 10 failing domains\" report.xlsx\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -filter \"SMTP Code|>=|500\" -group-by \"To Domain\" -metric count report.xlsx\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -filter \"Status|in|bounced, deferred\" -o result.csv.gz report.xlsx\n", os.Args[0])
	}

	flag.Parse()

	opts := optionsFromFlags()
	if opts.file == "" {
		fmt.Fprintf(os.Stderr, "Error: missing workbook file argument\n\n")
		flag.Usage()
		os.Exit(1)
	}

	if err := run(context.Background(), opts, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var qe *session.QueryError
		if errors.As(err, &qe) {
			fmt.Fprintf(os.Stderr, "\nSQL:\n%s\n", qe.Text)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	if err := validateOptions(opts); err != nil {
		return err
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.limit != 0 {
		if err := query.ValidateLimit(opts.limit, cfg.MaxLimit); err != nil {
			return fmt.Errorf("-limit: %w", err)
		}
	}
	if opts.preview > 0 {
		cfg.PreviewRows = opts.preview
	}

	if opts.listSheets {
		return listSheets(opts.file, stdout)
	}

	overrides, err := parseMappings(opts.mappings)
	if err != nil {
		return err
	}

	s, err := session.Open(ctx, opts.file, opts.sheet, session.Options{
		Logger:    logger,
		Config:    &cfg,
		Overrides: overrides,
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("file '%s' not found", opts.file)
		}
		return err
	}
	defer s.Close()

	if note := s.Note(); note != "" {
		fmt.Fprintf(stderr, "# %s\n", note)
	}

	formatter, err := output.New(opts.format, stdout)
	if err != nil {
		return err
	}

	switch {
	case opts.schema:
		return showSchema(s, formatter)
	case opts.presets:
		return listPresets(s, stdout)
	case opts.preview > 0:
		return formatter.Format(s.Table.ColumnNames(), s.Preview())
	}

	stmt, err := compose(s, opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(stderr, "%s\n\n", stmt.Text)
	if opts.dryRun {
		return nil
	}

	out, err := s.Run(ctx, stmt)
	if err != nil {
		return err
	}
	fmt.Fprintf(stderr, "Returned %d rows\n", out.RowCount())

	if err := formatter.Format(out.Result.Columns, out.Result.Rows); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if opts.out != "" {
		if err := export(opts.out, out, cfg.SanitizeCSV); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "# Exported %d rows to %s\n", out.RowCount(), opts.out)
	}
	return nil
}

func validateOptions(opts options) error {
	if opts.preview < 0 {
		return fmt.Errorf("-preview must be non-negative, got %d", opts.preview)
	}
	if opts.preset != "" && (len(opts.filters) > 0 || len(opts.groupBy) > 0) {
		return fmt.Errorf("-preset cannot be combined with -filter or -group-by")
	}
	if len(opts.filters) > query.MaxFilters {
		return fmt.Errorf("%w: %d given", query.ErrTooManyFilters, len(opts.filters))
	}
	return nil
}

func compose(s *session.Session, opts options) (query.Statement, error) {
	if opts.preset != "" {
		return s.ComposePreset(opts.preset)
	}

	filters, err := parseFilters(opts.filters)
	if err != nil {
		return query.Statement{}, err
	}
	metric, err := query.ParseMetric(opts.metric)
	if err != nil {
		return query.Statement{}, err
	}
	return s.ComposeCustom(session.Custom{
		Filters:    filters,
		GroupBy:    opts.groupBy,
		Projection: metric,
		Limit:      opts.limit,
	})
}

// parseFilters reads column|operator|value triples. The value may contain
// further | characters.
func parseFilters(args []string) ([]query.Filter, error) {
	filters := make([]query.Filter, 0, len(args))
	for i, arg := range args {
		parts := strings.SplitN(arg, "|", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("filter #%d: expected column|operator|value, got %q", i+1, arg)
		}
		op, err := query.ParseOperator(parts[1])
		if err != nil {
			return nil, fmt.Errorf("filter #%d: %w", i+1, err)
		}
		filters = append(filters, query.Filter{Column: parts[0], Op: op, Value: parts[2]})
	}
	return filters, nil
}

func parseMappings(args []string) (map[preset.Role]string, error) {
	if len(args) == 0 {
		return nil, nil
	}
	overrides := make(map[preset.Role]string, len(args))
	for _, arg := range args {
		role, col, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(role) == "" || col == "" {
			return nil, fmt.Errorf("-map: expected role=column, got %q", arg)
		}
		overrides[preset.Role(strings.TrimSpace(role))] = col
	}
	return overrides, nil
}

func listSheets(path string, w io.Writer) error {
	src, err := reader.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	for _, name := range src.SheetNames() {
		kind := preset.KindOf(name)
		if kind == preset.Generic {
			fmt.Fprintln(w, name)
			continue
		}
		fmt.Fprintf(w, "%s\t(%s)\n", name, kind)
	}
	return nil
}

func showSchema(s *session.Session, formatter output.Formatter) error {
	infos := s.Schema()
	rows := make([][]interface{}, len(infos))
	for i, info := range infos {
		rows[i] = []interface{}{info.Name, info.Type, info.NonNull, info.Distinct, info.Sample}
	}
	return formatter.Format([]string{"name", "type", "non_null", "distinct", "sample"}, rows)
}

func listPresets(s *session.Session, w io.Writer) error {
	presets := s.Presets()
	if len(presets) == 0 {
		fmt.Fprintf(w, "No presets for sheet %q\n", s.Sheet)
		return nil
	}
	for _, p := range presets {
		fmt.Fprintf(w, "%s (limit %d)\n", p.Name, p.Limit)
		for _, b := range p.Bindings(s.Mapping) {
			suffix := ""
			if b.Fallback {
				suffix = fmt.Sprintf("  [%q missing, using first column]", b.Preferred)
			}
			fmt.Fprintf(w, "    %s -> %s%s\n", b.Role, b.Column, suffix)
		}
	}
	return nil
}

// export writes the result as CSV, compressed when the path asks for it.
// A failed export leaves no file behind.
func export(path string, out *session.Outcome, sanitize bool) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close export file: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	w, err := compress.NewWriter(f, path)
	if err != nil {
		return err
	}

	csvFormatter := output.NewCSVFormatter(w)
	csvFormatter.Sanitize = sanitize
	if err := csvFormatter.Format(out.Result.Columns, out.Result.Rows); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write export: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

func operatorNames() string {
	names := make([]string, len(query.Operators))
	for i, op := range query.Operators {
		names[i] = op.String()
	}
	return strings.Join(names, ", ")
}
