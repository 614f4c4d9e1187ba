package query

import (
	"fmt"
	"strings"
)

// matchNothing is emitted for a membership test whose list is empty after trimming.
const matchNothing = "FALSE"

// Compile converts filters into a conjunctive predicate.
//
// Filters with empty values are dropped before any other check. Surviving
// fragments keep input order. Pattern operators pass % and _ through
// unchanged, so they act as wildcards inside the value.
func Compile(schema Schema, filters []Filter) (Predicate, error) {
	if len(filters) > MaxFilters {
		return Predicate{}, fmt.Errorf("%w: %d (max %d)", ErrTooManyFilters, len(filters), MaxFilters)
	}

	var pred Predicate
	for i, f := range filters {
		if f.Empty() {
			continue
		}
		if err := schema.Check(f.Column); err != nil {
			return Predicate{}, fmt.Errorf("filter #%d: %w", i+1, err)
		}

		frag, err := compileFilter(f)
		if err != nil {
			return Predicate{}, fmt.Errorf("filter #%d: %w", i+1, err)
		}
		pred.Fragments = append(pred.Fragments, frag)
	}

	return pred, nil
}

func compileFilter(f Filter) (Fragment, error) {
	if f.Op.IsComparison() {
		return Compare(f.Column, f.Op, f.Value)
	}

	text := "CAST(" + QuoteIdent(f.Column) + " AS VARCHAR)"
	switch f.Op {
	case OpContains:
		return likeFragment(text, "%"+f.Value+"%"), nil
	case OpStartsWith:
		return likeFragment(text, f.Value+"%"), nil
	case OpEndsWith:
		return likeFragment(text, "%"+f.Value), nil
	case OpIn:
		return inFragment(text, f.Value), nil
	default:
		return Fragment{}, fmt.Errorf("%w: %s", ErrUnknownOperator, f.Op)
	}
}

func likeFragment(text, pattern string) Fragment {
	return Fragment{
		SQL:  text + " ILIKE ?",
		Args: []interface{}{pattern},
	}
}

func inFragment(text, value string) Fragment {
	items := SplitList(value)
	if len(items) == 0 {
		return Fragment{SQL: matchNothing}
	}

	placeholders := make([]string, len(items))
	args := make([]interface{}, len(items))
	for i, item := range items {
		placeholders[i] = "?"
		args[i] = item
	}

	return Fragment{
		SQL:  fmt.Sprintf("%s IN (%s)", text, strings.Join(placeholders, ", ")),
		Args: args,
	}
}

// SplitList splits a comma separated value, trimming items and dropping empty ones.
func SplitList(value string) []string {
	var items []string
	for _, part := range strings.Split(value, ",") {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}
