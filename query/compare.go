package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Compare emits a typed comparison of column against value.
//
// When value parses as a float the column is cast to DOUBLE and compared
// with the parsed number; otherwise the column is cast to VARCHAR and
// compared with the raw string. A failed parse is not an error.
func Compare(column string, op Operator, value string) (Fragment, error) {
	if !op.IsComparison() {
		return Fragment{}, fmt.Errorf("%w: %s is not a comparison", ErrUnknownOperator, op)
	}

	col := QuoteIdent(column)
	if n, ok := parseNumber(value); ok {
		return Fragment{
			SQL:     fmt.Sprintf("CAST(%s AS DOUBLE) %s ?", col, op),
			Args:    []interface{}{n},
			Numeric: true,
		}, nil
	}

	return Fragment{
		SQL:  fmt.Sprintf("CAST(%s AS VARCHAR) %s ?", col, op),
		Args: []interface{}{value},
	}, nil
}

// parseNumber accepts surrounding whitespace like a user typing " 5 ".
func parseNumber(s string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
