package reader

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// timestampLayout is how date cells converted from Excel serials are written.
const timestampLayout = "2006-01-02 15:04:05"

var dateLayouts = []string{
	timestampLayout,
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"01/02/2006",
	"01/02/2006 15:04",
	"01/02/2006 15:04:05",
	"1/2/2006",
	"1/2/2006 15:04",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// InferType picks the narrowest type every non-blank value converts to:
// integer, then number, then timestamp. A column of blanks is text.
func InferType(values []string) ColumnType {
	integral, numeric, dated, seen := true, true, true, false
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		seen = true
		if numeric {
			if _, ok := parseNumber(v); !ok {
				numeric = false
			}
		}
		if integral {
			if _, ok := parseInteger(v); !ok {
				integral = false
			}
		}
		if dated {
			if _, ok := parseTimestamp(v); !ok {
				dated = false
			}
		}
		if !numeric && !dated {
			return TypeText
		}
	}

	switch {
	case !seen:
		return TypeText
	case integral:
		return TypeInteger
	case numeric:
		return TypeNumber
	case dated:
		return TypeTimestamp
	default:
		return TypeText
	}
}

// Coerce converts a cell to the Go value stored for typ. Blank cells are nil.
func Coerce(v string, typ ColumnType) interface{} {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	switch typ {
	case TypeInteger:
		if n, ok := parseInteger(trimmed); ok {
			return n
		}
	case TypeNumber:
		if n, ok := parseNumber(trimmed); ok {
			return n
		}
	case TypeTimestamp:
		if ts, ok := parseTimestamp(trimmed); ok {
			return ts
		}
	}
	return v
}

func parseNumber(s string) (float64, bool) {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseInteger accepts whole numbers, including whole values written in
// float form such as "550.0", that fit in an int64.
func parseInteger(s string) (int64, bool) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, ok := parseNumber(s)
	if !ok || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
