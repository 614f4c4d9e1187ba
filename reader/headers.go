package reader

import (
	"strconv"
	"strings"
)

// excelColumnName converts a 0-based index to Excel-style column name.
// Examples: 0 -> A, 1 -> B, 25 -> Z, 26 -> AA, 27 -> AB, 701 -> ZZ, 702 -> AAA
func excelColumnName(index int) string {
	result := ""
	index++

	for index > 0 {
		index--
		result = string(rune('A'+index%26)) + result
		index /= 26
	}

	return result
}

// NormalizeHeaders replaces empty or whitespace-only headers with
// Unnamed_A, Unnamed_B, ... in order of appearance. Other headers are
// trimmed of surrounding whitespace.
//
// Example:
//
//	Input:  ["name", "", "age", "  ", "city"]
//	Output: ["name", "Unnamed_A", "age", "Unnamed_B", "city"]
func NormalizeHeaders(header []string) []string {
	normalized := make([]string, len(header))
	emptyCount := 0

	for i, h := range header {
		if strings.TrimSpace(h) == "" {
			normalized[i] = "Unnamed_" + excelColumnName(emptyCount)
			emptyCount++
		} else {
			normalized[i] = strings.TrimSpace(h)
		}
	}

	return normalized
}

// DedupeHeaders suffixes repeated names with .1, .2, ... so every column
// can be referenced unambiguously.
func DedupeHeaders(header []string) []string {
	seen := make(map[string]bool, len(header))
	out := make([]string, len(header))
	for i, h := range header {
		name := h
		for n := 1; seen[name]; n++ {
			name = h + "." + strconv.Itoa(n)
		}
		seen[name] = true
		out[i] = name
	}
	return out
}
