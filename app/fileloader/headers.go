package fileloader

import (
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

// NormalizeHeaders trims header names and replaces empty ones with
// Unnamed_A, Unnamed_B, ... so every column stays addressable from configuration.
//
// Example:
//
//	Input:  ["name", "", "age", "  ", "city"]
//	Output: ["name", "Unnamed_A", "age", "Unnamed_B", "city"]
func NormalizeHeaders(header []string) []string {
	normalized := make([]string, len(header))
	emptyCount := 0

	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			normalized[i] = "Unnamed_" + excelColumnName(emptyCount)
			emptyCount++
		} else {
			normalized[i] = h
		}
	}

	return normalized
}

// unionHeaders appends the names of next that are not yet in headers
func unionHeaders(headers []string, seen map[string]bool, next []string) []string {
	for _, h := range next {
		if !seen[h] {
			seen[h] = true
			headers = append(headers, h)
		}
	}
	return headers
}
