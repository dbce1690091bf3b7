// Package strings provides the string normalization shared by the draft
// schema, the catalog and the registry.
package strings

import (
	"strings"
)

// DedupeAndTrim removes duplicates and empty strings from a slice,
// trimming whitespace from each element. Order is preserved.
//
//	DedupeAndTrim([]string{"  a.jpg ", "b.jpg", "a.jpg", "", "  "})
//	// []string{"a.jpg", "b.jpg"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}

// Optional trims s and returns nil when nothing is left, so that "" and
// "   " both mean "absent".
func Optional(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// NormalizeOptional re-applies Optional to an existing optional value.
func NormalizeOptional(p *string) *string {
	if p == nil {
		return nil
	}
	return Optional(*p)
}

// Value dereferences p, returning "" for nil.
func Value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
