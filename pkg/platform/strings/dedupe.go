// Package strings normalizes the string lists read from configuration.
package strings

import (
	"strings"
)

// Normalize trims each value, drops blanks and removes repeats while
// keeping first-seen order. A nil or empty input is returned unchanged.
//
//	Normalize([]string{" Draft", "Attachment", "Draft", ""})
//	// []string{"Draft", "Attachment"}
func Normalize(values []string) []string {
	return normalize(values, func(s string) string { return s })
}

// NormalizeFold is Normalize with case-insensitive repeat detection. The
// spelling of the first occurrence wins.
func NormalizeFold(values []string) []string {
	return normalize(values, strings.ToLower)
}

func normalize(values []string, key func(string) string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		k := key(v)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}
