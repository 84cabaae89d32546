package resource

import (
	"slices"
	"strings"
)

// ParseTags splits free text on commas and semicolons and normalizes the result.
func ParseTags(raw string) []string {
	return NormalizeTags(strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';'
	}))
}

// NormalizeTags trims every tag, drops empty ones and duplicates, and sorts
// the rest so equal sets compare equal.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
