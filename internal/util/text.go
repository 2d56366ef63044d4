package util

import (
	"strings"
)

// MaxTags is the largest number of tags kept on a project
const MaxTags = 10

// NormalizeTags lowercases tags, strips leading '#', drops empties and duplicates
// and keeps at most MaxTags of them in their original order
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tag), "#")))
		if tag == "" || len(tag) > 40 || seen[tag] {
			continue
		}
		seen[tag] = true
		result = append(result, tag)
		if len(result) == MaxTags {
			break
		}
	}
	return result
}

// Truncate shortens s to at most n runes
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
