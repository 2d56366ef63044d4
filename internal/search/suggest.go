package search

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Suggestion kinds
const (
	KindProject  = "project"
	KindCategory = "category"
	KindProfile  = "profile"
)

// Suggestion limits
const (
	MinSuggestLength    = 2
	DefaultSuggestLimit = 8
	MaxSuggestLimit     = 20
)

// Suggestion is one search-as-you-type entry. ID is the project id, the
// category slug or the username, depending on Kind.
type Suggestion struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
	ID   string `json:"id"`
}

// TooShort reports whether a query is below the suggestion threshold
func TooShort(query string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(query)) < MinSuggestLength
}

// RankSuggestions keeps candidates that contain the query (case-insensitive),
// removes duplicates of the same kind and text, and orders prefix matches
// before substring matches, then alphabetically.
func RankSuggestions(query string, candidates []Suggestion, limit int) []Suggestion {
	needle := strings.ToLower(strings.TrimSpace(query))
	out := []Suggestion{}
	if needle == "" || limit <= 0 {
		return out
	}

	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		lower := strings.ToLower(c.Text)
		if !strings.Contains(lower, needle) {
			continue
		}
		key := c.Kind + "\x00" + lower
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Text), strings.ToLower(out[j].Text)
		ap, bp := strings.HasPrefix(a, needle), strings.HasPrefix(b, needle)
		if ap != bp {
			return ap
		}
		if a != b {
			return a < b
		}
		return out[i].Kind < out[j].Kind
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
