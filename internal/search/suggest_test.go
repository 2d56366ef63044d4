package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTooShort(t *testing.T) {
	assert.True(t, TooShort(""))
	assert.True(t, TooShort(" a "))
	assert.True(t, TooShort("é"))
	assert.False(t, TooShort("ab"))
	assert.False(t, TooShort("éé"))
}

func TestRankSuggestions(t *testing.T) {
	candidates := []Suggestion{
		{Kind: KindProject, Text: "Urban Night", ID: "p1"},
		{Kind: KindProject, Text: "Night Market", ID: "p2"},
		{Kind: KindCategory, Text: "Photography", ID: "photography"},
		{Kind: KindProfile, Text: "nightowl", ID: "nightowl"},
		{Kind: KindProject, Text: "night market", ID: "p3"},
		{Kind: KindProject, Text: "Daylight", ID: "p4"},
	}

	got := RankSuggestions("NIGHT", candidates, 10)

	texts := make([]string, len(got))
	for i, s := range got {
		texts[i] = s.Text
	}
	// prefix matches first, duplicates of the same kind collapse to the first seen
	assert.Equal(t, []string{"Night Market", "nightowl", "Urban Night"}, texts)
	assert.Equal(t, "p2", got[0].ID)
}

func TestRankSuggestionsKeepsSameTextAcrossKinds(t *testing.T) {
	got := RankSuggestions("motion", []Suggestion{
		{Kind: KindProject, Text: "Motion", ID: "p1"},
		{Kind: KindCategory, Text: "Motion", ID: "motion"},
	}, 5)

	assert.Len(t, got, 2)
	assert.Equal(t, KindCategory, got[0].Kind)
}

func TestRankSuggestionsLimit(t *testing.T) {
	candidates := []Suggestion{
		{Kind: KindProject, Text: "aa1"},
		{Kind: KindProject, Text: "aa2"},
		{Kind: KindProject, Text: "aa3"},
	}
	assert.Len(t, RankSuggestions("aa", candidates, 2), 2)
	assert.Empty(t, RankSuggestions("aa", candidates, 0))
	assert.Empty(t, RankSuggestions("  ", candidates, 5))
	assert.NotNil(t, RankSuggestions("zz", candidates, 5))
}
