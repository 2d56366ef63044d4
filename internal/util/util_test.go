package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLimitOffset(t *testing.T) {
	tests := []struct {
		name           string
		limit, offset  string
		expectedLimit  int
		expectedOffset int
	}{
		{"defaults", "", "", 20, 0},
		{"explicit", "10", "30", 10, 30},
		{"clamped limit", "500", "0", 100, 0},
		{"negative values", "-5", "-1", 20, 0},
		{"garbage", "abc", "xyz", 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset := ParseLimitOffset(tt.limit, tt.offset, 20, 100)
			assert.Equal(t, tt.expectedLimit, limit)
			assert.Equal(t, tt.expectedOffset, offset)
		})
	}
}

func TestParseBool(t *testing.T) {
	assert.True(t, ParseBool("true"))
	assert.True(t, ParseBool(" 1 "))
	assert.True(t, ParseBool("YES"))
	assert.False(t, ParseBool(""))
	assert.False(t, ParseBool("nope"))
}

func TestParseCSV(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, ParseCSV(" a, ,b,"))
	assert.Equal(t, []string{}, ParseCSV(""))
}

func TestNormalizeTags(t *testing.T) {
	tags := NormalizeTags([]string{"#Branding", "branding", "  Logo ", "", "#"})
	assert.Equal(t, []string{"branding", "logo"}, tags)

	many := make([]string, 0, 15)
	for i := 0; i < 15; i++ {
		many = append(many, string(rune('a'+i)))
	}
	assert.Len(t, NormalizeTags(many), MaxTags)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héll", Truncate("héllo", 4))
	assert.Equal(t, "hi", Truncate("hi", 4))
}

func TestValidateFilename(t *testing.T) {
	assert.NoError(t, ValidateFilename("cover.png"))
	assert.Error(t, ValidateFilename(""))
	assert.Error(t, ValidateFilename("../etc/passwd"))
}

func TestValidateWebsite(t *testing.T) {
	assert.NoError(t, ValidateWebsite(""))
	assert.NoError(t, ValidateWebsite("https://nexus.example"))
	assert.Error(t, ValidateWebsite("ftp://nexus.example"))
}
