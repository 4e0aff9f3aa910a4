package dialog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseYear(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want int
		ok   bool
	}{
		{"1999", 1999, true},
		{" 2030 ", 2030, true},
		{"1900", 1900, true},
		{"1899", 0, false},
		{"2031", 0, false},
		{"две тысячи", 0, false},
		{"", 0, false},
	} {
		got, ok := ParseYear(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestParseRating(t *testing.T) {
	got, ok := ParseRating("7,5")
	assert.True(t, ok, "comma separator must be accepted")
	assert.InDelta(t, 7.5, got, 0.001)

	_, ok = ParseRating("10.1")
	assert.False(t, ok)
	_, ok = ParseRating("-1")
	assert.False(t, ok)

	got, ok = ParseRating("0")
	assert.True(t, ok)
	assert.Zero(t, got)
}

func TestParseLanguage(t *testing.T) {
	code, ok := ParseLanguage("ru-RU")
	assert.True(t, ok)
	assert.Equal(t, "ru-RU", code)

	_, ok = ParseLanguage("r")
	assert.False(t, ok)
	_, ok = ParseLanguage("russian")
	assert.False(t, ok)
}

func TestParseRegion(t *testing.T) {
	code, ok := ParseRegion(" us ")
	assert.True(t, ok)
	assert.Equal(t, "US", code)

	_, ok = ParseRegion("usa")
	assert.False(t, ok)
	_, ok = ParseRegion("")
	assert.False(t, ok)
}
