package dialog

import (
	"strconv"
	"strings"
)

const (
	minYear = 1900
	maxYear = 2030
)

// ParseYear parses a release year and checks it falls inside the
// supported range.
func ParseYear(text string) (int, bool) {
	year, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, false
	}
	if year < minYear || year > maxYear {
		return 0, false
	}
	return year, true
}

// ParseRating parses a minimum vote average in the 0..10 range.
// Both comma and dot decimal separators are accepted.
func ParseRating(text string) (float64, bool) {
	normalized := strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	rating, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, false
	}
	if rating < 0 || rating > 10 {
		return 0, false
	}
	return rating, true
}

// ParseLanguage validates a language code like "ru" or "ru-RU".
func ParseLanguage(text string) (string, bool) {
	code := strings.TrimSpace(text)
	if len(code) < 2 || len(code) > 5 {
		return "", false
	}
	return code, true
}

// ParseRegion validates a two-letter region code and uppercases it.
func ParseRegion(text string) (string, bool) {
	code := strings.ToUpper(strings.TrimSpace(text))
	if len(code) != 2 {
		return "", false
	}
	return code, true
}
