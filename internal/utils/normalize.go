package utils

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// DateLayout is the calendar-day format stored on attendance records.
const DateLayout = "2006-01-02"

var wsRe = regexp.MustCompile(`\s+`)

// ErrInvalidDateFormat is returned when a calendar day cannot be parsed
var ErrInvalidDateFormat = errors.New("invalid date format")

// NormalizeToken lowercases, collapses whitespace and strips diacritics,
// so "José" and "jose" compare equal.
func NormalizeToken(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	t := norm.NFKD.String(s)
	b := make([]rune, 0, len(t))
	for _, r := range t {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b = append(b, unicode.ToLower(r))
	}
	return wsRe.ReplaceAllString(string(b), " ")
}

// ContainsFold reports whether any field contains the search term after
// normalisation. An empty term matches everything.
func ContainsFold(term string, fields ...string) bool {
	term = NormalizeToken(term)
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(NormalizeToken(f), term) {
			return true
		}
	}
	return false
}

// ParseDate parses a YYYY-MM-DD calendar day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return t, nil
}

// Today returns the current calendar day in UTC.
func Today() string {
	return time.Now().UTC().Format(DateLayout)
}

// MonthRange returns the first and last calendar day of a YYYY-MM month.
func MonthRange(month string) (string, string, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(month))
	if err != nil {
		return "", "", ErrInvalidDateFormat
	}
	last := t.AddDate(0, 1, -1)
	return t.Format(DateLayout), last.Format(DateLayout), nil
}
