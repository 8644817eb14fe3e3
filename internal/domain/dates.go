package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical date representation used across the book
const DateLayout = "2006-01-02"

// dateLayouts are tried in order when reading dates stored by the replica
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	DateLayout,
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
}

// ParseDate reads a stored or user supplied date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable date %q", ErrInvalidInput, s)
}

// NormalizeDate rewrites a date to YYYY-MM-DD.
func NormalizeDate(s string) (string, error) {
	t, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}

// MinDate returns the earlier of two YYYY-MM-DD dates. An empty date loses.
func MinDate(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	case b < a:
		return b
	}
	return a
}
