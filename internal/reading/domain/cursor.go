package domain

import (
	"strconv"
	"strings"
	"time"
)

const (
	// PageSize is the number of rows per query page: one day of 10-minute samples.
	PageSize = 144
	// MaxOffset bounds how far back a cursor may page.
	MaxOffset = 10000
)

// Kind is the sensor series a cursor addresses.
type Kind string

const (
	KindClimate Kind = "climate"
	KindMotion  Kind = "motion"
)

// minFrom is the earliest accepted cursor start, as wall-clock time.
var minFrom = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// Cursor fully determines one page of a window query.
type Cursor struct {
	Kind   Kind
	From   time.Time // wall-clock time in the server location
	Offset int
}

// ParseKind maps a query action to a Kind. The sensor names "thp" and "pir"
// are accepted as aliases.
func ParseKind(action string) (Kind, error) {
	switch action {
	case "climate", "thp":
		return KindClimate, nil
	case "motion", "pir":
		return KindMotion, nil
	}
	return "", ErrInvalidAction
}

// ParseCursor builds a Cursor from raw query parameters. Only the action can
// fail; a bad from falls back to now and offset is clamped by ParseOffset.
func ParseCursor(action, from, offset string, now time.Time, loc *time.Location) (Cursor, error) {
	kind, err := ParseKind(action)
	if err != nil {
		return Cursor{}, err
	}
	if loc == nil {
		loc = time.Local
	}
	return Cursor{
		Kind:   kind,
		From:   ParseFrom(from, now, loc),
		Offset: ParseOffset(offset),
	}, nil
}

// ParseFrom parses an exact MeasuredLayout timestamp in loc. Empty, malformed or
// out-of-range input ([2020-01-01, now]) yields now truncated to the second.
func ParseFrom(from string, now time.Time, loc *time.Location) time.Time {
	fallback := now.In(loc).Truncate(time.Second)
	if from == "" {
		return fallback
	}
	t, err := time.ParseInLocation(MeasuredLayout, from, loc)
	if err != nil || t.Format(MeasuredLayout) != from {
		return fallback
	}
	if t.After(now) || t.Before(time.Date(minFrom.Year(), minFrom.Month(), minFrom.Day(), 0, 0, 0, 0, loc)) {
		return fallback
	}
	return t
}

// ParseOffset parses a decimal offset and clamps it to [0, MaxOffset].
// Anything that is not a plain integer yields 0.
func ParseOffset(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	digits := strings.TrimLeft(s, "+-")
	if len(digits) > 1 && digits[0] == '0' {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	if n < 0 {
		return 0
	}
	if n > MaxOffset {
		return MaxOffset
	}
	return n
}

// FormatMeasured renders a stored wall-clock timestamp in MeasuredLayout.
func FormatMeasured(t time.Time) string {
	return t.Format(MeasuredLayout)
}
