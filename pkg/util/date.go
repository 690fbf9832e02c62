package util

import (
	"strconv"
	"time"
)

// DateLayout is the calendar-date format accepted for as-of parameters.
const DateLayout = "2006-01-02"

// ParseTime tries a calendar date, RFC3339, RFC3339Nano and unix seconds.
// A calendar date means the end of that UTC day, so the day itself is
// inside any window ending at the result. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return EndOfDay(t), true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0).UTC(), true
	}
	return time.Time{}, false
}

// EndOfDay is midnight UTC after the day holding t.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}
