package util

import (
	"fmt"
	"strings"
	"time"
)

// isoLayouts are tried in order. Go accepts an optional fractional second
// after the seconds field, so fractions need no layouts of their own.
var isoLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02T15",
	"2006-01-02",
}

// ParseDateTime parses an ISO-8601 date or date-time. A UTC offset, when
// present, is validated and then discarded: the wall-clock fields are kept
// and returned in UTC, which is the clock the demand series is recorded on.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty datetime")
	}
	for _, layout := range isoLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return WallClockUTC(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid isoformat string: %q", s)
}

// WallClockUTC re-labels t's wall-clock fields as UTC.
func WallClockUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// FormatISO renders t like "2024-06-15T14:30:00", appending microseconds
// only when they are non-zero.
func FormatISO(t time.Time) string {
	if us := t.Nanosecond() / 1000; us != 0 {
		return t.Format("2006-01-02T15:04:05") + fmt.Sprintf(".%06d", us)
	}
	return t.Format("2006-01-02T15:04:05")
}

// DateKey is the calendar-day key used by date lookups.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
