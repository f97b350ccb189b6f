package timetable

import (
	"strings"
	"time"
)

// italianMonths maps lower-case Italian month names to zero-based indices.
var italianMonths = map[string]int{
	"gennaio":   0,
	"febbraio":  1,
	"marzo":     2,
	"aprile":    3,
	"maggio":    4,
	"giugno":    5,
	"luglio":    6,
	"agosto":    7,
	"settembre": 8,
	"ottobre":   9,
	"novembre":  10,
	"dicembre":  11,
}

// Weekdays holds display weekday names, Sunday first (time.Weekday order).
var Weekdays = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// MonthIndex looks up a month token (case-insensitive) and returns its
// zero-based index.
func MonthIndex(token string) (int, bool) {
	idx, ok := italianMonths[strings.ToLower(strings.TrimSpace(token))]
	return idx, ok
}

// MonthLabel returns the display-locale month name used in statistics.
func MonthLabel(d Date) string {
	return d.Month.String()
}

// WeekdayLabel returns the display name of the date's weekday.
func WeekdayLabel(d Date) string {
	return Weekdays[d.Weekday()]
}

func monthFromIndex(idx int) time.Month {
	return time.Month(idx + 1)
}
