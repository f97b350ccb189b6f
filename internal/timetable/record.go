package timetable

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a naive calendar date with no time-of-day and no timezone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a Date and reports whether the components name a real day.
// "31 febbraio" and similar overflows are rejected instead of rolling over.
func NewDate(year int, month time.Month, day int) (Date, bool) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return Date{}, false
	}
	return Date{Year: year, Month: month, Day: day}, true
}

// dateOf truncates t to its calendar date as written (offset ignored).
func dateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Time returns midnight of the date. UTC is used only as an arithmetic frame.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Weekday returns the day of the week of the date.
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// AddDays returns the date n days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return dateOf(d.Time().AddDate(0, 0, n))
}

// Compare returns -1, 0 or +1 as d is before, equal to or after o.
func (d Date) Compare(o Date) int {
	return d.Time().Compare(o.Time())
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d == Date{}
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Time().Format(dateLayout)
}

// MarshalJSON encodes the date as an ISO "YYYY-MM-DD" string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "YYYY-MM-DD" and full RFC 3339 timestamps, see
// ParseDate.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDate parses an ISO date or RFC 3339 timestamp into a Date, reading
// timestamps in the local time zone. See ParseDateIn.
func ParseDate(s string) (Date, error) {
	return ParseDateIn(s, time.Local)
}

// ParseDateIn parses an ISO date or RFC 3339 timestamp into a Date. A
// timestamp at midnight in its own offset keeps the date as written. Any
// other timestamp is a local midnight serialized in another zone (typically
// UTC) and is converted to loc before taking the date.
func ParseDateIn(s string, loc *time.Location) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return dateOf(t), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	if h, m, sec := t.Clock(); (h != 0 || m != 0 || sec != 0 || t.Nanosecond() != 0) && loc != nil {
		t = t.In(loc)
	}
	return dateOf(t), nil
}

// Record is one canonical lecture session. Records are values and are never
// modified after normalization; every derived view is recomputed from them.
type Record struct {
	ID              string `json:"id"`
	CourseName      string `json:"courseName"`
	ColorIndex      int    `json:"colorIndex"`
	DayName         string `json:"dayName"`
	DayNumber       int    `json:"dayNumber"`
	Month           string `json:"month"`
	Year            int    `json:"year"`
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	Location        string `json:"location"`
	FullDate        Date   `json:"fullDate"`
	DurationMinutes int    `json:"durationMinutes"`
}

// RecordID derives the stable id for a row of a source document.
func RecordID(sourceIndex, rowPosition int) string {
	return fmt.Sprintf("course-%d-row-%d", sourceIndex, rowPosition)
}

// StartMinutes returns the start time as minutes after midnight, or -1.
func (r Record) StartMinutes() int {
	m, err := parseClock(r.StartTime)
	if err != nil {
		return -1
	}
	return m
}

// Weekday is derived from FullDate; DayName is kept only for diagnostics.
func (r Record) Weekday() time.Weekday {
	return r.FullDate.Weekday()
}
