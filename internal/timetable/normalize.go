package timetable

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Row rejection reasons.
var (
	ErrMalformedDate    = errors.New("malformed date")
	ErrUnknownMonth     = errors.New("unknown month name")
	ErrMissingTime      = errors.New("missing start time")
	ErrMalformedTime    = errors.New("malformed time")
	ErrNegativeDuration = errors.New("end time before start time")
)

// RowError reports why a row produced no record.
type RowError struct {
	Row    int    `json:"row"`
	Reason error  `json:"-"`
	Detail string `json:"detail"`
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v: %s", e.Row, e.Reason, e.Detail)
}

func (e *RowError) Unwrap() error { return e.Reason }

// MarshalJSON includes the reason text, which is otherwise an opaque error.
func (e *RowError) MarshalJSON() ([]byte, error) {
	reason := ""
	if e.Reason != nil {
		reason = e.Reason.Error()
	}
	return json.Marshal(struct {
		Row    int    `json:"row"`
		Reason string `json:"reason"`
		Detail string `json:"detail"`
	}{e.Row, reason, e.Detail})
}

func rowError(row RawRow, reason error, detail string) *RowError {
	return &RowError{Row: row.Position, Reason: reason, Detail: detail}
}

// Normalize converts a raw row into a canonical record. It never panics; a
// bad row is reported as a *RowError and the caller moves on.
func Normalize(row RawRow, sourceIndex int, courseName string) (Record, error) {
	// 1. "<weekday> <day> <month> <year>", commas dropped.
	dateText := collapseSpaces(strings.ReplaceAll(row.DateText, ",", " "))
	parts := strings.Split(dateText, " ")
	if len(parts) != 4 {
		return Record{}, rowError(row, ErrMalformedDate, dateText)
	}
	dayName := parts[0]
	dayNumber, err := strconv.Atoi(parts[1])
	if err != nil {
		return Record{}, rowError(row, ErrMalformedDate, "day "+parts[1])
	}
	monthName := strings.ToLower(parts[2])
	year, err := strconv.Atoi(parts[3])
	if err != nil {
		return Record{}, rowError(row, ErrMalformedDate, "year "+parts[3])
	}
	monthIdx, ok := MonthIndex(monthName)
	if !ok {
		return Record{}, rowError(row, ErrUnknownMonth, monthName)
	}

	// 2. Time range: first two dash-separated fields, anything after the
	// second dash is ignored.
	fields := strings.Split(row.TimeText, "-")
	if len(fields) < 2 || strings.TrimSpace(fields[0]) == "" {
		return Record{}, rowError(row, ErrMissingTime, row.TimeText)
	}
	startText := strings.TrimSpace(fields[0])
	endText := strings.TrimSpace(fields[1])

	// 3. Duration.
	startMin, err := parseClock(startText)
	if err != nil {
		return Record{}, rowError(row, ErrMalformedTime, startText)
	}
	endMin, err := parseClock(endText)
	if err != nil {
		return Record{}, rowError(row, ErrMalformedTime, endText)
	}
	duration := endMin - startMin
	if duration < 0 {
		return Record{}, rowError(row, ErrNegativeDuration, row.TimeText)
	}

	// 4. Naive calendar date.
	fullDate, ok := NewDate(year, monthFromIndex(monthIdx), dayNumber)
	if !ok {
		return Record{}, rowError(row, ErrMalformedDate, dateText)
	}

	return Record{
		ID:              RecordID(sourceIndex, row.Position),
		CourseName:      courseName,
		ColorIndex:      sourceIndex,
		DayName:         dayName,
		DayNumber:       dayNumber,
		Month:           monthName,
		Year:            year,
		StartTime:       startText,
		EndTime:         endText,
		Location:        row.Location,
		FullDate:        fullDate,
		DurationMinutes: duration,
	}, nil
}

// parseClock parses "H:MM" or "HH:MM" into minutes after midnight.
func parseClock(s string) (int, error) {
	hh, mm, found := strings.Cut(s, ":")
	if !found || hh == "" || len(mm) != 2 {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 24 {
		return 0, fmt.Errorf("invalid hour %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute %q", s)
	}
	if h == 24 && m != 0 {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	return h*60 + m, nil
}
