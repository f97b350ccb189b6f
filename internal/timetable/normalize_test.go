package timetable

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNormalize_Valid(t *testing.T) {
	row := RawRow{
		Position: 7,
		DateText: "lunedì 16 febbraio 2026",
		TimeText: "09:00 - 11:00",
		Location: "Room A-101",
	}

	rec, err := Normalize(row, 0, "Analisi")
	require.NoError(t, err)

	require.Equal(t, "course-0-row-7", rec.ID)
	require.Equal(t, "Analisi", rec.CourseName)
	require.Equal(t, 0, rec.ColorIndex)
	require.Equal(t, "lunedì", rec.DayName)
	require.Equal(t, 16, rec.DayNumber)
	require.Equal(t, "febbraio", rec.Month)
	require.Equal(t, 2026, rec.Year)
	require.Equal(t, "09:00", rec.StartTime)
	require.Equal(t, "11:00", rec.EndTime)
	require.Equal(t, "Room A-101", rec.Location)
	require.Equal(t, Date{Year: 2026, Month: time.February, Day: 16}, rec.FullDate)
	require.Equal(t, 120, rec.DurationMinutes)
	require.Equal(t, time.Monday, rec.Weekday())
}

func TestNormalize_Variants(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		timeText string
		wantDate string
		wantMins int
	}{
		{"comma after weekday", "martedì, 17 febbraio 2026", "14:00-16:30", "2026-02-17", 150},
		{"extra whitespace", "  mercoledì   18  Febbraio\t2026 ", " 8:30 -  9:15 ", "2026-02-18", 45},
		{"zero duration", "giovedì 1 ottobre 2026", "10:00-10:00", "2026-10-01", 0},
		{"until midnight", "venerdì 31 dicembre 2027", "22:00-24:00", "2027-12-31", 120},
		{"trailing note after second dash", "lunedì 16 febbraio 2026", "09:00-11:00-recupero", "2026-02-16", 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Normalize(RawRow{DateText: tt.date, TimeText: tt.timeText, Location: MissingLocation}, 3, "C")
			require.NoError(t, err)
			require.Equal(t, tt.wantDate, rec.FullDate.String())
			require.Equal(t, tt.wantMins, rec.DurationMinutes)
			require.Equal(t, 3, rec.ColorIndex)
		})
	}
}

func TestNormalize_Rejected(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		timeText string
		want     error
	}{
		{"time without dash", "lunedì 16 febbraio 2026", "TBD", ErrMissingTime},
		{"empty start", "lunedì 16 febbraio 2026", " - 11:00", ErrMissingTime},
		{"missing end", "lunedì 16 febbraio 2026", "09:00 -", ErrMalformedTime},
		{"bad clock", "lunedì 16 febbraio 2026", "9h-11h", ErrMalformedTime},
		{"negative duration", "lunedì 16 febbraio 2026", "11:00-09:00", ErrNegativeDuration},
		{"unknown month", "lunedì 16 febbrajo 2026", "09:00-11:00", ErrUnknownMonth},
		{"bad day", "lunedì XVI febbraio 2026", "09:00-11:00", ErrMalformedDate},
		{"bad year", "lunedì 16 febbraio 2O26", "09:00-11:00", ErrMalformedDate},
		{"too few tokens", "16 febbraio 2026", "09:00-11:00", ErrMalformedDate},
		{"too many tokens", "lunedì 16 febbraio 2026 ore", "09:00-11:00", ErrMalformedDate},
		{"day overflow", "martedì 31 febbraio 2026", "09:00-11:00", ErrMalformedDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(RawRow{Position: 2, DateText: tt.date, TimeText: tt.timeText}, 0, "C")
			require.Error(t, err)
			require.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)

			var rowErr *RowError
			require.ErrorAs(t, err, &rowErr)
			require.Equal(t, 2, rowErr.Row)
		})
	}
}

func TestNormalize_DurationProperty(t *testing.T) {
	for sh := 8; sh < 20; sh++ {
		for _, sm := range []int{0, 15, 30, 45} {
			eh, em := sh+1, (sm+20)%60
			timeText := clock(sh, sm) + "-" + clock(eh, em)
			rec, err := Normalize(RawRow{DateText: "lunedì 16 febbraio 2026", TimeText: timeText}, 0, "C")
			want := (eh*60 + em) - (sh*60 + sm)
			if want < 0 {
				require.ErrorIs(t, err, ErrNegativeDuration)
				continue
			}
			require.NoError(t, err)
			require.Equal(t, want, rec.DurationMinutes)
			require.GreaterOrEqual(t, rec.DurationMinutes, 0)
		}
	}
}

func clock(h, m int) string {
	return time.Date(2000, 1, 1, h, m, 0, 0, time.UTC).Format("15:04")
}

func TestParse_Document(t *testing.T) {
	result, err := Parse([]byte(sampleHTML), 2)
	require.NoError(t, err)

	require.Equal(t, "Analisi Matematica I", result.CourseName)
	require.Len(t, result.Records, 2)
	require.Equal(t, "course-2-row-1", result.Records[0].ID)
	require.Equal(t, "course-2-row-3", result.Records[1].ID)
	for _, r := range result.Records {
		require.Equal(t, 2, r.ColorIndex)
		require.Equal(t, "Analisi Matematica I", r.CourseName)
	}

	// TBD, unknown month, negative duration.
	require.Len(t, result.Rejected, 3)
	require.ErrorIs(t, result.Rejected[0], ErrMissingTime)
	require.ErrorIs(t, result.Rejected[1], ErrUnknownMonth)
	require.ErrorIs(t, result.Rejected[2], ErrNegativeDuration)

	require.Len(t, result.Warnings, 1)
	require.Equal(t, WarnUnknownMonth, result.Warnings[0].Kind)
	require.Equal(t, 5, result.Warnings[0].Row)
}

func TestParse_NoTable(t *testing.T) {
	result, err := Parse([]byte(`<html><body><h1>Lesson schedule for Logic</h1><p>nothing</p></body></html>`), 0)
	require.NoError(t, err)
	require.Equal(t, "Logic", result.CourseName)
	require.Empty(t, result.Records)
	require.Len(t, result.Warnings, 1)
	require.Equal(t, WarnNoTable, result.Warnings[0].Kind)
}
