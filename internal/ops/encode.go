package ops

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"

	"github.com/hpungsan/unitime/internal/report"
	"github.com/hpungsan/unitime/internal/store"
	"github.com/hpungsan/unitime/internal/timetable"
)

// encodeJSON writes the persisted collection shape.
func encodeJSON(w io.Writer, records []timetable.Record) error {
	data, err := store.Encode(records)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// icsFloating formats a wall-clock time with no zone: records carry no
// timezone, so calendar clients place them in their local zone.
const icsFloating = "20060102T150405"

// ICSProductID identifies the exporting application in VCALENDAR.
const ICSProductID = "-//unitime//timetable//EN"

// encodeICS writes one VEVENT per record, UID = record id.
func encodeICS(w io.Writer, records []timetable.Record, now time.Time) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(ICSProductID)
	cal.SetXWRCalName(report.DefaultTitle)

	for _, r := range records {
		start, end := sessionBounds(r)
		ev := cal.AddEvent(r.ID)
		ev.SetDtStampTime(now)
		ev.SetProperty(ics.ComponentPropertyDtStart, start.Format(icsFloating))
		ev.SetProperty(ics.ComponentPropertyDtEnd, end.Format(icsFloating))
		ev.SetSummary(r.CourseName)
		if r.Location != "" && r.Location != timetable.MissingLocation {
			ev.SetLocation(r.Location)
		}
		ev.SetDescription(fmt.Sprintf("%s %s-%s (%d min)", r.CourseName, r.StartTime, r.EndTime, r.DurationMinutes))
	}

	_, err := io.WriteString(w, cal.Serialize())
	return err
}

// sessionBounds returns the wall-clock start and end of a session. An end of
// 24:00 lands on midnight of the following day.
func sessionBounds(r timetable.Record) (start, end time.Time) {
	start = r.FullDate.Time().Add(time.Duration(max(r.StartMinutes(), 0)) * time.Minute)
	end = start.Add(time.Duration(r.DurationMinutes) * time.Minute)
	return start, end
}

// SummarySheet is the first sheet of an XLSX export.
const SummarySheet = "Summary"

var courseColumns = []any{"Date", "Day", "Start", "End", "Minutes", "Location"}

// encodeXLSX writes a summary sheet plus one sheet per course.
func encodeXLSX(w io.Writer, records []timetable.Record, palette timetable.Palette) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E5E7EB"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	stats := timetable.ComputeStats(records, palette)
	if err := f.SetSheetRow(SummarySheet, "A1", &[]any{"Course", "Lectures", "Hours", "Color"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "D1", headerStyle); err != nil {
		return err
	}
	f.SetColWidth(SummarySheet, "A", "A", 40)

	lectures := make(map[string]int)
	for _, r := range records {
		lectures[r.CourseName]++
	}

	used := map[string]bool{strings.ToLower(SummarySheet): true}
	for i, c := range stats.CourseBreakdown {
		row := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(SummarySheet, cell, &[]any{c.Name, lectures[c.Name], c.Hours, c.Color}); err != nil {
			return err
		}
		colorStyle, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{c.Color}, Pattern: 1},
		})
		if err != nil {
			return err
		}
		colorCell, _ := excelize.CoordinatesToCellName(4, row)
		if err := f.SetCellStyle(SummarySheet, colorCell, colorCell, colorStyle); err != nil {
			return err
		}

		sheet := uniqueSheetName(c.Name, used)
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		if err := writeCourseSheet(f, sheet, c.Name, records, headerStyle); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeCourseSheet(f *excelize.File, sheet, course string, records []timetable.Record, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &courseColumns); err != nil {
		return err
	}
	last, _ := excelize.ColumnNumberToName(len(courseColumns))
	if err := f.SetCellStyle(sheet, "A1", last+"1", headerStyle); err != nil {
		return err
	}
	f.SetColWidth(sheet, "F", "F", 30)

	row := 2
	for _, r := range records {
		if r.CourseName != course {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := []any{
			r.FullDate.String(),
			timetable.WeekdayLabel(r.FullDate),
			r.StartTime,
			r.EndTime,
			r.DurationMinutes,
			r.Location,
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
		row++
	}
	return nil
}

// maxSheetName is the XLSX limit on sheet name length.
const maxSheetName = 31

var sheetNameCleaner = strings.NewReplacer(
	"[", "(", "]", ")", ":", "-", "*", "-", "?", "", "/", "-", `\`, "-")

// uniqueSheetName derives a valid, not yet used sheet name from a course name.
func uniqueSheetName(course string, used map[string]bool) string {
	base := strings.Trim(strings.TrimSpace(sheetNameCleaner.Replace(course)), "'")
	if base == "" {
		base = "Course"
	}
	base = truncateRunes(base, maxSheetName)

	name := base
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		name = truncateRunes(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// renderReport renders the Markdown or HTML report.
func renderReport(format ExportFormat, title string, records []timetable.Record, palette timetable.Palette) ([]byte, error) {
	if format == FormatHTML {
		return report.HTML(title, records, palette)
	}
	return []byte(report.Markdown(title, records, palette)), nil
}
