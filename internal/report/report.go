// Package report renders a schedule as Markdown and as a standalone HTML page.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/hpungsan/unitime/internal/timetable"
)

// DefaultTitle heads reports that are not given a title.
const DefaultTitle = "Timetable"

// Markdown renders the collection as a Markdown document: summary, course
// breakdown, monthly distribution and one table per week.
func Markdown(title string, records []timetable.Record, palette timetable.Palette) string {
	if title == "" {
		title = DefaultTitle
	}
	stats := timetable.ComputeStats(records, palette)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", escapeText(title))

	if len(records) == 0 {
		b.WriteString("No lectures loaded.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "- Lectures: %d\n", stats.LectureCount)
	fmt.Fprintf(&b, "- Total hours: %s\n", formatHours(stats.TotalHours))
	fmt.Fprintf(&b, "- Courses: %d\n\n", len(stats.CourseBreakdown))

	b.WriteString("## Courses\n\n")
	b.WriteString("| Course | Hours | Color |\n|---|---:|---|\n")
	for _, c := range stats.CourseBreakdown {
		fmt.Fprintf(&b, "| %s | %s | `%s` |\n", escapeCell(c.Name), formatHours(c.Hours), c.Color)
	}

	b.WriteString("\n## Months\n\n")
	b.WriteString("| Month | Lectures |\n|---|---:|\n")
	for _, month := range monthOrder(records) {
		fmt.Fprintf(&b, "| %s | %d |\n", month, stats.MonthDistribution[month])
	}

	for _, week := range timetable.GroupByWeek(records) {
		fmt.Fprintf(&b, "\n## Week of %s\n\n", week.WeekStart)
		b.WriteString("| Day | Date | Time | Course | Location |\n|---|---|---|---|---|\n")
		for _, r := range week.Records {
			fmt.Fprintf(&b, "| %s | %s | %s-%s | %s | %s |\n",
				timetable.WeekdayLabel(r.FullDate), r.FullDate,
				r.StartTime, r.EndTime,
				escapeCell(r.CourseName), escapeCell(r.Location))
		}
	}
	return b.String()
}

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

var page = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body{font-family:system-ui,sans-serif;max-width:60rem;margin:2rem auto;padding:0 1rem;color:#1f2937}
table{border-collapse:collapse;margin:0 0 1.5rem}
th,td{border:1px solid #e5e7eb;padding:.3rem .6rem;text-align:left}
th{background:#f9fafb}
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// HTML renders the Markdown report into a complete HTML page.
func HTML(title string, records []timetable.Record, palette timetable.Palette) ([]byte, error) {
	if title == "" {
		title = DefaultTitle
	}

	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(title, records, palette)), &body); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	var out bytes.Buffer
	err := page.Execute(&out, struct {
		Title string
		Body  template.HTML
	}{title, template.HTML(body.String())})
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return out.Bytes(), nil
}

// monthOrder lists month labels in the order they first occur.
func monthOrder(records []timetable.Record) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		label := timetable.MonthLabel(r.FullDate)
		if !seen[label] {
			seen[label] = true
			out = append(out, label)
		}
	}
	return out
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

var cellEscaper = strings.NewReplacer("|", `\|`, "\n", " ", "\r", " ", "<", "&lt;", ">", "&gt;")

func escapeCell(s string) string {
	return cellEscaper.Replace(s)
}

var textEscaper = strings.NewReplacer("#", `\#`, "*", `\*`, "_", `\_`, "<", "&lt;", ">", "&gt;")

func escapeText(s string) string {
	return textEscaper.Replace(s)
}
