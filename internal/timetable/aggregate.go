package timetable

import (
	"math"
	"slices"
)

// Palette is the ordered set of display colors (hex strings).
type Palette []string

// DefaultPalette is used when no palette is configured.
var DefaultPalette = Palette{
	"#4F46E5", // indigo
	"#10B981", // emerald
	"#F43F5E", // rose
	"#F59E0B", // amber
	"#8B5CF6", // violet
	"#06B6D4", // cyan
}

// Color resolves a color index with wraparound.
func (p Palette) Color(colorIndex int) string {
	if len(p) == 0 {
		p = DefaultPalette
	}
	i := colorIndex % len(p)
	if i < 0 {
		i += len(p)
	}
	return p[i]
}

// WeekBucket groups the records of one Monday-anchored week.
type WeekBucket struct {
	WeekStart Date     `json:"weekStart"`
	Records   []Record `json:"records"`
}

// CourseHours is one entry of the per-course breakdown.
type CourseHours struct {
	Name  string  `json:"name"`
	Hours float64 `json:"hours"`
	Color string  `json:"color"`
}

// CourseStats summarizes a record collection.
type CourseStats struct {
	TotalHours        float64        `json:"totalHours"`
	LectureCount      int            `json:"lectureCount"`
	MonthDistribution map[string]int `json:"monthDistribution"`
	CourseBreakdown   []CourseHours  `json:"courseBreakdown"`
}

// LegendEntry maps a course to its display color.
type LegendEntry struct {
	Name       string `json:"name"`
	ColorIndex int    `json:"colorIndex"`
	Color      string `json:"color"`
}

// WeekStart returns the Monday of d's week. Sunday counts as day 7, so it
// belongs to the week that began six days earlier.
func WeekStart(d Date) Date {
	wd := int(d.Weekday())
	if wd == 0 {
		wd = 7
	}
	return d.AddDays(-(wd - 1))
}

// GroupByWeek buckets records by week, ascending by week start. Records keep
// their input order inside a bucket.
func GroupByWeek(records []Record) []WeekBucket {
	index := make(map[Date]int)
	var buckets []WeekBucket
	for _, r := range records {
		key := WeekStart(r.FullDate)
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, WeekBucket{WeekStart: key})
		}
		buckets[i].Records = append(buckets[i].Records, r)
	}
	slices.SortFunc(buckets, func(a, b WeekBucket) int {
		return a.WeekStart.Compare(b.WeekStart)
	})
	if buckets == nil {
		buckets = []WeekBucket{}
	}
	return buckets
}

// RoundHours converts minutes to hours rounded to one decimal place.
func RoundHours(minutes int) float64 {
	return math.Round(float64(minutes)/60*10) / 10
}

// ComputeStats derives totals, the month distribution and the per-course
// breakdown. Course order is first-seen order in records.
func ComputeStats(records []Record, palette Palette) CourseStats {
	stats := CourseStats{
		LectureCount:      len(records),
		MonthDistribution: make(map[string]int),
		CourseBreakdown:   []CourseHours{},
	}

	type courseTotal struct {
		minutes    int
		colorIndex int
	}
	totals := make(map[string]*courseTotal)
	var order []string
	totalMinutes := 0

	for _, r := range records {
		totalMinutes += r.DurationMinutes
		stats.MonthDistribution[MonthLabel(r.FullDate)]++

		t, ok := totals[r.CourseName]
		if !ok {
			t = &courseTotal{colorIndex: r.ColorIndex}
			totals[r.CourseName] = t
			order = append(order, r.CourseName)
		}
		t.minutes += r.DurationMinutes
	}

	stats.TotalHours = RoundHours(totalMinutes)
	for _, name := range order {
		t := totals[name]
		stats.CourseBreakdown = append(stats.CourseBreakdown, CourseHours{
			Name:  name,
			Hours: RoundHours(t.minutes),
			Color: palette.Color(t.colorIndex),
		})
	}
	return stats
}

// CourseLegend lists each distinct course once with the color of the first
// record found for it.
func CourseLegend(records []Record, palette Palette) []LegendEntry {
	legend := []LegendEntry{}
	seen := make(map[string]bool)
	for _, r := range records {
		if seen[r.CourseName] {
			continue
		}
		seen[r.CourseName] = true
		legend = append(legend, LegendEntry{
			Name:       r.CourseName,
			ColorIndex: r.ColorIndex,
			Color:      palette.Color(r.ColorIndex),
		})
	}
	return legend
}
