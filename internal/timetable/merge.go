package timetable

import "slices"

// Merge appends a freshly parsed batch to the existing collection and
// stable-sorts the result by date. Neither input is modified.
func Merge(existing, batch []Record) []Record {
	combined := make([]Record, 0, len(existing)+len(batch))
	combined = append(combined, existing...)
	combined = append(combined, batch...)
	slices.SortStableFunc(combined, func(a, b Record) int {
		return a.FullDate.Compare(b.FullDate)
	})
	return combined
}

// NextColorIndex is the first color index for a new import batch: the number
// of distinct courses already loaded. After removals it may collide with an
// index still in use, so it only selects a palette slot.
func NextColorIndex(existing []Record) int {
	return len(DistinctCourses(existing))
}

// DistinctCourses returns course names in first-seen order.
func DistinctCourses(records []Record) []string {
	seen := make(map[string]bool)
	names := []string{}
	for _, r := range records {
		if !seen[r.CourseName] {
			seen[r.CourseName] = true
			names = append(names, r.CourseName)
		}
	}
	return names
}

// RemoveCourse drops every record whose course name equals name exactly.
func RemoveCourse(existing []Record, name string) []Record {
	kept := make([]Record, 0, len(existing))
	for _, r := range existing {
		if r.CourseName != name {
			kept = append(kept, r)
		}
	}
	return kept
}

// Clear returns an empty collection.
func Clear() []Record {
	return []Record{}
}
