package timetable

import (
	"fmt"
	"regexp"
	"strings"
)

// TableID is the id of the session table in exported timetables.
const TableID = "elenco"

// MissingLocation is stored when a row has no location text.
const MissingLocation = "N/A"

// titlePrefixes are stripped from the course title, in order.
var titlePrefixes = []string{
	"Orario delle lezioni di",
	"Lesson schedule for",
}

// yearFragment marks a row as a data row rather than a section header.
var yearFragment = regexp.MustCompile(`\b\d{4}\b`)

// whitespaceRegex matches one or more whitespace characters.
var whitespaceRegex = regexp.MustCompile(`\s+`)

// RawRow is one data row as found in the document, before validation.
type RawRow struct {
	Position int    // index among the table body rows, skipped rows included
	DateText string // combined weekday and date
	TimeText string // "HH:MM-HH:MM"
	Location string // whitespace-collapsed, MissingLocation if absent
}

// Document is the extracted content of one source document.
type Document struct {
	CourseName string
	HasTable   bool
	Rows       []RawRow
}

// Extract locates the course title and the session table and returns the
// raw rows. A document without the table yields no rows and no error.
func Extract(src DocumentSource, sourceIndex int) Document {
	doc := Document{CourseName: CleanTitle(src.FindTitle(), sourceIndex)}

	table, ok := src.FindTable(TableID)
	if !ok {
		return doc
	}
	doc.HasTable = true

	for i := 0; i < table.Rows(); i++ {
		cells := table.Cells(i)
		if len(cells) < 2 {
			continue
		}

		dateText := strings.TrimSpace(cells[0])
		if !yearFragment.MatchString(dateText) {
			continue
		}

		location := MissingLocation
		if len(cells) > 2 {
			if loc := collapseSpaces(cells[2]); loc != "" {
				location = loc
			}
		}

		doc.Rows = append(doc.Rows, RawRow{
			Position: i,
			DateText: dateText,
			TimeText: strings.TrimSpace(cells[1]),
			Location: location,
		})
	}

	return doc
}

// CleanTitle strips the known prefixes and any parenthetical suffix from a
// title. An empty result falls back to "Course <sourceIndex+1>".
func CleanTitle(title string, sourceIndex int) string {
	name := collapseSpaces(title)
	for _, prefix := range titlePrefixes {
		name = strings.Replace(name, prefix, "", 1)
	}
	if before, _, found := strings.Cut(name, "("); found {
		name = before
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Sprintf("Course %d", sourceIndex+1)
	}
	return name
}

func collapseSpaces(s string) string {
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}
