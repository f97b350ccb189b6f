package timetable

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		index    int
		expected string
	}{
		{"italian prefix", "Orario delle lezioni di Fisica I (2025/26)", 0, "Fisica I"},
		{"english prefix", "Lesson schedule for Chemistry", 0, "Chemistry"},
		{"no prefix", "  Basi di dati  ", 0, "Basi di dati"},
		{"multiline title", "Orario delle lezioni di\n   Geometria\n", 0, "Geometria"},
		{"empty falls back", "", 2, "Course 3"},
		{"only suffix falls back", "Lesson schedule for (A.A. 2025)", 0, "Course 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanTitle(tt.title, tt.index); got != tt.expected {
				t.Errorf("CleanTitle(%q, %d) = %q, want %q", tt.title, tt.index, got, tt.expected)
			}
		})
	}
}

func TestExtract_HTML(t *testing.T) {
	src, err := NewHTMLSource(strings.NewReader(sampleHTML))
	require.NoError(t, err)

	doc := Extract(src, 0)
	require.True(t, doc.HasTable)
	require.Equal(t, "Analisi Matematica I", doc.CourseName)

	// Header row, one-cell row and yearless row are dropped.
	require.Len(t, doc.Rows, 5)

	first := doc.Rows[0]
	require.Equal(t, 1, first.Position)
	require.Equal(t, "lunedì 16 febbraio 2026", first.DateText)
	require.Equal(t, "09:00 - 11:00", first.TimeText)
	require.Equal(t, "Room A-101", first.Location)

	second := doc.Rows[1]
	require.Equal(t, 3, second.Position)
	require.Equal(t, MissingLocation, second.Location)
}

func TestExtract_NoTable(t *testing.T) {
	src := staticSource{title: "Lesson schedule for Algebra"}

	doc := Extract(src, 4)
	require.False(t, doc.HasTable)
	require.Empty(t, doc.Rows)
	require.Equal(t, "Algebra", doc.CourseName)
}

func TestExtract_StaticSource(t *testing.T) {
	src := staticSource{
		tables: map[string][][]string{
			TableID: {
				{"lunedì 2 marzo 2026"},
				{"lunedì 2 marzo 2026", "09:00-10:00", "   "},
				{"Settimana 3", "—", "—"},
			},
		},
	}

	doc := Extract(src, 1)
	require.Equal(t, "Course 2", doc.CourseName)
	require.Len(t, doc.Rows, 1)
	require.Equal(t, 1, doc.Rows[0].Position)
	require.Equal(t, MissingLocation, doc.Rows[0].Location)
}

func TestExtract_OtherTableIgnored(t *testing.T) {
	src, err := NewHTMLSource(strings.NewReader(`<h1>X</h1><table id="other"><tbody>
		<tr><td>lunedì 2 marzo 2026</td><td>09:00-10:00</td></tr></tbody></table>`))
	require.NoError(t, err)

	doc := Extract(src, 0)
	require.False(t, doc.HasTable)
	require.Empty(t, doc.Rows)
}
