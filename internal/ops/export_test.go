package ops

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/hpungsan/unitime/internal/errors"
	"github.com/hpungsan/unitime/internal/store"
)

func TestExport_JSONRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	seed(t, env)

	path := filepath.Join(env.dir, "schedule.json")
	out, err := Export(context.Background(), env.st, env.cfg, ExportInput{Path: path})
	require.NoError(t, err)
	require.Equal(t, FormatJSON, out.Format)
	require.Equal(t, 3, out.Count)
	require.Equal(t, path, out.Path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	revived, err := store.Decode(data)
	require.NoError(t, err)
	require.Equal(t, env.st.Records(), revived)
	require.Contains(t, string(data), `"fullDate":"2026-02-16"`)

	matches, _ := filepath.Glob(filepath.Join(env.dir, "*.tmp"))
	require.Empty(t, matches)
}

func TestExport_ICS(t *testing.T) {
	env := newTestEnv(t)
	seed(t, env)

	path := filepath.Join(env.dir, "schedule.ics")
	out, err := Export(context.Background(), env.st, env.cfg, ExportInput{Path: path})
	require.NoError(t, err)
	require.Equal(t, FormatICS, out.Format)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cal, err := ics.ParseCalendar(f)
	require.NoError(t, err)

	events := cal.Events()
	require.Len(t, events, 3)

	first := events[0]
	require.Equal(t, "course-0-row-0", first.GetProperty(ics.ComponentPropertyUniqueId).Value)
	require.Equal(t, "20260216T090000", first.GetProperty(ics.ComponentPropertyDtStart).Value)
	require.Equal(t, "20260216T110000", first.GetProperty(ics.ComponentPropertyDtEnd).Value)
	require.Equal(t, "Fisica", first.GetProperty(ics.ComponentPropertySummary).Value)
	require.Equal(t, "Room A", first.GetProperty(ics.ComponentPropertyLocation).Value)

	// No location cell means no LOCATION property.
	require.Nil(t, events[2].GetProperty(ics.ComponentPropertyLocation))
}

func TestExport_XLSX(t *testing.T) {
	env := newTestEnv(t)
	seed(t, env)

	path := filepath.Join(env.dir, "schedule.xlsx")
	_, err := Export(context.Background(), env.st, env.cfg, ExportInput{Path: path, Format: FormatXLSX})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{SummarySheet, "Fisica", "Chimica"}, f.GetSheetList())

	rows, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.Equal(t, []string{"Course", "Lectures", "Hours", "Color"}, rows[0])
	require.Equal(t, []string{"Fisica", "2", "4", "#4F46E5"}, rows[1])
	require.Equal(t, []string{"Chimica", "1", "2", "#10B981"}, rows[2])

	fisica, err := f.GetRows("Fisica")
	require.NoError(t, err)
	require.Len(t, fisica, 3)
	require.Equal(t, []string{"2026-02-16", "Monday", "09:00", "11:00", "120", "Room A"}, fisica[1])
}

func TestExport_Reports(t *testing.T) {
	env := newTestEnv(t)
	seed(t, env)
	ctx := context.Background()

	mdPath := filepath.Join(env.dir, "report.md")
	_, err := Export(ctx, env.st, env.cfg, ExportInput{Path: mdPath})
	require.NoError(t, err)
	md, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	require.Contains(t, string(md), "## Week of 2026-02-16")

	htmlPath := filepath.Join(env.dir, "report.html")
	_, err = Export(ctx, env.st, env.cfg, ExportInput{Path: htmlPath, Course: "Chimica"})
	require.NoError(t, err)
	page, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	require.Contains(t, string(page), "<table>")
	require.Contains(t, string(page), "Chimica")
	require.NotContains(t, string(page), "Fisica")
}

func TestExport_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := Export(ctx, env.st, env.cfg, ExportInput{Path: filepath.Join(env.dir, "x.json")})
	require.True(t, errors.Is(err, errors.ErrNoRecords), "got %v", err)

	seed(t, env)

	_, err = Export(ctx, env.st, env.cfg, ExportInput{Path: filepath.Join(env.dir, "x.pdf")})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest), "got %v", err)

	_, err = Export(ctx, env.st, env.cfg, ExportInput{Path: filepath.Join(env.dir, "x.json"), Format: FormatICS})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest), "got %v", err)

	_, err = Export(ctx, env.st, env.cfg, ExportInput{Path: filepath.Join(env.dir, "x.json"), Course: "Storia"})
	require.True(t, errors.Is(err, errors.ErrNotFound), "got %v", err)

	_, err = Export(ctx, env.st, env.cfg, ExportInput{Path: filepath.Join(t.TempDir(), "x.json")})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest), "got %v", err)
}

func TestExport_PreservesExistingOnFailure(t *testing.T) {
	env := newTestEnv(t)
	seed(t, env)

	path := filepath.Join(env.dir, "schedule.json")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0600))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Export(ctx, env.st, env.cfg, ExportInput{Path: path})
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "previous", string(data))
}

func TestDefaultExportPath(t *testing.T) {
	now := time.Date(2026, 2, 16, 9, 30, 0, 0, time.UTC)

	path, err := defaultExportPath("Analisi 1", FormatICS, now)
	require.NoError(t, err)
	require.Equal(t, "analisi-1-2026-02-16T093000.ics", filepath.Base(path))

	path, err = defaultExportPath("", FormatJSON, now)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(filepath.Base(path), "schedule-"))
}

func TestReport(t *testing.T) {
	env := newTestEnv(t)

	empty, err := Report(env.st, env.cfg, ReportInput{})
	require.NoError(t, err)
	require.Equal(t, FormatMarkdown, empty.Format)
	require.Contains(t, empty.Content, "No lectures loaded.")

	seed(t, env)
	html, err := Report(env.st, env.cfg, ReportInput{Format: FormatHTML, Title: "Spring"})
	require.NoError(t, err)
	require.Contains(t, html.Content, "<title>Spring</title>")

	_, err = Report(env.st, env.cfg, ReportInput{Format: FormatICS})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}
