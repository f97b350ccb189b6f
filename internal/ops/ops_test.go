package ops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/unitime/internal/errors"
)

func TestList_FiltersAndPagination(t *testing.T) {
	env := newTestEnv(t)
	seed(t, env)

	all, err := List(env.st, ListInput{})
	require.NoError(t, err)
	require.Equal(t, 3, all.Pagination.Total)
	require.Equal(t, DefaultListLimit, all.Pagination.Limit)
	require.Equal(t, "full_date_asc", all.Sort)

	fisica, err := List(env.st, ListInput{Course: "Fisica"})
	require.NoError(t, err)
	require.Equal(t, []string{"course-0-row-0", "course-0-row-1"}, recordIDs(fisica.Items))

	ranged, err := List(env.st, ListInput{From: "2026-02-17", To: "2026-02-17"})
	require.NoError(t, err)
	require.Len(t, ranged.Items, 1)
	require.Equal(t, "Chimica", ranged.Items[0].CourseName)

	page, err := List(env.st, ListInput{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Equal(t, []string{"course-1-row-0", "course-0-row-1"}, recordIDs(page.Items))
	require.False(t, page.Pagination.HasMore)

	first, err := List(env.st, ListInput{Limit: 1})
	require.NoError(t, err)
	require.True(t, first.Pagination.HasMore)

	beyond, err := List(env.st, ListInput{Offset: 10})
	require.NoError(t, err)
	require.NotNil(t, beyond.Items)
	require.Empty(t, beyond.Items)

	capped, err := List(env.st, ListInput{Limit: MaxListLimit + 1})
	require.NoError(t, err)
	require.Equal(t, MaxListLimit, capped.Pagination.Limit)
}

func TestList_InvalidRange(t *testing.T) {
	env := newTestEnv(t)

	_, err := List(env.st, ListInput{From: "16/02/2026"})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = List(env.st, ListInput{From: "2026-03-01", To: "2026-02-01"})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestWeeks(t *testing.T) {
	env := newTestEnv(t)

	empty, err := Weeks(env.st, WeeksInput{})
	require.NoError(t, err)
	require.NotNil(t, empty.Weeks)
	require.Equal(t, 0, empty.Total)

	seed(t, env)
	all, err := Weeks(env.st, WeeksInput{})
	require.NoError(t, err)
	require.Equal(t, 1, all.Total)
	require.Equal(t, "2026-02-16", all.Weeks[0].WeekStart.String())
	require.Len(t, all.Weeks[0].Records, 3)
	require.Nil(t, all.Index)

	zero := 0
	one, err := Weeks(env.st, WeeksInput{Week: &zero})
	require.NoError(t, err)
	require.Len(t, one.Weeks, 1)
	require.Equal(t, 0, *one.Index)

	bad := 1
	_, err = Weeks(env.st, WeeksInput{Week: &bad})
	require.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestStatsAndLegend(t *testing.T) {
	env := newTestEnv(t)
	seed(t, env)

	stats := Stats(env.st, env.cfg)
	require.Equal(t, 6.0, stats.TotalHours)
	require.Equal(t, 3, stats.LectureCount)
	require.Equal(t, map[string]int{"February": 3}, stats.MonthDistribution)
	require.Len(t, stats.CourseBreakdown, 2)
	require.Equal(t, "Fisica", stats.CourseBreakdown[0].Name)
	require.Equal(t, 4.0, stats.CourseBreakdown[0].Hours)
	require.Equal(t, "#10B981", stats.CourseBreakdown[1].Color)

	env.cfg.Palette = []string{"#111111"}
	legend := Legend(env.st, env.cfg)
	require.Len(t, legend.Courses, 2)
	require.Equal(t, "Fisica", legend.Courses[0].Name)
	require.Equal(t, "#111111", legend.Courses[0].Color)
	require.Equal(t, 1, legend.Courses[1].ColorIndex)
	require.Equal(t, "#111111", legend.Courses[1].Color)
}

func TestRemoveCourse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seed(t, env)

	_, err := RemoveCourse(ctx, env.st, nil, RemoveCourseInput{Name: " "})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	// Matching is exact: no case folding.
	_, err = RemoveCourse(ctx, env.st, nil, RemoveCourseInput{Name: "fisica"})
	require.True(t, errors.Is(err, errors.ErrNotFound))
	require.Equal(t, 3, env.st.Len())

	out, err := RemoveCourse(ctx, env.st, nil, RemoveCourseInput{Name: "Fisica"})
	require.NoError(t, err)
	require.Equal(t, 2, out.Removed)
	require.Equal(t, 1, out.Remaining)
	require.Equal(t, "Chimica", env.st.Records()[0].CourseName)
}

func TestRemoveCourse_ReimportMayReuseColorIndex(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seed(t, env)

	_, err := RemoveCourse(ctx, env.st, nil, RemoveCourseInput{Name: "Fisica"})
	require.NoError(t, err)

	// One distinct course remains (index 1), so the next batch starts at 1.
	out, err := ImportDocuments(ctx, env.st, env.db, env.cfg, nil, []Document{
		{Name: "storia.html", Content: []byte(timetableHTML("Lesson schedule for Storia",
			"venerdì 20 febbraio 2026|08:30 - 10:00|Aula 3"))},
	})
	require.NoError(t, err)
	require.Equal(t, 1, out.Files[0].SourceIndex)

	legend := Legend(env.st, env.cfg)
	require.Equal(t, legend.Courses[0].ColorIndex, legend.Courses[1].ColorIndex)
}

func TestClear(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seed(t, env)

	out, err := Clear(ctx, env.st, nil)
	require.NoError(t, err)
	require.Equal(t, 3, out.Cleared)
	require.Equal(t, 0, env.st.Len())

	again, err := Clear(ctx, env.st, nil)
	require.NoError(t, err)
	require.Equal(t, 0, again.Cleared)
}
