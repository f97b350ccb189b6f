package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var importToolDef = mcp.NewTool("timetable_import",
	mcp.WithDescription("Import exported timetable HTML documents. Give file paths or inline documents; "+
		"each file becomes one course. Rows that cannot be parsed are reported, not stored."),
	mcp.WithArray("paths",
		mcp.Description("Paths to .html/.htm files, directly inside an allowed directory"),
		mcp.Items(map[string]any{"type": "string"}),
	),
	mcp.WithArray("documents",
		mcp.Description("Inline documents as {name, html} objects"),
		mcp.Items(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name": map[string]any{"type": "string"},
				"html": map[string]any{"type": "string"},
			},
			"required": []string{"html"},
		}),
	),
)

var listToolDef = mcp.NewTool("timetable_list",
	mcp.WithDescription("List lecture sessions in date order, optionally filtered by course and date range."),
	mcp.WithString("course", mcp.Description("Exact course name")),
	mcp.WithString("from", mcp.Description("Earliest date, YYYY-MM-DD (inclusive)")),
	mcp.WithString("to", mcp.Description("Latest date, YYYY-MM-DD (inclusive)")),
	mcp.WithNumber("limit", mcp.Description("Max items (default 50, max 500)")),
	mcp.WithNumber("offset", mcp.Description("Items to skip")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var weeksToolDef = mcp.NewTool("timetable_weeks",
	mcp.WithDescription("Group sessions into Monday-anchored weeks, ascending. Pass week to get a single week by index."),
	mcp.WithNumber("week", mcp.Description("Zero-based week index")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var statsToolDef = mcp.NewTool("timetable_stats",
	mcp.WithDescription("Total hours, lecture count, sessions per month and hours per course."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var legendToolDef = mcp.NewTool("timetable_legend",
	mcp.WithDescription("Loaded courses with their display colors."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var removeCourseToolDef = mcp.NewTool("timetable_remove_course",
	mcp.WithDescription("Remove every session of a course. The name must match exactly."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Course name as listed by timetable_legend")),
	mcp.WithDestructiveHintAnnotation(true),
)

var clearToolDef = mcp.NewTool("timetable_clear",
	mcp.WithDescription("Remove all loaded sessions."),
	mcp.WithDestructiveHintAnnotation(true),
)

var historyToolDef = mcp.NewTool("timetable_history",
	mcp.WithDescription("Recently imported files, newest first."),
	mcp.WithNumber("limit", mcp.Description("Max items (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Items to skip")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var exportToolDef = mcp.NewTool("timetable_export",
	mcp.WithDescription("Write the schedule to a file: json, ics (calendar), xlsx (spreadsheet), md or html (report)."),
	mcp.WithString("path", mcp.Description("Output path; defaults to ~/.unitime/exports/<name>-<timestamp>.<format>")),
	mcp.WithString("format", mcp.Description("Output format; inferred from path when omitted"),
		mcp.Enum("json", "ics", "xlsx", "md", "html")),
	mcp.WithString("course", mcp.Description("Export only this course (exact name)")),
)
