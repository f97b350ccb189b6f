package timetable

import (
	"bytes"
	"errors"
)

// WarningKind classifies a non-fatal parse finding.
type WarningKind string

const (
	WarnUnknownMonth WarningKind = "unknown_month"
	WarnNoTable      WarningKind = "no_table"
)

// Warning is surfaced to the caller instead of silently mis-dating data.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Row     int         `json:"row"`
	Message string      `json:"message"`
}

// ParseResult is the outcome of parsing one source document.
type ParseResult struct {
	CourseName string      `json:"course_name"`
	Records    []Record    `json:"records"`
	Rejected   []*RowError `json:"rejected,omitempty"`
	Warnings   []Warning   `json:"warnings,omitempty"`
}

// Parse runs extraction and normalization over one raw HTML document. Row
// failures are collected in the result; only unreadable input is an error.
func Parse(raw []byte, sourceIndex int) (*ParseResult, error) {
	src, err := NewHTMLSource(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	return ParseSource(src, sourceIndex), nil
}

// ParseSource is Parse over an already built DocumentSource.
func ParseSource(src DocumentSource, sourceIndex int) *ParseResult {
	doc := Extract(src, sourceIndex)
	result := &ParseResult{
		CourseName: doc.CourseName,
		Records:    make([]Record, 0, len(doc.Rows)),
	}
	if !doc.HasTable {
		result.Warnings = append(result.Warnings, Warning{
			Kind:    WarnNoTable,
			Row:     -1,
			Message: "document has no #" + TableID + " table",
		})
		return result
	}

	for _, row := range doc.Rows {
		rec, err := Normalize(row, sourceIndex, doc.CourseName)
		if err != nil {
			var rowErr *RowError
			if !errors.As(err, &rowErr) {
				rowErr = &RowError{Row: row.Position, Reason: err}
			}
			result.Rejected = append(result.Rejected, rowErr)
			if errors.Is(err, ErrUnknownMonth) {
				result.Warnings = append(result.Warnings, Warning{
					Kind:    WarnUnknownMonth,
					Row:     row.Position,
					Message: "unrecognized month " + rowErr.Detail + "; row skipped",
				})
			}
			continue
		}
		result.Records = append(result.Records, rec)
	}
	return result
}
