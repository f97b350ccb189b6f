package ops

import (
	"fmt"

	"github.com/hpungsan/unitime/internal/config"
	"github.com/hpungsan/unitime/internal/errors"
	"github.com/hpungsan/unitime/internal/store"
)

// ReportInput contains parameters for the Report operation.
type ReportInput struct {
	Format ExportFormat // md (default) or html
	Title  string       // optional
	Course string       // optional exact course filter
}

// ReportOutput contains the rendered report.
type ReportOutput struct {
	Format  ExportFormat `json:"format"`
	Content string       `json:"content"`
}

// Report renders the schedule report without writing a file. An empty
// collection still renders.
func Report(st *store.Store, cfg *config.Config, input ReportInput) (*ReportOutput, error) {
	format := input.Format
	if format == "" {
		format = FormatMarkdown
	}
	if format != FormatMarkdown && format != FormatHTML {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("report format must be %q or %q", FormatMarkdown, FormatHTML))
	}

	records := st.Records()
	if input.Course != "" {
		records = filterCourse(records, input.Course)
		if len(records) == 0 {
			return nil, errors.NewNotFound("course", input.Course)
		}
	}

	body, err := renderReport(format, input.Title, records, paletteOf(cfg))
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &ReportOutput{Format: format, Content: string(body)}, nil
}
