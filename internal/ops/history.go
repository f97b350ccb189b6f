package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/unitime/internal/db"
)

// HistoryInput contains parameters for the History operation.
type HistoryInput struct {
	Limit  int // default: 20, max: 100
	Offset int
}

// HistoryOutput contains the result of the History operation.
type HistoryOutput struct {
	Items      []db.ImportRow `json:"items"`
	Pagination Pagination     `json:"pagination"`
	Sort       string         `json:"sort"`
}

// History lists imported files, newest first.
func History(ctx context.Context, database *sql.DB, input HistoryInput) (*HistoryOutput, error) {
	limit := clampLimit(input.Limit, DefaultHistoryLimit, MaxHistoryLimit)
	offset := max(input.Offset, 0)

	rows, total, err := db.ListImports(ctx, database, limit, offset)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []db.ImportRow{}
	}

	return &HistoryOutput{
		Items:      rows,
		Pagination: newPagination(limit, offset, len(rows), total),
		Sort:       "imported_at_desc",
	}, nil
}
