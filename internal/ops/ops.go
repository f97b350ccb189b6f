package ops

import (
	"github.com/hpungsan/unitime/internal/config"
	"github.com/hpungsan/unitime/internal/timetable"
)

// Pagination limits
const (
	DefaultListLimit    = 50
	MaxListLimit        = 500
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

func newPagination(limit, offset, returned, total int) Pagination {
	return Pagination{
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+returned < total,
		Total:   total,
	}
}

// clampLimit applies the default when limit is unset and caps it at maxLimit.
func clampLimit(limit, def, maxLimit int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, maxLimit)
}

// paletteOf returns the configured palette, or the default one.
func paletteOf(cfg *config.Config) timetable.Palette {
	if cfg == nil || len(cfg.Palette) == 0 {
		return timetable.DefaultPalette
	}
	return timetable.Palette(cfg.Palette)
}
