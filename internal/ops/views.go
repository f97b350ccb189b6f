package ops

import (
	"fmt"

	"github.com/hpungsan/unitime/internal/config"
	"github.com/hpungsan/unitime/internal/errors"
	"github.com/hpungsan/unitime/internal/store"
	"github.com/hpungsan/unitime/internal/timetable"
)

// WeeksInput selects one week bucket by index; nil returns all of them.
type WeeksInput struct {
	Week *int
}

// WeeksOutput contains the result of the Weeks operation.
type WeeksOutput struct {
	Weeks []timetable.WeekBucket `json:"weeks"`
	Total int                    `json:"total"`
	// Index is set when a single week was requested.
	Index *int `json:"index,omitempty"`
}

// Weeks groups the collection into Monday-anchored buckets.
func Weeks(st *store.Store, input WeeksInput) (*WeeksOutput, error) {
	buckets := timetable.GroupByWeek(st.Records())
	out := &WeeksOutput{Weeks: buckets, Total: len(buckets)}
	if input.Week == nil {
		return out, nil
	}

	i := *input.Week
	if i < 0 || i >= len(buckets) {
		return nil, errors.NewNotFound("week", fmt.Sprintf("%d (have %d)", i, len(buckets)))
	}
	out.Weeks = buckets[i : i+1]
	out.Index = &i
	return out, nil
}

// Stats summarizes the collection.
func Stats(st *store.Store, cfg *config.Config) *timetable.CourseStats {
	stats := timetable.ComputeStats(st.Records(), paletteOf(cfg))
	return &stats
}

// LegendOutput contains the result of the Legend operation.
type LegendOutput struct {
	Courses []timetable.LegendEntry `json:"courses"`
}

// Legend lists loaded courses with their display colors.
func Legend(st *store.Store, cfg *config.Config) *LegendOutput {
	return &LegendOutput{Courses: timetable.CourseLegend(st.Records(), paletteOf(cfg))}
}
