package ops

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/hpungsan/unitime/internal/errors"
	"github.com/hpungsan/unitime/internal/logger"
	"github.com/hpungsan/unitime/internal/store"
	"github.com/hpungsan/unitime/internal/timetable"
)

// RemoveCourseInput contains parameters for the RemoveCourse operation.
type RemoveCourseInput struct {
	Name string // required, exact match
}

// RemoveCourseOutput contains the result of the RemoveCourse operation.
type RemoveCourseOutput struct {
	Name      string `json:"name"`
	Removed   int    `json:"removed"`
	Remaining int    `json:"remaining"`
}

// RemoveCourse deletes every record of one course. The name is not trimmed
// or case-folded; matching is exact.
func RemoveCourse(ctx context.Context, st *store.Store, log *zap.Logger, input RemoveCourseInput) (*RemoveCourseOutput, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.NewInvalidRequest("name is required")
	}

	var removed int
	next, err := st.Update(ctx, func(current []timetable.Record) ([]timetable.Record, error) {
		kept := timetable.RemoveCourse(current, input.Name)
		removed = len(current) - len(kept)
		if removed == 0 {
			return nil, errors.NewNotFound("course", input.Name)
		}
		return kept, nil
	})
	if err != nil {
		return nil, err
	}

	logger.OrNop(log).Info("course removed",
		zap.String("course", input.Name),
		zap.Int("removed", removed))

	return &RemoveCourseOutput{
		Name:      input.Name,
		Removed:   removed,
		Remaining: len(next),
	}, nil
}

// ClearOutput contains the result of the Clear operation.
type ClearOutput struct {
	Cleared int `json:"cleared"`
}

// Clear empties the collection.
func Clear(ctx context.Context, st *store.Store, log *zap.Logger) (*ClearOutput, error) {
	var cleared int
	_, err := st.Update(ctx, func(current []timetable.Record) ([]timetable.Record, error) {
		cleared = len(current)
		return timetable.Clear(), nil
	})
	if err != nil {
		return nil, err
	}

	logger.OrNop(log).Info("schedule cleared", zap.Int("cleared", cleared))
	return &ClearOutput{Cleared: cleared}, nil
}
