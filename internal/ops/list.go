package ops

import (
	"strings"

	"github.com/hpungsan/unitime/internal/errors"
	"github.com/hpungsan/unitime/internal/store"
	"github.com/hpungsan/unitime/internal/timetable"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Course string // optional, exact course name
	From   string // optional, YYYY-MM-DD inclusive
	To     string // optional, YYYY-MM-DD inclusive
	Limit  int    // default: 50, max: 500
	Offset int    // default: 0
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []timetable.Record `json:"items"`
	Pagination Pagination         `json:"pagination"`
	Sort       string             `json:"sort"`
}

// List returns records in collection order (ascending date), filtered and paginated.
func List(st *store.Store, input ListInput) (*ListOutput, error) {
	from, to, err := parseRange(input.From, input.To)
	if err != nil {
		return nil, err
	}

	limit := clampLimit(input.Limit, DefaultListLimit, MaxListLimit)
	offset := max(input.Offset, 0)
	course := strings.TrimSpace(input.Course)

	matched := []timetable.Record{}
	for _, r := range st.Records() {
		if course != "" && r.CourseName != course {
			continue
		}
		if !from.IsZero() && r.FullDate.Compare(from) < 0 {
			continue
		}
		if !to.IsZero() && r.FullDate.Compare(to) > 0 {
			continue
		}
		matched = append(matched, r)
	}

	total := len(matched)
	items := []timetable.Record{}
	if offset < total {
		items = matched[offset:min(offset+limit, total)]
	}

	return &ListOutput{
		Items:      items,
		Pagination: newPagination(limit, offset, len(items), total),
		Sort:       "full_date_asc",
	}, nil
}

// parseRange parses optional inclusive date bounds.
func parseRange(fromText, toText string) (from, to timetable.Date, err error) {
	if s := strings.TrimSpace(fromText); s != "" {
		if from, err = timetable.ParseDate(s); err != nil {
			return from, to, errors.NewInvalidRequest("from must be a YYYY-MM-DD date")
		}
	}
	if s := strings.TrimSpace(toText); s != "" {
		if to, err = timetable.ParseDate(s); err != nil {
			return from, to, errors.NewInvalidRequest("to must be a YYYY-MM-DD date")
		}
	}
	if !from.IsZero() && !to.IsZero() && from.Compare(to) > 0 {
		return from, to, errors.NewInvalidRequest("from must not be after to")
	}
	return from, to, nil
}
