package domain

import "time"

// Status categories the tracker treats as closed work.
const (
	StatusCategoryDone      = "Done"
	StatusCategoryCancelled = "Cancelled"
)

// ClosedStatusCategories are excluded from every workload query.
var ClosedStatusCategories = []string{StatusCategoryDone, StatusCategoryCancelled}

// DateLayout is the tracker's due-date format.
const DateLayout = "2006-01-02"

// Project identifies a tracker project.
type Project struct {
	ID   string
	Key  string
	Name string
}

// Assignee is the subset of a user attached to an issue.
type Assignee struct {
	AccountID   string
	DisplayName string
}

// Issue is an open unit of work with an optional effort estimate.
type Issue struct {
	Key             string
	Project         Project
	EstimateSeconds int64
	DueDate         *time.Time
	StatusCategory  string
	Assignee        *Assignee
}

// Effort returns the issue's original estimate in seconds, never negative.
func (i Issue) Effort() int64 {
	if i.EstimateSeconds < 0 {
		return 0
	}
	return i.EstimateSeconds
}

// IsClosed reports whether the issue sits in a closed status category.
func (i Issue) IsClosed() bool {
	for _, c := range ClosedStatusCategories {
		if i.StatusCategory == c {
			return true
		}
	}
	return false
}

// DueRange is an inclusive due-date window. Either bound may be nil.
type DueRange struct {
	Start *time.Time
	End   *time.Time
}

// IsZero reports whether neither bound is set.
func (r DueRange) IsZero() bool {
	return r.Start == nil && r.End == nil
}

// Valid reports whether start does not come after end.
func (r DueRange) Valid() bool {
	if r.Start == nil || r.End == nil {
		return true
	}
	return !r.Start.After(*r.End)
}

// ParseDueDate parses a YYYY-MM-DD date; an empty string yields nil.
func ParseDueDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
