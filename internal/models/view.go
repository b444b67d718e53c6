package models

import (
	"errors"
	"fmt"
	"strings"
)

// Filter selects tasks by completion status.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// ErrInvalidFilter is returned by ParseFilter for unknown filter names.
var ErrInvalidFilter = errors.New("filter must be 'all', 'active', or 'completed'")

// ParseFilter parses a filter name. The empty string means FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterActive:
		return FilterActive, nil
	case FilterCompleted:
		return FilterCompleted, nil
	default:
		return FilterAll, ErrInvalidFilter
	}
}

// Matches reports whether the task passes the completion filter.
func (f Filter) Matches(t Task) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// Counts summarises a task list.
type Counts struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Remaining int `json:"remaining"`
}

// Summary returns the page title shown for these counts.
func (c Counts) Summary() string {
	if c.Remaining > 0 {
		return fmt.Sprintf("Task Manager (%d left)", c.Remaining)
	}
	return "Task Manager"
}
