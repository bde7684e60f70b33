// Package task defines the Task record and the validation contract shared by
// the API server and its clients.
//
// Both sides call the same predicates: the server validates decoded request
// structs through validator tags installed by [RegisterValidations], and the
// client validates form input with [Draft.Validate] before any network call.
package task

import (
	"regexp"
	"strings"
)

// Priority is the urgency level of a task.
type Priority string

const (
	Low    Priority = "Low"
	Medium Priority = "Medium"
	High   Priority = "High"
)

// Priorities returns the enumerated priorities in display order.
func Priorities() []Priority {
	return []Priority{High, Medium, Low}
}

// Valid reports whether p is one of the canonical enumerated values.
// The comparison is case-sensitive.
func (p Priority) Valid() bool {
	switch p {
	case Low, Medium, High:
		return true
	}
	return false
}

func (p Priority) String() string { return string(p) }

// ParsePriority folds s to a canonical Priority. Matching ignores case and
// surrounding whitespace, so "hIgH" parses as High.
func ParsePriority(s string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return Low, true
	case "medium":
		return Medium, true
	case "high":
		return High, true
	}
	return "", false
}

var (
	isoDatePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	isoDateFull   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// IsISODate reports whether s begins with a YYYY-MM-DD shaped prefix.
//
// This is a shape check, not a calendar check: "2024-13-45" and
// "2024-07-01T10:00:00Z" both pass.
func IsISODate(s string) bool {
	return isoDatePrefix.MatchString(s)
}

// IsFullISODate reports whether s is exactly YYYY-MM-DD shaped.
// Client forms use this stricter rule; the server accepts any matching prefix.
func IsFullISODate(s string) bool {
	return isoDateFull.MatchString(s)
}

// Task is the unit of work managed by the API.
type Task struct {
	// ID is assigned by the server on creation and never changes.
	ID string `json:"id"`
	// Title is the non-empty task description.
	Title string `json:"title"`
	// Priority is one of Low, Medium or High.
	Priority Priority `json:"priority"`
	// DueDate starts with a YYYY-MM-DD date.
	DueDate string `json:"dueDate"`
	// Completed is false on creation.
	Completed bool `json:"completed"`
}

// New holds the caller-supplied fields of a task to be created.
type New struct {
	Title    string   `json:"title" validate:"required"`
	Priority Priority `json:"priority" validate:"required,priority"`
	DueDate  string   `json:"dueDate" validate:"required,isodate"`
}

// Validate checks n against the same rules the server applies on create.
func (n New) Validate() error {
	var errs ValidationError
	if n.Title == "" {
		errs.add("title", "required")
	}
	switch {
	case n.Priority == "":
		errs.add("priority", "required")
	case !n.Priority.Valid():
		errs.add("priority", priorityMessage)
	}
	switch {
	case n.DueDate == "":
		errs.add("dueDate", "required")
	case !IsISODate(n.DueDate):
		errs.add("dueDate", dueDateMessage)
	}
	return errs.orNil()
}
