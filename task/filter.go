package task

import (
	"fmt"
	"strings"
)

// PriorityFilter selects tasks by priority. The zero value matches all.
type PriorityFilter string

const (
	AllPriorities PriorityFilter = "All"
	OnlyHigh      PriorityFilter = "High"
	OnlyMedium    PriorityFilter = "Medium"
	OnlyLow       PriorityFilter = "Low"
)

// PriorityFilters returns the filter values in cycling order.
func PriorityFilters() []PriorityFilter {
	return []PriorityFilter{AllPriorities, OnlyHigh, OnlyMedium, OnlyLow}
}

// StatusFilter selects tasks by completion. The zero value matches all.
type StatusFilter string

const (
	AnyStatus  StatusFilter = "All"
	Completed  StatusFilter = "Completed"
	Incomplete StatusFilter = "Incomplete"
)

// StatusFilters returns the filter values in cycling order.
func StatusFilters() []StatusFilter {
	return []StatusFilter{AnyStatus, Completed, Incomplete}
}

// ParsePriorityFilter parses s case-insensitively. Empty means All.
func ParsePriorityFilter(s string) (PriorityFilter, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, string(AllPriorities)) {
		return AllPriorities, nil
	}
	if p, ok := ParsePriority(s); ok {
		return PriorityFilter(p), nil
	}
	return "", fmt.Errorf("unknown priority filter %q", s)
}

// ParseStatusFilter parses s case-insensitively. Empty means All.
func ParseStatusFilter(s string) (StatusFilter, error) {
	s = strings.TrimSpace(s)
	for _, f := range StatusFilters() {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	if s == "" {
		return AnyStatus, nil
	}
	return "", fmt.Errorf("unknown status filter %q", s)
}

// Filter combines a priority and a status predicate. Both must match.
type Filter struct {
	Priority PriorityFilter `json:"priority,omitempty" schema:"priority"`
	Status   StatusFilter   `json:"status,omitempty" schema:"status"`
}

// IsZero reports whether the filter matches every task.
func (f Filter) IsZero() bool {
	return (f.Priority == "" || f.Priority == AllPriorities) &&
		(f.Status == "" || f.Status == AnyStatus)
}

// Matches reports whether t passes both predicates.
func (f Filter) Matches(t Task) bool {
	if f.Priority != "" && f.Priority != AllPriorities && Priority(f.Priority) != t.Priority {
		return false
	}
	switch f.Status {
	case Completed:
		return t.Completed
	case Incomplete:
		return !t.Completed
	}
	return true
}

// Apply returns the matching tasks in their original order. The input slice
// is never modified; the result is always a fresh, non-nil slice.
func (f Filter) Apply(tasks []Task) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// Normalize validates a filter decoded from user input and replaces each
// value with its canonical spelling.
func (f Filter) Normalize() (Filter, error) {
	p, err := ParsePriorityFilter(string(f.Priority))
	if err != nil {
		return Filter{}, err
	}
	s, err := ParseStatusFilter(string(f.Status))
	if err != nil {
		return Filter{}, err
	}
	return Filter{Priority: p, Status: s}, nil
}
