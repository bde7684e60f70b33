package task

import "strings"

// Draft is raw form input from a client, before normalisation.
type Draft struct {
	Title    string
	Priority string
	DueDate  string
}

// FieldErrors maps a form field ("title", "priority", "dueDate") to the
// message shown next to it.
type FieldErrors map[string]string

// DraftFrom returns a draft pre-filled from an existing task, for editing.
func DraftFrom(t Task) Draft {
	return Draft{Title: t.Title, Priority: string(t.Priority), DueDate: t.DueDate}
}

// Validate applies the form rules: a non-blank title, a priority in any
// letter case, and an exact YYYY-MM-DD due date.
func (d Draft) Validate() FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(d.Title) == "" {
		errs["title"] = "Title is required."
	}
	if _, ok := ParsePriority(d.Priority); !ok {
		errs["priority"] = "Priority must be High, Medium, or Low."
	}
	dueDate := strings.TrimSpace(d.DueDate)
	switch {
	case dueDate == "":
		errs["dueDate"] = "Due date is required."
	case !IsFullISODate(dueDate):
		errs["dueDate"] = "Date must be in YYYY-MM-DD format."
	}
	return errs
}

// Normalize converts a valid draft to the fields sent to the server: the
// title is trimmed and the priority is folded to title case. Call Validate
// first; Normalize on an invalid draft returns ok=false.
func (d Draft) Normalize() (New, bool) {
	if len(d.Validate()) > 0 {
		return New{}, false
	}
	p, _ := ParsePriority(d.Priority)
	return New{
		Title:    strings.TrimSpace(d.Title),
		Priority: p,
		DueDate:  strings.TrimSpace(d.DueDate),
	}, true
}
