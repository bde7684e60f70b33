package task

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Title     *string   `json:"title,omitempty" validate:"omitnil,min=1"`
	Priority  *Priority `json:"priority,omitempty" validate:"omitnil,priority"`
	DueDate   *string   `json:"dueDate,omitempty" validate:"omitnil,isodate"`
	Completed *bool     `json:"completed,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Priority == nil && p.DueDate == nil && p.Completed == nil
}

// Validate checks every supplied field. An explicit empty title is rejected so
// that a patch can never break the non-empty title invariant.
func (p Patch) Validate() error {
	var errs ValidationError
	if p.Title != nil && *p.Title == "" {
		errs.add("title", "required")
	}
	if p.Priority != nil && !p.Priority.Valid() {
		errs.add("priority", priorityMessage)
	}
	if p.DueDate != nil && !IsISODate(*p.DueDate) {
		errs.add("dueDate", dueDateMessage)
	}
	return errs.orNil()
}

// Apply returns t with the supplied fields replaced. It does not validate.
func (p Patch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t
}

// Diff returns a patch that turns t into n. Fields that already match are
// left nil, so an edit never rewrites values the user did not touch.
func Diff(t Task, n New) Patch {
	var p Patch
	if n.Title != t.Title {
		p.Title = &n.Title
	}
	if n.Priority != t.Priority {
		p.Priority = &n.Priority
	}
	if n.DueDate != t.DueDate {
		p.DueDate = &n.DueDate
	}
	return p
}

// SetCompleted returns a patch that only changes the completed flag.
func SetCompleted(done bool) Patch {
	return Patch{Completed: &done}
}

// Replace returns a patch that overwrites every mutable field with t's values.
func Replace(t Task) Patch {
	return Patch{
		Title:     &t.Title,
		Priority:  &t.Priority,
		DueDate:   &t.DueDate,
		Completed: &t.Completed,
	}
}
