package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/broady/taskmaster/task"
)

const (
	fieldTitle = iota
	fieldPriority
	fieldDueDate
	fieldCount
)

// formSubmittedMsg is sent when a form passes local validation.
type formSubmittedMsg struct {
	id    string // empty when creating
	orig  task.Task
	draft task.Draft
}

type formCancelledMsg struct{}

// formModel edits a task draft. Validation runs before anything is sent.
type formModel struct {
	inputs []textinput.Model
	focus  int
	id     string
	orig   task.Task
	errs   task.FieldErrors
	err    string // server error from the last submit
	saving bool
}

// newForm returns an empty create form, or an edit form pre-filled from t.
// Inputs have no length limit so stored values are shown in full.
func newForm(t *task.Task) formModel {
	f := formModel{inputs: make([]textinput.Model, fieldCount)}

	title := textinput.New()
	title.Placeholder = "What needs doing?"
	title.Width = 40

	priority := textinput.New()
	priority.Placeholder = "High, Medium or Low"
	priority.Width = 20

	due := textinput.New()
	due.Placeholder = "YYYY-MM-DD"
	due.Width = 12

	if t != nil {
		d := task.DraftFrom(*t)
		f.id = t.ID
		f.orig = *t
		title.SetValue(d.Title)
		priority.SetValue(d.Priority)
		due.SetValue(d.DueDate)
	} else {
		priority.SetValue(string(task.Medium))
	}

	title.Focus()
	f.inputs[fieldTitle] = title
	f.inputs[fieldPriority] = priority
	f.inputs[fieldDueDate] = due
	return f
}

// Editing reports whether the form edits an existing task.
func (f formModel) Editing() bool { return f.id != "" }

// Draft returns the current field values.
func (f formModel) Draft() task.Draft {
	return task.Draft{
		Title:    f.inputs[fieldTitle].Value(),
		Priority: f.inputs[fieldPriority].Value(),
		DueDate:  f.inputs[fieldDueDate].Value(),
	}
}

func (f formModel) Init() tea.Cmd {
	return textinput.Blink
}

func (f formModel) Update(msg tea.Msg) (formModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		if f.saving {
			return f, nil
		}
		switch key.String() {
		case "esc":
			return f, func() tea.Msg { return formCancelledMsg{} }
		case "tab", "down":
			return f.setFocus((f.focus + 1) % fieldCount), nil
		case "shift+tab", "up":
			return f.setFocus((f.focus + fieldCount - 1) % fieldCount), nil
		case "enter":
			draft := f.Draft()
			f.errs = draft.Validate()
			if len(f.errs) > 0 {
				return f, nil
			}
			f.err = ""
			id := f.id
			return f, func() tea.Msg { return formSubmittedMsg{id: id, draft: draft} }
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f formModel) setFocus(i int) formModel {
	f.inputs[f.focus].Blur()
	f.focus = i
	f.inputs[f.focus].Focus()
	return f
}

func (f formModel) View() string {
	var b strings.Builder

	heading := "New task"
	if f.Editing() {
		heading = "Edit task"
	}
	b.WriteString(titleStyle.Render(heading))
	b.WriteString("\n")

	fields := []struct {
		label string
		key   string
	}{
		{"Title", "title"},
		{"Priority", "priority"},
		{"Due date", "dueDate"},
	}
	for i, field := range fields {
		label := subtleStyle.Render(field.label)
		if i == f.focus {
			label = selectedStyle.Render(field.label)
		}
		b.WriteString(label + "\n")
		b.WriteString(f.inputs[i].View() + "\n")
		if msg := f.errs[field.key]; msg != "" {
			b.WriteString(errorStyle.Render(msg) + "\n")
		}
		b.WriteString("\n")
	}

	if f.err != "" {
		b.WriteString(errorStyle.Render(f.err) + "\n")
	}
	if f.saving {
		b.WriteString(subtleStyle.Render("Saving..."))
	} else {
		b.WriteString(subtleStyle.Render("tab next field • enter save • esc cancel"))
	}
	return b.String()
}
