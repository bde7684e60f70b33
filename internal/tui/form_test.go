package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/broady/taskmaster/task"
)

func TestNewForm_Defaults(t *testing.T) {
	f := newForm(nil)

	if f.Editing() {
		t.Error("create form should not be editing")
	}
	if d := f.Draft(); d != (task.Draft{Priority: "Medium"}) {
		t.Errorf("draft = %+v", d)
	}
	if f.focus != fieldTitle || !f.inputs[fieldTitle].Focused() {
		t.Errorf("focus = %d", f.focus)
	}
	if !strings.Contains(f.View(), "New task") {
		t.Errorf("view:\n%s", f.View())
	}
}

func TestNewForm_Edit(t *testing.T) {
	f := newForm(&task.Task{ID: "7", Title: "Call mom", Priority: task.High, DueDate: "2024-07-05"})

	if !f.Editing() || f.id != "7" {
		t.Errorf("editing = %v id = %q", f.Editing(), f.id)
	}
	if !strings.Contains(f.View(), "Edit task") {
		t.Errorf("view:\n%s", f.View())
	}
}

func TestNewForm_EditKeepsFullValues(t *testing.T) {
	stored := task.Task{
		ID:       "7",
		Title:    strings.Repeat("x", 250),
		Priority: task.Low,
		DueDate:  "2024-07-01T10:00:00Z",
	}
	f := newForm(&stored)

	if d := f.Draft(); d != task.DraftFrom(stored) {
		t.Fatalf("draft = %+v, want the stored values untouched", d)
	}

	f, cmd := f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("a timestamp due date should not pass the form's date check")
	}
	if f.errs["dueDate"] == "" {
		t.Errorf("errs = %v", f.errs)
	}
	if f.errs["title"] != "" {
		t.Errorf("long title rejected: %v", f.errs)
	}
}

func TestForm_FocusWraps(t *testing.T) {
	f := newForm(nil)

	steps := []struct {
		key  tea.KeyMsg
		want int
	}{
		{tea.KeyMsg{Type: tea.KeyTab}, fieldPriority},
		{tea.KeyMsg{Type: tea.KeyTab}, fieldDueDate},
		{tea.KeyMsg{Type: tea.KeyTab}, fieldTitle},
		{tea.KeyMsg{Type: tea.KeyShiftTab}, fieldDueDate},
		{tea.KeyMsg{Type: tea.KeyUp}, fieldPriority},
	}
	for i, step := range steps {
		f, _ = f.Update(step.key)
		if f.focus != step.want {
			t.Fatalf("step %d: focus = %d, want %d", i, f.focus, step.want)
		}
		for j := range f.inputs {
			if f.inputs[j].Focused() != (j == step.want) {
				t.Fatalf("step %d: input %d focused = %v", i, j, f.inputs[j].Focused())
			}
		}
	}
}

func TestForm_SubmitCarriesDraft(t *testing.T) {
	f := newForm(&task.Task{ID: "7", Title: "Call mom", Priority: task.High, DueDate: "2024-07-05"})

	f, cmd := f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected submit, errs = %v", f.errs)
	}
	msg, ok := cmd().(formSubmittedMsg)
	if !ok {
		t.Fatalf("got %T", cmd())
	}
	want := task.Draft{Title: "Call mom", Priority: "High", DueDate: "2024-07-05"}
	if msg.id != "7" || msg.draft != want {
		t.Errorf("msg = %+v", msg)
	}
}

func TestForm_EscCancels(t *testing.T) {
	f := newForm(nil)
	_, cmd := f.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(formCancelledMsg); !ok {
		t.Error("expected formCancelledMsg")
	}
}
