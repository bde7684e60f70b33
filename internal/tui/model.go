// Package tui is the interactive terminal client for a TaskMaster server.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/broady/taskmaster/internal/logging"
	"github.com/broady/taskmaster/internal/taskcache"
	"github.com/broady/taskmaster/task"
)

// TaskAPI is the server the UI talks to. *client.Client satisfies it.
type TaskAPI interface {
	List(ctx context.Context, f task.Filter) ([]task.Task, error)
	Get(ctx context.Context, id string) (task.Task, error)
	Create(ctx context.Context, n task.New) (task.Task, error)
	Update(ctx context.Context, id string, p task.Patch) (task.Task, error)
	Delete(ctx context.Context, id string) error
}

// mode is the screen the model is showing.
type mode int

const (
	modeList mode = iota
	modeForm
	modeConfirm
)

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger. The UI owns the terminal, so this should write
// to a file.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) { m.logger = l }
}

// WithTogglePolicy sets what happens when the server rejects a toggle.
func WithTogglePolicy(p taskcache.ToggleFailurePolicy) Option {
	return func(m *Model) { m.policy = p }
}

// Model is the Bubble Tea model for the task list and its dialogs.
type Model struct {
	ctx    context.Context
	api    TaskAPI
	cache  *taskcache.Cache
	policy taskcache.ToggleFailurePolicy
	logger *slog.Logger

	filter  task.Filter
	cursor  int
	mode    mode
	form    formModel
	confirm task.Task
	spinner spinner.Model
	busy    string // label for a toggle or delete in flight; "" while loading

	width  int
	height int
}

// New returns a model that loads its tasks from api on Init.
func New(api TaskAPI, opts ...Option) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = selectedStyle

	m := Model{
		ctx:     context.Background(),
		api:     api,
		cache:   taskcache.New(),
		policy:  taskcache.DefaultToggleFailurePolicy,
		logger:  logging.Discard(),
		filter:  task.Filter{Priority: task.AllPriorities, Status: task.AnyStatus},
		spinner: s,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Run starts the UI and blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, api TaskAPI, opts ...Option) error {
	m := New(api, opts...)
	m.ctx = ctx
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	m.cache.Start()
	return tea.Batch(m.spinner.Tick, loadTasks(m.ctx, m.api))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.cache.Phase() != taskcache.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tasksLoadedMsg:
		if msg.err != nil {
			m.logger.Warn("loading tasks failed", slog.Any("error", msg.err))
			m.cache.Replace(nil)
			m.cache.Fail(msg.err)
		} else {
			m.cache.Replace(msg.tasks)
		}
		m.clampCursor()
		return m, nil

	case taskCreatedMsg:
		if msg.err != nil {
			return m.saveFailed("creating task failed", msg.err), nil
		}
		m.cache.Prepend(msg.task)
		m.mode = modeList
		m.selectID(msg.task.ID)
		return m, nil

	case taskSavedMsg:
		if msg.err != nil {
			return m.saveFailed("updating task failed", msg.err), nil
		}
		m.cache.Put(msg.task)
		m.mode = modeList
		m.clampCursor()
		return m, nil

	case taskToggledMsg:
		if msg.err == nil {
			m.cache.Put(msg.task)
			m.clampCursor()
			return m, nil
		}
		m.logger.Warn("toggling task failed",
			slog.String("id", msg.prior.ID),
			slog.String("policy", string(m.policy)),
			slog.Any("error", msg.err))
		if m.cache.ToggleFailed(m.policy, msg.prior, msg.err) {
			return m, refetchTask(m.ctx, m.api, msg.prior)
		}
		m.clampCursor()
		return m, nil

	case taskRefetchedMsg:
		if msg.err != nil {
			m.logger.Warn("refetching task failed", slog.String("id", msg.prior.ID), slog.Any("error", msg.err))
		}
		m.cache.Refetched(msg.prior, msg.task, msg.err)
		m.clampCursor()
		return m, nil

	case taskDeletedMsg:
		if msg.err != nil {
			m.logger.Warn("deleting task failed", slog.String("id", msg.id), slog.Any("error", msg.err))
			m.cache.Fail(msg.err)
			return m, nil
		}
		m.cache.Remove(msg.id)
		m.clampCursor()
		return m, nil

	case formSubmittedMsg:
		n, ok := msg.draft.Normalize()
		if !ok {
			return m, nil
		}
		if msg.id == "" {
			m.form.saving = true
			return m, createTask(m.ctx, m.api, n)
		}
		patch := task.Diff(msg.orig, n)
		if patch.IsEmpty() {
			m.mode = modeList
			return m, nil
		}
		m.form.saving = true
		return m, saveTask(m.ctx, m.api, msg.id, patch)

	case formCancelledMsg:
		m.mode = modeList
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeForm:
			var cmd tea.Cmd
			m.form, cmd = m.form.Update(msg)
			return m, cmd
		case modeConfirm:
			return m.updateConfirm(msg)
		}
		return m.updateList(msg)
	}

	if m.mode == modeForm {
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.visible()

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(visible)-1 {
			m.cursor++
		}
	case "p":
		m.filter.Priority = next(task.PriorityFilters(), m.filter.Priority)
		m.clampCursor()
	case "s":
		m.filter.Status = next(task.StatusFilters(), m.filter.Status)
		m.clampCursor()
	case "x":
		m.cache.ClearError()
	case "r":
		m.busy = ""
		return m, tea.Batch(m.start(), loadTasks(m.ctx, m.api))
	case "a":
		m.form = newForm(nil)
		m.mode = modeForm
		return m, m.form.Init()
	}

	if len(visible) == 0 {
		return m, nil
	}
	selected := visible[m.cursor]

	switch msg.String() {
	case " ", "space":
		prior, ok := m.cache.ToggleLocal(selected.ID)
		if !ok {
			return m, nil
		}
		m.clampCursor()
		m.busy = "Saving..."
		return m, tea.Batch(m.start(), toggleTask(m.ctx, m.api, prior))
	case "e":
		m.form = newForm(&selected)
		m.mode = modeForm
		return m, m.form.Init()
	case "d":
		m.confirm = selected
		m.mode = modeConfirm
	}
	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.mode = modeList
		m.busy = "Deleting..."
		return m, tea.Batch(m.start(), deleteTask(m.ctx, m.api, m.confirm.ID))
	case "n", "N", "esc":
		m.mode = modeList
	}
	return m, nil
}

// start marks a request in flight. It returns a spinner tick unless one is
// already running.
func (m *Model) start() tea.Cmd {
	running := m.cache.Phase() == taskcache.Loading
	m.cache.Start()
	if running {
		return nil
	}
	return m.spinner.Tick
}

// saveFailed keeps the form open with the server's message so the input
// is not lost.
func (m Model) saveFailed(msg string, err error) Model {
	m.logger.Warn(msg, slog.Any("error", err))
	m.form.saving = false
	m.form.err = taskcache.Message(err)
	return m
}

func (m Model) visible() []task.Task {
	return m.cache.Visible(m.filter)
}

// clampCursor keeps the cursor inside the visible list after it shrinks.
func (m *Model) clampCursor() {
	n := len(m.visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) selectID(id string) {
	m.cursor = 0
	if i := slices.IndexFunc(m.visible(), func(t task.Task) bool { return t.ID == id }); i >= 0 {
		m.cursor = i
	}
}

// next returns the value after cur in values, wrapping around.
func next[T comparable](values []T, cur T) T {
	i := slices.Index(values, cur)
	return values[(i+1)%len(values)]
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("TaskMaster"))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render(fmt.Sprintf("Priority: %s   Status: %s   (%d of %d)",
		m.filter.Priority, m.filter.Status, len(m.visible()), m.cache.Len())))
	b.WriteString("\n\n")

	if e := m.cache.Err(); e != "" {
		b.WriteString(errorBannerStyle.Render(e + "  " + subtleStyle.Render("(x to dismiss)")))
		b.WriteString("\n\n")
	}

	switch m.mode {
	case modeForm:
		b.WriteString(boxStyle.Render(m.form.View()))
		return b.String()
	case modeConfirm:
		b.WriteString(boxStyle.Render(fmt.Sprintf("Delete %q?\n\n%s",
			m.confirm.Title, subtleStyle.Render("y delete • n cancel"))))
		return b.String()
	}

	switch {
	case m.cache.Phase() != taskcache.Loading:
		b.WriteString(m.renderList())
	case m.busy == "":
		b.WriteString(m.spinner.View() + " Loading tasks...\n")
	default:
		b.WriteString(m.renderList())
		b.WriteString(m.spinner.View() + " " + m.busy + "\n")
	}

	b.WriteString(statusBarStyle.Render(
		"↑/↓ move • space done • a add • e edit • d delete • p priority • s status • r reload • q quit"))
	return b.String()
}

func (m Model) renderList() string {
	visible := m.visible()
	if len(visible) == 0 {
		if m.cache.Len() == 0 {
			return subtleStyle.Render("No tasks yet. Press a to add one.") + "\n"
		}
		return subtleStyle.Render("No tasks match the current filters.") + "\n"
	}

	width := 0
	for _, t := range visible {
		width = max(width, lipgloss.Width(t.Title))
	}

	var b strings.Builder
	for i, t := range visible {
		cursor := "  "
		if i == m.cursor {
			cursor = selectedStyle.Render("> ")
		}
		check := "[ ]"
		if t.Completed {
			check = checkStyle.Render("[✓]")
		}
		title := t.Title + strings.Repeat(" ", width-lipgloss.Width(t.Title))
		switch {
		case t.Completed:
			title = completedStyle.Render(title)
		case i == m.cursor:
			title = selectedStyle.Render(title)
		}
		fmt.Fprintf(&b, "%s%s %s %s  %s  %s\n",
			priorityBar(t.Priority), cursor, check, title, subtleStyle.Render(t.DueDate), priorityBadge(t.Priority))
	}
	return b.String()
}
