package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/broady/taskmaster/task"
)

// Results of the network commands. Each is applied to the cache in Update.

type tasksLoadedMsg struct {
	tasks []task.Task
	err   error
}

type taskCreatedMsg struct {
	task task.Task
	err  error
}

type taskSavedMsg struct {
	task task.Task
	err  error
}

// taskToggledMsg carries the task as it was before the optimistic flip.
type taskToggledMsg struct {
	prior task.Task
	task  task.Task
	err   error
}

type taskRefetchedMsg struct {
	prior task.Task
	task  task.Task
	err   error
}

type taskDeletedMsg struct {
	id  string
	err error
}

func loadTasks(ctx context.Context, api TaskAPI) tea.Cmd {
	return func() tea.Msg {
		tasks, err := api.List(ctx, task.Filter{})
		return tasksLoadedMsg{tasks: tasks, err: err}
	}
}

func createTask(ctx context.Context, api TaskAPI, n task.New) tea.Cmd {
	return func() tea.Msg {
		t, err := api.Create(ctx, n)
		return taskCreatedMsg{task: t, err: err}
	}
}

func saveTask(ctx context.Context, api TaskAPI, id string, p task.Patch) tea.Cmd {
	return func() tea.Msg {
		t, err := api.Update(ctx, id, p)
		return taskSavedMsg{task: t, err: err}
	}
}

func toggleTask(ctx context.Context, api TaskAPI, prior task.Task) tea.Cmd {
	return func() tea.Msg {
		t, err := api.Update(ctx, prior.ID, task.SetCompleted(!prior.Completed))
		return taskToggledMsg{prior: prior, task: t, err: err}
	}
}

func refetchTask(ctx context.Context, api TaskAPI, prior task.Task) tea.Cmd {
	return func() tea.Msg {
		t, err := api.Get(ctx, prior.ID)
		return taskRefetchedMsg{prior: prior, task: t, err: err}
	}
}

func deleteTask(ctx context.Context, api TaskAPI, id string) tea.Cmd {
	return func() tea.Msg {
		return taskDeletedMsg{id: id, err: api.Delete(ctx, id)}
	}
}
