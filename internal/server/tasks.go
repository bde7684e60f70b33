package server

import (
	"context"
	"net/http"

	"github.com/broady/taskmaster"
	"github.com/broady/taskmaster/internal/store"
	"github.com/broady/taskmaster/task"
)

// Tasks implements the /api/tasks endpoints.
type Tasks struct {
	store *store.Store
}

// Register adds the task routes to svc.
func (h *Tasks) Register(svc *taskmaster.Service) {
	svc.Register("List", taskmaster.Query(h.List))
	svc.Register("Get", taskmaster.Query(h.Get).Path("/{id}"))
	svc.Register("Create", taskmaster.Exec(h.Create).WithStatus(http.StatusCreated))
	svc.Register("Update", taskmaster.Exec(h.Update).
		Method(http.MethodPut).
		Path("/{id}"))
	svc.Register("Delete", taskmaster.Exec(h.Delete).
		Method(http.MethodDelete).
		Path("/{id}").
		WithStatus(http.StatusNoContent))
}

// ListTasksParams holds the optional list filters, e.g.
// GET /api/tasks?priority=High&status=Incomplete.
type ListTasksParams struct {
	task.Filter
}

// TaskIDRequest addresses one task by its path id.
type TaskIDRequest struct {
	ID string `json:"-" schema:"id" validate:"required"`
}

// UpdateTaskRequest is a path id plus a partial update. An "id" key in the
// body is ignored. Field validation happens in the store after the id is
// resolved, so a missing task is reported before a bad body.
type UpdateTaskRequest struct {
	ID         string `json:"-" schema:"id" validate:"required"`
	task.Patch `validate:"-"`
}

// List returns every task, narrowed by the optional filters.
func (h *Tasks) List(ctx context.Context, req *ListTasksParams) ([]task.Task, error) {
	f, err := req.Filter.Normalize()
	if err != nil {
		return nil, taskmaster.NewError(taskmaster.CodeInvalidArgument, err.Error())
	}
	tasks := h.store.List(ctx)
	if f.IsZero() {
		return tasks, nil
	}
	return f.Apply(tasks), nil
}

// Get returns one task.
func (h *Tasks) Get(ctx context.Context, req *TaskIDRequest) (*task.Task, error) {
	t, err := h.store.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create adds a task. The server assigns the id and completed=false.
func (h *Tasks) Create(ctx context.Context, req *task.New) (*task.Task, error) {
	t, err := h.store.Create(ctx, *req)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Update applies the supplied fields to an existing task.
func (h *Tasks) Update(ctx context.Context, req *UpdateTaskRequest) (*task.Task, error) {
	t, err := h.store.Update(ctx, req.ID, req.Patch)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Delete removes a task.
func (h *Tasks) Delete(ctx context.Context, req *TaskIDRequest) (taskmaster.Empty, error) {
	return nil, h.store.Delete(ctx, req.ID)
}
