// Package taskcache holds the client-side copy of the task collection and the
// state of the request that last touched it.
package taskcache

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/broady/taskmaster/client"
	"github.com/broady/taskmaster/task"
)

// Phase is the state of the most recent request.
type Phase int

const (
	Idle Phase = iota
	Loading
	Success
	Error
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Error:
		return "error"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// ToggleFailurePolicy decides what happens to an optimistic completion toggle
// when the server rejects it.
type ToggleFailurePolicy string

const (
	// Keep leaves the optimistic value in place and only reports the error.
	Keep ToggleFailurePolicy = "keep"
	// Rollback restores the value the task had before the toggle.
	Rollback ToggleFailurePolicy = "rollback"
	// Refetch reloads the task from the server, falling back to Rollback
	// when that fails too.
	Refetch ToggleFailurePolicy = "refetch"
)

// DefaultToggleFailurePolicy is used when none is configured.
const DefaultToggleFailurePolicy = Refetch

// ParseToggleFailurePolicy parses s case-insensitively. Empty means the default.
func ParseToggleFailurePolicy(s string) (ToggleFailurePolicy, error) {
	switch p := ToggleFailurePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DefaultToggleFailurePolicy, nil
	case Keep, Rollback, Refetch:
		return p, nil
	}
	return "", fmt.Errorf("unknown toggle failure policy %q (want keep, rollback or refetch)", s)
}

// Cache is the client's view of the collection. It is not safe for concurrent
// use; the TUI mutates it only from its update loop.
type Cache struct {
	tasks []task.Task
	phase Phase
	err   string
}

// New returns an empty cache in the Idle phase.
func New() *Cache {
	return &Cache{tasks: []task.Task{}}
}

// Tasks returns a copy of every cached task in display order.
func (c *Cache) Tasks() []task.Task {
	return slices.Clone(c.tasks)
}

// Len returns the number of cached tasks.
func (c *Cache) Len() int { return len(c.tasks) }

// Visible returns the tasks that pass f. The cache itself is never filtered.
func (c *Cache) Visible(f task.Filter) []task.Task {
	return f.Apply(c.tasks)
}

// Find returns the cached task with id.
func (c *Cache) Find(id string) (task.Task, bool) {
	i := c.index(id)
	if i < 0 {
		return task.Task{}, false
	}
	return c.tasks[i], true
}

// Phase returns the state of the last request.
func (c *Cache) Phase() Phase { return c.phase }

// Start marks a request as in flight.
func (c *Cache) Start() { c.phase = Loading }

// Replace swaps in a freshly loaded collection.
func (c *Cache) Replace(tasks []task.Task) {
	c.tasks = slices.Clone(tasks)
	if c.tasks == nil {
		c.tasks = []task.Task{}
	}
	c.phase = Success
}

// Prepend adds a newly created task at the front.
func (c *Cache) Prepend(t task.Task) {
	c.tasks = slices.Insert(c.tasks, 0, t)
	c.phase = Success
}

// Put replaces the cached task with the same id. Unknown ids are ignored.
func (c *Cache) Put(t task.Task) {
	if i := c.index(t.ID); i >= 0 {
		c.tasks[i] = t
	}
	c.phase = Success
}

// Remove drops the task with id.
func (c *Cache) Remove(id string) {
	if i := c.index(id); i >= 0 {
		c.tasks = slices.Delete(c.tasks, i, i+1)
	}
	c.phase = Success
}

// ToggleLocal flips the completed flag of id before the server confirms it.
// It returns the task as it was before the flip.
func (c *Cache) ToggleLocal(id string) (prior task.Task, ok bool) {
	i := c.index(id)
	if i < 0 {
		return task.Task{}, false
	}
	prior = c.tasks[i]
	c.tasks[i].Completed = !prior.Completed
	return prior, true
}

// Restore puts back a task captured by ToggleLocal.
func (c *Cache) Restore(prior task.Task) {
	if i := c.index(prior.ID); i >= 0 {
		c.tasks[i] = prior
	}
}

// ToggleFailed applies policy after the server rejected a toggle of prior.ID.
// It records err and reports whether the caller should refetch the task.
func (c *Cache) ToggleFailed(policy ToggleFailurePolicy, prior task.Task, err error) (refetch bool) {
	c.Fail(err)
	switch policy {
	case Keep:
		return false
	case Rollback:
		c.Restore(prior)
		return false
	}
	return true
}

// Refetched settles a Refetch: the server copy wins, or prior is restored if
// the refetch failed too. A task deleted in the meantime is dropped.
func (c *Cache) Refetched(prior task.Task, t task.Task, err error) {
	switch {
	case err == nil:
		if i := c.index(t.ID); i >= 0 {
			c.tasks[i] = t
		}
	case client.IsNotFound(err):
		if i := c.index(prior.ID); i >= 0 {
			c.tasks = slices.Delete(c.tasks, i, i+1)
		}
	default:
		c.Restore(prior)
	}
}

// Fail records a user-facing error and moves to the Error phase.
func (c *Cache) Fail(err error) {
	c.err = Message(err)
	c.phase = Error
}

// Err returns the current user-facing error, or "".
func (c *Cache) Err() string { return c.err }

// ClearError dismisses the current error.
func (c *Cache) ClearError() {
	c.err = ""
	if c.phase == Error {
		c.phase = Idle
	}
}

func (c *Cache) index(id string) int {
	return slices.IndexFunc(c.tasks, func(t task.Task) bool { return t.ID == id })
}

// Message turns an error from the client package into text for the user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr):
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fmt.Sprintf("Request failed (HTTP %d).", apiErr.Status)
	case errors.Is(err, context.DeadlineExceeded):
		return "The server took too long to respond."
	case errors.Is(err, client.ErrNetwork):
		return "Could not reach the TaskMaster server."
	}
	return err.Error()
}
