// Package store holds the in-memory task collection behind the API.
package store

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/broady/taskmaster/task"
	"github.com/google/uuid"
)

// ErrNotFound is returned when no task has the requested id.
var ErrNotFound = errors.New("task not found")

// Store is an ordered, process-local collection of tasks. Order is insertion
// order. State is lost when the process exits.
//
// A Store is safe for concurrent use; every operation runs under a single lock
// so each one is atomic with respect to the collection.
type Store struct {
	mu    sync.RWMutex
	tasks []task.Task
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator overrides the id source. The default is a random UUID.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithTasks preloads the store. The slice is copied.
func WithTasks(tasks []task.Task) Option {
	return func(s *Store) { s.tasks = slices.Clone(tasks) }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		tasks: []task.Task{},
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tasks == nil {
		s.tasks = []task.Task{}
	}
	return s
}

// Seed returns the three example tasks a fresh server starts with, each with
// a new id.
func Seed() []task.Task {
	return []task.Task{
		{ID: uuid.NewString(), Title: "Buy groceries", Priority: task.Medium, DueDate: "2024-07-01"},
		{ID: uuid.NewString(), Title: "Call mom", Priority: task.High, DueDate: "2024-07-05"},
		{ID: uuid.NewString(), Title: "Read a book", Priority: task.Low, DueDate: "2024-07-10"},
	}
}

// List returns a copy of every task in insertion order. Never nil.
func (s *Store) List(ctx context.Context) []task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tasks)
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// Get returns the task with the given id.
func (s *Store) Get(ctx context.Context, id string) (task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.index(id)
	if i < 0 {
		return task.Task{}, ErrNotFound
	}
	return s.tasks[i], nil
}

// Create validates n, assigns a fresh id, and appends the new task.
// The returned task is always incomplete.
func (s *Store) Create(ctx context.Context, n task.New) (task.Task, error) {
	if err := n.Validate(); err != nil {
		return task.Task{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	for s.index(id) >= 0 {
		id = s.newID()
	}
	t := task.Task{
		ID:       id,
		Title:    n.Title,
		Priority: n.Priority,
		DueDate:  n.DueDate,
	}
	s.tasks = append(s.tasks, t)
	return t, nil
}

// Update applies p to the task with the given id. A missing id is reported
// before the patch is validated. On any error the task is left unmodified.
func (s *Store) Update(ctx context.Context, id string, p task.Patch) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return task.Task{}, ErrNotFound
	}
	if err := p.Validate(); err != nil {
		return task.Task{}, err
	}
	s.tasks[i] = p.Apply(s.tasks[i])
	return s.tasks[i], nil
}

// Delete removes the task with the given id.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return ErrNotFound
	}
	s.tasks = slices.Delete(s.tasks, i, i+1)
	return nil
}

// index returns the position of id, or -1. Callers hold the lock.
func (s *Store) index(id string) int {
	return slices.IndexFunc(s.tasks, func(t task.Task) bool { return t.ID == id })
}
