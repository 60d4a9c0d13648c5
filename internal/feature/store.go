// Package feature implements the AI-backed product features: task risk
// prediction, task breakdown, and priority recommendation. Every adapter
// follows the same pattern: build prompts from domain data, run one
// governed completion, parse the text into a typed result, and fall back
// to a rule-based value of the same shape when the pipeline fails in a
// recoverable way.
package feature

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound reports a missing domain entity. Adapters translate it
// into the not_found error kind.
var ErrNotFound = errors.New("not found")

// Task is the slice of the domain model the AI features reason about.
type Task struct {
	ID            string     `json:"id"`
	ProjectID     string     `json:"project_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Status        string     `json:"status"`   // todo, in_progress, blocked, done
	Priority      string     `json:"priority"` // low, medium, high, urgent
	DueDate       *time.Time `json:"due_date,omitempty"`
	EstimateHours float64    `json:"estimate_hours"`
	Dependencies  []string   `json:"dependencies,omitempty"`
	Assignee      string     `json:"assignee,omitempty"`
}

// Store is the read-only domain data source the adapters consume.
// Fetching happens before any AI call so a missing entity surfaces as
// not_found without spending quota.
type Store interface {
	Task(ctx context.Context, id string) (*Task, error)
	ProjectTasks(ctx context.Context, projectID string) ([]*Task, error)
}

// MemoryStore is an in-memory Store for development and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tasks: make(map[string]*Task)}
}

// Put inserts or replaces a task.
func (s *MemoryStore) Put(task *Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = task
}

// Task returns the task with the given ID or ErrNotFound.
func (s *MemoryStore) Task(_ context.Context, id string) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	dup := *task
	return &dup, nil
}

// ProjectTasks returns all tasks in a project.
func (s *MemoryStore) ProjectTasks(_ context.Context, projectID string) ([]*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Task
	for _, task := range s.tasks {
		if task.ProjectID == projectID {
			dup := *task
			out = append(out, &dup)
		}
	}
	return out, nil
}
