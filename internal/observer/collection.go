// Package observer keeps the live task collection and fans snapshots out to
// subscribers. Any number of engines may publish concurrently.
package observer

import (
	"sync"

	"github.com/mrz1836/astromedia/internal/domain"
)

// Collection is the displayed task list, newest first.
// It is safe for concurrent use.
type Collection struct {
	mu    sync.RWMutex
	tasks []*domain.AgentTask
}

// NewCollection returns a collection seeded with tasks in the given order.
func NewCollection(tasks ...*domain.AgentTask) *Collection {
	c := &Collection{tasks: make([]*domain.AgentTask, 0, len(tasks))}
	for _, t := range tasks {
		c.tasks = append(c.tasks, t.Clone())
	}
	return c
}

// Upsert replaces the entry with the snapshot's id in place, or prepends the
// snapshot when the id is new. Delivering the same snapshot twice leaves the
// collection unchanged. A running snapshot never replaces a terminal one.
// It reports whether the collection was modified.
func (c *Collection) Upsert(snapshot *domain.AgentTask) bool {
	if snapshot == nil || snapshot.ID == "" {
		return false
	}
	stored := snapshot.Clone()

	c.mu.Lock()
	defer c.mu.Unlock()

	for i, existing := range c.tasks {
		if existing.ID != stored.ID {
			continue
		}
		if existing.IsTerminal() && !stored.IsTerminal() {
			return false
		}
		c.tasks[i] = stored
		return true
	}

	c.tasks = append([]*domain.AgentTask{stored}, c.tasks...)
	return true
}

// List returns copies of every task, newest first.
func (c *Collection) List() []*domain.AgentTask {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*domain.AgentTask, len(c.tasks))
	for i, t := range c.tasks {
		out[i] = t.Clone()
	}
	return out
}

// Get returns a copy of the task with the given id.
func (c *Collection) Get(id string) (*domain.AgentTask, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, t := range c.tasks {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return nil, false
}

// Len returns the number of tasks.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tasks)
}
