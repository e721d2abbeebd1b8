package observer

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/mrz1836/astromedia/internal/constants"
	"github.com/mrz1836/astromedia/internal/domain"
)

// Sink exports snapshots outside the process.
type Sink interface {
	Export(snapshot *domain.AgentTask) error
	Close() error
}

// Bus merges engine snapshots into a Collection and forwards every accepted
// snapshot to subscribers and sinks. Snapshots handed to subscribers are
// shared and must be treated as read-only.
type Bus struct {
	tasks  *Collection
	buffer int
	sinks  []Sink
	logger zerolog.Logger

	mu     sync.Mutex
	subs   map[int]chan *domain.AgentTask
	next   int
	closed bool
}

// NewBus creates a bus. buffer is the channel capacity of each subscriber;
// a subscriber that falls that far behind is disconnected.
func NewBus(buffer int, logger zerolog.Logger, sinks ...Sink) *Bus {
	if buffer <= 0 {
		buffer = constants.DefaultSubscriberBuffer
	}
	return &Bus{
		tasks:  NewCollection(),
		buffer: buffer,
		sinks:  sinks,
		logger: logger.With().Str("component", "observer_bus").Logger(),
		subs:   make(map[int]chan *domain.AgentTask),
	}
}

// Publish upserts the snapshot and fans it out. It has the shape of
// task.UpdateFunc and never blocks on a slow subscriber.
func (b *Bus) Publish(snapshot *domain.AgentTask) {
	b.mu.Lock()
	if b.closed || !b.tasks.Upsert(snapshot) {
		b.mu.Unlock()
		return
	}

	shared := snapshot.Clone()
	for id, ch := range b.subs {
		select {
		case ch <- shared:
		default:
			b.logger.Warn().Int("subscriber", id).Msg("subscriber too slow, disconnecting")
			delete(b.subs, id)
			close(ch)
		}
	}
	b.mu.Unlock()

	for _, sink := range b.sinks {
		if err := sink.Export(shared); err != nil {
			b.logger.Warn().Err(err).Str("task_id", shared.ID).Msg("failed to export snapshot")
		}
	}
}

// Subscribe returns the current collection and a channel of every later
// snapshot, with no gap between the two. The channel is closed when cancel
// is called, when the subscriber falls behind, or when the bus closes.
func (b *Bus) Subscribe() (current []*domain.AgentTask, updates <-chan *domain.AgentTask, cancel func()) {
	ch := make(chan *domain.AgentTask, b.buffer)

	b.mu.Lock()
	current = b.tasks.List()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return current, ch, func() {}
	}
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	cancel = func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return current, ch, cancel
}

// Tasks returns every known task, newest first.
func (b *Bus) Tasks() []*domain.AgentTask {
	return b.tasks.List()
}

// Task returns the latest snapshot of one task.
func (b *Bus) Task(id string) (*domain.AgentTask, bool) {
	return b.tasks.Get(id)
}

// Subscribers returns the number of connected subscribers.
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close disconnects all subscribers and closes the sinks.
// Snapshots published afterwards are dropped.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
	b.mu.Unlock()

	var firstErr error
	for _, sink := range b.sinks {
		if err := sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
