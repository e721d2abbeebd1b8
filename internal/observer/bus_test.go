package observer

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/astromedia/internal/constants"
	"github.com/mrz1836/astromedia/internal/domain"
	"github.com/mrz1836/astromedia/internal/testutil"
)

type mockSink struct {
	mu       sync.Mutex
	exported []string
	err      error
	closed   bool
}

func (m *mockSink) Export(s *domain.AgentTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exported = append(m.exported, s.ID+":"+string(s.Status))
	return m.err
}

func (m *mockSink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func TestBus_SubscribeReceivesCurrentThenUpdates(t *testing.T) {
	bus := NewBus(8, zerolog.Nop())
	bus.Publish(snap("t1", constants.TaskStatusRunning))

	current, updates, cancel := bus.Subscribe()
	defer cancel()
	require.Len(t, current, 1)
	assert.Equal(t, "t1", current[0].ID)

	bus.Publish(snap("t1", constants.TaskStatusCompleted))
	bus.Publish(snap("t2", constants.TaskStatusRunning))

	first := <-updates
	second := <-updates
	assert.Equal(t, constants.TaskStatusCompleted, first.Status)
	assert.Equal(t, "t2", second.ID)
	assert.Len(t, bus.Tasks(), 2)
}

func TestBus_RejectedSnapshotNotForwarded(t *testing.T) {
	sink := &mockSink{}
	bus := NewBus(8, zerolog.Nop(), sink)
	_, updates, cancel := bus.Subscribe()
	defer cancel()

	bus.Publish(snap("t1", constants.TaskStatusCompleted))
	bus.Publish(snap("t1", constants.TaskStatusRunning))

	assert.Len(t, updates, 1)
	assert.Equal(t, []string{"t1:completed"}, sink.exported)
}

func TestBus_SlowSubscriberDisconnected(t *testing.T) {
	bus := NewBus(1, zerolog.Nop())
	_, updates, cancel := bus.Subscribe()
	defer cancel()

	bus.Publish(snap("t1", constants.TaskStatusRunning))
	bus.Publish(snap("t2", constants.TaskStatusRunning))

	assert.Zero(t, bus.Subscribers())
	got, ok := <-updates
	require.True(t, ok)
	assert.Equal(t, "t1", got.ID)
	_, ok = <-updates
	assert.False(t, ok, "channel must be closed after disconnect")
}

func TestBus_CancelAndClose(t *testing.T) {
	sink := &mockSink{}
	bus := NewBus(4, zerolog.Nop(), sink)

	_, a, cancelA := bus.Subscribe()
	_, b, cancelB := bus.Subscribe()
	assert.Equal(t, 2, bus.Subscribers())

	cancelA()
	cancelA()
	_, ok := <-a
	assert.False(t, ok)

	require.NoError(t, bus.Close())
	_, ok = <-b
	assert.False(t, ok)
	cancelB()
	assert.True(t, sink.closed)

	bus.Publish(snap("late", constants.TaskStatusRunning))
	_, ok = bus.Task("late")
	assert.False(t, ok)

	_, closedCh, _ := bus.Subscribe()
	_, ok = <-closedCh
	assert.False(t, ok)
}

func TestBus_SinkErrorDoesNotBlock(t *testing.T) {
	sink := &mockSink{err: testutil.ErrMockSinkDown}
	bus := NewBus(4, zerolog.Nop(), sink)

	bus.Publish(snap("t1", constants.TaskStatusRunning))

	got, ok := bus.Task("t1")
	require.True(t, ok)
	assert.Equal(t, "t1", got.ID)
}

type fakeConn struct {
	subjects []string
	payloads [][]byte
	drained  bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func (f *fakeConn) Drain() error {
	f.drained = true
	return nil
}

func TestNATSSink_Export(t *testing.T) {
	conn := &fakeConn{}
	sink := &NATSSink{conn: conn, subject: constants.DefaultNATSSubject}

	require.NoError(t, sink.Export(snap("t1", constants.TaskStatusRunning, "[EXECUTE] go")))
	require.NoError(t, sink.Close())

	require.Len(t, conn.subjects, 1)
	assert.Equal(t, "astromedia.tasks.echo-acm", conn.subjects[0])

	var decoded domain.AgentTask
	require.NoError(t, json.Unmarshal(conn.payloads[0], &decoded))
	assert.Equal(t, "t1", decoded.ID)
	assert.Equal(t, []string{"[EXECUTE] go"}, decoded.Logs)
	assert.True(t, conn.drained)
}
