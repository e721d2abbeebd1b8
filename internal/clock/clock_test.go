package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealClock_Now(t *testing.T) {
	c := RealClock{}

	before := time.Now()
	got := c.Now()
	after := time.Now()

	assert.False(t, got.Before(before), "clock.Now() should not return time before actual time.Now()")
	assert.False(t, got.After(after), "clock.Now() should not return time after actual time.Now()")
}

func TestRealClock_After(t *testing.T) {
	select {
	case <-RealClock{}.After(time.Millisecond):
	case <-time.After(time.Second):
		t.Fatal("RealClock.After did not fire")
	}
}

func TestFake(t *testing.T) {
	start := time.Date(2026, 6, 15, 10, 30, 0, 0, time.UTC)
	f := NewFake(start)

	assert.Equal(t, start, f.Now())

	select {
	case got := <-f.After(1500 * time.Millisecond):
		assert.Equal(t, start.Add(1500*time.Millisecond), got)
	default:
		require.FailNow(t, "fake After should fire immediately")
	}

	<-f.After(time.Second)
	assert.Equal(t, start.Add(2500*time.Millisecond), f.Now())
	assert.Equal(t, []time.Duration{1500 * time.Millisecond, time.Second}, f.Waits())
}
