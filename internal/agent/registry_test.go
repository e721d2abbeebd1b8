package agent

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/astromedia/internal/constants"
	"github.com/mrz1836/astromedia/internal/domain"
	astroerrors "github.com/mrz1836/astromedia/internal/errors"
)

func seeded() Option {
	return WithRand(rand.New(rand.NewPCG(1, 2)))
}

func TestDefaultRoster(t *testing.T) {
	roster := DefaultRoster()
	require.Len(t, roster, 4)

	seen := map[string]bool{}
	for _, a := range roster {
		assert.False(t, seen[a.ID], "duplicate id %s", a.ID)
		seen[a.ID] = true
		assert.NotEmpty(t, a.Role)
		assert.GreaterOrEqual(t, a.Efficiency, constants.EfficiencyMin)
		assert.LessOrEqual(t, a.Efficiency, constants.EfficiencyMax)
	}
	assert.True(t, seen[constants.DefaultAgentID])
}

func TestRegistry_DriftStaysClamped(t *testing.T) {
	r := NewRegistry([]domain.Agent{
		{ID: "low", Efficiency: 85},
		{ID: "high", Efficiency: 100},
		{ID: "out", Efficiency: 140},
	}, seeded())

	assert.InDelta(t, 100.0, r.List()[2].Efficiency, 0, "entry values are clamped")

	prev := r.List()
	for range 1000 {
		r.Drift()
		cur := r.List()
		for i, a := range cur {
			assert.GreaterOrEqual(t, a.Efficiency, constants.EfficiencyMin)
			assert.LessOrEqual(t, a.Efficiency, constants.EfficiencyMax)
			assert.LessOrEqual(t, math.Abs(a.Efficiency-prev[i].Efficiency), constants.EfficiencyStep+1e-9)
		}
		prev = cur
	}
}

func TestRegistry_GetAndRole(t *testing.T) {
	r := NewRegistry(DefaultRoster(), seeded())

	a, err := r.Get("nova")
	require.NoError(t, err)
	assert.Equal(t, "Creative Director", a.Role)

	_, err = r.Get("ghost")
	require.ErrorIs(t, err, astroerrors.ErrAgentNotFound)

	role, ok := r.Role(constants.DefaultAgentID)
	assert.True(t, ok)
	assert.Equal(t, "Community Manager", role)
	_, ok = r.Role("ghost")
	assert.False(t, ok)
}

func TestRegistry_TaskLifecycle(t *testing.T) {
	r := NewRegistry(DefaultRoster(), seeded())

	r.TaskStarted("nova", "Spring teaser")
	a, _ := r.Get("nova")
	assert.Equal(t, constants.AgentStatusProcessing, a.Status)
	assert.Equal(t, "Working on: Spring teaser", a.LastAction)

	r.TaskFinished("nova", constants.TaskStatusFailed, "[VALIDATE] Attempts exhausted")
	a, _ = r.Get("nova")
	assert.Equal(t, constants.AgentStatusLearning, a.Status)
	assert.Equal(t, "[VALIDATE] Attempts exhausted", a.LastAction)

	r.TaskFinished("nova", constants.TaskStatusCompleted, "")
	a, _ = r.Get("nova")
	assert.Equal(t, constants.AgentStatusIdle, a.Status)
	assert.Equal(t, "[VALIDATE] Attempts exhausted", a.LastAction, "empty action keeps the previous one")

	r.TaskStarted("ghost", "ignored")
	assert.Len(t, r.List(), 4)
}

func TestRegistry_ListIsCopy(t *testing.T) {
	r := NewRegistry(DefaultRoster(), seeded())
	list := r.List()
	list[0].Name = "changed"
	assert.Equal(t, "Echo-ACM", r.List()[0].Name)
}

func TestRegistry_Run(t *testing.T) {
	r := NewRegistry([]domain.Agent{{ID: "a", Efficiency: 90}}, seeded(), WithTick(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool {
		return r.List()[0].Efficiency != 90
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}
