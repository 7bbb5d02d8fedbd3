package jobs

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"octofit/internal/repository"
	"octofit/internal/seed"
	"octofit/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRequester struct {
	calls int
}

func (c *countingRequester) RequestRebuild(string) bool {
	c.calls++
	return true
}

func seededTracker(t *testing.T) (*service.TrackerService, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	_, err := seed.New(store, rand.New(rand.NewSource(3))).Run(context.Background(), seed.Options{})
	require.NoError(t, err)
	return service.NewTrackerService(store, nil, false), store
}

func TestStepLogsActivity(t *testing.T) {
	ctx := context.Background()
	tracker, store := seededTracker(t)
	req := &countingRequester{}
	sm := NewSimulationManager(tracker, req, SimulatorConfig{Seed: 11, MinPoints: 20, MaxPoints: 30})
	require.NoError(t, sm.loadRoster(ctx))

	for i := 0; i < 5; i++ {
		sm.Step(ctx)
	}

	activities, err := store.ListActivities(ctx, repository.All())
	require.NoError(t, err)
	require.Len(t, activities, 5)
	for _, a := range activities {
		assert.GreaterOrEqual(t, a.PointsEarned, 20)
		assert.LessOrEqual(t, a.PointsEarned, 30)
		assert.NotEmpty(t, a.WorkoutID)
	}
	assert.Equal(t, 5, req.calls)
	assert.Equal(t, int64(5), sm.GetMetrics()["successful"])
}

func TestStepPointRange(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
		wantLo   int
		wantHi   int
	}{
		{name: "explicit range from zero", min: 0, max: 5, wantLo: 0, wantHi: 5},
		{name: "unset range uses defaults", wantLo: seed.MinActivityPoints, wantHi: seed.MaxActivityPoints},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			tracker, store := seededTracker(t)
			sm := NewSimulationManager(tracker, nil, SimulatorConfig{Seed: 5, MinPoints: tt.min, MaxPoints: tt.max})
			require.NoError(t, sm.loadRoster(ctx))

			for i := 0; i < 20; i++ {
				sm.Step(ctx)
			}

			activities, err := store.ListActivities(ctx, repository.All())
			require.NoError(t, err)
			require.Len(t, activities, 20)
			for _, a := range activities {
				assert.GreaterOrEqual(t, a.PointsEarned, tt.wantLo)
				assert.LessOrEqual(t, a.PointsEarned, tt.wantHi)
			}
		})
	}
}

func TestStartRequiresUsers(t *testing.T) {
	tracker := service.NewTrackerService(repository.NewMemoryStore(), nil, false)
	sm := NewSimulationManager(tracker, nil, SimulatorConfig{})

	err := sm.Start(context.Background())
	assert.True(t, errors.Is(err, ErrNoUsers))
	assert.False(t, sm.IsRunning())
}

func TestStartAndStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tracker, store := seededTracker(t)
	sm := NewSimulationManager(tracker, nil, SimulatorConfig{TickInterval: 5 * time.Millisecond})

	require.NoError(t, sm.Start(ctx))
	assert.True(t, sm.IsRunning())
	assert.Error(t, sm.Start(ctx))

	assert.Eventually(t, func() bool {
		activities, err := store.ListActivities(ctx, repository.All())
		return err == nil && len(activities) >= 2
	}, 2*time.Second, 10*time.Millisecond)

	sm.Stop()
	assert.False(t, sm.IsRunning())
	sm.Stop()
}
