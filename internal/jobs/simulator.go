package jobs

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"octofit/internal/logger"
	"octofit/internal/models"
	"octofit/internal/seed"
	"octofit/internal/service"
)

// rosterRefreshTicks is how many ticks pass between reloads of users and workouts
const rosterRefreshTicks = 20

// ActivityTracker is the part of the tracker the simulator drives
type ActivityTracker interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	ListWorkouts(ctx context.Context) ([]models.Workout, error)
	CreateActivity(ctx context.Context, a *models.Activity) error
}

// SimulationManager logs random activities on a fixed interval so the
// leaderboard keeps moving without client traffic.
type SimulationManager struct {
	tracker  ActivityTracker
	rebuilds service.RebuildRequester
	gen      *seed.Generator
	stopCh   chan struct{}
	wg       sync.WaitGroup
	running  atomic.Bool

	users    []models.User
	workouts []models.Workout

	totalUpdates atomic.Int64
	successCount atomic.Int64
	errorCount   atomic.Int64
	startTime    time.Time

	tickInterval time.Duration
}

// SimulatorConfig holds configuration for the simulator
type SimulatorConfig struct {
	TickInterval time.Duration // Default: 5s
	MinPoints    int           // Default: 10 when both bounds are 0
	MaxPoints    int           // Default: 50 when both bounds are 0
	Seed         int64         // Default: current time
}

// ErrNoUsers is returned by Start when there is nobody to simulate
var ErrNoUsers = errors.New("no users available for simulation")

// NewSimulationManager creates a new simulation manager. rebuilds may be nil
// when activity writes already trigger rebuilds.
func NewSimulationManager(tracker ActivityTracker, rebuilds service.RebuildRequester, config SimulatorConfig) *SimulationManager {
	if config.TickInterval <= 0 {
		config.TickInterval = 5 * time.Second
	}
	// An explicit range may start at zero; only an unset range gets defaults
	if config.MinPoints == 0 && config.MaxPoints == 0 {
		config.MinPoints = seed.MinActivityPoints
		config.MaxPoints = seed.MaxActivityPoints
	}
	if config.Seed == 0 {
		config.Seed = time.Now().UnixNano()
	}

	return &SimulationManager{
		tracker:      tracker,
		rebuilds:     rebuilds,
		gen:          seed.NewGenerator(rand.New(rand.NewSource(config.Seed)), config.MinPoints, config.MaxPoints),
		stopCh:       make(chan struct{}),
		tickInterval: config.TickInterval,
	}
}

// Start loads the roster and begins the simulation loop
func (sm *SimulationManager) Start(ctx context.Context) error {
	if sm.running.Load() {
		return errors.New("simulation already running")
	}
	if err := sm.loadRoster(ctx); err != nil {
		return err
	}
	if len(sm.users) == 0 {
		return ErrNoUsers
	}

	sm.startTime = time.Now()
	sm.running.Store(true)
	logger.Info("Activity simulator started: users=%d workouts=%d interval=%v", len(sm.users), len(sm.workouts), sm.tickInterval)

	sm.wg.Add(1)
	go sm.simulationLoop(ctx)
	return nil
}

// Stop ends the simulation and waits for the loop to exit
func (sm *SimulationManager) Stop() {
	if !sm.running.CompareAndSwap(true, false) {
		return
	}
	close(sm.stopCh)
	sm.wg.Wait()

	logger.Info("Activity simulator stopped: logged=%d errors=%d uptime=%v",
		sm.successCount.Load(), sm.errorCount.Load(), time.Since(sm.startTime).Round(time.Second))
}

// IsRunning returns whether the simulation is currently running
func (sm *SimulationManager) IsRunning() bool {
	return sm.running.Load()
}

// GetMetrics returns current simulation metrics
func (sm *SimulationManager) GetMetrics() map[string]interface{} {
	return map[string]interface{}{
		"running":       sm.running.Load(),
		"total_updates": sm.totalUpdates.Load(),
		"successful":    sm.successCount.Load(),
		"errors":        sm.errorCount.Load(),
	}
}

func (sm *SimulationManager) loadRoster(ctx context.Context) error {
	users, err := sm.tracker.ListUsers(ctx)
	if err != nil {
		return err
	}
	workouts, err := sm.tracker.ListWorkouts(ctx)
	if err != nil {
		return err
	}
	sm.users, sm.workouts = users, workouts
	return nil
}

func (sm *SimulationManager) simulationLoop(ctx context.Context) {
	defer sm.wg.Done()

	ticker := time.NewTicker(sm.tickInterval)
	defer ticker.Stop()

	ticks := 0
	for {
		select {
		case <-ctx.Done():
			return

		case <-sm.stopCh:
			return

		case <-ticker.C:
			ticks++
			if ticks%rosterRefreshTicks == 0 {
				if err := sm.loadRoster(ctx); err != nil {
					logger.Warn("Simulator roster refresh failed: %v", err)
				}
			}
			sm.Step(ctx)
		}
	}
}

// Step logs one random activity
func (sm *SimulationManager) Step(ctx context.Context) {
	if len(sm.users) == 0 {
		return
	}
	user := sm.users[sm.gen.Pick(len(sm.users))]
	workoutID := ""
	if len(sm.workouts) > 0 {
		workoutID = sm.workouts[sm.gen.Pick(len(sm.workouts))].ID
	}

	a := sm.gen.Activity(user.ID, workoutID, time.Now().UTC())
	sm.totalUpdates.Add(1)
	if err := sm.tracker.CreateActivity(ctx, &a); err != nil {
		if sm.errorCount.Add(1)%100 == 1 {
			logger.Warn("Simulation error (total: %d): %v", sm.errorCount.Load(), err)
		}
		return
	}
	sm.successCount.Add(1)
	logger.Debug("Simulated %s for %s (+%d)", a.ActivityType, user.Name, a.PointsEarned)

	if sm.rebuilds != nil {
		sm.rebuilds.RequestRebuild("simulated activity")
	}
}
