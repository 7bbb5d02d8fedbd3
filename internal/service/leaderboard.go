package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"octofit/internal/leaderboard"
	"octofit/internal/logger"
	"octofit/internal/metrics"
	"octofit/internal/models"
	"octofit/internal/repository"
	"octofit/internal/worker"
)

// SnapshotCache publishes rebuilt leaderboards for fast top-N reads
type SnapshotCache interface {
	PublishSnapshot(ctx context.Context, entries []models.LeaderboardEntry) (int64, error)
	TopEntries(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	Version(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

// RebuildQueue accepts asynchronous rebuild requests
type RebuildQueue interface {
	Submit(task worker.RebuildTask) error
}

// Snapshot is the result of one rebuild
type Snapshot struct {
	Version int64
	BuiltAt time.Time
	Entries []models.LeaderboardEntry
}

// LeaderboardService rebuilds and serves the materialized leaderboard
type LeaderboardService struct {
	store repository.Store
	cache SnapshotCache
	queue RebuildQueue
	now   func() time.Time

	// rebuildMu serializes rebuilds; viewMu keeps readers out while the
	// stored leaderboard is being replaced.
	rebuildMu sync.Mutex
	viewMu    sync.RWMutex
	version   atomic.Int64
	builtAt   time.Time

	// cacheStale is set from the store replace until the matching snapshot
	// is published. While set, Top and Version ignore the cache.
	cacheStale atomic.Bool
}

// LeaderboardOption configures a LeaderboardService
type LeaderboardOption func(*LeaderboardService)

// WithSnapshotCache publishes every rebuild to cache and serves Top from it
func WithSnapshotCache(cache SnapshotCache) LeaderboardOption {
	return func(s *LeaderboardService) {
		s.cache = cache
	}
}

// WithClock overrides the time source used to stamp entries
func WithClock(now func() time.Time) LeaderboardOption {
	return func(s *LeaderboardService) {
		s.now = now
	}
}

// NewLeaderboardService creates a new leaderboard service
func NewLeaderboardService(store repository.Store, opts ...LeaderboardOption) *LeaderboardService {
	s := &LeaderboardService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UseQueue routes RequestRebuild through queue
func (s *LeaderboardService) UseQueue(queue RebuildQueue) {
	s.queue = queue
}

// Rebuild recomputes the leaderboard from every user and activity and
// replaces the stored one.
func (s *LeaderboardService) Rebuild(ctx context.Context) (Snapshot, error) {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	start := time.Now()
	snap, err := s.rebuild(ctx)
	metrics.ObserveRebuild(time.Since(start), len(snap.Entries), err)
	if err != nil {
		return Snapshot{}, err
	}

	logger.Debug("Leaderboard rebuilt: version=%d entries=%d took=%v", snap.Version, len(snap.Entries), time.Since(start))
	return snap, nil
}

func (s *LeaderboardService) rebuild(ctx context.Context) (Snapshot, error) {
	users, err := s.store.ListUsers(ctx, repository.All())
	if err != nil {
		return Snapshot{}, fmt.Errorf("load users: %w", err)
	}
	activities, err := s.store.ListActivities(ctx, repository.All())
	if err != nil {
		return Snapshot{}, fmt.Errorf("load activities: %w", err)
	}

	builtAt := s.now()
	entries := leaderboard.Build(users, activities, builtAt)
	for i := range entries {
		entries[i].ID = models.NewID()
	}

	s.viewMu.Lock()
	if err := s.store.ReplaceLeaderboard(ctx, entries); err != nil {
		s.viewMu.Unlock()
		return Snapshot{}, fmt.Errorf("replace leaderboard: %w", err)
	}
	version := s.version.Add(1)
	s.builtAt = builtAt
	if s.cache != nil {
		s.cacheStale.Store(true)
	}
	s.viewMu.Unlock()

	if s.cache != nil {
		published, err := s.cache.PublishSnapshot(ctx, entries)
		if err != nil {
			logger.Warn("Failed to publish leaderboard snapshot, serving from store: %v", err)
		} else {
			// The cache counter may lag the local one after failed publishes
			if published > version {
				version = published
			}
			s.version.Store(version)
			s.cacheStale.Store(false)
		}
	}

	return Snapshot{Version: version, BuiltAt: builtAt, Entries: entries}, nil
}

// HandleRebuild runs a queued rebuild task
func (s *LeaderboardService) HandleRebuild(ctx context.Context, task worker.RebuildTask) error {
	_, err := s.Rebuild(ctx)
	return err
}

// RequestRebuild queues an asynchronous rebuild. It reports false when the
// request was dropped because a rebuild is already pending or no queue is set.
func (s *LeaderboardService) RequestRebuild(reason string) bool {
	if s.queue == nil {
		return false
	}
	if err := s.queue.Submit(worker.RebuildTask{Reason: reason}); err != nil {
		if !errors.Is(err, worker.ErrBackpressure) {
			logger.Warn("Rebuild request rejected (%s): %v", reason, err)
		}
		return false
	}
	return true
}

// Version returns the latest leaderboard version. It never decreases within
// this process.
func (s *LeaderboardService) Version(ctx context.Context) (int64, error) {
	local := s.version.Load()
	if s.cache == nil || s.cacheStale.Load() {
		return local, nil
	}
	v, err := s.cache.Version(ctx)
	if err != nil {
		logger.Debug("Snapshot version unavailable, using local: %v", err)
		return local, nil
	}
	if v > local {
		return v, nil
	}
	return local, nil
}

// BuiltAt returns when the current leaderboard was built by this process
func (s *LeaderboardService) BuiltAt() time.Time {
	s.viewMu.RLock()
	defer s.viewMu.RUnlock()
	return s.builtAt
}

// Top returns the first n entries by rank. The snapshot cache is consulted
// first unless the last rebuild has not been published; on a miss or error
// the store is read.
func (s *LeaderboardService) Top(ctx context.Context, n int) ([]models.LeaderboardEntry, error) {
	if n <= 0 {
		return []models.LeaderboardEntry{}, nil
	}
	if s.cache != nil && !s.cacheStale.Load() {
		entries, err := s.cache.TopEntries(ctx, n)
		if err == nil {
			return entries, nil
		}
		if !errors.Is(err, repository.ErrCacheMiss) {
			logger.Warn("Snapshot cache read failed, falling back to store: %v", err)
		}
	}
	return s.list(ctx, repository.All().WithLimit(n))
}

// List returns the whole leaderboard ordered by rank
func (s *LeaderboardService) List(ctx context.Context) ([]models.LeaderboardEntry, error) {
	return s.list(ctx, repository.All())
}

// Get returns a single leaderboard entry
func (s *LeaderboardService) Get(ctx context.Context, id string) (*models.LeaderboardEntry, error) {
	s.viewMu.RLock()
	defer s.viewMu.RUnlock()
	return s.store.GetLeaderboardEntry(ctx, id)
}

// ByTeam returns the entries whose team name equals team
func (s *LeaderboardService) ByTeam(ctx context.Context, team string) ([]models.LeaderboardEntry, error) {
	if team == "" {
		return nil, missingParam("team")
	}
	return s.list(ctx, repository.Where("team", team))
}

// OfTeam returns the entries of the members of the team with teamID
func (s *LeaderboardService) OfTeam(ctx context.Context, teamID string) ([]models.LeaderboardEntry, error) {
	if _, err := s.store.GetTeam(ctx, teamID); err != nil {
		return nil, err
	}
	return s.list(ctx, repository.Where("team_id", teamID))
}

func (s *LeaderboardService) list(ctx context.Context, q repository.Query) ([]models.LeaderboardEntry, error) {
	s.viewMu.RLock()
	defer s.viewMu.RUnlock()
	return s.store.ListLeaderboard(ctx, q)
}

// HealthCheck pings the store and, when configured, the snapshot cache
func (s *LeaderboardService) HealthCheck(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("store health check failed: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			return fmt.Errorf("redis health check failed: %w", err)
		}
	}
	return nil
}
