package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"octofit/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	// RanksKey is the sorted set of entry ids scored by rank
	RanksKey = "leaderboard:ranks"

	// EntriesKey is the hash of entry id to the JSON encoded entry
	EntriesKey = "leaderboard:entries"

	// VersionKey counts published snapshots so pollers can detect changes
	VersionKey = "leaderboard:version"

	stagingSuffix = ":staging"
)

// ErrCacheMiss is returned when no snapshot has been published
var ErrCacheMiss = errors.New("leaderboard snapshot not cached")

// RedisCache holds the latest published leaderboard snapshot
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new snapshot cache
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client: client,
	}
}

// PublishSnapshot replaces the cached leaderboard with entries and returns
// the new version. The entries are written under staging keys and renamed
// over the live keys inside one MULTI block.
func (r *RedisCache) PublishSnapshot(ctx context.Context, entries []models.LeaderboardEntry) (int64, error) {
	ranksStaging := RanksKey + stagingSuffix
	entriesStaging := EntriesKey + stagingSuffix

	members := make([]redis.Z, 0, len(entries))
	fields := make(map[string]interface{}, len(entries))
	for _, e := range entries {
		payload, err := json.Marshal(e)
		if err != nil {
			return 0, fmt.Errorf("encode entry %s: %w", e.ID, err)
		}
		members = append(members, redis.Z{Score: float64(e.Rank), Member: e.ID})
		fields[e.ID] = payload
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, ranksStaging, entriesStaging)
	if len(entries) == 0 {
		pipe.Del(ctx, RanksKey, EntriesKey)
	} else {
		pipe.ZAdd(ctx, ranksStaging, members...)
		pipe.HSet(ctx, entriesStaging, fields)
		pipe.Rename(ctx, ranksStaging, RanksKey)
		pipe.Rename(ctx, entriesStaging, EntriesKey)
	}
	version := pipe.Incr(ctx, VersionKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return version.Val(), nil
}

// TopEntries returns up to limit cached entries in rank order
func (r *RedisCache) TopEntries(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		return []models.LeaderboardEntry{}, nil
	}

	ids, err := r.client.ZRange(ctx, RanksKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, ErrCacheMiss
	}

	values, err := r.client.HMGet(ctx, EntriesKey, ids...).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]models.LeaderboardEntry, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: entry %s missing", ErrCacheMiss, ids[i])
		}
		var e models.LeaderboardEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("decode entry %s: %w", ids[i], err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Version returns the current snapshot version, 0 when none was published
func (r *RedisCache) Version(ctx context.Context) (int64, error) {
	version, err := r.client.Get(ctx, VersionKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return version, nil
}

// Ping checks if Redis is reachable
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisCache) Close() error {
	return r.client.Close()
}
