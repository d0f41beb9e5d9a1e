package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/flodiary/flodiary-backend/internal/database"
	"github.com/flodiary/flodiary-backend/internal/models"
)

const (
	// StatsCacheKeyPrefix is the Redis key prefix for cached cycle stats
	StatsCacheKeyPrefix = "stats:"
	// StatsCacheTTL keeps cached stats fresh enough between mutations
	StatsCacheTTL = 1 * time.Hour
)

// StatsCache caches a user's computed cycle statistics in Redis. Every call
// is a no-op or a miss when Redis is unavailable, so callers always fall
// back to recomputing from the user document.
type StatsCache struct{}

// Get retrieves cached stats for a user. The second return is false on a
// miss or when Redis is down.
func (c *StatsCache) Get(ctx context.Context, userID string) (models.Stats, bool) {
	var stats models.Stats
	if database.RedisClient == nil {
		return stats, false
	}

	val, err := database.RedisClient.Get(ctx, StatsCacheKeyPrefix+userID).Result()
	if err != nil {
		return stats, false
	}
	if err := json.Unmarshal([]byte(val), &stats); err != nil {
		return stats, false
	}
	return stats, true
}

// Set stores a user's stats. Errors are swallowed; the cache is best-effort.
func (c *StatsCache) Set(ctx context.Context, userID string, stats models.Stats) {
	if database.RedisClient == nil {
		return
	}

	data, err := json.Marshal(stats)
	if err != nil {
		return
	}
	database.RedisClient.Set(ctx, StatsCacheKeyPrefix+userID, data, StatsCacheTTL)
}

// Invalidate drops cached stats after a cycle mutation.
func (c *StatsCache) Invalidate(ctx context.Context, userID string) {
	if database.RedisClient == nil {
		return
	}
	database.RedisClient.Del(ctx, StatsCacheKeyPrefix+userID)
}

// Global stats cache instance
var Stats = &StatsCache{}
