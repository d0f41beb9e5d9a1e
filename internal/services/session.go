package services

import (
	"context"
	"time"

	"github.com/flodiary/flodiary-backend/internal/database"
)

// RevokedTokenKeyPrefix is the Redis key prefix for revoked token ids.
const RevokedTokenKeyPrefix = "revoked_token:"

// RevokeToken records a token id in the denylist until the token would have
// expired anyway. After that the signature check alone rejects it.
func RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if database.RedisClient == nil || tokenID == "" {
		return nil
	}
	if ttl <= 0 {
		return nil
	}
	return database.RedisClient.Set(ctx, RevokedTokenKeyPrefix+tokenID, "1", ttl).Err()
}

// IsTokenRevoked checks the denylist. Fails open when Redis is unavailable
// so a cache outage does not lock every user out.
func IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	if database.RedisClient == nil || tokenID == "" {
		return false, nil
	}
	count, err := database.RedisClient.Exists(ctx, RevokedTokenKeyPrefix+tokenID).Result()
	if err != nil {
		return false, nil
	}
	return count > 0, nil
}
