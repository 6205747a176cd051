package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-admin/internal/domain"
)

// ProfileCache keeps resolved profiles between requests.
type ProfileCache interface {
	Get(ctx context.Context, userID string) (*domain.UserProfile, bool)
	Set(ctx context.Context, profile *domain.UserProfile)
	Invalidate(ctx context.Context, userID string) error
}

const profileKeyPrefix = "actor:profile:"

type redisProfileCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewProfileCache returns a Redis backed cache, or a cache that never hits when client
// is nil or ttl is not positive.
func NewProfileCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) ProfileCache {
	if client == nil || ttl <= 0 {
		return noopCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &redisProfileCache{client: client, ttl: ttl, logger: logger}
}

func (c *redisProfileCache) Get(ctx context.Context, userID string) (*domain.UserProfile, bool) {
	raw, err := c.client.Get(ctx, profileKeyPrefix+userID).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("profile cache read failed", zap.String("user_id", userID), zap.Error(err))
		}
		return nil, false
	}
	var profile domain.UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		c.logger.Warn("profile cache entry corrupt", zap.String("user_id", userID), zap.Error(err))
		return nil, false
	}
	return &profile, true
}

func (c *redisProfileCache) Set(ctx context.Context, profile *domain.UserProfile) {
	raw, err := json.Marshal(profile)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, profileKeyPrefix+profile.ID, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("profile cache write failed", zap.String("user_id", profile.ID), zap.Error(err))
	}
}

func (c *redisProfileCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, profileKeyPrefix+userID).Err(); err != nil {
		return errors.Wrapf(err, "invalidate profile %s", userID)
	}
	return nil
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) (*domain.UserProfile, bool) { return nil, false }

func (noopCache) Set(context.Context, *domain.UserProfile) {}

func (noopCache) Invalidate(context.Context, string) error { return nil }
