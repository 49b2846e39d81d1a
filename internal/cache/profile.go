package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"activityhub/internal/model"
)

const (
	// ProfileCachePrefix is the key prefix for cached profiles, keyed by username
	ProfileCachePrefix = "profile:"
)

// ProfileCache stores viewer-independent profiles. The Following flag is never cached.
type ProfileCache interface {
	// Get returns (profile, found, error). found=false on a miss.
	Get(ctx context.Context, username string) (*model.Profile, bool, error)
	Set(ctx context.Context, profile *model.Profile) error
	Invalidate(ctx context.Context, usernames ...string) error
}

// RedisProfileCache implements ProfileCache with JSON strings and a TTL.
type RedisProfileCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProfileCache(client *redis.Client, ttl time.Duration) ProfileCache {
	return &RedisProfileCache{client: client, ttl: ttl}
}

func profileKey(username string) string {
	return ProfileCachePrefix + username
}

// Profile hides its ID from JSON, so the cached form carries it separately.
type cachedProfile struct {
	ID      uuid.UUID     `json:"id"`
	Profile model.Profile `json:"profile"`
}

func (c *RedisProfileCache) Get(ctx context.Context, username string) (*model.Profile, bool, error) {
	data, err := c.client.Get(ctx, profileKey(username)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached profile: %w", err)
	}

	var cached cachedProfile
	if err := json.Unmarshal(data, &cached); err != nil {
		// Treat a corrupt entry as a miss; the next Set overwrites it.
		return nil, false, nil
	}

	profile := cached.Profile
	profile.ID = cached.ID
	profile.Following = false
	return &profile, true, nil
}

func (c *RedisProfileCache) Set(ctx context.Context, profile *model.Profile) error {
	stored := *profile
	stored.Following = false

	data, err := json.Marshal(cachedProfile{ID: profile.ID, Profile: stored})
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	if err := c.client.Set(ctx, profileKey(profile.Username), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached profile: %w", err)
	}
	return nil
}

func (c *RedisProfileCache) Invalidate(ctx context.Context, usernames ...string) error {
	if len(usernames) == 0 {
		return nil
	}

	keys := make([]string, 0, len(usernames))
	for _, u := range usernames {
		keys = append(keys, profileKey(u))
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate profiles: %w", err)
	}
	return nil
}
