package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	discoveryKeyPrefix     = "cache:discovery:"
	conversationsKeyPrefix = "cache:conversations:"
	likesKeyPrefix         = "cache:likes:"
	profileKeyPrefix       = "cache:profile:"
)

type CacheRepo struct {
	client *goredis.Client
}

func NewCacheRepo(client *goredis.Client) *CacheRepo {
	return &CacheRepo{client: client}
}

// GetJSON loads and decodes a cached value. The bool reports whether
// the key was present.
func (r *CacheRepo) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	if key == "" {
		return false, fmt.Errorf("cache key is required")
	}

	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get cache key: %w", err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decode cached value: %w", err)
	}

	return true, nil
}

func (r *CacheRepo) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if key == "" || ttl <= 0 {
		return fmt.Errorf("invalid cache payload")
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cached value: %w", err)
	}

	if err := r.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("set cache key: %w", err)
	}

	return nil
}

func (r *CacheRepo) Delete(ctx context.Context, keys ...string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if len(keys) == 0 {
		return nil
	}

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete cache keys: %w", err)
	}

	return nil
}

func DiscoveryKey(userID int64) string {
	return discoveryKeyPrefix + strconv.FormatInt(userID, 10)
}

func ConversationsKey(userID int64) string {
	return conversationsKeyPrefix + strconv.FormatInt(userID, 10)
}

func LikesKey(userID int64) string {
	return likesKeyPrefix + strconv.FormatInt(userID, 10)
}

func ProfileKey(userID int64) string {
	return profileKeyPrefix + strconv.FormatInt(userID, 10)
}
