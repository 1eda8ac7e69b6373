package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"insightops-be/pkg/rag/response"
)

const redisKeyPrefix = "insightops:answers:"

// RedisCache stores finished answers in Redis so instances share one answer
// cache. Redis failures degrade to cache misses instead of failing the ask.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ response.CacheStore = &RedisCache{}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*response.Result, bool) {
	payload, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	var result response.Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, false
	}
	return &result, true
}

func (c *RedisCache) Set(ctx context.Context, key string, result *response.Result) {
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	c.client.Set(ctx, redisKeyPrefix+key, payload, c.ttl)
}

func (c *RedisCache) InvalidateWorkspace(ctx context.Context, workspaceId uuid.UUID) {
	pattern := redisKeyPrefix + workspaceId.String() + ":*"
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		c.client.Del(ctx, iter.Val())
	}
}
