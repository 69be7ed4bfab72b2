package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/phambaophuc/image-derivative/internal/models"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "derivative_cache:"

// BlurCache remembers blurhash results by derivative key.
type BlurCache interface {
	Get(ctx context.Context, derivativeKey string) (*models.BlurhashResult, error)
	Set(ctx context.Context, derivativeKey string, result *models.BlurhashResult) error
}

type RedisCache struct {
	redisClient   *redis.Client
	cacheDuration time.Duration
}

func NewRedisCache(client *redis.Client, cacheDuration time.Duration) *RedisCache {
	return &RedisCache{
		redisClient:   client,
		cacheDuration: cacheDuration,
	}
}

// Get returns nil, nil on a cache miss.
func (c *RedisCache) Get(ctx context.Context, derivativeKey string) (*models.BlurhashResult, error) {
	data, err := c.redisClient.Get(ctx, keyPrefix+derivativeKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	var result models.BlurhashResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("cache decode error: %w", err)
	}
	return &result, nil
}

func (c *RedisCache) Set(ctx context.Context, derivativeKey string, result *models.BlurhashResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("cache encode error: %w", err)
	}
	return c.redisClient.Set(ctx, keyPrefix+derivativeKey, data, c.cacheDuration).Err()
}

// HealthCheck checks Redis
func (c *RedisCache) HealthCheck(ctx context.Context) map[string]string {
	status := make(map[string]string)

	if err := c.redisClient.Ping(ctx).Err(); err != nil {
		status["redis"] = "unhealthy: " + err.Error()
	} else {
		status["redis"] = "healthy"
	}

	return status
}

func (c *RedisCache) Stats(ctx context.Context) (map[string]interface{}, error) {
	dbSize, err := c.redisClient.DBSize(ctx).Result()
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"db_keys": dbSize,
	}, nil
}

func (c *RedisCache) Close() error {
	return c.redisClient.Close()
}
