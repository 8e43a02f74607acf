package util

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hearwell/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const cacheServiceName = "catalog-service"

// RedisCache кеш списков каталога в Redis
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// NewRedisCacheWithClient оборачивает готовый клиент (используется в тестах)
func NewRedisCacheWithClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (r *RedisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCacheMiss(cacheServiceName, key)
			return false, nil
		}
		metrics.RecordCacheError(cacheServiceName, "get")
		return false, fmt.Errorf("failed to get %s from cache: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		metrics.RecordCacheError(cacheServiceName, "unmarshal")
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}

	metrics.RecordCacheHit(cacheServiceName, key)
	return true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		metrics.RecordCacheError(cacheServiceName, "set")
		return fmt.Errorf("failed to set %s in cache: %w", key, err)
	}

	return nil
}

func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		metrics.RecordCacheError(cacheServiceName, "delete")
		return fmt.Errorf("failed to delete keys from cache: %w", err)
	}
	return nil
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
