package util

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hearwell/pkg/metrics"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache кеш в памяти процесса, используется когда Redis не настроен.
// Хранит JSON, чтобы вызывающий код не делил срезы с кешем.
type MemoryCache struct {
	store *gocache.Cache
}

func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{store: gocache.New(defaultTTL, cleanupInterval)}
}

func (m *MemoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := m.store.Get(key)
	if !ok {
		metrics.RecordCacheMiss(cacheServiceName, key)
		return false, nil
	}

	data, ok := raw.([]byte)
	if !ok {
		m.store.Delete(key)
		return false, nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		metrics.RecordCacheError(cacheServiceName, "unmarshal")
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}

	metrics.RecordCacheHit(cacheServiceName, key)
	return true, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	m.store.Set(key, data, ttl)
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		m.store.Delete(key)
	}
	return nil
}

func (m *MemoryCache) Close() error {
	m.store.Flush()
	return nil
}
