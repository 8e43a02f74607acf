package util

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type cachedItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RedisCacheTestSuite тестовый suite для Redis кеша
type RedisCacheTestSuite struct {
	suite.Suite
	miniRedis *miniredis.Miniredis
	client    *redis.Client
	cache     *RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	suite.Run(t, new(RedisCacheTestSuite))
}

func (s *RedisCacheTestSuite) SetupSuite() {
	var err error
	s.miniRedis, err = miniredis.Run()
	require.NoError(s.T(), err)

	s.client = redis.NewClient(&redis.Options{Addr: s.miniRedis.Addr()})
	s.cache = NewRedisCacheWithClient(s.client)
}

func (s *RedisCacheTestSuite) SetupTest() {
	s.miniRedis.FlushAll()
}

func (s *RedisCacheTestSuite) TearDownSuite() {
	s.client.Close()
	s.miniRedis.Close()
}

func (s *RedisCacheTestSuite) TestSetGet() {
	ctx := context.Background()
	items := []cachedItem{{ID: 1, Name: "Kulak İçi"}, {ID: 2, Name: "Kulak Arkası"}}

	s.NoError(s.cache.Set(ctx, "categories:all", items, time.Minute))

	var got []cachedItem
	hit, err := s.cache.Get(ctx, "categories:all", &got)

	s.NoError(err)
	s.True(hit)
	s.Equal(items, got)
}

func (s *RedisCacheTestSuite) TestGet_Miss() {
	var got []cachedItem
	hit, err := s.cache.Get(context.Background(), "features:all", &got)

	s.NoError(err)
	s.False(hit)
	s.Nil(got)
}

func (s *RedisCacheTestSuite) TestSet_TTL() {
	ctx := context.Background()
	s.NoError(s.cache.Set(ctx, "features:all", []cachedItem{{ID: 1}}, time.Minute))

	s.miniRedis.FastForward(2 * time.Minute)

	var got []cachedItem
	hit, err := s.cache.Get(ctx, "features:all", &got)
	s.NoError(err)
	s.False(hit)
}

func (s *RedisCacheTestSuite) TestDelete() {
	ctx := context.Background()
	s.NoError(s.cache.Set(ctx, "categories:all", []cachedItem{{ID: 1}}, time.Minute))
	s.NoError(s.cache.Set(ctx, "features:all", []cachedItem{{ID: 2}}, time.Minute))

	s.NoError(s.cache.Delete(ctx, "categories:all", "features:all"))

	s.False(s.miniRedis.Exists("categories:all"))
	s.False(s.miniRedis.Exists("features:all"))
}

func (s *RedisCacheTestSuite) TestGet_CorruptedValue() {
	require.NoError(s.T(), s.miniRedis.Set("categories:all", "not-json"))

	var got []cachedItem
	hit, err := s.cache.Get(context.Background(), "categories:all", &got)

	s.Error(err)
	s.False(hit)
}

func (s *RedisCacheTestSuite) TestGet_ServerDown() {
	s.miniRedis.SetError("LOADING")
	defer s.miniRedis.SetError("")

	var got []cachedItem
	hit, err := s.cache.Get(context.Background(), "categories:all", &got)

	s.Error(err)
	s.False(hit)
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(time.Minute, time.Minute)
	defer cache.Close()

	items := []cachedItem{{ID: 3, Name: "Şarj Edilebilir"}}
	require.NoError(t, cache.Set(ctx, "features:all", items, time.Minute))

	var got []cachedItem
	hit, err := cache.Get(ctx, "features:all", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, items, got)

	// изменение результата не должно менять кеш
	got[0].Name = "changed"
	var again []cachedItem
	_, err = cache.Get(ctx, "features:all", &again)
	require.NoError(t, err)
	assert.Equal(t, "Şarj Edilebilir", again[0].Name)

	require.NoError(t, cache.Delete(ctx, "features:all"))
	hit, err = cache.Get(ctx, "features:all", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}
