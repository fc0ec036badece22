package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache stores intelligence by normalized keyword.
type Cache interface {
	Get(ctx context.Context, key string) (Intelligence, bool, error)
	Set(ctx context.Context, key string, in Intelligence) error
}

// MemoryCache is a size-bounded in-process cache with per-entry TTL.
type MemoryCache struct {
	lru *expirable.LRU[string, Intelligence]
}

// NewMemoryCache creates a memory cache.
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = 128
	}
	return &MemoryCache{lru: expirable.NewLRU[string, Intelligence](size, nil, ttl)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (Intelligence, bool, error) {
	in, ok := c.lru.Get(key)
	return in, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, in Intelligence) error {
	c.lru.Add(key, in)
	return nil
}

// RedisCache stores intelligence as JSON in Redis.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache connects to Redis from a redis:// URL and verifies the connection.
func NewRedisCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return NewRedisCacheFromClient(client, ttl), nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: "zappy:serp:", ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (Intelligence, bool, error) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Intelligence{}, false, nil
	}
	if err != nil {
		return Intelligence{}, false, err
	}

	var in Intelligence
	if err := json.Unmarshal(raw, &in); err != nil {
		return Intelligence{}, false, fmt.Errorf("decoding cached entry: %w", err)
	}
	return in, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, in Intelligence) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+key, raw, c.ttl).Err()
}

// Close closes the Redis client.
func (c *RedisCache) Close() error { return c.client.Close() }

// CachedSearcher serves repeated keywords from a cache. Cache failures are
// logged and fall through to the source.
type CachedSearcher struct {
	source Searcher
	cache  Cache
	logger *slog.Logger
}

// NewCachedSearcher wraps source with cache.
func NewCachedSearcher(source Searcher, cache Cache, logger *slog.Logger) *CachedSearcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedSearcher{source: source, cache: cache, logger: logger}
}

func cacheKey(keyword string) string {
	return strings.ToLower(strings.Join(strings.Fields(keyword), " "))
}

func (s *CachedSearcher) Intelligence(ctx context.Context, keyword string) (Intelligence, error) {
	key := cacheKey(keyword)

	in, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("search cache read failed", "keyword", keyword, "error", err)
	}
	if ok {
		return in, nil
	}

	in, err = s.source.Intelligence(ctx, keyword)
	if err != nil {
		return Intelligence{}, err
	}

	if err := s.cache.Set(ctx, key, in); err != nil {
		s.logger.Warn("search cache write failed", "keyword", keyword, "error", err)
	}
	return in, nil
}
