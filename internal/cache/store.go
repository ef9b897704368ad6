package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/zeromicro/go-zero/core/collection"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"
)

// Store is a string key-value cache with per-entry lifetimes. A miss is
// reported as ok=false with a nil error.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RedisStore keeps entries in Redis.
type RedisStore struct {
	client *redis.Redis
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client *redis.Redis) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.GetCtx(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("cache.Get %s: %w", key, err)
	}
	if val == "" {
		return "", false, nil
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.SetexCtx(ctx, key, value, ttlSeconds(ttl)); err != nil {
		return fmt.Errorf("cache.Set %s: %w", key, err)
	}
	return nil
}

// Redis expiry has one-second resolution; never round a positive ttl down to
// zero.
func ttlSeconds(ttl time.Duration) int {
	secs := int(math.Ceil(ttl.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

// MemoryStore keeps entries in process, each removed by a timer when its
// lifetime ends.
type MemoryStore struct {
	cache *collection.Cache
}

var _ Store = (*MemoryStore)(nil)

const memoryStoreName = "brokerage-quotes"

// NewMemoryStore builds an in-process store. defaultTTL applies to entries
// set with a non-positive ttl.
func NewMemoryStore(defaultTTL time.Duration) (*MemoryStore, error) {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTLSet().Quote
	}
	c, err := collection.NewCache(defaultTTL, collection.WithName(memoryStoreName))
	if err != nil {
		return nil, fmt.Errorf("cache.NewMemoryStore: %w", err)
	}
	return &MemoryStore{cache: c}, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return "", false, nil
	}
	str, ok := v.(string)
	return str, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		s.cache.Set(key, value)
		return nil
	}
	s.cache.SetWithExpire(key, value, ttl)
	return nil
}

// GetJSON decodes a cached JSON payload into dst. Read and decode failures are
// logged and reported as a miss so callers fall through to the source.
func GetJSON(ctx context.Context, store Store, key string, dst any) bool {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		logx.WithContext(ctx).Errorf("cache: get %s: %v", key, err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		logx.WithContext(ctx).Errorf("cache: decode %s: %v", key, err)
		return false
	}
	return true
}

// SetJSON encodes value and stores it under key. Failures are logged, never
// returned, since the cache is not authoritative.
func SetJSON(ctx context.Context, store Store, key string, value any, ttl time.Duration) {
	if err := PutJSON(ctx, store, key, value, ttl); err != nil {
		logx.WithContext(ctx).Errorf("cache: %v", err)
	}
}

// PutJSON is SetJSON with the error returned.
func PutJSON(ctx context.Context, store Store, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return store.Set(ctx, key, string(payload), ttl)
}
