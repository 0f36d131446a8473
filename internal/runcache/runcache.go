// Package runcache keeps the most recent run result of every source so the
// status command can report on scheduled runs.
package runcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonathan/jobtracker/internal/types"
)

const (
	DefaultPrefix = "jobtracker:run:"
	DefaultTTL    = 7 * 24 * time.Hour
)

// Cache stores the last result per source
type Cache interface {
	Save(ctx context.Context, result *types.RunResult) error
	// Last returns nil when no result is stored for source
	Last(ctx context.Context, source string) (*types.RunResult, error)
	// All returns the stored results ordered by source name
	All(ctx context.Context) ([]types.RunResult, error)
}

// kv is the part of the redis client the cache uses
type kv interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
}

// Redis is a Cache backed by redis string keys plus an index set of source names
type Redis struct {
	client kv
	prefix string
	ttl    time.Duration
}

// Connect parses redisURL and verifies connectivity
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// NewRedis wraps a connected client. ttl <= 0 selects DefaultTTL.
func NewRedis(client kv, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, prefix: DefaultPrefix, ttl: ttl}
}

func (r *Redis) key(source string) string { return r.prefix + "last:" + source }
func (r *Redis) indexKey() string         { return r.prefix + "sources" }

func (r *Redis) Save(ctx context.Context, result *types.RunResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal run result: %w", err)
	}
	if err := r.client.Set(ctx, r.key(result.Source), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store run result for %s: %w", result.Source, err)
	}
	if err := r.client.SAdd(ctx, r.indexKey(), result.Source).Err(); err != nil {
		return fmt.Errorf("failed to index run result for %s: %w", result.Source, err)
	}
	return nil
}

func (r *Redis) Last(ctx context.Context, source string) (*types.RunResult, error) {
	data, err := r.client.Get(ctx, r.key(source)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read run result for %s: %w", source, err)
	}
	var result types.RunResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode run result for %s: %w", source, err)
	}
	return &result, nil
}

func (r *Redis) All(ctx context.Context) ([]types.RunResult, error) {
	sources, err := r.client.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list cached sources: %w", err)
	}
	sort.Strings(sources)

	results := make([]types.RunResult, 0, len(sources))
	for _, source := range sources {
		result, err := r.Last(ctx, source)
		if err != nil {
			return nil, err
		}
		// expired entries stay in the index
		if result != nil {
			results = append(results, *result)
		}
	}
	return results, nil
}

// Memory is an in-process Cache
type Memory struct {
	mu      sync.Mutex
	results map[string]types.RunResult
}

func NewMemory() *Memory {
	return &Memory{results: make(map[string]types.RunResult)}
}

func (m *Memory) Save(_ context.Context, result *types.RunResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[result.Source] = *result
	return nil
}

func (m *Memory) Last(_ context.Context, source string) (*types.RunResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.results[source]; ok {
		return &r, nil
	}
	return nil, nil
}

func (m *Memory) All(_ context.Context) ([]types.RunResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.RunResult, 0, len(m.results))
	for _, r := range m.results {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out, nil
}
