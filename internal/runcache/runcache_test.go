package runcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/jobtracker/internal/types"
)

// fakeKV is a map-backed stand-in for the redis commands the cache issues
type fakeKV struct {
	values map[string]string
	sets   map[string]map[string]bool
	ttls   map[string]time.Duration
	setErr error
}

func newFakeKV() *fakeKV {
	return &fakeKV{
		values: make(map[string]string),
		sets:   make(map[string]map[string]bool),
		ttls:   make(map[string]time.Duration),
	}
}

func (f *fakeKV) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	switch v := value.(type) {
	case []byte:
		f.values[key] = string(v)
	case string:
		f.values[key] = v
	}
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeKV) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeKV) SAdd(_ context.Context, key string, members ...interface{}) *redis.IntCmd {
	if f.sets[key] == nil {
		f.sets[key] = make(map[string]bool)
	}
	for _, m := range members {
		f.sets[key][m.(string)] = true
	}
	return redis.NewIntResult(int64(len(members)), nil)
}

func (f *fakeKV) SMembers(_ context.Context, key string) *redis.StringSliceCmd {
	var out []string
	for m := range f.sets[key] {
		out = append(out, m)
	}
	return redis.NewStringSliceResult(out, nil)
}

func TestRedis_SaveAndLast(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	cache := NewRedis(kv, time.Hour)

	at := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, cache.Save(ctx, &types.RunResult{
		Success: true, Source: "RemoteOK", ScrapedAt: &at, Stats: types.RunStats{Created: 3},
	}))
	assert.Equal(t, time.Hour, kv.ttls[DefaultPrefix+"last:RemoteOK"])

	got, err := cache.Last(ctx, "RemoteOK")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Success)
	assert.Equal(t, 3, got.Stats.Created)
	assert.True(t, got.ScrapedAt.Equal(at))

	missing, err := cache.Last(ctx, "Nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRedis_All(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	cache := NewRedis(kv, 0)

	require.NoError(t, cache.Save(ctx, &types.RunResult{Source: "WeWorkRemotely", Success: true}))
	require.NoError(t, cache.Save(ctx, &types.RunResult{Source: "AngelList", Error: "no extractor"}))
	// simulate an expired entry still in the index
	kv.sets[DefaultPrefix+"sources"]["Expired"] = true

	all, err := cache.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "AngelList", all[0].Source)
	assert.Equal(t, "WeWorkRemotely", all[1].Source)
	assert.Equal(t, DefaultTTL, kv.ttls[DefaultPrefix+"last:AngelList"])
}

func TestRedis_SaveError(t *testing.T) {
	kv := newFakeKV()
	kv.setErr = errors.New("connection refused")
	err := NewRedis(kv, 0).Save(context.Background(), &types.RunResult{Source: "RemoteOK"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Save(ctx, &types.RunResult{Source: "b"}))
	require.NoError(t, m.Save(ctx, &types.RunResult{Source: "a", Success: true}))

	got, err := m.Last(ctx, "a")
	require.NoError(t, err)
	assert.True(t, got.Success)

	all, err := m.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Source)
}
