package orchestrator

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/jobtracker/internal/config"
	"github.com/jonathan/jobtracker/internal/fetch"
	"github.com/jonathan/jobtracker/internal/memstore"
	"github.com/jonathan/jobtracker/internal/runcache"
	"github.com/jonathan/jobtracker/internal/types"
)

func TestCleanupOldJobs(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := memstore.New()
	src := seedSource(t, store, testSource, "http://example.com")
	for id, age := range map[string]int{"old": 45, "fresh": 3} {
		_, err := store.CreateJob(ctx, &types.Job{
			SourceID:   src.ID,
			ExternalID: id,
			PostedDate: now.AddDate(0, 0, -age),
			IsActive:   true,
		})
		require.NoError(t, err)
	}
	runner := newTestRunner(store, testOptions(), WithClock(func() time.Time { return now }))

	res, err := runner.CleanupOldJobs(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, res.CleanedJobs)
	assert.Equal(t, now.AddDate(0, 0, -DefaultCleanupDays), res.Cutoff)

	res, err = runner.CleanupOldJobs(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, res.CleanedJobs)

	total, active, err := store.CountJobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, 0, active)
}

func TestSyncSourceStats(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	src := seedSource(t, store, testSource, "http://example.com")
	seedSource(t, store, "Other", "http://example.org")
	require.NoError(t, store.IncrementSourceJobs(ctx, src.ID, 7))
	_, err := store.CreateJob(ctx, &types.Job{SourceID: src.ID, ExternalID: "1"})
	require.NoError(t, err)
	runner := newTestRunner(store, testOptions())

	res, err := runner.SyncSourceStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.SourcesUpdated)
	assert.Equal(t, 2, res.TotalSources)

	res, err = runner.SyncSourceStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.SourcesUpdated)

	got, err := store.GetSourceByName(ctx, testSource)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalJobsScraped)
}

func TestStatus(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	seedSource(t, store, testSource, "http://example.com")
	seedSource(t, store, "Other", "http://example.org")
	cache := runcache.NewMemory()
	require.NoError(t, cache.Save(ctx, &types.RunResult{Source: testSource, Success: true}))
	runner := newTestRunner(store, testOptions(), WithCache(cache))

	status, err := runner.Status(ctx)
	require.NoError(t, err)
	require.Len(t, status.Sources, 2)
	assert.Equal(t, "Other", status.Sources[0].Source.Name)
	assert.Nil(t, status.Sources[0].LastRun)
	require.NotNil(t, status.Sources[1].LastRun)
	assert.True(t, status.Sources[1].LastRun.Success)
	assert.Equal(t, 0, status.TotalJobs)
}

// unreadableCache fails every read, like a redis that went away after startup
type unreadableCache struct{ runcache.Cache }

func (unreadableCache) All(context.Context) ([]types.RunResult, error) {
	return nil, errors.New("connection refused")
}

func TestStatus_CacheUnavailable(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	seedSource(t, store, testSource, "http://example.com")
	runner := newTestRunner(store, testOptions(), WithCache(unreadableCache{runcache.NewMemory()}))

	status, err := runner.Status(ctx)
	require.NoError(t, err)
	require.Len(t, status.Sources, 1)
	assert.Nil(t, status.Sources[0].LastRun)
}

func TestThrottled(t *testing.T) {
	assert.True(t, throttled(&fetch.Error{StatusCode: http.StatusTooManyRequests}))
	wrapped := &RunFailure{Source: testSource, Message: "failed to fetch start page",
		Cause: &fetch.Error{StatusCode: http.StatusServiceUnavailable}}
	assert.True(t, throttled(wrapped))
	assert.False(t, throttled(&fetch.Error{StatusCode: http.StatusNotFound}))
	assert.False(t, throttled(errors.New("dial tcp: refused")))
}

func TestSeedSources(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	seeded, err := SeedSources(ctx, store, []*types.JobSource{
		{Name: "WeWorkRemotely", BaseURL: "https://weworkremotely.com", IsActive: true, ScrapeInterval: 3600, RateLimit: 1},
		{Name: "RemoteOK", BaseURL: "https://remoteok.com", IsActive: true, ScrapeInterval: 1800, RateLimit: 1},
	})
	require.NoError(t, err)
	require.Len(t, seeded, 2)

	require.NoError(t, store.IncrementSourceJobs(ctx, seeded[1].ID, 4))
	again, err := SeedSources(ctx, store, []*types.JobSource{
		{Name: "RemoteOK", BaseURL: "https://remoteok.com", IsActive: false, ScrapeInterval: 900},
	})
	require.NoError(t, err)
	assert.Equal(t, seeded[1].ID, again[0].ID)
	assert.Equal(t, 4, again[0].TotalJobsScraped)
	assert.False(t, again[0].IsActive)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.FixedDelay = true
	opts := OptionsFromConfig(cfg)

	assert.Equal(t, 100, opts.MaxJobs)
	assert.Equal(t, 30*time.Minute, opts.Timeout)
	assert.Equal(t, 8, opts.Concurrency)
	assert.Equal(t, 4, opts.Workers)
	assert.True(t, opts.ObeyRobots)
	assert.Equal(t, 2*time.Second, opts.Gate.MinDelay)
	assert.False(t, opts.Gate.Randomize)
	assert.True(t, opts.Gate.AutoThrottle)
	assert.Equal(t, 10*time.Second, opts.Gate.MaxDelay)
	assert.Equal(t, 2.0, opts.Gate.TargetConcurrency)

	zero := Options{}.withDefaults()
	assert.Equal(t, DefaultMaxJobs, zero.MaxJobs)
	assert.Equal(t, DefaultWorkers, zero.Workers)
	assert.NotEmpty(t, zero.UserAgent)
}
