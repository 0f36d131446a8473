package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/jobtracker/internal/memstore"
	"github.com/jonathan/jobtracker/internal/types"
)

func TestScheduler_RegistersJobs(t *testing.T) {
	runner := newTestRunner(memstore.New(), testOptions())
	s := NewScheduler(runner, ScheduleConfig{}, quietLogger())
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	entries := s.cron.Entries()
	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.False(t, e.Next.IsZero())
		assert.Equal(t, time.UTC, e.Next.Location())
	}
	assert.Equal(t, DefaultCleanupSpec, s.cfg.Cleanup)
}

func TestScheduler_InvalidSpec(t *testing.T) {
	runner := newTestRunner(memstore.New(), testOptions())
	s := NewScheduler(runner, ScheduleConfig{Cleanup: "every tuesday"}, quietLogger())
	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cleanup-old-jobs")
}

func TestScheduler_JobsRunAgainstStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	store := memstore.New()
	src := seedSource(t, store, testSource, "http://example.com")
	_, err := store.CreateJob(ctx, &types.Job{
		SourceID: src.ID, ExternalID: "1", PostedDate: now.AddDate(0, 0, -60), IsActive: true,
	})
	require.NoError(t, err)

	runner := newTestRunner(store, testOptions(), WithClock(func() time.Time { return now }))
	s := NewScheduler(runner, ScheduleConfig{CleanupDays: 30}, quietLogger())

	s.cleanup(ctx)
	s.syncStats(ctx)

	_, active, err := store.CountJobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, active)
	got, err := store.GetSourceByName(ctx, testSource)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalJobsScraped)
}
