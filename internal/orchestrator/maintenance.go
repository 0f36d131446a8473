package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/jobtracker/internal/types"
)

// DefaultCleanupDays is the posted-date age after which jobs are deactivated
const DefaultCleanupDays = 30

// CleanupResult reports a CleanupOldJobs pass
type CleanupResult struct {
	CleanedJobs int       `json:"cleaned_jobs"`
	Cutoff      time.Time `json:"cutoff_date"`
}

// SyncResult reports a SyncSourceStats pass
type SyncResult struct {
	SourcesUpdated int `json:"sources_updated"`
	TotalSources   int `json:"total_sources"`
}

// SourceStatus pairs a source with its last cached run
type SourceStatus struct {
	Source  types.JobSource  `json:"source"`
	LastRun *types.RunResult `json:"last_run,omitempty"`
}

// Status summarizes the store and the last run of every source
type Status struct {
	Sources    []SourceStatus `json:"sources"`
	TotalJobs  int            `json:"total_jobs"`
	ActiveJobs int            `json:"active_jobs"`
}

// CleanupOldJobs marks active jobs posted more than days ago as inactive.
// days <= 0 selects DefaultCleanupDays.
func (r *Runner) CleanupOldJobs(ctx context.Context, days int) (*CleanupResult, error) {
	if days <= 0 {
		days = DefaultCleanupDays
	}
	cutoff := r.now().AddDate(0, 0, -days)
	n, err := r.store.DeactivateJobsPostedBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("cleanup old jobs failed: %w", err)
	}
	r.logger.Info("marked old jobs as inactive", "count", n, "cutoff", cutoff.Format(time.RFC3339))
	return &CleanupResult{CleanedJobs: n, Cutoff: cutoff}, nil
}

// SyncSourceStats resets every source counter to the number of jobs stored for
// it. Running it twice in a row updates nothing the second time.
func (r *Runner) SyncSourceStats(ctx context.Context) (*SyncResult, error) {
	updated, err := r.store.SyncSourceJobCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("sync source stats failed: %w", err)
	}
	sources, err := r.store.ListSources(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("sync source stats failed: %w", err)
	}
	r.logger.Info("updated job source stats", "updated", updated, "total", len(sources))
	return &SyncResult{SourcesUpdated: updated, TotalSources: len(sources)}, nil
}

// Status reads job totals from the store and last runs from the cache, if any
func (r *Runner) Status(ctx context.Context) (*Status, error) {
	sources, err := r.store.ListSources(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	total, active, err := r.store.CountJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}

	lastRuns := make(map[string]*types.RunResult)
	if r.cache != nil {
		runs, err := r.cache.All(ctx)
		if err != nil {
			r.logger.Warn("failed to read cached runs", "error", err)
		}
		for i := range runs {
			lastRuns[runs[i].Source] = &runs[i]
		}
	}

	status := &Status{TotalJobs: total, ActiveJobs: active}
	for _, src := range sources {
		status.Sources = append(status.Sources, SourceStatus{Source: src, LastRun: lastRuns[src.Name]})
	}
	return status, nil
}

// SourceUpserter stores source configuration
type SourceUpserter interface {
	UpsertSource(ctx context.Context, source *types.JobSource) (*types.JobSource, error)
}

// SeedSources upserts sources by name. Counters and last_scraped of existing
// rows are left alone.
func SeedSources(ctx context.Context, store SourceUpserter, sources []*types.JobSource) ([]types.JobSource, error) {
	out := make([]types.JobSource, 0, len(sources))
	for _, src := range sources {
		saved, err := store.UpsertSource(ctx, src)
		if err != nil {
			return out, fmt.Errorf("failed to seed source %s: %w", src.Name, err)
		}
		out = append(out, *saved)
	}
	return out, nil
}
