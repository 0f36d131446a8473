package orchestrator

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/jobtracker/internal/types"
)

// ScrapeAll runs every active source whose scrape interval has elapsed on a
// pool of Workers goroutines. It returns one result per dispatched source, in
// source-name order. A failing source never affects the others.
func (r *Runner) ScrapeAll(ctx context.Context) ([]types.RunResult, error) {
	sources, err := r.store.ListSources(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list active sources: %w", err)
	}
	r.logger.Info("starting scrape for active sources", "count", len(sources))

	now := r.now()
	due := make([]string, 0, len(sources))
	for i := range sources {
		// advisory only: overlapping runs of one source are tolerated
		if !sources[i].DueForScrape(now) {
			r.logger.Info("skipping source, too soon since last scrape", "source", sources[i].Name)
			continue
		}
		due = append(due, sources[i].Name)
	}

	results := make([]types.RunResult, len(due))
	g := new(errgroup.Group)
	g.SetLimit(r.opts.Workers)
	for i, name := range due {
		g.Go(func() error {
			result, _ := r.RunSource(ctx, name, RunOptions{Force: true})
			results[i] = *result
			return nil
		})
	}
	_ = g.Wait()

	r.logger.Info("scrape cycle finished", "dispatched", len(due), "skipped", len(sources)-len(due))
	return results, nil
}
