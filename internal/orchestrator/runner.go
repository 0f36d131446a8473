// Package orchestrator drives scrape runs: one source at a time through
// RunSource, every due source through ScrapeAll, and the periodic maintenance
// jobs through the Scheduler.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/jobtracker/internal/extract"
	"github.com/jonathan/jobtracker/internal/fetch"
	"github.com/jonathan/jobtracker/internal/pipeline"
	"github.com/jonathan/jobtracker/internal/reconcile"
	"github.com/jonathan/jobtracker/internal/runcache"
	"github.com/jonathan/jobtracker/internal/types"
)

// Store is the persistence a Runner needs
type Store interface {
	reconcile.Store
	ListSources(ctx context.Context, activeOnly bool) ([]types.JobSource, error)
	// MarkSourceScraped only moves last_scraped forward
	MarkSourceScraped(ctx context.Context, sourceID uuid.UUID, at time.Time) error
	DeactivateJobsPostedBefore(ctx context.Context, cutoff time.Time) (int, error)
	SyncSourceJobCounts(ctx context.Context) (int, error)
	CountJobs(ctx context.Context) (total, active int, err error)
}

// Fetcher retrieves pages for one run
type Fetcher interface {
	Get(ctx context.Context, url string) (*fetch.Result, error)
	GetRendered(ctx context.Context, url string, contentSelectors []string) (*fetch.Result, error)
}

// FetcherFactory builds the fetcher for a run of source. gate already carries
// the source's minimum request delay.
type FetcherFactory func(source *types.JobSource, userAgent string, gate fetch.GateConfig) Fetcher

// Runner executes scrape runs against a Store
type Runner struct {
	store      Store
	opts       Options
	registry   *extract.Registry
	cache      runcache.Cache
	logger     *slog.Logger
	now        func() time.Time
	newFetcher FetcherFactory
}

// Option configures a Runner
type Option func(*Runner)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithRegistry replaces the default WeWorkRemotely/RemoteOK extractors
func WithRegistry(registry *extract.Registry) Option {
	return func(r *Runner) { r.registry = registry }
}

// WithCache stores every run result in cache
func WithCache(cache runcache.Cache) Option {
	return func(r *Runner) { r.cache = cache }
}

func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

func WithFetcherFactory(f FetcherFactory) Option {
	return func(r *Runner) { r.newFetcher = f }
}

func New(store Store, opts Options, options ...Option) *Runner {
	r := &Runner{
		store:    store,
		opts:     opts.withDefaults(),
		registry: extract.DefaultRegistry(),
		logger:   slog.Default(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, o := range options {
		o(r)
	}
	if r.newFetcher == nil {
		r.newFetcher = r.defaultFetcher
	}
	return r
}

func (r *Runner) defaultFetcher(source *types.JobSource, userAgent string, gate fetch.GateConfig) Fetcher {
	return fetch.NewClient(fetch.ClientConfig{
		UserAgent:  userAgent,
		Timeout:    r.opts.RequestTimeout,
		ObeyRobots: r.opts.ObeyRobots,
		Gate:       gate,
		UseBrowser: r.opts.UseBrowser,
	}, r.logger.With("source", source.Name))
}

// RunSource scrapes one source. The result is always non-nil; the error is the
// run-level failure, if any. Item-level failures only show up in result.Stats.
func (r *Runner) RunSource(ctx context.Context, name string, ro RunOptions) (*types.RunResult, error) {
	start := r.now()
	result := &types.RunResult{Source: name}

	err := r.runSource(ctx, name, ro, start, result)
	if err != nil {
		result.Success = false
		result.Error = err.Error()
	}
	r.finish(ctx, result, start)
	return result, err
}

func (r *Runner) runSource(ctx context.Context, name string, ro RunOptions, start time.Time, result *types.RunResult) error {
	source, err := r.store.GetSourceByName(ctx, name)
	if err != nil {
		return &RunFailure{Source: name, Message: "failed to load source", Cause: err}
	}
	if source == nil || !source.IsActive {
		return &RunFailure{
			Source:  name,
			Message: "source not found or inactive",
			Cause:   &reconcile.UnknownSourceFailure{Source: name},
		}
	}
	if !ro.Force && !source.DueForScrape(start) {
		result.Success = true
		result.Skipped = true
		return nil
	}
	extractor, ok := r.registry.Lookup(source.Name)
	if !ok {
		r.logger.Warn("no extractor registered for source", "source", name, "registered", r.registry.Names())
		return &RunFailure{Source: name, Message: "no extractor"}
	}

	maxJobs := ro.MaxJobs
	if maxJobs <= 0 {
		maxJobs = r.opts.MaxJobs
	}
	timeout := ro.Timeout
	if timeout <= 0 {
		timeout = r.opts.Timeout
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	run := r.newRun(source, extractor, maxJobs)
	r.logger.Info("starting scrape", "source", source.Name, "max_jobs", maxJobs, "timeout", timeout)
	crawlErr := run.crawl(runCtx)
	result.Stats = run.snapshot()

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return &RunTimeoutFailure{Source: name, Timeout: timeout, Cause: runCtx.Err()}
	}
	if crawlErr != nil {
		return crawlErr
	}

	scrapedAt := r.now()
	if err := r.store.MarkSourceScraped(ctx, source.ID, scrapedAt); err != nil {
		return &RunFailure{Source: name, Message: "failed to mark source scraped", Cause: err}
	}
	result.Success = true
	result.ScrapedAt = &scrapedAt
	return nil
}

func (r *Runner) finish(ctx context.Context, result *types.RunResult, start time.Time) {
	result.FinishedAt = r.now()
	result.Duration = result.FinishedAt.Sub(start).Round(time.Millisecond).String()

	attrs := []any{
		"source", result.Source,
		"duration", result.Duration,
		"created", result.Stats.Created,
		"updated", result.Stats.Updated,
		"duplicates", result.Stats.Duplicates,
		"invalid", result.Stats.Invalid,
		"failed", result.Stats.Failed,
	}
	switch {
	case result.Skipped:
		r.logger.Info("skipping source, too soon since last scrape", "source", result.Source)
	case result.Success:
		r.logger.Info("scrape completed", attrs...)
	default:
		r.logger.Error("scrape failed", append(attrs, "error", result.Error)...)
	}

	// a skip must not hide the last real run
	if r.cache == nil || result.Skipped {
		return
	}
	if err := r.cache.Save(context.WithoutCancel(ctx), result); err != nil {
		r.logger.Warn("failed to cache run result", "source", result.Source, "error", err)
	}
}

// sourceRun is the state of one RunSource call
type sourceRun struct {
	source     *types.JobSource
	extractor  extract.Extractor
	fetcher    Fetcher
	pipeline   *pipeline.Pipeline
	reconciler *reconcile.Reconciler
	logger     *slog.Logger
	maxJobs    int
	limit      int

	mu    sync.Mutex
	stats types.RunStats
}

func (r *Runner) newRun(source *types.JobSource, extractor extract.Extractor, maxJobs int) *sourceRun {
	userAgent := source.UserAgent
	if userAgent == "" {
		userAgent = r.opts.UserAgent
	}
	gate := r.opts.Gate
	gate.MinDelay = max(gate.MinDelay, source.RequestDelay())

	return &sourceRun{
		source:     source,
		extractor:  extractor,
		fetcher:    r.newFetcher(source, userAgent, gate),
		pipeline:   pipeline.New(pipeline.NewNormalizer(pipeline.WithClock(r.now))),
		reconciler: reconcile.New(r.store, r.logger),
		logger:     r.logger.With("source", source.Name),
		maxJobs:    maxJobs,
		limit:      r.opts.Concurrency,
	}
}

func (s *sourceRun) count(f func(*types.RunStats)) {
	s.mu.Lock()
	f(&s.stats)
	s.mu.Unlock()
}

func (s *sourceRun) snapshot() types.RunStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// crawl walks every start URL's listing chain in order and processes detail
// pages concurrently. It returns a *RunFailure when a start page fails; the
// remaining start pages are still crawled.
func (s *sourceRun) crawl(ctx context.Context) error {
	g := new(errgroup.Group)
	g.SetLimit(s.limit)

	var seedErr error
	dispatched := 0
	seen := make(map[string]bool)
	visited := make(map[string]bool)

	for _, startURL := range s.extractor.StartURLs(s.source.BaseURL) {
		pageURL := startURL
		for depth := 0; pageURL != "" && dispatched < s.maxJobs; depth++ {
			if ctx.Err() != nil || visited[pageURL] {
				break
			}
			visited[pageURL] = true
			listing, err := s.listing(ctx, pageURL)
			if err != nil {
				if ctx.Err() != nil {
					break
				}
				if depth == 0 && seedErr == nil {
					seedErr = &RunFailure{Source: s.source.Name, Message: "failed to fetch start page", Cause: err}
				}
				s.logger.Error("listing page failed", "url", pageURL, "throttled", throttled(err), "error", err)
				break
			}

			for _, link := range listing.DetailLinks {
				if dispatched >= s.maxJobs || ctx.Err() != nil {
					break
				}
				if seen[link] {
					continue
				}
				seen[link] = true
				dispatched++
				g.Go(func() error {
					s.detail(ctx, link)
					return nil
				})
			}
			pageURL = listing.NextPage
		}
	}

	_ = g.Wait()
	if dispatched >= s.maxJobs {
		s.logger.Info("reached max jobs limit", "max_jobs", s.maxJobs)
	}
	return seedErr
}

func (s *sourceRun) listing(ctx context.Context, pageURL string) (*extract.Listing, error) {
	res, err := s.fetcher.Get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	page, err := extract.NewPage(pageURL, res.HTML)
	if err != nil {
		return nil, err
	}
	listing, err := s.extractor.ParseListing(page)
	if err != nil {
		return nil, err
	}
	s.count(func(st *types.RunStats) { st.ListingPages++ })
	s.logger.Debug("parsed listing page", "url", pageURL,
		"links", len(listing.DetailLinks), "next", listing.NextPage)
	return listing, nil
}

// detail handles one detail page end to end. Every failure stays local to the item.
func (s *sourceRun) detail(ctx context.Context, link string) {
	res, err := s.fetcher.GetRendered(ctx, link, fetch.JobPostingSelectors())
	if err != nil {
		if ctx.Err() == nil {
			s.count(func(st *types.RunStats) { st.Failed++ })
			s.logger.Warn("detail page fetch failed", "url", link, "throttled", throttled(err), "error", err)
		}
		return
	}
	s.count(func(st *types.RunStats) { st.DetailPages++ })

	page, err := extract.NewPage(link, res.HTML)
	if err != nil {
		s.count(func(st *types.RunStats) { st.Failed++ })
		s.logger.Warn("extraction failed", "url", link, "error", err)
		return
	}
	candidate, err := s.extractor.ParseDetail(page)
	if err != nil {
		s.count(func(st *types.RunStats) { st.Failed++ })
		s.logger.Warn("extraction failed", "url", link, "error", err)
		return
	}
	s.count(func(st *types.RunStats) { st.Extracted++ })

	record, err := s.pipeline.Process(candidate)
	if err != nil {
		var dup *pipeline.DuplicateFailure
		if errors.As(err, &dup) {
			s.count(func(st *types.RunStats) { st.Duplicates++ })
			s.logger.Debug("dropping duplicate item", "url", link, "external_id", candidate.ExternalID)
			return
		}
		s.count(func(st *types.RunStats) { st.Invalid++ })
		s.logger.Warn("dropping invalid item", "url", link, "external_id", candidate.ExternalID, "error", err)
		return
	}

	outcome, _, err := s.reconciler.Reconcile(ctx, record)
	if err != nil {
		s.count(func(st *types.RunStats) { st.Failed++ })
		var unknown *reconcile.UnknownSourceFailure
		if errors.As(err, &unknown) {
			s.logger.Error("job source not configured", "url", link, "error", err)
			return
		}
		s.logger.Warn("failed to save job", "url", link, "external_id", record.ExternalID, "error", err)
		return
	}
	s.count(func(st *types.RunStats) {
		if outcome == reconcile.Created {
			st.Created++
		} else {
			st.Updated++
		}
	})
}

// throttled reports whether err is a fetch the host answered with 429 or 503
func throttled(err error) bool {
	var fetchErr *fetch.Error
	return errors.As(err, &fetchErr) && fetchErr.Throttled()
}
