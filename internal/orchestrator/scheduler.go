package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Default cron specs, evaluated in UTC
const (
	DefaultScrapeAllSpec = "0 * * * *"
	DefaultCleanupSpec   = "0 2 * * *"
	DefaultSyncStatsSpec = "0 */6 * * *"
)

// ScheduleConfig names when each periodic job fires
type ScheduleConfig struct {
	ScrapeAll   string
	Cleanup     string
	SyncStats   string
	CleanupDays int
	// RunOnStart triggers one scrape-all pass right after Start
	RunOnStart bool
}

// Scheduler runs scrape-all, cleanup and stats sync on cron specs. A tick that
// arrives while the previous run of the same job is still going is skipped.
type Scheduler struct {
	cron   *cron.Cron
	runner *Runner
	cfg    ScheduleConfig
	logger *slog.Logger
}

func NewScheduler(runner *Runner, cfg ScheduleConfig, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ScrapeAll == "" {
		cfg.ScrapeAll = DefaultScrapeAllSpec
	}
	if cfg.Cleanup == "" {
		cfg.Cleanup = DefaultCleanupSpec
	}
	if cfg.SyncStats == "" {
		cfg.SyncStats = DefaultSyncStatsSpec
	}
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		runner: runner,
		cfg:    cfg,
		logger: logger,
	}
}

// Start registers the jobs and starts the cron loop. Jobs run with ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	jobs := []struct {
		name string
		spec string
		run  func(context.Context)
	}{
		{"scrape-all", s.cfg.ScrapeAll, s.scrapeAll},
		{"cleanup-old-jobs", s.cfg.Cleanup, s.cleanup},
		{"sync-source-stats", s.cfg.SyncStats, s.syncStats},
	}
	for _, job := range jobs {
		if _, err := s.cron.AddFunc(job.spec, func() { job.run(ctx) }); err != nil {
			return fmt.Errorf("invalid cron spec %q for %s: %w", job.spec, job.name, err)
		}
		s.logger.Info("scheduled job", "job", job.name, "spec", job.spec)
	}

	s.cron.Start()
	if s.cfg.RunOnStart {
		go s.scrapeAll(ctx)
	}
	return nil
}

// Stop stops the cron loop and waits for running jobs to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) scrapeAll(ctx context.Context) {
	results, err := s.runner.ScrapeAll(ctx)
	if err != nil {
		s.logger.Error("scrape-all failed", "error", err)
		return
	}
	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}
	s.logger.Info("scrape-all finished", "sources", len(results), "failed", failed)
}

func (s *Scheduler) cleanup(ctx context.Context) {
	if _, err := s.runner.CleanupOldJobs(ctx, s.cfg.CleanupDays); err != nil {
		s.logger.Error("cleanup-old-jobs failed", "error", err)
	}
}

func (s *Scheduler) syncStats(ctx context.Context) {
	if _, err := s.runner.SyncSourceStats(ctx); err != nil {
		s.logger.Error("sync-source-stats failed", "error", err)
	}
}

// cronLogger adapts slog to cron.Logger
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
