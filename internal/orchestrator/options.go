package orchestrator

import (
	"time"

	"github.com/jonathan/jobtracker/internal/config"
	"github.com/jonathan/jobtracker/internal/fetch"
)

// Defaults used when Options leaves a limit at zero
const (
	DefaultMaxJobs     = 100
	DefaultTimeout     = 30 * time.Minute
	DefaultConcurrency = 8
	DefaultWorkers     = 4
)

// Options configures every run a Runner performs
type Options struct {
	MaxJobs     int           // detail pages dispatched per run
	Timeout     time.Duration // wall-clock budget per run
	Concurrency int           // detail pages in flight per run
	Workers     int           // sources scraped at once by ScrapeAll

	UserAgent      string // used when a source names none
	ObeyRobots     bool
	Gate           fetch.GateConfig
	RequestTimeout time.Duration
	UseBrowser     bool
}

// RunOptions overrides Options for a single run
type RunOptions struct {
	MaxJobs int
	Timeout time.Duration
	// Force runs the source even when its scrape interval has not elapsed
	Force bool
}

func (o Options) withDefaults() Options {
	if o.MaxJobs <= 0 {
		o.MaxJobs = DefaultMaxJobs
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.UserAgent == "" {
		o.UserAgent = fetch.DefaultUserAgent
	}
	return o
}

// OptionsFromConfig maps the loaded configuration onto runner options
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		MaxJobs:     cfg.MaxJobsPerRun,
		Timeout:     cfg.RunTimeout.Std(),
		Concurrency: cfg.Concurrency,
		Workers:     cfg.Workers,
		UserAgent:   cfg.UserAgent,
		ObeyRobots:  !cfg.IgnoreRobots,
		Gate: fetch.GateConfig{
			MinDelay:          cfg.DownloadDelay.Std(),
			Randomize:         !cfg.FixedDelay,
			AutoThrottle:      !cfg.DisableAutoThrottle,
			StartDelay:        cfg.AutoThrottleStart.Std(),
			MaxDelay:          cfg.AutoThrottleMax.Std(),
			TargetConcurrency: cfg.AutoThrottleTarget,
		},
		UseBrowser: cfg.UseBrowser,
	}
}
