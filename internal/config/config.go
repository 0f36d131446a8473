// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Environment variables that override file values
const (
	EnvDatabaseURL   = "DATABASE_URL"
	EnvRedisURL      = "REDIS_URL"
	EnvUserAgent     = "JOBTRACKER_USER_AGENT"
	EnvMaxJobsPerRun = "JOBTRACKER_MAX_JOBS_PER_RUN"
	EnvRunTimeout    = "JOBTRACKER_RUN_TIMEOUT"
)

// Duration is a time.Duration read from JSON as a Go duration string ("30m") or as seconds
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var seconds float64
	if err := json.Unmarshal(data, &seconds); err != nil {
		return fmt.Errorf("duration must be a string or a number of seconds")
	}
	*d = Duration(seconds * float64(time.Second))
	return nil
}

// Schedule holds cron specs for the periodic jobs
type Schedule struct {
	ScrapeAll string `json:"scrape_all,omitempty"`
	Cleanup   string `json:"cleanup,omitempty"`
	SyncStats string `json:"sync_stats,omitempty"`
}

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Storage
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	RedisURL    string `json:"redis_url,omitempty"`    // Optional run-result cache
	SourcesFile string `json:"sources_file,omitempty"` // Seed file for job sources

	// Crawl limits
	UserAgent     string   `json:"user_agent,omitempty"`
	MaxJobsPerRun int      `json:"max_jobs_per_run,omitempty" validate:"gte=0"`
	RunTimeout    Duration `json:"run_timeout,omitempty" validate:"gte=0"`
	Concurrency   int      `json:"concurrency,omitempty" validate:"gte=0,lte=64"` // Detail pages in flight per run
	Workers       int      `json:"workers,omitempty" validate:"gte=0,lte=32"`     // Sources scraped at once

	// Politeness
	DownloadDelay       Duration `json:"download_delay,omitempty" validate:"gte=0"`
	FixedDelay          bool     `json:"fixed_delay,omitempty"`   // Disable 0.5x-1.5x jitter
	IgnoreRobots        bool     `json:"ignore_robots,omitempty"` // Do not consult robots.txt
	DisableAutoThrottle bool     `json:"disable_autothrottle,omitempty"`
	AutoThrottleStart   Duration `json:"autothrottle_start_delay,omitempty" validate:"gte=0"`
	AutoThrottleMax     Duration `json:"autothrottle_max_delay,omitempty" validate:"gte=0"`
	AutoThrottleTarget  float64  `json:"autothrottle_target_concurrency,omitempty" validate:"gte=0"`
	UseBrowser          bool     `json:"use_browser,omitempty"` // Use headless browser for script-rendered pages

	// Maintenance
	CleanupDays int      `json:"cleanup_days,omitempty" validate:"gte=0"`
	ResultTTL   Duration `json:"result_ttl,omitempty" validate:"gte=0"`
	Schedule    Schedule `json:"schedule,omitempty"`
	Verbose     bool     `json:"verbose,omitempty"`
	LogFormat   string   `json:"log_format,omitempty" validate:"omitempty,oneof=text json"`
}

// Defaults returns the built-in configuration
func Defaults() Config {
	return Config{
		SourcesFile:        "sources.json",
		UserAgent:          "jobscraper (+https://github.com/jonathan/jobtracker)",
		MaxJobsPerRun:      100,
		RunTimeout:         Duration(30 * time.Minute),
		Concurrency:        8,
		Workers:            4,
		DownloadDelay:      Duration(2 * time.Second),
		AutoThrottleStart:  Duration(time.Second),
		AutoThrottleMax:    Duration(10 * time.Second),
		AutoThrottleTarget: 2.0,
		CleanupDays:        30,
		ResultTTL:          Duration(7 * 24 * time.Hour),
		Schedule: Schedule{
			ScrapeAll: "0 * * * *",
			Cleanup:   "0 2 * * *",
			SyncStats: "0 */6 * * *",
		},
		LogFormat: "text",
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overrides fields from environment variables read through getenv.
// Unset or empty variables leave the field alone.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvDatabaseURL); v != "" {
		c.DatabaseURL = v
	}
	if v := getenv(EnvRedisURL); v != "" {
		c.RedisURL = v
	}
	if v := getenv(EnvUserAgent); v != "" {
		c.UserAgent = v
	}
	if v := strings.TrimSpace(getenv(EnvMaxJobsPerRun)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: %s must be an integer: %w", EnvMaxJobsPerRun, err)
		}
		c.MaxJobsPerRun = n
	}
	if v := strings.TrimSpace(getenv(EnvRunTimeout)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config error: %s must be a duration: %w", EnvRunTimeout, err)
		}
		c.RunTimeout = Duration(d)
	}
	return nil
}

var validate = validator.New()

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config error: '%s' failed %s check", jsonName(fe.StructField()), fe.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}

	if c.AutoThrottleMax > 0 && c.AutoThrottleStart > c.AutoThrottleMax {
		return fmt.Errorf("config error: 'autothrottle_start_delay' must not exceed 'autothrottle_max_delay'")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.SourcesFile == "" {
		result.SourcesFile = defaults.SourcesFile
	}
	if result.UserAgent == "" {
		result.UserAgent = defaults.UserAgent
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}
	if result.Schedule.ScrapeAll == "" {
		result.Schedule.ScrapeAll = defaults.Schedule.ScrapeAll
	}
	if result.Schedule.Cleanup == "" {
		result.Schedule.Cleanup = defaults.Schedule.Cleanup
	}
	if result.Schedule.SyncStats == "" {
		result.Schedule.SyncStats = defaults.Schedule.SyncStats
	}

	// Numeric fields: use default if zero
	if result.MaxJobsPerRun == 0 {
		result.MaxJobsPerRun = defaults.MaxJobsPerRun
	}
	if result.RunTimeout == 0 {
		result.RunTimeout = defaults.RunTimeout
	}
	if result.Concurrency == 0 {
		result.Concurrency = defaults.Concurrency
	}
	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}
	if result.DownloadDelay == 0 {
		result.DownloadDelay = defaults.DownloadDelay
	}
	if result.AutoThrottleStart == 0 {
		result.AutoThrottleStart = defaults.AutoThrottleStart
	}
	if result.AutoThrottleMax == 0 {
		result.AutoThrottleMax = defaults.AutoThrottleMax
	}
	if result.AutoThrottleTarget == 0 {
		result.AutoThrottleTarget = defaults.AutoThrottleTarget
	}
	if result.CleanupDays == 0 {
		result.CleanupDays = defaults.CleanupDays
	}
	if result.ResultTTL == 0 {
		result.ResultTTL = defaults.ResultTTL
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// jsonName maps a Config field name to its JSON key
func jsonName(field string) string {
	f, ok := reflect.TypeOf(Config{}).FieldByName(field)
	if !ok {
		return field
	}
	if name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]; name != "" {
		return name
	}
	return field
}
