// Package main provides the jobtracker command line: scrape job boards into
// PostgreSQL and run the periodic maintenance jobs.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/jobtracker/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "jobtracker",
	Short: "Job board scraper and ingestion pipeline",
	Long: `jobtracker crawls configured job boards, normalizes the postings it finds and
upserts them into PostgreSQL keyed by (source, external id).

Configuration can be loaded from a JSON file using --config. Environment variables
override the file, and command-line flags override both.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

var (
	configPath  string
	verbose     bool
	logFormat   string
	databaseURL string
	redisURL    string
	sourcesFile string
	dryRun      bool
)

// settings and logger are populated by setup before any command runs
var (
	settings config.Config
	logger   = slog.Default()
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	flags.StringVar(&logFormat, "log-format", "", "Log format: text or json")
	flags.StringVar(&databaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	flags.StringVar(&redisURL, "redis-url", "", "Redis URL for the run result cache (optional, defaults to REDIS_URL env var)")
	flags.StringVar(&sourcesFile, "sources", "", "Path to the sources seed file")
	flags.BoolVar(&dryRun, "dry-run", false, "Use an in-memory store seeded from the sources file instead of PostgreSQL")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd, os.Getenv)
	if err != nil {
		return err
	}
	settings = cfg
	logger = newLogger(cmd.ErrOrStderr(), cfg.LogFormat, cfg.Verbose)
	slog.SetDefault(logger)
	return nil
}

// loadSettings layers the config file, the environment and explicitly set flags
// over the built-in defaults.
func loadSettings(cmd *cobra.Command, getenv func(string) string) (config.Config, error) {
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return config.Config{}, err
		}
		cfg = *loaded
	}

	if err := cfg.ApplyEnv(getenv); err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = logFormat
	}
	if flags.Changed("db-url") {
		cfg.DatabaseURL = databaseURL
	}
	if flags.Changed("redis-url") {
		cfg.RedisURL = redisURL
	}
	if flags.Changed("sources") {
		cfg.SourcesFile = sourcesFile
	}

	merged := cfg.MergeWithDefaults(config.Defaults())
	if err := merged.Validate(); err != nil {
		return config.Config{}, err
	}
	return merged, nil
}

func newLogger(w io.Writer, format string, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
