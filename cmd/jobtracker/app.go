package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/jobtracker/internal/config"
	"github.com/jonathan/jobtracker/internal/db"
	"github.com/jonathan/jobtracker/internal/memstore"
	"github.com/jonathan/jobtracker/internal/orchestrator"
	"github.com/jonathan/jobtracker/internal/runcache"
	"github.com/jonathan/jobtracker/internal/schemas"
	"github.com/jonathan/jobtracker/internal/types"
)

// store is everything the commands need from persistence
type store interface {
	orchestrator.Store
	orchestrator.SourceUpserter
}

var (
	_ store = (*db.DB)(nil)
	_ store = (*memstore.Store)(nil)
)

// app holds the wired components for one command invocation
type app struct {
	store  store
	runner *orchestrator.Runner
	// mem is set in dry-run mode
	mem     *memstore.Store
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// commandContext is cancelled on SIGINT or SIGTERM
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func openApp(ctx context.Context, cfg config.Config, logger *slog.Logger, inMemory bool) (*app, error) {
	a := &app{}
	var cache runcache.Cache

	if inMemory {
		mem := memstore.New()
		seeds, err := loadSeedSources(cfg.SourcesFile)
		if err != nil {
			return nil, err
		}
		if _, err := orchestrator.SeedSources(ctx, mem, seeds); err != nil {
			return nil, err
		}
		a.store = mem
		a.mem = mem
		cache = runcache.NewMemory()
	} else {
		database, err := openDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.store = database
		a.closers = append(a.closers, database.Close)
		cache = openCache(ctx, cfg, logger)
		if client, ok := cache.(*closingCache); ok {
			a.closers = append(a.closers, client.close)
		}
	}

	options := []orchestrator.Option{orchestrator.WithLogger(logger)}
	if cache != nil {
		options = append(options, orchestrator.WithCache(cache))
	}
	a.runner = orchestrator.New(a.store, orchestrator.OptionsFromConfig(cfg), options...)
	return a, nil
}

func openDB(ctx context.Context, cfg config.Config) (*db.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required (or use --dry-run)")
	}
	return db.Connect(ctx, cfg.DatabaseURL)
}

// closingCache is a redis cache that owns its client
type closingCache struct {
	*runcache.Redis
	close func()
}

// openCache connects to redis when configured. The cache is optional, so a
// connection failure only disables it.
func openCache(ctx context.Context, cfg config.Config, logger *slog.Logger) runcache.Cache {
	if cfg.RedisURL == "" {
		return nil
	}
	client, err := runcache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		logger.Warn("run result cache disabled", "error", err)
		return nil
	}
	return &closingCache{
		Redis: runcache.NewRedis(client, cfg.ResultTTL.Std()),
		close: func() { _ = client.Close() },
	}
}

func loadSeedSources(path string) ([]*types.JobSource, error) {
	seeds, err := schemas.LoadSources(path)
	if err != nil {
		return nil, err
	}
	sources := make([]*types.JobSource, 0, len(seeds))
	for _, s := range seeds {
		sources = append(sources, s.JobSource())
	}
	return sources, nil
}
