package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/jobtracker/internal/types"
)

const sourceColumns = `id, name, base_url, is_active, scrape_interval, rate_limit, user_agent,
	last_scraped, total_jobs_scraped, created_at, updated_at`

func scanSource(row pgx.Row) (*types.JobSource, error) {
	var s types.JobSource
	err := row.Scan(&s.ID, &s.Name, &s.BaseURL, &s.IsActive, &s.ScrapeInterval, &s.RateLimit, &s.UserAgent,
		&s.LastScraped, &s.TotalJobsScraped, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetSourceByName returns the named source, or nil when absent
func (db *DB) GetSourceByName(ctx context.Context, name string) (*types.JobSource, error) {
	s, err := scanSource(db.pool.QueryRow(ctx,
		`SELECT `+sourceColumns+` FROM job_sources WHERE name = $1`, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get source: %w", err)
	}
	return s, nil
}

// ListSources returns sources ordered by name
func (db *DB) ListSources(ctx context.Context, activeOnly bool) ([]types.JobSource, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+sourceColumns+` FROM job_sources WHERE is_active OR NOT $1 ORDER BY name`, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	var sources []types.JobSource
	for rows.Next() {
		s, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	return sources, nil
}

// UpsertSource inserts a source or updates its configuration by name.
// Counters and last_scraped are never touched.
func (db *DB) UpsertSource(ctx context.Context, source *types.JobSource) (*types.JobSource, error) {
	s, err := scanSource(db.pool.QueryRow(ctx,
		`INSERT INTO job_sources (name, base_url, is_active, scrape_interval, rate_limit, user_agent)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (name) DO UPDATE SET
		     base_url = EXCLUDED.base_url,
		     is_active = EXCLUDED.is_active,
		     scrape_interval = EXCLUDED.scrape_interval,
		     rate_limit = EXCLUDED.rate_limit,
		     user_agent = EXCLUDED.user_agent,
		     updated_at = NOW()
		 RETURNING `+sourceColumns,
		source.Name, source.BaseURL, source.IsActive, source.ScrapeInterval, source.RateLimit, source.UserAgent,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert source %s: %w", source.Name, err)
	}
	return s, nil
}

// IncrementSourceJobs adds n to the job counter in a single statement
func (db *DB) IncrementSourceJobs(ctx context.Context, sourceID uuid.UUID, n int) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE job_sources SET total_jobs_scraped = total_jobs_scraped + $2, updated_at = NOW() WHERE id = $1`,
		sourceID, n,
	)
	if err != nil {
		return fmt.Errorf("failed to increment job count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("source %s not found", sourceID)
	}
	return nil
}

// MarkSourceScraped records a completed run. An older timestamp never overwrites a newer one.
func (db *DB) MarkSourceScraped(ctx context.Context, sourceID uuid.UUID, at time.Time) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE job_sources SET last_scraped = $2, updated_at = NOW()
		 WHERE id = $1 AND (last_scraped IS NULL OR last_scraped < $2)`,
		sourceID, at,
	)
	if err != nil {
		return fmt.Errorf("failed to mark source scraped: %w", err)
	}
	return nil
}

// SyncSourceJobCounts recomputes every source counter from the jobs table and
// returns how many counters changed
func (db *DB) SyncSourceJobCounts(ctx context.Context) (int, error) {
	tag, err := db.pool.Exec(ctx,
		`UPDATE job_sources s
		 SET total_jobs_scraped = c.n, updated_at = NOW()
		 FROM (
		     SELECT src.id, count(j.id) AS n
		     FROM job_sources src LEFT JOIN jobs j ON j.source_id = src.id
		     GROUP BY src.id
		 ) c
		 WHERE c.id = s.id AND s.total_jobs_scraped <> c.n`)
	if err != nil {
		return 0, fmt.Errorf("failed to sync source job counts: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
