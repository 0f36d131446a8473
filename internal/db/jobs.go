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

const jobColumns = `id, company_id, source_id, external_id, title, url, description, requirements, benefits,
	location, is_remote, remote_type, job_type, experience_level, salary_min, salary_max,
	salary_currency, salary_period, posted_date, scraped_date, is_active, tags, skills_required,
	created_at, updated_at`

func scanJob(row pgx.Row) (*types.Job, error) {
	var j types.Job
	err := row.Scan(&j.ID, &j.CompanyID, &j.SourceID, &j.ExternalID, &j.Title, &j.URL, &j.Description,
		&j.Requirements, &j.Benefits, &j.Location, &j.IsRemote, &j.RemoteType, &j.JobType, &j.ExperienceLevel,
		&j.SalaryMin, &j.SalaryMax, &j.SalaryCurrency, &j.SalaryPeriod, &j.PostedDate, &j.ScrapedDate,
		&j.IsActive, &j.Tags, &j.Skills, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// FindJob looks a job up by its natural key
func (db *DB) FindJob(ctx context.Context, sourceID uuid.UUID, externalID string) (*types.Job, error) {
	j, err := scanJob(db.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE source_id = $1 AND external_id = $2`,
		sourceID, externalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return j, nil
}

// CreateJob inserts job and fills its generated fields. It returns false without
// error when a row with the same (source_id, external_id) already exists.
func (db *DB) CreateJob(ctx context.Context, job *types.Job) (bool, error) {
	scraped := job.ScrapedDate
	if scraped.IsZero() {
		scraped = time.Now().UTC()
	}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO jobs (company_id, source_id, external_id, title, url, description, requirements, benefits,
		     location, is_remote, remote_type, job_type, experience_level, salary_min, salary_max,
		     salary_currency, salary_period, posted_date, scraped_date, is_active, tags, skills_required)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		 ON CONFLICT (source_id, external_id) DO NOTHING
		 RETURNING id, scraped_date, created_at, updated_at`,
		job.CompanyID, job.SourceID, job.ExternalID, job.Title, job.URL, job.Description, job.Requirements,
		job.Benefits, job.Location, job.IsRemote, string(job.RemoteType), string(job.JobType), job.ExperienceLevel,
		job.SalaryMin, job.SalaryMax, job.SalaryCurrency, string(job.SalaryPeriod), job.PostedDate, scraped,
		job.IsActive, textArray(job.Tags), textArray(job.Skills),
	).Scan(&job.ID, &job.ScrapedDate, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create job: %w", err)
	}
	return true, nil
}

// UpdateJob overwrites every mutable column of the job identified by its natural key
func (db *DB) UpdateJob(ctx context.Context, job *types.Job) error {
	err := db.pool.QueryRow(ctx,
		`UPDATE jobs SET
		     company_id = $3, title = $4, url = $5, description = $6, requirements = $7, benefits = $8,
		     location = $9, is_remote = $10, remote_type = $11, job_type = $12, experience_level = $13,
		     salary_min = $14, salary_max = $15, salary_currency = $16, salary_period = $17,
		     posted_date = $18, is_active = $19, tags = $20, skills_required = $21, updated_at = NOW()
		 WHERE source_id = $1 AND external_id = $2
		 RETURNING id, updated_at`,
		job.SourceID, job.ExternalID, job.CompanyID, job.Title, job.URL, job.Description, job.Requirements,
		job.Benefits, job.Location, job.IsRemote, string(job.RemoteType), string(job.JobType), job.ExperienceLevel,
		job.SalaryMin, job.SalaryMax, job.SalaryCurrency, string(job.SalaryPeriod), job.PostedDate,
		job.IsActive, textArray(job.Tags), textArray(job.Skills),
	).Scan(&job.ID, &job.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("job %s not found", job.ExternalID)
		}
		return fmt.Errorf("failed to update job: %w", err)
	}
	return nil
}

// DeactivateJobsPostedBefore marks active jobs posted before cutoff inactive
func (db *DB) DeactivateJobsPostedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := db.pool.Exec(ctx,
		`UPDATE jobs SET is_active = FALSE, updated_at = NOW() WHERE is_active AND posted_date < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate old jobs: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// CountJobs returns the number of jobs and how many of them are active
func (db *DB) CountJobs(ctx context.Context) (total, active int, err error) {
	err = db.pool.QueryRow(ctx,
		`SELECT count(*), count(*) FILTER (WHERE is_active) FROM jobs`).Scan(&total, &active)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count jobs: %w", err)
	}
	return total, active, nil
}

// textArray keeps NOT NULL array columns from receiving NULL
func textArray(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
