// Package reconcile upserts normalized records into the job store keyed by
// (source, external id).
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/jobtracker/internal/types"
)

// Store is the persistence the reconciler needs. Find and Get methods return
// (nil, nil) when the row does not exist.
type Store interface {
	FindCompanyByName(ctx context.Context, name string) (*types.Company, error)
	// CreateCompany inserts the company or, when the name already exists, returns the existing row
	CreateCompany(ctx context.Context, company *types.Company) (*types.Company, error)
	GetSourceByName(ctx context.Context, name string) (*types.JobSource, error)
	FindJob(ctx context.Context, sourceID uuid.UUID, externalID string) (*types.Job, error)
	// CreateJob inserts job. created is false when a row with the same natural key already existed.
	CreateJob(ctx context.Context, job *types.Job) (created bool, err error)
	UpdateJob(ctx context.Context, job *types.Job) error
	// IncrementSourceJobs adds n to the source's job counter atomically
	IncrementSourceJobs(ctx context.Context, sourceID uuid.UUID, n int) error
}

// UnknownSourceFailure means a record names a source that is not in the store
type UnknownSourceFailure struct {
	Source string
}

func (e *UnknownSourceFailure) Error() string {
	return fmt.Sprintf("unknown job source: %s", e.Source)
}

// Outcome reports what reconciliation did with a record
type Outcome int

const (
	Created Outcome = iota + 1
	Updated
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Updated:
		return "updated"
	default:
		return "unknown"
	}
}

// Reconciler creates or updates jobs. Sources are cached for the lifetime of the Reconciler.
type Reconciler struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	sources map[string]*types.JobSource
}

func New(store Store, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		store:   store,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		sources: make(map[string]*types.JobSource),
	}
}

// Reconcile writes rec to the store. A new natural key creates a job and bumps the
// source counter; an existing one has every mutable field overwritten.
// The source is resolved first, so an item from an unknown source leaves no company behind.
func (r *Reconciler) Reconcile(ctx context.Context, rec *types.NormalizedRecord) (Outcome, *types.Job, error) {
	source, err := r.source(ctx, rec.SourceName)
	if err != nil {
		return 0, nil, err
	}

	company, err := r.company(ctx, rec)
	if err != nil {
		return 0, nil, err
	}

	existing, err := r.store.FindJob(ctx, source.ID, rec.ExternalID)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to look up job %s: %w", rec.ExternalID, err)
	}
	if existing != nil {
		return r.update(ctx, existing, rec, company.ID)
	}

	job := &types.Job{
		SourceID:    source.ID,
		ExternalID:  rec.ExternalID,
		ScrapedDate: r.now(),
	}
	rec.ApplyTo(job, company.ID)

	created, err := r.store.CreateJob(ctx, job)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create job %s: %w", rec.ExternalID, err)
	}
	if !created {
		// lost an insert race; the row now exists
		existing, err = r.store.FindJob(ctx, source.ID, rec.ExternalID)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to load concurrently created job %s: %w", rec.ExternalID, err)
		}
		if existing == nil {
			return 0, nil, fmt.Errorf("job %s vanished after insert conflict", rec.ExternalID)
		}
		return r.update(ctx, existing, rec, company.ID)
	}

	if err := r.store.IncrementSourceJobs(ctx, source.ID, 1); err != nil {
		return 0, nil, fmt.Errorf("failed to increment job count for %s: %w", source.Name, err)
	}
	r.logger.Debug("created job", "source", source.Name, "external_id", job.ExternalID, "title", job.Title)
	return Created, job, nil
}

func (r *Reconciler) update(ctx context.Context, job *types.Job, rec *types.NormalizedRecord, companyID uuid.UUID) (Outcome, *types.Job, error) {
	rec.ApplyTo(job, companyID)
	if err := r.store.UpdateJob(ctx, job); err != nil {
		return 0, nil, fmt.Errorf("failed to update job %s: %w", rec.ExternalID, err)
	}
	r.logger.Debug("updated job", "source", rec.SourceName, "external_id", job.ExternalID, "title", job.Title)
	return Updated, job, nil
}

func (r *Reconciler) source(ctx context.Context, name string) (*types.JobSource, error) {
	r.mu.Lock()
	cached, ok := r.sources[name]
	r.mu.Unlock()
	if ok {
		return cached, nil
	}

	source, err := r.store.GetSourceByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get source %s: %w", name, err)
	}
	if source == nil {
		return nil, &UnknownSourceFailure{Source: name}
	}

	r.mu.Lock()
	r.sources[name] = source
	r.mu.Unlock()
	return source, nil
}

func (r *Reconciler) company(ctx context.Context, rec *types.NormalizedRecord) (*types.Company, error) {
	company, err := r.store.FindCompanyByName(ctx, rec.CompanyName)
	if err != nil {
		return nil, fmt.Errorf("failed to find company %s: %w", rec.CompanyName, err)
	}
	if company != nil {
		return company, nil
	}
	company, err = r.store.CreateCompany(ctx, rec.NewCompany())
	if err != nil {
		return nil, fmt.Errorf("failed to create company %s: %w", rec.CompanyName, err)
	}
	return company, nil
}
