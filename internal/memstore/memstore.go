// Package memstore is an in-memory job store with the same semantics as the
// PostgreSQL store. It backs dry runs and tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/jobtracker/internal/types"
)

type jobKey struct {
	sourceID   uuid.UUID
	externalID string
}

// Store holds companies, sources and jobs in maps guarded by one mutex.
// Values handed out are copies.
type Store struct {
	mu        sync.Mutex
	now       func() time.Time
	companies map[string]*types.Company // lower(name)
	sources   map[string]*types.JobSource
	jobs      map[jobKey]*types.Job
}

func New() *Store {
	return &Store{
		now:       func() time.Time { return time.Now().UTC() },
		companies: make(map[string]*types.Company),
		sources:   make(map[string]*types.JobSource),
		jobs:      make(map[jobKey]*types.Job),
	}
}

func (s *Store) FindCompanyByName(_ context.Context, name string) (*types.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.companies[strings.ToLower(name)]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (s *Store) CreateCompany(_ context.Context, company *types.Company) (*types.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(company.Name)
	if existing, ok := s.companies[key]; ok {
		cp := *existing
		return &cp, nil
	}
	c := *company
	c.ID = uuid.New()
	c.CreatedAt = s.now()
	c.UpdatedAt = c.CreatedAt
	s.companies[key] = &c
	cp := c
	return &cp, nil
}

func (s *Store) GetSourceByName(_ context.Context, name string) (*types.JobSource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if src, ok := s.sources[name]; ok {
		cp := *src
		return &cp, nil
	}
	return nil, nil
}

func (s *Store) FindJob(_ context.Context, sourceID uuid.UUID, externalID string) (*types.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[jobKey{sourceID, externalID}]; ok {
		return copyJob(j), nil
	}
	return nil, nil
}

func (s *Store) CreateJob(_ context.Context, job *types.Job) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := jobKey{job.SourceID, job.ExternalID}
	if _, ok := s.jobs[key]; ok {
		return false, nil
	}
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	now := s.now()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.ScrapedDate.IsZero() {
		job.ScrapedDate = now
	}
	s.jobs[key] = copyJob(job)
	return true, nil
}

func (s *Store) UpdateJob(_ context.Context, job *types.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := jobKey{job.SourceID, job.ExternalID}
	existing, ok := s.jobs[key]
	if !ok {
		return fmt.Errorf("job %s not found", job.ExternalID)
	}
	job.ID = existing.ID
	job.CreatedAt = existing.CreatedAt
	job.UpdatedAt = s.now()
	s.jobs[key] = copyJob(job)
	return nil
}

func (s *Store) IncrementSourceJobs(_ context.Context, sourceID uuid.UUID, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	src := s.sourceByID(sourceID)
	if src == nil {
		return fmt.Errorf("source %s not found", sourceID)
	}
	src.TotalJobsScraped += n
	return nil
}

// ListSources returns sources ordered by name
func (s *Store) ListSources(_ context.Context, activeOnly bool) ([]types.JobSource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.JobSource, 0, len(s.sources))
	for _, src := range s.sources {
		if activeOnly && !src.IsActive {
			continue
		}
		out = append(out, *src)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// MarkSourceScraped sets last_scraped to at unless a later timestamp is already stored
func (s *Store) MarkSourceScraped(_ context.Context, sourceID uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	src := s.sourceByID(sourceID)
	if src == nil {
		return fmt.Errorf("source %s not found", sourceID)
	}
	if src.LastScraped == nil || src.LastScraped.Before(at) {
		t := at
		src.LastScraped = &t
		src.UpdatedAt = s.now()
	}
	return nil
}

func (s *Store) DeactivateJobsPostedBefore(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, j := range s.jobs {
		if j.IsActive && j.PostedDate.Before(cutoff) {
			j.IsActive = false
			j.UpdatedAt = s.now()
			n++
		}
	}
	return n, nil
}

// SyncSourceJobCounts sets every source counter to its job count and returns
// how many counters changed
func (s *Store) SyncSourceJobCounts(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[uuid.UUID]int)
	for _, j := range s.jobs {
		counts[j.SourceID]++
	}
	updated := 0
	for _, src := range s.sources {
		if src.TotalJobsScraped != counts[src.ID] {
			src.TotalJobsScraped = counts[src.ID]
			updated++
		}
	}
	return updated, nil
}

// CountJobs returns the number of jobs and how many of them are active
func (s *Store) CountJobs(_ context.Context) (total, active int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.jobs {
		total++
		if j.IsActive {
			active++
		}
	}
	return total, active, nil
}

// UpsertSource inserts a source or updates its configuration by name.
// Counters and last_scraped of an existing row are kept.
func (s *Store) UpsertSource(_ context.Context, source *types.JobSource) (*types.JobSource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if existing, ok := s.sources[source.Name]; ok {
		existing.BaseURL = source.BaseURL
		existing.IsActive = source.IsActive
		existing.ScrapeInterval = source.ScrapeInterval
		existing.RateLimit = source.RateLimit
		existing.UserAgent = source.UserAgent
		existing.UpdatedAt = now
		cp := *existing
		return &cp, nil
	}
	src := *source
	src.ID = uuid.New()
	src.CreatedAt = now
	src.UpdatedAt = now
	s.sources[src.Name] = &src
	cp := src
	return &cp, nil
}

// Jobs returns every stored job ordered by source then external id
func (s *Store) Jobs() []types.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, *copyJob(j))
	}
	sort.Slice(out, func(i, k int) bool {
		if out[i].SourceID != out[k].SourceID {
			return out[i].SourceID.String() < out[k].SourceID.String()
		}
		return out[i].ExternalID < out[k].ExternalID
	})
	return out
}

// Companies returns every stored company ordered by name
func (s *Store) Companies() []types.Company {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Company, 0, len(s.companies))
	for _, c := range s.companies {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Store) sourceByID(id uuid.UUID) *types.JobSource {
	for _, src := range s.sources {
		if src.ID == id {
			return src
		}
	}
	return nil
}

func copyJob(j *types.Job) *types.Job {
	cp := *j
	cp.Tags = append([]string(nil), j.Tags...)
	cp.Skills = append([]string(nil), j.Skills...)
	return &cp
}
