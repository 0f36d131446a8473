package types

import (
	"time"

	"github.com/google/uuid"
)

// Source defaults applied when a seed entry leaves them unset
const (
	DefaultScrapeInterval = 3600 // seconds
	DefaultRateLimit      = 1    // seconds between requests
)

// JobSource is a configured job board to scrape
type JobSource struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	BaseURL          string     `json:"base_url"`
	IsActive         bool       `json:"is_active"`
	ScrapeInterval   int        `json:"scrape_interval"` // seconds
	RateLimit        int        `json:"rate_limit"`      // seconds between requests
	UserAgent        string     `json:"user_agent,omitempty"`
	LastScraped      *time.Time `json:"last_scraped,omitempty"`
	TotalJobsScraped int        `json:"total_jobs_scraped"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// DueForScrape reports whether the scrape interval has elapsed since the last run.
// A source that has never been scraped is always due.
func (s *JobSource) DueForScrape(now time.Time) bool {
	if s.LastScraped == nil {
		return true
	}
	return now.Sub(*s.LastScraped) >= s.Interval()
}

// Interval returns the scrape interval as a duration
func (s *JobSource) Interval() time.Duration {
	return time.Duration(s.ScrapeInterval) * time.Second
}

// RequestDelay returns the configured minimum delay between requests
func (s *JobSource) RequestDelay() time.Duration {
	return time.Duration(s.RateLimit) * time.Second
}
