package types

import "time"

// RunStats counts what happened to the items of one run
type RunStats struct {
	ListingPages int `json:"listing_pages"`
	DetailPages  int `json:"detail_pages"`
	Extracted    int `json:"extracted"`
	Duplicates   int `json:"duplicates"`
	Invalid      int `json:"invalid"`
	Created      int `json:"created"`
	Updated      int `json:"updated"`
	Failed       int `json:"failed"`
}

// RunResult is reported to whatever scheduled a run
type RunResult struct {
	Success    bool       `json:"success"`
	Source     string     `json:"source"`
	Error      string     `json:"error,omitempty"`
	Skipped    bool       `json:"skipped,omitempty"`
	ScrapedAt  *time.Time `json:"scraped_at,omitempty"`
	FinishedAt time.Time  `json:"finished_at"`
	Duration   string     `json:"duration,omitempty"`
	Stats      RunStats   `json:"stats"`
}

// JobAlert is a saved user search. Alert storage and delivery live outside this module.
type JobAlert struct {
	Keywords   []string  `json:"keywords"`
	Location   string    `json:"location,omitempty"`
	RemoteOnly bool      `json:"remote_only,omitempty"`
	JobTypes   []JobType `json:"job_types,omitempty"`
	MinSalary  *int      `json:"min_salary,omitempty"`
}

// AlertMatcher decides whether a stored job satisfies an alert
type AlertMatcher interface {
	Matches(alert *JobAlert, job *Job) bool
}
