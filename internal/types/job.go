// Package types provides type definitions for the records that flow through the job ingestion pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RemoteType classifies how much of a job can be done remotely
type RemoteType string

const (
	RemoteTypeFullyRemote RemoteType = "fully_remote"
	RemoteTypeHybrid      RemoteType = "hybrid"
	RemoteTypeOnSite      RemoteType = "on_site"
)

// JobType is the employment arrangement of a posting
type JobType string

const (
	JobTypeFullTime   JobType = "full_time"
	JobTypePartTime   JobType = "part_time"
	JobTypeContract   JobType = "contract"
	JobTypeFreelance  JobType = "freelance"
	JobTypeInternship JobType = "internship"
	JobTypeTemporary  JobType = "temporary"
)

// SalaryPeriod is the unit a salary figure is quoted in
type SalaryPeriod string

const (
	SalaryPeriodHourly  SalaryPeriod = "hourly"
	SalaryPeriodDaily   SalaryPeriod = "daily"
	SalaryPeriodMonthly SalaryPeriod = "monthly"
	SalaryPeriodYearly  SalaryPeriod = "yearly"
)

// DefaultCurrency is used when a salary string carries no currency symbol
const DefaultCurrency = "USD"

// Job is the canonical stored posting. (SourceID, ExternalID) is its natural key.
type Job struct {
	ID              uuid.UUID    `json:"id"`
	CompanyID       uuid.UUID    `json:"company_id"`
	SourceID        uuid.UUID    `json:"source_id"`
	ExternalID      string       `json:"external_id"`
	Title           string       `json:"title"`
	URL             string       `json:"url"`
	Description     string       `json:"description"`
	Requirements    string       `json:"requirements,omitempty"`
	Benefits        string       `json:"benefits,omitempty"`
	Location        string       `json:"location,omitempty"`
	IsRemote        bool         `json:"is_remote"`
	RemoteType      RemoteType   `json:"remote_type"`
	JobType         JobType      `json:"job_type"`
	ExperienceLevel string       `json:"experience_level,omitempty"`
	SalaryMin       *int         `json:"salary_min,omitempty"`
	SalaryMax       *int         `json:"salary_max,omitempty"`
	SalaryCurrency  string       `json:"salary_currency"`
	SalaryPeriod    SalaryPeriod `json:"salary_period"`
	PostedDate      time.Time    `json:"posted_date"`
	ScrapedDate     time.Time    `json:"scraped_date"`
	IsActive        bool         `json:"is_active"`
	Tags            []string     `json:"tags"`
	Skills          []string     `json:"skills_required"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

var currencySymbols = map[string]string{"USD": "$", "EUR": "€", "GBP": "£"}

// SalaryDisplay renders the salary range for humans
func (j *Job) SalaryDisplay() string {
	if j.SalaryMin == nil && j.SalaryMax == nil {
		return "Not specified"
	}
	symbol, ok := currencySymbols[j.SalaryCurrency]
	if !ok {
		symbol = j.SalaryCurrency
	}
	switch {
	case j.SalaryMin != nil && j.SalaryMax != nil:
		return fmt.Sprintf("%s%s - %s%s", symbol, groupThousands(*j.SalaryMin), symbol, groupThousands(*j.SalaryMax))
	case j.SalaryMin != nil:
		return fmt.Sprintf("From %s%s", symbol, groupThousands(*j.SalaryMin))
	default:
		return fmt.Sprintf("Up to %s%s", symbol, groupThousands(*j.SalaryMax))
	}
}

// AgeInDays returns whole days elapsed since the posting date
func (j *Job) AgeInDays(now time.Time) int {
	return int(now.Sub(j.PostedDate).Hours() / 24)
}

// IsRecentlyPosted reports whether the job was posted within the given number of days
func (j *Job) IsRecentlyPosted(now time.Time, days int) bool {
	return j.AgeInDays(now) <= days
}

func groupThousands(n int) string {
	s := fmt.Sprintf("%d", n)
	neg := false
	if n < 0 {
		neg = true
		s = s[1:]
	}
	out := make([]byte, 0, len(s)+len(s)/3)
	for i := range len(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
