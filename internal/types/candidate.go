package types

import (
	"time"

	"github.com/google/uuid"
)

// RawCandidate is the unvalidated record produced by an extractor for one detail page.
// The Raw* fields carry pre-normalization text and are discarded after reconciliation.
type RawCandidate struct {
	SourceName  string `json:"source_name"`
	ExternalID  string `json:"external_id"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	CompanyName string `json:"company_name"`

	RawDescription string `json:"raw_description,omitempty"`
	RawLocation    string `json:"raw_location,omitempty"`
	RawSalary      string `json:"raw_salary,omitempty"`

	// SalaryPeriod is set when the page states the unit explicitly
	SalaryPeriod SalaryPeriod `json:"salary_period,omitempty"`

	Requirements    string   `json:"requirements,omitempty"`
	Benefits        string   `json:"benefits,omitempty"`
	JobType         JobType  `json:"job_type,omitempty"`
	ExperienceLevel string   `json:"experience_level,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	Skills          []string `json:"skills_required,omitempty"`

	// PostedDate is nil when no strategy produced a date
	PostedDate *time.Time `json:"posted_date,omitempty"`

	// Optional company details some pages expose
	CompanyWebsite     string `json:"company_website,omitempty"`
	CompanyIndustry    string `json:"company_industry,omitempty"`
	CompanySize        string `json:"company_size,omitempty"`
	CompanyDescription string `json:"company_description,omitempty"`
}

// Key returns the run-scoped identity of the candidate
func (c *RawCandidate) Key() string {
	return c.SourceName + "-" + c.ExternalID
}

// NormalizedRecord is a validated candidate ready for reconciliation
type NormalizedRecord struct {
	SourceName  string `json:"source_name" validate:"required"`
	ExternalID  string `json:"external_id" validate:"required"`
	URL         string `json:"url" validate:"required,url"`
	Title       string `json:"title" validate:"required,min=5,max=255"`
	CompanyName string `json:"company_name" validate:"required"`

	Description     string       `json:"description"`
	Requirements    string       `json:"requirements,omitempty"`
	Benefits        string       `json:"benefits,omitempty"`
	Location        string       `json:"location,omitempty" validate:"max=255"`
	IsRemote        bool         `json:"is_remote"`
	RemoteType      RemoteType   `json:"remote_type"`
	JobType         JobType      `json:"job_type"`
	ExperienceLevel string       `json:"experience_level,omitempty"`
	SalaryMin       *int         `json:"salary_min,omitempty"`
	SalaryMax       *int         `json:"salary_max,omitempty"`
	SalaryCurrency  string       `json:"salary_currency"`
	SalaryPeriod    SalaryPeriod `json:"salary_period"`
	PostedDate      time.Time    `json:"posted_date"`
	Tags            []string     `json:"tags"`
	Skills          []string     `json:"skills_required"`

	CompanyWebsite     string `json:"company_website,omitempty"`
	CompanyIndustry    string `json:"company_industry,omitempty"`
	CompanySize        string `json:"company_size,omitempty"`
	CompanyDescription string `json:"company_description,omitempty"`
}

// ApplyTo overwrites every mutable field of job with the record's values.
// Identity fields (SourceID, ExternalID) are left untouched.
func (r *NormalizedRecord) ApplyTo(job *Job, companyID uuid.UUID) {
	job.CompanyID = companyID
	job.Title = r.Title
	job.URL = r.URL
	job.Description = r.Description
	job.Requirements = r.Requirements
	job.Benefits = r.Benefits
	job.Location = r.Location
	job.IsRemote = r.IsRemote
	job.RemoteType = r.RemoteType
	job.JobType = r.JobType
	job.ExperienceLevel = r.ExperienceLevel
	job.SalaryMin = r.SalaryMin
	job.SalaryMax = r.SalaryMax
	job.SalaryCurrency = r.SalaryCurrency
	job.SalaryPeriod = r.SalaryPeriod
	job.PostedDate = r.PostedDate
	job.Tags = r.Tags
	job.Skills = r.Skills
	job.IsActive = true
}

// NewCompany builds the company row created on first sight of a name
func (r *NormalizedRecord) NewCompany() *Company {
	size := r.CompanySize
	if size == "" {
		size = CompanySizeUnknown
	}
	return &Company{
		Name:        r.CompanyName,
		Slug:        Slugify(r.CompanyName),
		Website:     r.CompanyWebsite,
		Industry:    r.CompanyIndustry,
		Size:        size,
		Description: r.CompanyDescription,
	}
}
