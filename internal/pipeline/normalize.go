package pipeline

import (
	"errors"
	"html"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/jobtracker/internal/types"
)

const (
	MinTitleLength     = 5
	MaxFieldLength     = 255
	PlaceholderSummary = "No description provided."
)

var remoteKeywords = []string{"remote", "anywhere", "work from home", "wfh", "distributed"}

var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Normalizer validates raw candidates and converts them to normalized records
type Normalizer struct {
	validate        *validator.Validate
	defaultCurrency string
	now             func() time.Time
}

// NormalizerOption configures a Normalizer
type NormalizerOption func(*Normalizer)

// WithClock overrides the clock used for the posted-date default
func WithClock(now func() time.Time) NormalizerOption {
	return func(n *Normalizer) { n.now = now }
}

// WithDefaultCurrency sets the currency used when salary text has no symbol
func WithDefaultCurrency(currency string) NormalizerOption {
	return func(n *Normalizer) { n.defaultCurrency = currency }
}

func NewNormalizer(opts ...NormalizerOption) *Normalizer {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	n := &Normalizer{
		validate:        v,
		defaultCurrency: types.DefaultCurrency,
		now:             func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize checks required fields, cleans text, parses salary and location, and
// fills defaults. Failures are *ValidationFailure.
func (n *Normalizer) Normalize(c *types.RawCandidate) (*types.NormalizedRecord, error) {
	for _, req := range []struct{ field, value string }{
		{"title", c.Title},
		{"company_name", c.CompanyName},
		{"external_id", c.ExternalID},
		{"url", c.URL},
	} {
		if strings.TrimSpace(req.value) == "" {
			return nil, &ValidationFailure{Field: req.field, Message: "missing required field"}
		}
	}

	title := strings.TrimSpace(c.Title)
	if utf8.RuneCountInString(title) < MinTitleLength {
		return nil, &ValidationFailure{Field: "title", Message: "job title too short: " + title}
	}

	rec := &types.NormalizedRecord{
		SourceName:         c.SourceName,
		ExternalID:         strings.TrimSpace(c.ExternalID),
		URL:                strings.TrimSpace(c.URL),
		Title:              truncate(title, MaxFieldLength),
		CompanyName:        truncate(strings.TrimSpace(c.CompanyName), MaxFieldLength),
		Description:        CleanDescription(c.RawDescription),
		Requirements:       strings.TrimSpace(c.Requirements),
		Benefits:           strings.TrimSpace(c.Benefits),
		JobType:            c.JobType,
		ExperienceLevel:    c.ExperienceLevel,
		SalaryPeriod:       c.SalaryPeriod,
		Tags:               nonNil(c.Tags),
		Skills:             nonNil(c.Skills),
		CompanyWebsite:     c.CompanyWebsite,
		CompanyIndustry:    c.CompanyIndustry,
		CompanySize:        c.CompanySize,
		CompanyDescription: c.CompanyDescription,
	}

	rec.SalaryMin, rec.SalaryMax, rec.SalaryCurrency = ParseSalary(c.RawSalary, n.defaultCurrency)
	rec.Location, rec.IsRemote, rec.RemoteType = ClassifyLocation(c.RawLocation)

	if c.PostedDate != nil && !c.PostedDate.IsZero() {
		rec.PostedDate = *c.PostedDate
	} else {
		rec.PostedDate = n.now()
	}
	if rec.JobType == "" {
		rec.JobType = types.JobTypeFullTime
	}
	if rec.SalaryPeriod == "" {
		rec.SalaryPeriod = types.SalaryPeriodYearly
	}

	if err := n.validate.Struct(rec); err != nil {
		return nil, validationFailure(err)
	}
	return rec, nil
}

func validationFailure(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ValidationFailure{Field: fe.Field(), Message: "failed " + fe.Tag() + " check", Cause: err}
	}
	return &ValidationFailure{Message: "invalid record", Cause: err}
}

// ClassifyLocation trims and bounds a location and decides whether it is remote
func ClassifyLocation(raw string) (location string, isRemote bool, remoteType types.RemoteType) {
	location = truncate(strings.TrimSpace(raw), MaxFieldLength)
	lower := strings.ToLower(location)
	for _, kw := range remoteKeywords {
		if strings.Contains(lower, kw) {
			return location, true, types.RemoteTypeFullyRemote
		}
	}
	return location, false, types.RemoteTypeOnSite
}

// CleanDescription removes markup and collapses whitespace. Entity-escaped
// markup, common in structured-data descriptions, is removed as well.
// An empty result becomes PlaceholderSummary.
func CleanDescription(raw string) string {
	text := tagPattern.ReplaceAllString(raw, " ")
	text = html.UnescapeString(text)
	text = tagPattern.ReplaceAllString(text, " ")
	text = strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
	if text == "" {
		return PlaceholderSummary
	}
	return text
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
