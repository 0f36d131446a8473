package extract

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/jobtracker/internal/fetch"
	"github.com/jonathan/jobtracker/internal/types"
)

const (
	UnknownTitle   = "Unknown Title"
	UnknownCompany = "Unknown Company"
)

// Extractor knows how to crawl one job board
type Extractor interface {
	// Source is the job source name this extractor serves
	Source() string
	// StartURLs returns the seed listing pages
	StartURLs(baseURL string) []string
	ParseListing(p *Page) (*Listing, error)
	ParseDetail(p *Page) (*types.RawCandidate, error)
}

// Board describes a job board declaratively. Field chains are tried in the order
// structured data, CSS selectors, meta title, document title.
type Board struct {
	Name string
	// StartPaths are resolved against the source base URL
	StartPaths []string

	DetailLinkSelector string
	DetailPattern      *regexp.Regexp
	NextSelectors      []string

	// ExternalIDPatterns capture the posting id from a detail URL in group 1
	ExternalIDPatterns []*regexp.Regexp

	TitleSelectors       []string
	CompanySelectors     []string
	DescriptionSelectors []string
	LocationSelectors    []string
	SalarySelectors      []string
	DateSelectors        []string
	BreadcrumbSelector   string
	TagSelector          string
	CompanyURLSelectors  []string

	// DefaultLocation is used when nothing on the page names one
	DefaultLocation string
	// TagExclusions drop breadcrumb labels that only name the board itself
	TagExclusions []string

	// Now is the clock used for posted-date fallbacks
	Now func() time.Time
}

func (b *Board) Source() string { return b.Name }

// StartURLs resolves StartPaths against baseURL. A path that fails to resolve is skipped.
func (b *Board) StartURLs(baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil
	}
	if len(b.StartPaths) == 0 {
		return []string{base.String()}
	}
	urls := make([]string, 0, len(b.StartPaths))
	for _, path := range b.StartPaths {
		ref, err := url.Parse(path)
		if err != nil {
			continue
		}
		urls = append(urls, base.ResolveReference(ref).String())
	}
	return urls
}

func (b *Board) ParseListing(p *Page) (*Listing, error) {
	return ParseListing(p, b.DetailLinkSelector, b.DetailPattern, b.NextSelectors)
}

func (b *Board) ParseDetail(p *Page) (*types.RawCandidate, error) {
	if p == nil || p.Doc == nil {
		return nil, &ExtractionFailure{Message: "no document"}
	}
	now := time.Now().UTC()
	if b.Now != nil {
		now = b.Now()
	}

	title := b.titleChain().ExtractOr(p, UnknownTitle)
	company := b.companyChain().ExtractOr(p, UnknownCompany)
	description, _ := b.descriptionChain().Extract(p)
	location := b.locationChain().ExtractOr(p, b.DefaultLocation)
	salary, _ := b.salaryChain().Extract(p)

	c := &types.RawCandidate{
		SourceName:     b.Name,
		ExternalID:     b.externalID(p),
		URL:            p.URL,
		Title:          title,
		CompanyName:    company,
		RawDescription: description,
		RawLocation:    location,
		RawSalary:      salary,
	}

	posting, structured := p.Posting()
	if structured {
		c.SalaryPeriod = posting.SalaryPeriod
	}
	if jt, ok := jobTypeFromPosting(posting, structured); ok {
		c.JobType = jt
	} else {
		c.JobType = InferJobType(p.BodyText())
	}
	if website, ok := b.companyURLChain().Extract(p); ok {
		c.CompanyWebsite = website
	}

	bodyText := htmlText(description)
	c.Tags = ExtractTags(b.breadcrumbs(p), title+" "+bodyText, b.TagExclusions...)
	c.Skills = ExtractSkills(bodyText)

	posted := b.postedDate(p, now)
	c.PostedDate = &posted
	return c, nil
}

func (b *Board) titleChain() Chain {
	return Chain{
		Structured(func(sp *StructuredPosting) string { return sp.Title }),
		Text(b.TitleSelectors...),
		Split(Meta("og:title", "twitter:title"), PartTitle),
		Split(DocumentTitle(), PartTitle),
	}
}

func (b *Board) companyChain() Chain {
	return Chain{
		Structured(func(sp *StructuredPosting) string { return sp.Company }),
		Text(b.CompanySelectors...),
		Split(Meta("og:title", "twitter:title"), PartCompany),
		Split(DocumentTitle(), PartCompany),
	}
}

func (b *Board) descriptionChain() Chain {
	return Chain{
		HTML(b.DescriptionSelectors...),
		Structured(func(sp *StructuredPosting) string { return sp.Description }),
		func(p *Page) (string, bool) {
			text := fetch.MainText(p.Doc, fetch.JobPostingSelectors())
			return text, text != ""
		},
	}
}

func (b *Board) locationChain() Chain {
	return Chain{
		Structured(func(sp *StructuredPosting) string { return sp.Location }),
		Text(b.LocationSelectors...),
	}
}

func (b *Board) salaryChain() Chain {
	return Chain{
		Structured(func(sp *StructuredPosting) string { return sp.Salary }),
		withDigits(Text(b.SalarySelectors...)),
	}
}

func (b *Board) companyURLChain() Chain {
	chain := Chain{Structured(func(sp *StructuredPosting) string { return sp.CompanyURL })}
	for _, sel := range b.CompanyURLSelectors {
		chain = append(chain, Attr(sel, "href"))
	}
	return chain
}

func (b *Board) postedDate(p *Page, now time.Time) time.Time {
	if posting, ok := p.Posting(); ok {
		if t, ok := ParseStructuredDate(posting.DatePosted); ok {
			return t
		}
	}
	for _, sel := range b.DateSelectors {
		s := p.Doc.Find(sel).First()
		if s.Length() == 0 {
			continue
		}
		if dt, ok := s.Attr("datetime"); ok {
			if t, ok := ParseStructuredDate(dt); ok {
				return t
			}
		}
		if label := cleanText(s.Text()); label != "" {
			return ParsePostedDate(label, now)
		}
	}
	return now
}

func (b *Board) breadcrumbs(p *Page) []string {
	var labels []string
	for _, sel := range []string{b.BreadcrumbSelector, b.TagSelector} {
		if sel == "" {
			continue
		}
		p.Doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if text := cleanText(s.Text()); text != "" {
				labels = append(labels, text)
			}
		})
	}
	return labels
}

// externalID prefers the structured identifier, then the board's URL patterns,
// then the last non-empty path segment of the URL.
func (b *Board) externalID(p *Page) string {
	if posting, ok := p.Posting(); ok && posting.Identifier != "" {
		return posting.Identifier
	}
	for _, pattern := range b.ExternalIDPatterns {
		if m := pattern.FindStringSubmatch(p.URL); len(m) > 1 && m[1] != "" {
			return m[1]
		}
	}
	return lastPathSegment(p.URL)
}

func lastPathSegment(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i]
		}
	}
	return ""
}

func jobTypeFromPosting(posting *StructuredPosting, ok bool) (types.JobType, bool) {
	if !ok {
		return "", false
	}
	return JobTypeFromEmployment(posting.EmploymentType)
}

var digits = regexp.MustCompile(`\d`)

func withDigits(inner Strategy) Strategy {
	return func(p *Page) (string, bool) {
		v, ok := inner(p)
		if !ok || !digits.MatchString(v) {
			return "", false
		}
		return v, true
	}
}

// htmlText returns the visible text of a fragment, or the input when it is not markup
func htmlText(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return fragment
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	return cleanText(doc.Text())
}
