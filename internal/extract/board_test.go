package extract

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/jobtracker/internal/types"
)

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

const wwrDetailHTML = `<!DOCTYPE html>
<html><head><title>Senior Go Engineer at Acme Corp | We Work Remotely</title></head>
<body>
<div class="breadcrumbs"><a href="/">Home</a><a href="/categories/remote-programming-jobs">Programming</a></div>
<div class="listing-header">
  <h1 class="page-title">Senior Go Engineer</h1>
  <span class="company">Acme Corp</span>
  <span class="location">Anywhere in the World</span>
  <span class="salary">$80,000 - $100,000</span>
  <time datetime="2024-02-01T10:00:00Z">Feb 1</time>
</div>
<div class="listing-container"><div class="listing-container-content">
  <p>We use Docker and PostgreSQL. Experience with kubernetes is a plus.</p>
</div></div>
</body></html>`

func TestWeWorkRemotely_ParseDetail(t *testing.T) {
	board := NewWeWorkRemotely()
	board.Now = func() time.Time { return fixedNow }

	page, err := NewPage("https://weworkremotely.com/remote-jobs/12345/senior-go-engineer", wwrDetailHTML)
	require.NoError(t, err)

	c, err := board.ParseDetail(page)
	require.NoError(t, err)

	assert.Equal(t, SourceWeWorkRemotely, c.SourceName)
	assert.Equal(t, "12345", c.ExternalID)
	assert.Equal(t, "Senior Go Engineer", c.Title)
	assert.Equal(t, "Acme Corp", c.CompanyName)
	assert.Equal(t, "Anywhere in the World", c.RawLocation)
	assert.Equal(t, "$80,000 - $100,000", c.RawSalary)
	assert.Contains(t, c.RawDescription, "listing-container-content")
	assert.Equal(t, types.JobTypeFullTime, c.JobType)
	assert.Equal(t, []string{"programming", "docker", "kubernetes", "postgresql"}, c.Tags)
	assert.Equal(t, []string{"Kubernetes"}, c.Skills)
	require.NotNil(t, c.PostedDate)
	assert.Equal(t, time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC), *c.PostedDate)
}

func TestWeWorkRemotely_ParseDetail_Fallbacks(t *testing.T) {
	board := NewWeWorkRemotely()
	board.Now = func() time.Time { return fixedNow }

	html := `<html><head><meta property="og:title" content="Globex is hiring a Product Designer"></head>
<body><main><p>Design things. Contract position.</p></main></body></html>`
	page, err := NewPage("https://weworkremotely.com/remote-jobs/globex-product-designer", html)
	require.NoError(t, err)

	c, err := board.ParseDetail(page)
	require.NoError(t, err)

	assert.Equal(t, "globex-product-designer", c.ExternalID)
	assert.Equal(t, "Product Designer", c.Title)
	assert.Equal(t, "Globex", c.CompanyName)
	assert.Equal(t, "Remote", c.RawLocation)
	assert.Empty(t, c.RawSalary)
	assert.Contains(t, c.RawDescription, "Design things")
	assert.Equal(t, types.JobTypeContract, c.JobType)
	assert.Equal(t, fixedNow, *c.PostedDate)
}

func TestBoard_ParseDetail_UnknownLiterals(t *testing.T) {
	board := NewWeWorkRemotely()
	page, err := NewPage("https://weworkremotely.com/remote-jobs/1/", "<html><body><p>nothing here</p></body></html>")
	require.NoError(t, err)

	c, err := board.ParseDetail(page)
	require.NoError(t, err)
	assert.Equal(t, UnknownTitle, c.Title)
	assert.Equal(t, UnknownCompany, c.CompanyName)
	assert.Equal(t, "1", c.ExternalID)
}

const structuredDetailHTML = `<html><head>
<script type="application/ld+json">
{"@context":"https://schema.org","@graph":[
  {"@type":"Organization","name":"Ignored"},
  {"@type":"JobPosting",
   "title":"Staff Backend Engineer",
   "hiringOrganization":{"@type":"Organization","name":"Initech","sameAs":"https://initech.example"},
   "datePosted":"2024-01-20",
   "employmentType":["PART_TIME"],
   "identifier":{"@type":"PropertyValue","value":"ABC-77"},
   "jobLocationType":"TELECOMMUTE",
   "baseSalary":{"@type":"MonetaryAmount","currency":"GBP",
     "value":{"@type":"QuantitativeValue","minValue":50000,"maxValue":65000,"unitText":"YEAR"}},
   "description":"<p>Build APIs in python.</p>"}
]}
</script></head>
<body><h1>Something else</h1><p>full-time contract</p></body></html>`

func TestRemoteOK_ParseDetail_StructuredData(t *testing.T) {
	board := NewRemoteOK()
	board.Now = func() time.Time { return fixedNow }

	page, err := NewPage("https://remoteok.com/remote-jobs/remote-staff-backend-engineer-initech-998877", structuredDetailHTML)
	require.NoError(t, err)

	c, err := board.ParseDetail(page)
	require.NoError(t, err)

	assert.Equal(t, "ABC-77", c.ExternalID)
	assert.Equal(t, "Staff Backend Engineer", c.Title)
	assert.Equal(t, "Initech", c.CompanyName)
	assert.Equal(t, "https://initech.example", c.CompanyWebsite)
	assert.Equal(t, "Remote", c.RawLocation)
	assert.Equal(t, "£50000 - £65000", c.RawSalary)
	assert.Equal(t, types.SalaryPeriodYearly, c.SalaryPeriod)
	assert.Equal(t, types.JobTypePartTime, c.JobType)
	assert.Equal(t, time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC), *c.PostedDate)
	assert.Contains(t, c.Tags, "python")
}

func TestRemoteOK_ExternalIDFromURL(t *testing.T) {
	board := NewRemoteOK()
	for url, want := range map[string]string{
		"https://remoteok.com/remote-jobs/123456":                          "123456",
		"https://remoteok.com/remote-jobs/remote-go-engineer-acme-1093485": "1093485",
		"https://remoteok.com/remote-jobs/go-engineer":                     "go-engineer",
	} {
		page, err := NewPage(url, "<html><body></body></html>")
		require.NoError(t, err)
		assert.Equal(t, want, board.externalID(page), url)
	}
}

func TestNewPage_Empty(t *testing.T) {
	_, err := NewPage("https://example.com/x", "  ")
	require.Error(t, err)

	var extractionErr *ExtractionFailure
	assert.True(t, errors.As(err, &extractionErr))
	assert.Equal(t, "https://example.com/x", extractionErr.URL)
}

func TestBoard_StartURLs(t *testing.T) {
	urls := NewWeWorkRemotely().StartURLs("https://weworkremotely.com")
	require.Len(t, urls, 4)
	assert.Equal(t, "https://weworkremotely.com/categories/remote-programming-jobs", urls[0])

	board := &Board{Name: "Plain"}
	assert.Equal(t, []string{"https://jobs.example.com/listing"}, board.StartURLs("https://jobs.example.com/listing"))
	assert.Empty(t, board.StartURLs("not a url"))
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{SourceRemoteOK, SourceWeWorkRemotely}, r.Names())

	e, ok := r.Lookup(SourceWeWorkRemotely)
	require.True(t, ok)
	assert.Equal(t, SourceWeWorkRemotely, e.Source())

	_, ok = r.Lookup("AngelList")
	assert.False(t, ok)
}
