package pipeline

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/jobtracker/internal/extract"
	"github.com/jonathan/jobtracker/internal/types"
)

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func validCandidate() *types.RawCandidate {
	return &types.RawCandidate{
		SourceName:     "WeWorkRemotely",
		ExternalID:     "12345",
		URL:            "https://weworkremotely.com/remote-jobs/12345",
		Title:          "  Senior Go Developer ",
		CompanyName:    "Acme Corp",
		RawDescription: "<div><p>Build   things</p>\n<p>with Go &amp; SQL</p></div>",
		RawLocation:    "  Work From Home - Anywhere ",
		RawSalary:      "$80,000 - $100,000",
		Tags:           []string{"go"},
	}
}

func TestNormalize_Valid(t *testing.T) {
	n := NewNormalizer(WithClock(func() time.Time { return testNow }))

	rec, err := n.Normalize(validCandidate())
	require.NoError(t, err)

	assert.Equal(t, "Senior Go Developer", rec.Title)
	assert.Equal(t, "Build things with Go & SQL", rec.Description)
	assert.Equal(t, "Work From Home - Anywhere", rec.Location)
	assert.True(t, rec.IsRemote)
	assert.Equal(t, types.RemoteTypeFullyRemote, rec.RemoteType)
	require.NotNil(t, rec.SalaryMin)
	assert.Equal(t, 80000, *rec.SalaryMin)
	assert.Equal(t, 100000, *rec.SalaryMax)
	assert.Equal(t, "USD", rec.SalaryCurrency)
	assert.Equal(t, types.SalaryPeriodYearly, rec.SalaryPeriod)
	assert.Equal(t, types.JobTypeFullTime, rec.JobType)
	assert.Equal(t, testNow, rec.PostedDate)
	assert.Equal(t, []string{"go"}, rec.Tags)
	assert.NotNil(t, rec.Skills)
}

func TestNormalize_TitleLength(t *testing.T) {
	n := NewNormalizer()

	c := validCandidate()
	c.Title = "Dev"
	_, err := n.Normalize(c)
	var vf *ValidationFailure
	require.True(t, errors.As(err, &vf))
	assert.Equal(t, "title", vf.Field)

	c.Title = "Developer"
	rec, err := n.Normalize(c)
	require.NoError(t, err)
	assert.Equal(t, "Developer", rec.Title)

	c.Title = strings.Repeat("x", 300)
	rec, err = n.Normalize(c)
	require.NoError(t, err)
	assert.Len(t, rec.Title, MaxFieldLength)
}

func TestNormalize_MissingRequired(t *testing.T) {
	n := NewNormalizer()
	tests := []struct {
		field  string
		mutate func(*types.RawCandidate)
	}{
		{"title", func(c *types.RawCandidate) { c.Title = " " }},
		{"company_name", func(c *types.RawCandidate) { c.CompanyName = "" }},
		{"external_id", func(c *types.RawCandidate) { c.ExternalID = "" }},
		{"url", func(c *types.RawCandidate) { c.URL = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			c := validCandidate()
			tt.mutate(c)
			_, err := n.Normalize(c)
			var vf *ValidationFailure
			require.True(t, errors.As(err, &vf))
			assert.Equal(t, tt.field, vf.Field)
		})
	}
}

func TestNormalize_InvalidURL(t *testing.T) {
	c := validCandidate()
	c.URL = "not a url"
	_, err := NewNormalizer().Normalize(c)
	var vf *ValidationFailure
	require.True(t, errors.As(err, &vf))
	assert.Equal(t, "url", vf.Field)
}

func TestNormalize_KeepsExtractedValues(t *testing.T) {
	posted := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	c := validCandidate()
	c.PostedDate = &posted
	c.JobType = types.JobTypeContract
	c.SalaryPeriod = types.SalaryPeriodHourly
	c.RawSalary = "Competitive"
	c.RawDescription = "   "
	c.RawLocation = "Austin, TX"

	rec, err := NewNormalizer().Normalize(c)
	require.NoError(t, err)
	assert.Equal(t, posted, rec.PostedDate)
	assert.Equal(t, types.JobTypeContract, rec.JobType)
	assert.Equal(t, types.SalaryPeriodHourly, rec.SalaryPeriod)
	assert.Nil(t, rec.SalaryMin)
	assert.Nil(t, rec.SalaryMax)
	assert.Equal(t, PlaceholderSummary, rec.Description)
	assert.False(t, rec.IsRemote)
	assert.Equal(t, types.RemoteTypeOnSite, rec.RemoteType)
}

func TestClassifyLocation(t *testing.T) {
	tests := []struct {
		input      string
		location   string
		remote     bool
		remoteType types.RemoteType
	}{
		{"Work From Home - Anywhere", "Work From Home - Anywhere", true, types.RemoteTypeFullyRemote},
		{"Austin, TX", "Austin, TX", false, types.RemoteTypeOnSite},
		{"WFH (US only)", "WFH (US only)", true, types.RemoteTypeFullyRemote},
		{"Distributed team", "Distributed team", true, types.RemoteTypeFullyRemote},
		{"", "", false, types.RemoteTypeOnSite},
	}
	for _, tt := range tests {
		location, remote, remoteType := ClassifyLocation(tt.input)
		assert.Equal(t, tt.location, location)
		assert.Equal(t, tt.remote, remote, tt.input)
		assert.Equal(t, tt.remoteType, remoteType, tt.input)
	}

	long, _, _ := ClassifyLocation(strings.Repeat("é", 300))
	assert.Equal(t, MaxFieldLength, len([]rune(long)))
}

func TestCleanDescription(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"markup", "<p>Build <b>APIs</b></p>", "Build APIs"},
		{"escaped markup", "&lt;p&gt;Build &lt;b&gt;APIs&lt;/b&gt;&lt;/p&gt;", "Build APIs"},
		{"entities kept as text", "Go &amp; SQL, 5&#43; years", "Go & SQL, 5+ years"},
		{"only markup", "&lt;br/&gt;<br>", PlaceholderSummary},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanDescription(tt.raw))
		})
	}
}

func TestNormalize_EscapedStructuredDescription(t *testing.T) {
	const detail = `<html><head><script type="application/ld+json">
{"@type":"JobPosting","title":"Backend Engineer",
 "hiringOrganization":{"name":"Initech"},
 "description":"&lt;p&gt;Build &lt;strong&gt;APIs&lt;/strong&gt; in Go&lt;/p&gt;"}
</script></head><body></body></html>`

	page, err := extract.NewPage("https://remoteok.com/remote-jobs/backend-engineer-initech-42", detail)
	require.NoError(t, err)
	c, err := extract.NewRemoteOK().ParseDetail(page)
	require.NoError(t, err)

	rec, err := NewNormalizer(WithClock(func() time.Time { return testNow })).Normalize(c)
	require.NoError(t, err)
	assert.Equal(t, "Build APIs in Go", rec.Description)
	assert.NotContains(t, rec.Description, "<")
}
