package extract

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListing(t *testing.T) {
	html := `<html><body><ul>
<li class="feature"><a href="/remote-jobs/1/a">A</a></li>
<li class="feature"><a href="/remote-jobs/2/b#top">B</a></li>
<li class="feature"><a href="/remote-jobs/1/a">A again</a></li>
<li class="feature"><a href="/company/acme">Company</a></li>
<li class="feature"><a href="https://other.example/remote-jobs/3/c">Elsewhere</a></li>
<li><a href="/remote-jobs/4/not-featured">Plain</a></li>
</ul><a class="next_page" href="?page=2">Next</a></body></html>`

	page, err := NewPage("https://weworkremotely.com/categories/remote-programming-jobs", html)
	require.NoError(t, err)

	listing, err := ParseListing(page, "li.feature a[href]", regexp.MustCompile(`/remote-jobs/`), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://weworkremotely.com/remote-jobs/1/a",
		"https://weworkremotely.com/remote-jobs/2/b",
	}, listing.DetailLinks)
	assert.Equal(t, "https://weworkremotely.com/categories/remote-programming-jobs?page=2", listing.NextPage)
}

func TestParseListing_RelNextAndNoNext(t *testing.T) {
	page, err := NewPage("https://remoteok.com/remote-dev-jobs",
		`<html><head><link rel="next" href="/remote-dev-jobs?offset=20"></head><body></body></html>`)
	require.NoError(t, err)

	listing, err := NewRemoteOK().ParseListing(page)
	require.NoError(t, err)
	assert.Empty(t, listing.DetailLinks)
	assert.Equal(t, "https://remoteok.com/remote-dev-jobs?offset=20", listing.NextPage)

	page, err = NewPage("https://remoteok.com/remote-dev-jobs", `<html><body><a href="/x">x</a></body></html>`)
	require.NoError(t, err)
	listing, err = NewRemoteOK().ParseListing(page)
	require.NoError(t, err)
	assert.Empty(t, listing.NextPage)
}

func TestParseListing_InvalidBase(t *testing.T) {
	page, err := NewPage("relative/path", "<html><body></body></html>")
	require.NoError(t, err)
	_, err = ParseListing(page, "", nil, nil)
	assert.Error(t, err)
}
