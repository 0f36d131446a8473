package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Listing is what a listing page contributes to the crawl
type Listing struct {
	DetailLinks []string
	NextPage    string
}

// DefaultNextSelectors locate the pagination link on listing pages
var DefaultNextSelectors = []string{"a.next_page", `a[rel="next"]`, `link[rel="next"]`}

// ParseListing collects the detail links on a listing page and its next-page link.
// Links are resolved against the page URL, kept only when they stay on the same host
// and match detailPattern, and deduplicated in first-seen order.
func ParseListing(p *Page, linkSelector string, detailPattern *regexp.Regexp, nextSelectors []string) (*Listing, error) {
	base, err := url.Parse(p.URL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, &ExtractionFailure{URL: p.URL, Message: "invalid listing URL", Cause: err}
	}
	if linkSelector == "" {
		linkSelector = "a[href]"
	}

	listing := &Listing{}
	seen := make(map[string]bool)
	p.Doc.Find(linkSelector).Each(func(_ int, s *goquery.Selection) {
		link, ok := resolveHref(base, s)
		if !ok || seen[link] {
			return
		}
		if detailPattern != nil && !detailPattern.MatchString(link) {
			return
		}
		seen[link] = true
		listing.DetailLinks = append(listing.DetailLinks, link)
	})

	if len(nextSelectors) == 0 {
		nextSelectors = DefaultNextSelectors
	}
	for _, sel := range nextSelectors {
		if next, ok := resolveHref(base, p.Doc.Find(sel).First()); ok && next != p.URL {
			listing.NextPage = next
			break
		}
	}
	return listing, nil
}

func resolveHref(base *url.URL, s *goquery.Selection) (string, bool) {
	href, exists := s.Attr("href")
	href = strings.TrimSpace(href)
	if !exists || href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(ref)
	if abs.Host != base.Host {
		return "", false
	}
	abs.Fragment = ""
	return abs.String(), true
}
