package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page is a fetched document ready for extraction.
type Page struct {
	URL      string
	HTML     string
	Doc      *goquery.Document
	Postings []StructuredPosting
}

// NewPage parses html. Structured-data blocks are decoded eagerly.
func NewPage(pageURL, html string) (*Page, error) {
	if strings.TrimSpace(html) == "" {
		return nil, &ExtractionFailure{URL: pageURL, Message: "empty document"}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &ExtractionFailure{URL: pageURL, Message: "failed to parse HTML", Cause: err}
	}
	return &Page{
		URL:      pageURL,
		HTML:     html,
		Doc:      doc,
		Postings: ParseStructuredData(doc),
	}, nil
}

// Posting returns the first JobPosting block on the page, if any.
func (p *Page) Posting() (*StructuredPosting, bool) {
	if len(p.Postings) == 0 {
		return nil, false
	}
	return &p.Postings[0], true
}

// BodyText returns the visible text of the whole body.
func (p *Page) BodyText() string {
	return p.Doc.Find("body").Text()
}
