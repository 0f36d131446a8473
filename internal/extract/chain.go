package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strategy reads one field from a page. ok is false when the strategy found nothing.
type Strategy func(p *Page) (value string, ok bool)

// Chain tries strategies in order and keeps the first non-empty value
type Chain []Strategy

// Extract returns the first non-empty trimmed value
func (c Chain) Extract(p *Page) (string, bool) {
	for _, strategy := range c {
		if strategy == nil {
			continue
		}
		if v, ok := strategy(p); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v, true
			}
		}
	}
	return "", false
}

// ExtractOr is Extract with a fallback literal
func (c Chain) ExtractOr(p *Page, fallback string) string {
	if v, ok := c.Extract(p); ok {
		return v
	}
	return fallback
}

// Text returns the collapsed text of the first element matching any selector, tried in order
func Text(selectors ...string) Strategy {
	return func(p *Page) (string, bool) {
		for _, sel := range selectors {
			if text := cleanText(p.Doc.Find(sel).First().Text()); text != "" {
				return text, true
			}
		}
		return "", false
	}
}

// HTML returns the outer HTML of the first element matching any selector
func HTML(selectors ...string) Strategy {
	return func(p *Page) (string, bool) {
		for _, sel := range selectors {
			s := p.Doc.Find(sel).First()
			if s.Length() == 0 || strings.TrimSpace(s.Text()) == "" {
				continue
			}
			if html, err := goquery.OuterHtml(s); err == nil {
				return html, true
			}
		}
		return "", false
	}
}

// Attr returns an attribute of the first matching element
func Attr(selector, attr string) Strategy {
	return func(p *Page) (string, bool) {
		v, ok := p.Doc.Find(selector).First().Attr(attr)
		return strings.TrimSpace(v), ok
	}
}

// Structured reads a field of the first JSON-LD JobPosting
func Structured(field func(*StructuredPosting) string) Strategy {
	return func(p *Page) (string, bool) {
		posting, ok := p.Posting()
		if !ok {
			return "", false
		}
		v := field(posting)
		return v, v != ""
	}
}

// Meta returns the content of the first meta tag with one of the given property or name values
func Meta(names ...string) Strategy {
	return func(p *Page) (string, bool) {
		for _, name := range names {
			for _, attr := range []string{"property", "name"} {
				v, ok := p.Doc.Find(`meta[` + attr + `="` + name + `"]`).First().Attr("content")
				if ok && strings.TrimSpace(v) != "" {
					return strings.TrimSpace(v), true
				}
			}
		}
		return "", false
	}
}

// DocumentTitle returns the <title> text with any trailing " | Site" suffix removed
func DocumentTitle() Strategy {
	return func(p *Page) (string, bool) {
		title := cleanText(p.Doc.Find("title").First().Text())
		if i := strings.LastIndex(title, " | "); i > 0 {
			title = strings.TrimSpace(title[:i])
		}
		return title, title != ""
	}
}

// TitlePart selects which half of a split heading a Split strategy returns
type TitlePart int

const (
	PartTitle TitlePart = iota
	PartCompany
)

// Split feeds the inner strategy's value through SplitTitle.
// When the heading does not split, the whole value counts as a title and there is no company.
func Split(inner Strategy, part TitlePart) Strategy {
	return func(p *Page) (string, bool) {
		v, ok := inner(p)
		if !ok || strings.TrimSpace(v) == "" {
			return "", false
		}
		parts, split := SplitTitle(v)
		if !split {
			if part == PartTitle {
				return strings.TrimSpace(v), true
			}
			return "", false
		}
		if part == PartCompany {
			return parts.Company, parts.Company != ""
		}
		return parts.Title, parts.Title != ""
	}
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
