package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/jobtracker/internal/types"
)

// StructuredPosting is the subset of a schema.org JobPosting the extractor reads
type StructuredPosting struct {
	Title          string
	Company        string
	CompanyURL     string
	Description    string
	DatePosted     string
	EmploymentType []string
	Location       string
	Remote         bool
	Identifier     string
	Salary         string
	SalaryPeriod   types.SalaryPeriod
}

// ParseStructuredData decodes every JSON-LD script on the page and returns the
// JobPosting objects found, including those nested in arrays or @graph containers.
// Malformed blocks are skipped.
func ParseStructuredData(doc *goquery.Document) []StructuredPosting {
	var postings []StructuredPosting
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var data any
		if err := json.Unmarshal([]byte(strings.TrimSpace(s.Text())), &data); err != nil {
			return
		}
		collectPostings(data, &postings)
	})
	return postings
}

func collectPostings(node any, out *[]StructuredPosting) {
	switch v := node.(type) {
	case []any:
		for _, item := range v {
			collectPostings(item, out)
		}
	case map[string]any:
		if graph, ok := v["@graph"]; ok {
			collectPostings(graph, out)
		}
		if isJobPosting(v["@type"]) {
			*out = append(*out, postingFromMap(v))
		}
	}
}

func isJobPosting(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "JobPosting"
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == "JobPosting" {
				return true
			}
		}
	}
	return false
}

func postingFromMap(m map[string]any) StructuredPosting {
	p := StructuredPosting{
		Title:       stringField(m, "title"),
		Description: stringField(m, "description"),
		DatePosted:  stringField(m, "datePosted"),
	}

	switch org := m["hiringOrganization"].(type) {
	case string:
		p.Company = org
	case map[string]any:
		p.Company = stringField(org, "name")
		p.CompanyURL = stringField(org, "sameAs")
		if p.CompanyURL == "" {
			p.CompanyURL = stringField(org, "url")
		}
	}

	switch et := m["employmentType"].(type) {
	case string:
		p.EmploymentType = []string{et}
	case []any:
		for _, item := range et {
			if s, ok := item.(string); ok {
				p.EmploymentType = append(p.EmploymentType, s)
			}
		}
	}

	switch id := m["identifier"].(type) {
	case string:
		p.Identifier = id
	case map[string]any:
		p.Identifier = scalarString(id["value"])
	}

	if strings.EqualFold(stringField(m, "jobLocationType"), "TELECOMMUTE") {
		p.Remote = true
	}
	p.Location = locationString(m["jobLocation"])
	if p.Location == "" && p.Remote {
		p.Location = "Remote"
	}

	if salary, ok := m["baseSalary"].(map[string]any); ok {
		p.Salary, p.SalaryPeriod = salaryString(salary)
	}
	return p
}

func locationString(node any) string {
	switch v := node.(type) {
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s := locationString(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	case map[string]any:
		addr, ok := v["address"].(map[string]any)
		if !ok {
			if s, ok := v["address"].(string); ok {
				return s
			}
			return stringField(v, "name")
		}
		parts := make([]string, 0, 3)
		for _, key := range []string{"addressLocality", "addressRegion"} {
			if s := stringField(addr, key); s != "" {
				parts = append(parts, s)
			}
		}
		switch c := addr["addressCountry"].(type) {
		case string:
			if c != "" {
				parts = append(parts, c)
			}
		case map[string]any:
			if s := stringField(c, "name"); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

var currencySymbols = map[string]string{
	"USD": "$",
	"GBP": "£",
	"EUR": "€",
}

var unitPeriods = map[string]types.SalaryPeriod{
	"HOUR":  types.SalaryPeriodHourly,
	"DAY":   types.SalaryPeriodDaily,
	"MONTH": types.SalaryPeriodMonthly,
	"YEAR":  types.SalaryPeriodYearly,
}

// salaryString renders a MonetaryAmount as free text the salary parser understands
func salaryString(m map[string]any) (string, types.SalaryPeriod) {
	symbol := currencySymbols[strings.ToUpper(stringField(m, "currency"))]

	var minV, maxV, unit string
	switch v := m["value"].(type) {
	case map[string]any:
		minV = scalarString(v["minValue"])
		maxV = scalarString(v["maxValue"])
		if minV == "" {
			minV = scalarString(v["value"])
		}
		unit = stringField(v, "unitText")
	default:
		minV = scalarString(v)
	}
	if unit == "" {
		unit = stringField(m, "unitText")
	}
	period := unitPeriods[strings.ToUpper(unit)]

	switch {
	case minV != "" && maxV != "":
		return symbol + minV + " - " + symbol + maxV, period
	case minV != "":
		return symbol + minV, period
	case maxV != "":
		return symbol + maxV, period
	}
	return "", period
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

// scalarString formats JSON numbers without a fractional part when they are whole
func scalarString(v any) string {
	switch n := v.(type) {
	case string:
		return strings.TrimSpace(n)
	case float64:
		if n == float64(int64(n)) {
			return fmt.Sprintf("%d", int64(n))
		}
		return fmt.Sprintf("%g", n)
	}
	return ""
}
