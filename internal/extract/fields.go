package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/jonathan/jobtracker/internal/types"
)

// InferJobType searches page text for employment keywords.
// Contract terms win over part-time, part-time over internship; anything else is full time.
func InferJobType(text string) types.JobType {
	text = strings.ToLower(text)
	switch {
	case containsAny(text, "contract", "contractor", "freelance"):
		return types.JobTypeContract
	case containsAny(text, "part-time", "part time", "parttime"):
		return types.JobTypePartTime
	case containsAny(text, "internship", "intern"):
		return types.JobTypeInternship
	default:
		return types.JobTypeFullTime
	}
}

var employmentTypes = map[string]types.JobType{
	"FULL_TIME":  types.JobTypeFullTime,
	"PART_TIME":  types.JobTypePartTime,
	"CONTRACTOR": types.JobTypeContract,
	"CONTRACT":   types.JobTypeContract,
	"TEMPORARY":  types.JobTypeTemporary,
	"INTERN":     types.JobTypeInternship,
	"FREELANCE":  types.JobTypeFreelance,
}

// JobTypeFromEmployment maps schema.org employmentType values, first known value wins
func JobTypeFromEmployment(values []string) (types.JobType, bool) {
	for _, v := range values {
		key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(v), "-", "_"))
		if jt, ok := employmentTypes[key]; ok {
			return jt, true
		}
	}
	return "", false
}

// techKeywords is the fixed vocabulary matched against title and body text
var techKeywords = []string{
	"python", "javascript", "react", "node", "django", "flask",
	"aws", "docker", "kubernetes", "sql", "postgresql", "mongodb",
	"frontend", "backend", "fullstack", "devops", "ml", "ai",
}

var techKeywordPatterns = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(techKeywords))
	for _, kw := range techKeywords {
		m[kw] = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
	}
	return m
}()

// ExtractTags unions lowercased breadcrumb labels with vocabulary hits in text.
// Breadcrumbs mentioning "remote" or any of the excluded tokens are dropped.
func ExtractTags(breadcrumbs []string, text string, excluded ...string) []string {
	seen := make(map[string]bool)
	var tags []string
	add := func(tag string) {
		if tag == "" || seen[tag] {
			return
		}
		seen[tag] = true
		tags = append(tags, tag)
	}

	for _, crumb := range breadcrumbs {
		lower := strings.ToLower(cleanText(crumb))
		if lower == "" || strings.Contains(lower, "remote") || containsAny(lower, excluded...) {
			continue
		}
		add(lower)
	}

	text = strings.ToLower(text)
	for _, kw := range techKeywords {
		if techKeywordPatterns[kw].MatchString(text) {
			add(kw)
		}
	}
	return tags
}

// MaxSkills caps the skill list of one posting
const MaxSkills = 10

var skillPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\w+)\s+years?\s+experience`),
	regexp.MustCompile(`experience\s+with\s+(\w+)`),
	regexp.MustCompile(`knowledge\s+of\s+(\w+)`),
	regexp.MustCompile(`proficient\s+in\s+(\w+)`),
}

var alphabetic = regexp.MustCompile(`^[a-z]+$`)

// ExtractSkills collects words following skill phrases in text.
// Only alphabetic tokens longer than two letters are kept, title-cased, in first-seen order.
func ExtractSkills(text string) []string {
	text = strings.ToLower(text)
	seen := make(map[string]bool)
	var skills []string
	for _, pattern := range skillPatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			word := m[1]
			if len(word) <= 2 || !alphabetic.MatchString(word) {
				continue
			}
			skill := strings.ToUpper(word[:1]) + word[1:]
			if seen[skill] {
				continue
			}
			seen[skill] = true
			skills = append(skills, skill)
		}
	}
	if len(skills) > MaxSkills {
		skills = skills[:MaxSkills]
	}
	return skills
}

var structuredDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseStructuredDate parses an ISO-8601 datePosted value
func ParseStructuredDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range structuredDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// ParsePostedDate interprets a visible date label.
// Relative labels ("3 days ago") resolve to now, not to now minus the offset.
// YYYY-MM-DD is parsed; anything else falls back to now.
func ParsePostedDate(label string, now time.Time) time.Time {
	label = strings.TrimSpace(label)
	if label == "" || strings.Contains(strings.ToLower(label), "ago") {
		return now
	}
	if t, err := time.Parse("2006-01-02", label); err == nil {
		return t
	}
	return now
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
