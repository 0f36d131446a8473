package extract

import (
	"regexp"
	"strings"
)

// TitleParts is a heading split into a job title and a company name
type TitleParts struct {
	Title   string
	Company string
}

var (
	hiringPattern = regexp.MustCompile(`(?i)^(.+?)\s+is\s+hiring\s+(?:an?\s+)?(.+)$`)
	atPattern     = regexp.MustCompile(`(?i)^(.+)\s+at\s+(.+)$`)
	dashPattern   = regexp.MustCompile(`^(.+?)\s+[–-]\s+(.+)$`)
)

// roleKeywords mark the segment of a dash-separated heading that holds the job title
var roleKeywords = []string{
	"engineer", "developer", "designer", "manager",
	"devops", "scientist", "analyst", "architect",
}

// SplitTitle splits headings of the forms
//
//	"<Company> is hiring a <Title>"
//	"<Title> at <Company>"
//	"<X> – <Y>" or "<X> - <Y>"
//
// tried in that order. For dash separators the side with a role keyword is the title;
// when the right side has none the halves are swapped.
func SplitTitle(text string) (TitleParts, bool) {
	text = cleanText(text)
	if text == "" {
		return TitleParts{}, false
	}

	if m := hiringPattern.FindStringSubmatch(text); m != nil {
		return TitleParts{Company: strings.TrimSpace(m[1]), Title: strings.TrimSpace(m[2])}, true
	}
	if m := atPattern.FindStringSubmatch(text); m != nil {
		return TitleParts{Title: strings.TrimSpace(m[1]), Company: strings.TrimSpace(m[2])}, true
	}
	if m := dashPattern.FindStringSubmatch(text); m != nil {
		left, right := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		if hasRoleKeyword(right) {
			return TitleParts{Company: left, Title: right}, true
		}
		return TitleParts{Company: right, Title: left}, true
	}
	return TitleParts{}, false
}

func hasRoleKeyword(s string) bool {
	s = strings.ToLower(s)
	for _, kw := range roleKeywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
