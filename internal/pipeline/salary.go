package pipeline

import (
	"regexp"
	"strconv"
	"strings"
)

var salaryPattern = regexp.MustCompile(`[\$£€]?(\d+)(?:\s*-\s*[\$£€]?(\d+))?`)

// ParseSalary reads a one- or two-number salary from free text. Thousands separators
// are ignored. A zero or missing figure is left nil. currency is derived from the
// first currency symbol present, otherwise defaultCurrency is returned.
// Inverted ranges are returned as found.
func ParseSalary(text, defaultCurrency string) (minSalary, maxSalary *int, currency string) {
	currency = defaultCurrency
	if strings.TrimSpace(text) == "" {
		return nil, nil, currency
	}

	switch {
	case strings.Contains(text, "$"):
		currency = "USD"
	case strings.Contains(text, "£"):
		currency = "GBP"
	case strings.Contains(text, "€"):
		currency = "EUR"
	}

	m := salaryPattern.FindStringSubmatch(strings.ReplaceAll(text, ",", ""))
	if m == nil {
		return nil, nil, currency
	}
	return positiveInt(m[1]), positiveInt(m[2]), currency
}

func positiveInt(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}
