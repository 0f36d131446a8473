package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTitle(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		title   string
		company string
		ok      bool
	}{
		{"hiring", "Acme Corp is hiring a Senior Engineer", "Senior Engineer", "Acme Corp", true},
		{"hiring an", "Acme Corp is hiring an Engineering Manager", "Engineering Manager", "Acme Corp", true},
		{"at", "Senior Engineer at Acme Corp", "Senior Engineer", "Acme Corp", true},
		{"dash role on right", "Acme Corp – DevOps Engineer", "DevOps Engineer", "Acme Corp", true},
		{"dash swapped", "DevOps Engineer – Acme Corp", "DevOps Engineer", "Acme Corp", true},
		{"hyphen", "Globex - Data Scientist", "Data Scientist", "Globex", true},
		{"hiring beats at", "Acme is hiring a Lead at HQ", "Lead at HQ", "Acme", true},
		{"no pattern", "Senior Engineer", "", "", false},
		{"empty", "   ", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts, ok := SplitTitle(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.title, parts.Title)
			assert.Equal(t, tt.company, parts.Company)
		})
	}
}

func TestSplitTitle_HyphenatedWordIsNotSeparator(t *testing.T) {
	_, ok := SplitTitle("Full-Stack Developer")
	assert.False(t, ok)
}
