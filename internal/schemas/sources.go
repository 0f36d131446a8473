package schemas

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/jobtracker/internal/types"
	rootschemas "github.com/jonathan/jobtracker/schemas"
)

// SourceSeed is one entry of the sources seed file
type SourceSeed struct {
	Name           string `json:"name"`
	BaseURL        string `json:"base_url"`
	IsActive       *bool  `json:"is_active,omitempty"`
	ScrapeInterval int    `json:"scrape_interval,omitempty"`
	RateLimit      *int   `json:"rate_limit,omitempty"`
	UserAgent      string `json:"user_agent,omitempty"`
}

// SourceFile is the top-level shape of the seed file
type SourceFile struct {
	Sources []SourceSeed `json:"sources"`
}

// JobSource converts the seed into a source row, filling defaults for absent fields
func (s SourceSeed) JobSource() *types.JobSource {
	src := &types.JobSource{
		Name:           s.Name,
		BaseURL:        s.BaseURL,
		IsActive:       true,
		ScrapeInterval: types.DefaultScrapeInterval,
		RateLimit:      types.DefaultRateLimit,
		UserAgent:      s.UserAgent,
	}
	if s.IsActive != nil {
		src.IsActive = *s.IsActive
	}
	if s.ScrapeInterval > 0 {
		src.ScrapeInterval = s.ScrapeInterval
	}
	if s.RateLimit != nil {
		src.RateLimit = *s.RateLimit
	}
	return src
}

// ParseSources validates data against the embedded sources schema and decodes it
func ParseSources(data []byte) ([]SourceSeed, error) {
	if err := Validate("sources", rootschemas.SourcesSchema(), data); err != nil {
		return nil, err
	}
	var file SourceFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse sources JSON: %w", err)
	}

	seen := make(map[string]bool, len(file.Sources))
	for _, s := range file.Sources {
		if seen[s.Name] {
			return nil, &ValidationError{Errors: []FieldError{{Field: "sources", Message: "duplicate source name " + s.Name}}}
		}
		seen[s.Name] = true
	}
	return file.Sources, nil
}

// LoadSources finds, reads and validates a sources seed file.
// Relative paths are resolved with FindFile.
func LoadSources(path string) ([]SourceSeed, error) {
	resolved := FindFile(path)
	if resolved == "" {
		return nil, fmt.Errorf("sources file not found: %s", path)
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file %s: %w", resolved, err)
	}
	return ParseSources(data)
}
