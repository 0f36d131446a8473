// Package pipeline runs extracted candidates through duplicate filtering and
// normalization before they reach the reconciler.
package pipeline

import (
	"github.com/jonathan/jobtracker/internal/types"
)

// Pipeline is the per-run item pipeline. Create one per scrape run.
type Pipeline struct {
	duplicates *DuplicateFilter
	normalizer *Normalizer
}

func New(normalizer *Normalizer) *Pipeline {
	if normalizer == nil {
		normalizer = NewNormalizer()
	}
	return &Pipeline{
		duplicates: NewDuplicateFilter(),
		normalizer: normalizer,
	}
}

// Process filters duplicates then normalizes. The returned error is a
// *DuplicateFailure or *ValidationFailure and applies to this item only.
func (p *Pipeline) Process(c *types.RawCandidate) (*types.NormalizedRecord, error) {
	if err := p.duplicates.Accept(c); err != nil {
		return nil, err
	}
	return p.normalizer.Normalize(c)
}
