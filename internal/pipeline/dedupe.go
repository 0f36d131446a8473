package pipeline

import (
	"sync"

	"github.com/jonathan/jobtracker/internal/types"
)

// DuplicateFilter rejects candidates whose source and external id were already
// seen during the current run. It is safe for concurrent use.
type DuplicateFilter struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewDuplicateFilter() *DuplicateFilter {
	return &DuplicateFilter{seen: make(map[string]struct{})}
}

// Accept records the candidate key, returning a *DuplicateFailure when it is not new.
func (f *DuplicateFilter) Accept(c *types.RawCandidate) error {
	key := c.Key()
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.seen[key]; ok {
		return &DuplicateFailure{Key: key}
	}
	f.seen[key] = struct{}{}
	return nil
}
