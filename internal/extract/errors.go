// Package extract turns fetched job board pages into candidate job records.
//
// Every field is read through an ordered chain of strategies; the first
// strategy that yields a non-empty value wins.
package extract

import "fmt"

// ExtractionFailure means a single detail page could not be turned into a candidate.
// The item is dropped and the run continues.
type ExtractionFailure struct {
	URL     string
	Message string
	Cause   error
}

func (e *ExtractionFailure) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction error for %s: %s", e.URL, e.Message)
}

func (e *ExtractionFailure) Unwrap() error {
	return e.Cause
}
