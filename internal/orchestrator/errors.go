package orchestrator

import (
	"fmt"
	"time"
)

// RunTimeoutFailure reports a run that exceeded its time budget. Jobs reconciled
// before the deadline stay committed.
type RunTimeoutFailure struct {
	Source  string
	Timeout time.Duration
	Cause   error
}

func (e *RunTimeoutFailure) Error() string {
	return fmt.Sprintf("scraping timeout for %s after %s", e.Source, e.Timeout)
}

func (e *RunTimeoutFailure) Unwrap() error {
	return e.Cause
}

// RunFailure is any other run-level failure: the source could not be loaded,
// has no extractor, or a start page could not be fetched.
type RunFailure struct {
	Source  string
	Message string
	Cause   error
}

func (e *RunFailure) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("run failed for %s: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("run failed for %s: %s", e.Source, e.Message)
}

func (e *RunFailure) Unwrap() error {
	return e.Cause
}
