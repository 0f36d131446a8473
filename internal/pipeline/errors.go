package pipeline

import "fmt"

// DuplicateFailure means the candidate's key was already seen in this run
type DuplicateFailure struct {
	Key string
}

func (e *DuplicateFailure) Error() string {
	return fmt.Sprintf("duplicate item found: %s", e.Key)
}

// ValidationFailure means a candidate failed a required-field or structure check
type ValidationFailure struct {
	Field   string
	Message string
	Cause   error
}

func (e *ValidationFailure) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationFailure) Unwrap() error {
	return e.Cause
}
