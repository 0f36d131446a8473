// Package schemas validates the JSON files the CLI reads against the schemas
// embedded in the binary.
package schemas

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// FindFile locates a relative data file such as sources.json. It tries the
// working directory, up to two parents (commands run from a package directory
// in tests), then the directory holding the running binary.
// Absolute paths are only checked. Returns "" when nothing exists.
func FindFile(path string) string {
	if filepath.IsAbs(path) {
		if exists(path) {
			return path
		}
		return ""
	}

	candidates := []string{
		path,
		filepath.Join("..", path),
		filepath.Join("..", "..", path),
	}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), path))
	}

	for _, candidate := range candidates {
		if abs, err := filepath.Abs(candidate); err == nil && exists(abs) {
			return abs
		}
	}
	return ""
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ValidationError lists every schema violation of a document
type ValidationError struct {
	Errors []FieldError
}

// FieldError is one violation at a field path such as sources.0.name
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// SchemaLoadError means the schema itself, or the document, could not be parsed
type SchemaLoadError struct {
	Schema  string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load %s schema: %s: %v", e.Schema, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load %s schema: %s", e.Schema, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// Validate checks doc against the named schema document.
// Violations come back as *ValidationError, parse failures as *SchemaLoadError.
func Validate(name, schema string, doc []byte) error {
	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(schema), gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return &SchemaLoadError{Schema: name, Message: "document or schema is not valid JSON", Cause: err}
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		verr.Errors = append(verr.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return verr
}
