package types

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CompanySizeUnknown is the size bucket assigned when nothing better is known
const CompanySizeUnknown = "unknown"

// Company is a hiring organization, deduplicated by case-insensitive name
type Company struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Website     string    `json:"website,omitempty"`
	Industry    string    `json:"industry,omitempty"`
	Size        string    `json:"size"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

var slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe slug from a company name
// Example: "Acme Corp, Inc." -> "acme-corp-inc"
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugSeparators.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
