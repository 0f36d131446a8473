// Package schemas embeds the JSON Schema documents shipped with the binary.
package schemas

import _ "embed"

//go:embed sources.schema.json
var sourcesSchema string

// SourcesSchema returns the schema for the job sources seed file
func SourcesSchema() string {
	return sourcesSchema
}
