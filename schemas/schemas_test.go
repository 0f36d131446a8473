package schemas

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"
)

func TestSourcesSchema_ValidJSON(t *testing.T) {
	var schemaObj map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(SourcesSchema()), &schemaObj))

	_, hasType := schemaObj["type"]
	_, hasSchema := schemaObj["$schema"]
	_, hasProps := schemaObj["properties"]
	assert.True(t, hasType && hasSchema && hasProps)
}

func TestSourcesSchema_Compiles(t *testing.T) {
	_, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(SourcesSchema()))
	assert.NoError(t, err)
}
