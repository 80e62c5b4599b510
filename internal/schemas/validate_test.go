package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	schemafiles "github.com/jonathan/applykit/schemas"
)

func TestValidate_TailoredCV(t *testing.T) {
	tests := []struct {
		name      string
		json      string
		wantError bool
	}{
		{
			name:      "full reply",
			json:      `{"content": "CV text", "keywords": ["Go"], "gaps": [], "suggestions": ["add metrics"], "quality_checks": [{"name": "length", "passed": true}]}`,
			wantError: false,
		},
		{
			name:      "content only",
			json:      `{"content": "CV text"}`,
			wantError: false,
		},
		{
			name:      "missing content",
			json:      `{"keywords": ["Go"]}`,
			wantError: true,
		},
		{
			name:      "blank content",
			json:      `{"content": "   "}`,
			wantError: true,
		},
		{
			name:      "keywords wrong type",
			json:      `{"content": "x", "keywords": "Go, SQL"}`,
			wantError: true,
		},
		{
			name:      "quality check without passed",
			json:      `{"content": "x", "quality_checks": [{"name": "length"}]}`,
			wantError: true,
		},
		{
			name:      "not json",
			json:      `Here is your CV`,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(schemafiles.TailoredCV, tt.json)
			if !tt.wantError {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.NotEmpty(t, ve.Errors)
			assert.NotEmpty(t, ve.Summary())
		})
	}
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("nope.schema.json", `{}`)
	var le *SchemaLoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "nope.schema.json", le.Path)
}

func TestValidateJSONString(t *testing.T) {
	schema := `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["person"],
		"properties": {
			"person": {"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}}
		}
	}`

	assert.NoError(t, ValidateJSONString(schema, `{"person": {"name": "Ada"}}`))

	err := ValidateJSONString(schema, `{"person": {}}`)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Errors[0].Field, "person")
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Errors: []FieldError{
		{Field: "content", Message: "is required"},
		{Field: "keywords", Message: "must be an array"},
	}}

	msg := err.Error()
	assert.Contains(t, msg, "validation failed")
	assert.Contains(t, msg, "content")
	assert.Equal(t, "content: is required; keywords: must be an array", err.Summary())
}
