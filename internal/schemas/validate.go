// Package schemas provides JSON Schema validation for structured payloads
// returned by the generation backend, so malformed roadmap JSON is rejected
// before it can replace session state.
package schemas

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// RoadmapSchema validates the week-keyed roadmap mapping produced by the
// generation backend. Keys beginning with "Week" must hold a topic and an
// optional resource list; other keys are permitted and ignored downstream.
const RoadmapSchema = `{
  "type": "object",
  "minProperties": 1,
  "patternProperties": {
    "^Week [0-9]+$": {
      "type": "object",
      "properties": {
        "topic": {"type": "string", "minLength": 1},
        "resources": {"type": "array", "items": {"type": "string"}}
      },
      "required": ["topic"]
    }
  }
}`

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
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

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema: %s", e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}

// ValidateRoadmap validates a roadmap JSON document against RoadmapSchema.
func ValidateRoadmap(jsonContent string) error {
	return ValidateJSONString(RoadmapSchema, jsonContent)
}
