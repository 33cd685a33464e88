package config

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed wiretap_schema.json
var schemaBytes []byte

var (
	schema     *gojsonschema.Schema
	schemaOnce sync.Once
	schemaErr  error
)

// loadSchema compiles the embedded schema once.
func loadSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaBytes))
		if schemaErr != nil {
			schemaErr = fmt.Errorf("failed to compile embedded configuration schema: %w", schemaErr)
		}
	})
	return schema, schemaErr
}

// ValidateWithSchema checks a YAML document against the embedded JSON schema.
// It catches unknown keys and wrongly typed values before the document is
// decoded into a Config. Violations are reported as a ValidationError.
func ValidateWithSchema(documentYAML []byte) error {
	s, err := loadSchema()
	if err != nil {
		return err
	}

	var doc any
	if err := yaml.Unmarshal(documentYAML, &doc); err != nil {
		return fmt.Errorf("failed to parse configuration for schema validation: %w", err)
	}
	if doc == nil {
		// An empty document means "all defaults".
		return nil
	}

	result, err := s.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if result.Valid() {
		return nil
	}

	errs := make([]FieldError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "(root)" || field == "" {
			field = strings.TrimPrefix(desc.Context().String(), "(root).")
		}
		errs = append(errs, FieldError{Field: field, Message: desc.Description()})
	}
	return ValidationError{Errors: errs}
}
