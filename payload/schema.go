package payload

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// SchemaValidator checks webhook bodies against a JSON Schema.
type SchemaValidator struct {
	schema *jsonschema.Schema
}

// NewSchemaValidator compiles the given JSON Schema document.
func NewSchemaValidator(schema []byte) (*SchemaValidator, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schema))
	if err != nil {
		return nil, fmt.Errorf("payload: unmarshal schema: %w", err)
	}

	sum := sha256.Sum256(schema)
	url := "fanrelay://schema/" + hex.EncodeToString(sum[:8])

	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("payload: add schema resource: %w", err)
	}

	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("payload: compile schema: %w", err)
	}
	return &SchemaValidator{schema: compiled}, nil
}

// Validate decodes body and validates it against the compiled schema.
func (v *SchemaValidator) Validate(body []byte) error {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return v.schema.Validate(inst)
}
